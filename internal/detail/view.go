package detail

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/directory"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	apperrors "github.com/alfredfullstack2024/tiendasappfrontend/pkg/errors"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
)

// Directory is the part of the Remote Directory API a detail view uses.
type Directory interface {
	Business(ctx context.Context, id string) (*domain.Business, error)
	Reviews(ctx context.Context, id string) ([]domain.Review, error)
	SubmitReview(ctx context.Context, id string, draft domain.ReviewDraft) (*domain.Review, error)
}

// Events receives activity notifications. Implementations must not block.
type Events interface {
	ReviewSubmitted(ctx context.Context, businessID string, review domain.Review)
}

// Options configures a view.
type Options struct {
	CommentRequired bool
	FlashTTL        time.Duration
	Events          Events
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.FlashTTL <= 0 {
		o.FlashTTL = 5 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ErrNotReady is returned when a review is submitted before the business loaded.
var ErrNotReady = apperrors.Conflict("la tienda aún no está cargada")

// ErrSubmitInFlight is returned when a submission is already running.
var ErrSubmitInFlight = apperrors.Conflict("ya se está enviando una reseña")

// View is the detail screen of one business for one browser session. It owns
// the business fetch, the review collection, the aggregate and the review
// draft. Results of fetches started for another id or an older generation
// are discarded on arrival.
type View struct {
	dir    Directory
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	id         string
	generation uint64
	reviewsGen uint64

	state    LoadState
	business *domain.Business

	reviewsState ReviewsState
	reviews      []domain.Review
	aggregate    domain.AggregateRating

	draft  domain.ReviewDraft
	submit SubmitState
	flash  *Flash
	seq    uint64

	businessDone chan struct{}
	reviewsDone  chan struct{}
}

// NewView creates an idle view.
func NewView(dir Directory, opts Options, logger *slog.Logger) *View {
	closed := make(chan struct{})
	close(closed)
	return &View{
		dir:          dir,
		opts:         opts.withDefaults(),
		logger:       logger,
		state:        StateIdle,
		reviewsState: ReviewsIdle,
		submit:       SubmitComposing,
		businessDone: closed,
		reviewsDone:  closed,
	}
}

// Pending signals when the fetches started by Open or Retry have been
// applied to the view (or discarded as stale).
type Pending struct {
	Business <-chan struct{}
	Reviews  <-chan struct{}
}

// Wait blocks until both fetches finished or ctx is done.
func (p Pending) Wait(ctx context.Context) error {
	return await(ctx, p.Business, p.Reviews)
}

// WaitBusiness blocks until the business fetch finished or ctx is done. The
// reviews fetch keeps running in the background.
func (p Pending) WaitBusiness(ctx context.Context) error {
	return await(ctx, p.Business)
}

func await(ctx context.Context, chans ...<-chan struct{}) error {
	for _, ch := range chans {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Open selects business id. A different id resets the view and starts both
// fetches. The same id reuses what is loaded or in flight, and refetches
// after a NotFound or Error outcome.
func (v *View) Open(ctx context.Context, id string) Pending {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id == v.id && (v.state == StateLoading || v.state == StateLoaded) {
		if v.state == StateLoaded && v.reviewsState == ReviewsUnavailable {
			v.startReviewsLocked(ctx)
		}
		return Pending{Business: v.businessDone, Reviews: v.reviewsDone}
	}

	if id != v.id {
		v.draft = domain.ReviewDraft{}
		v.submit = SubmitComposing
		v.flash = nil
	}
	v.id = id
	return v.startLocked(ctx)
}

// Retry restarts the whole fetch sequence for the current id from the first
// candidate.
func (v *View) Retry(ctx context.Context) (Pending, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.id == "" {
		return Pending{}, apperrors.InvalidInput("no hay una tienda seleccionada")
	}
	return v.startLocked(ctx), nil
}

func (v *View) startLocked(ctx context.Context) Pending {
	v.generation++
	v.state = StateLoading
	v.business = nil

	businessDone := make(chan struct{})
	v.businessDone = businessDone
	go v.fetchBusiness(detach(ctx), v.id, v.generation, businessDone)

	v.startReviewsLocked(ctx)
	return Pending{Business: v.businessDone, Reviews: v.reviewsDone}
}

func (v *View) startReviewsLocked(ctx context.Context) {
	v.reviewsGen++
	v.reviewsState = ReviewsLoading
	v.reviews = nil
	v.aggregate = domain.AggregateRating{}

	reviewsDone := make(chan struct{})
	v.reviewsDone = reviewsDone
	go v.fetchReviews(detach(ctx), v.id, v.generation, v.reviewsGen, reviewsDone)
}

// detach keeps request-scoped values (logger, trace) but not cancellation:
// a fetch outlives the request that started it and lands in the view.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (v *View) fetchBusiness(ctx context.Context, id string, gen uint64, done chan struct{}) {
	defer close(done)

	b, err := v.dir.Business(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.id != id || v.generation != gen {
		staleResults.WithLabelValues("business").Inc()
		v.log(ctx).DebugContext(ctx, "discarding stale business result",
			slog.String("business_id", id),
		)
		return
	}

	switch {
	case err == nil:
		v.state = StateLoaded
		v.business = b
	case directory.IsNotFound(err):
		v.state = StateNotFound
	default:
		v.state = StateError
		v.log(ctx).ErrorContext(ctx, "business load failed",
			slog.String("business_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func (v *View) fetchReviews(ctx context.Context, id string, gen, reviewsGen uint64, done chan struct{}) {
	defer close(done)

	reviews, err := v.dir.Reviews(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.id != id || v.generation != gen || v.reviewsGen != reviewsGen {
		staleResults.WithLabelValues("reviews").Inc()
		return
	}

	if err != nil {
		v.reviewsState = ReviewsUnavailable
		v.reviews = nil
		v.aggregate = domain.AggregateRating{}
		v.log(ctx).WarnContext(ctx, "reviews unavailable",
			slog.String("business_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	v.reviewsState = ReviewsLoaded
	v.reviews = reviews
	v.aggregate = domain.Aggregate(reviews)
}

// Snapshot returns a consistent copy of the view.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		ID:           v.id,
		State:        v.state,
		ReviewsState: v.reviewsState,
		Reviews:      slices.Clone(v.reviews),
		Aggregate:    v.aggregate,
		Draft:        v.draft,
		Submit:       v.submit,
		Flash:        v.currentFlashLocked(),
	}
	if s.Reviews == nil {
		s.Reviews = []domain.Review{}
	}
	if v.business != nil {
		b := *v.business
		s.Business = &b
	}
	if v.aggregate.Average != nil {
		avg := *v.aggregate.Average
		s.Aggregate.Average = &avg
	}
	switch v.state {
	case StateNotFound:
		s.Message = MsgNotFound
	case StateError:
		s.Message = MsgLoadFailed
	}
	return s
}

// ID returns the business the view is showing.
func (v *View) ID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.id
}

func (v *View) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, v.logger)
}
