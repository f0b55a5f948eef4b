package detail

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/directory"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	apperrors "github.com/alfredfullstack2024/tiendasappfrontend/pkg/errors"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/validator"
)

// Compose stores the draft without submitting it.
func (v *View) Compose(draft domain.ReviewDraft) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = draft
	if v.submit != SubmitSubmitting {
		v.submit = SubmitComposing
	}
}

func (v *View) validate(draft domain.ReviewDraft) error {
	if v.opts.CommentRequired {
		return validator.Validate(draft.Strict())
	}
	return validator.Validate(draft)
}

// Submit runs one attempt of Composing → Validating → Submitting →
// Accepted | Rejected. An invalid draft never reaches the network. On
// acceptance the server's review is appended, the aggregate recomputed and
// the draft cleared. On rejection the review set and draft are left as they
// were and a flash message explains why.
func (v *View) Submit(ctx context.Context, draft domain.ReviewDraft) (SubmitState, error) {
	draft = draft.Normalize()

	v.mu.Lock()
	if v.state != StateLoaded {
		state := v.submit
		v.mu.Unlock()
		return state, ErrNotReady
	}
	if v.submit == SubmitSubmitting {
		v.mu.Unlock()
		return SubmitSubmitting, ErrSubmitInFlight
	}

	v.draft = draft
	v.submit = SubmitValidating
	if err := v.validate(draft); err != nil {
		v.submit = SubmitRejected
		v.setFlashLocked(FlashError, validationMessage(err))
		v.mu.Unlock()
		reviewSubmissions.WithLabelValues("invalid").Inc()
		return SubmitRejected, err
	}

	v.submit = SubmitSubmitting
	id, gen := v.id, v.generation
	v.mu.Unlock()

	review, err := v.dir.SubmitReview(ctx, id, draft)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.id != id || v.generation != gen {
		staleResults.WithLabelValues("submission").Inc()
		if v.submit == SubmitSubmitting {
			v.submit = SubmitComposing
		}
		if err != nil {
			return SubmitRejected, err
		}
		return SubmitAccepted, nil
	}

	if err != nil {
		v.submit = SubmitRejected
		v.setFlashLocked(FlashError, submissionMessage(err))
		reviewSubmissions.WithLabelValues("rejected").Inc()
		v.log(ctx).WarnContext(ctx, "review submission failed",
			slog.String("business_id", id),
			slog.String("error", err.Error()),
		)
		return SubmitRejected, err
	}

	reviewSubmissions.WithLabelValues("accepted").Inc()
	v.submit = SubmitAccepted
	v.draft = domain.ReviewDraft{}
	v.setFlashLocked(FlashSuccess, MsgReviewPublished)

	if review == nil || v.reviewsState != ReviewsLoaded {
		// Without the server's copy, or without a trustworthy base set, the
		// collection is reloaded instead of patched.
		v.startReviewsLocked(ctx)
	} else {
		v.reviews = append(v.reviews, *review)
		v.aggregate = domain.Aggregate(v.reviews)
	}

	v.log(ctx).InfoContext(ctx, "review accepted",
		slog.String("business_id", id),
		slog.Int("rating", draft.Rating),
		slog.Int("count", v.aggregate.Count),
	)
	if v.opts.Events != nil && review != nil {
		v.opts.Events.ReviewSubmitted(ctx, id, *review)
	}
	return SubmitAccepted, nil
}

func validationMessage(err error) string {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		if msg := valErr.First(); msg != "" {
			return msg
		}
	}
	return directory.MsgReviewFailed
}

func submissionMessage(err error) string {
	var subErr *directory.SubmissionError
	if errors.As(err, &subErr) && subErr.Message != "" {
		return subErr.Message
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return directory.MsgReviewFailed
}
