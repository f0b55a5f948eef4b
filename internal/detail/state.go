package detail

import (
	"time"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
)

// LoadState is the lifecycle of the business record in one view.
type LoadState string

const (
	StateIdle     LoadState = "idle"
	StateLoading  LoadState = "loading"
	StateLoaded   LoadState = "loaded"
	StateNotFound LoadState = "not_found"
	StateError    LoadState = "error"
)

// ReviewsState is the lifecycle of the review collection. Unavailable is
// distinct from a loaded empty collection.
type ReviewsState string

const (
	ReviewsIdle        ReviewsState = "idle"
	ReviewsLoading     ReviewsState = "loading"
	ReviewsLoaded      ReviewsState = "loaded"
	ReviewsUnavailable ReviewsState = "unavailable"
)

// SubmitState tracks the current submission attempt.
type SubmitState string

const (
	SubmitComposing  SubmitState = "composing"
	SubmitValidating SubmitState = "validating"
	SubmitSubmitting SubmitState = "submitting"
	SubmitAccepted   SubmitState = "accepted"
	SubmitRejected   SubmitState = "rejected"
)

// User-facing messages.
const (
	MsgNotFound        = "Tienda no encontrada"
	MsgLoadFailed      = "Error cargando la tienda. Intenta nuevamente."
	MsgReviewsDown     = "Las reseñas no están disponibles en este momento."
	MsgNoReviews       = "Aún no hay reseñas. ¡Sé el primero en opinar!"
	MsgReviewPublished = "¡Gracias! Tu reseña fue publicada."
)

// Snapshot is a consistent copy of a view, safe to render after the lock is
// released.
type Snapshot struct {
	ID           string                 `json:"id"`
	State        LoadState              `json:"state"`
	Message      string                 `json:"message,omitempty"`
	Business     *domain.Business       `json:"business,omitempty"`
	ReviewsState ReviewsState           `json:"reviews_state"`
	Reviews      []domain.Review        `json:"reviews"`
	Aggregate    domain.AggregateRating `json:"aggregate"`
	Draft        domain.ReviewDraft     `json:"draft"`
	Submit       SubmitState            `json:"submit_state"`
	Flash        *Flash                 `json:"flash,omitempty"`
}

// ReviewsMessage is the notice shown in place of the review list, if any.
func (s Snapshot) ReviewsMessage() string {
	switch {
	case s.ReviewsState == ReviewsUnavailable:
		return MsgReviewsDown
	case s.ReviewsState == ReviewsLoaded && len(s.Reviews) == 0:
		return MsgNoReviews
	default:
		return ""
	}
}

// Flash kinds.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a transient message. It disappears at ExpiresAt or when a newer
// message replaces it.
type Flash struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
	Seq       uint64    `json:"seq"`
}

// Remaining is how long the flash stays visible from now.
func (f *Flash) Remaining(now time.Time) time.Duration {
	if f == nil {
		return 0
	}
	if d := f.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
