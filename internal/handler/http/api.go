package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/detail"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/directory"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/service"
	apperrors "github.com/alfredfullstack2024/tiendasappfrontend/pkg/errors"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httputil"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/validator"
)

// Directory is the part of the directory client the JSON API reads directly.
type Directory interface {
	Business(ctx context.Context, id string) (*domain.Business, error)
	Reviews(ctx context.Context, id string) ([]domain.Review, error)
	SubmitReview(ctx context.Context, id string, draft domain.ReviewDraft) (*domain.Review, error)
}

// APIHandler serves the JSON API for script clients. It is stateless: every
// call walks the candidate list from the start.
type APIHandler struct {
	dir             Directory
	catalog         *service.CatalogService
	views           *detail.Registry
	commentRequired bool
	logger          *slog.Logger
}

// NewAPIHandler creates a new JSON API handler.
func NewAPIHandler(dir Directory, catalog *service.CatalogService, views *detail.Registry, commentRequired bool, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		dir:             dir,
		catalog:         catalog,
		views:           views,
		commentRequired: commentRequired,
		logger:          logger,
	}
}

// ReviewsResponse is a review list with its aggregate.
type ReviewsResponse struct {
	Reviews   []domain.Review        `json:"reviews"`
	Aggregate domain.AggregateRating `json:"aggregate"`
}

// Categories handles GET /api/categorias.
func (h *APIHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(cats))
}

// ByCategory handles GET /api/tiendas/categoria/{categoria}.
func (h *APIHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	listing, err := h.catalog.ByCategory(r.Context(), chi.URLParam(r, "categoria"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// Business handles GET /api/tiendas/{id}.
func (h *APIHandler) Business(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	b, err := h.dir.Business(r.Context(), id)
	if err != nil {
		if directory.IsNotFound(err) {
			httputil.WriteError(w, r, apperrors.NotFound("tienda", id), h.logger)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: b})
}

// Reviews handles GET /api/tiendas/{id}/resenas.
func (h *APIHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	reviews, err := h.dir.Reviews(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, apperrors.ServiceUnavailable(detail.MsgReviewsDown), h.logger)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ReviewsResponse{
		Reviews:   reviews,
		Aggregate: domain.Aggregate(reviews),
	}})
}

func (h *APIHandler) validateDraft(d domain.ReviewDraft) error {
	if h.commentRequired {
		return validator.Validate(d.Strict())
	}
	return validator.Validate(d)
}

// SubmitReview handles POST /api/tiendas/{id}/resenas. A 202 means the
// directory accepted the review without returning it.
func (h *APIHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var draft domain.ReviewDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("cuerpo JSON inválido"), h.logger)
		return
	}
	draft = draft.Normalize()
	if err := h.validateDraft(draft); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.dir.SubmitReview(r.Context(), id, draft)
	if err != nil {
		var subErr *directory.SubmissionError
		if errors.As(err, &subErr) {
			httputil.WriteError(w, r, subErr.AppError(), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.ServiceUnavailable(directory.MsgReviewFailed), h.logger)
		return
	}
	if review == nil {
		httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// View handles GET /api/tiendas/{id}/vista and returns the browser session's
// detail view snapshot.
func (h *APIHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	session := SessionID(r)
	if session == "" {
		httputil.WriteError(w, r, apperrors.NotFound("vista", id), h.logger)
		return
	}
	v, found := h.views.Lookup(viewKey(session, id))
	if !found || v.ID() != id {
		httputil.WriteError(w, r, apperrors.NotFound("vista", id), h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: v.Snapshot()})
}
