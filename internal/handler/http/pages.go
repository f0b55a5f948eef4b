package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/detail"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/directory"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/service"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/view"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httputil"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/validator"
)

// PageConfig tunes the server-rendered pages.
type PageConfig struct {
	PageWait        time.Duration
	SessionTTL      time.Duration
	FlashTTL        time.Duration
	CommentRequired bool
	MaxPhotos       int
	MaxUploadBytes  int64
}

// PageHandler serves the HTML pages.
type PageHandler struct {
	catalog      *service.CatalogService
	registration *service.RegistrationService
	views        *detail.Registry
	render       *view.Renderer
	cfg          PageConfig
	logger       *slog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(
	catalog *service.CatalogService,
	registration *service.RegistrationService,
	views *detail.Registry,
	render *view.Renderer,
	cfg PageConfig,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		catalog:      catalog,
		registration: registration,
		views:        views,
		render:       render,
		cfg:          cfg,
		logger:       logger,
	}
}

func (h *PageHandler) log(r *http.Request) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		return h.logger
	}
	return l
}

func (h *PageHandler) page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.render.Render(w, status, name, data); err != nil {
		h.log(r).ErrorContext(r.Context(), "render page failed",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "error interno", http.StatusInternalServerError)
	}
}

// Menu handles GET /.
func (h *PageHandler) Menu(w http.ResponseWriter, r *http.Request) {
	data := view.MenuPage{Categories: []domain.Category{}}
	status := http.StatusOK

	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		data.Error = service.MsgMenuFailed
		status = http.StatusServiceUnavailable
	} else {
		data.Categories = cats
	}
	h.page(w, r, status, view.PageMenu, data)
}

// Category handles GET /categoria/{categoria}.
func (h *PageHandler) Category(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "categoria")
	data := view.CategoryPage{
		Category: category,
		Icon:     domain.CategoryIcon(category),
		Empty:    service.MsgCategoryEmpty,
	}

	listing, err := h.catalog.ByCategory(r.Context(), category)
	if err != nil {
		data.Error = service.MsgCategoryFailed
		h.page(w, r, http.StatusServiceUnavailable, view.PageCategory, data)
		return
	}

	data.Businesses = listing.Businesses
	data.CountText = listing.CountText()
	h.page(w, r, http.StatusOK, view.PageCategory, data)
}

// waitFunc is detail.Pending.Wait or detail.Pending.WaitBusiness.
type waitFunc func(detail.Pending, context.Context) error

// openView returns the view showing id for this session, waiting up to
// PageWait for the fetches named by until to land.
func (h *PageHandler) openView(w http.ResponseWriter, r *http.Request, id string, until waitFunc) *detail.View {
	session := ensureSession(w, r, h.cfg.SessionTTL)
	key := viewKey(session, id)
	v := h.views.Get(key)
	ctx := logger.WithViewID(r.Context(), key)
	h.wait(ctx, v.Open(ctx, id), until)
	return v
}

func (h *PageHandler) wait(ctx context.Context, p detail.Pending, until waitFunc) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.PageWait)
	defer cancel()
	// A timeout only means the page renders its loading state.
	_ = until(p, ctx)
}

func (h *PageHandler) detailPage(r *http.Request, snap detail.Snapshot) view.DetailPage {
	data := view.DetailPage{
		View:            snap,
		ShareURL:        shareURL(r, snap.ID),
		CommentRequired: h.cfg.CommentRequired,
		Now:             time.Now(),
	}
	if snap.Business != nil {
		idx, _ := strconv.Atoi(r.URL.Query().Get("foto"))
		data.Photo, data.PhotoIndex, data.HasPhoto = snap.Business.Photo(idx)
	}
	return data
}

func detailStatus(s detail.LoadState) int {
	switch s {
	case detail.StateNotFound:
		return http.StatusNotFound
	case detail.StateError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func shareURL(r *http.Request, id string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/tienda/" + id}
	return u.String()
}

func (h *PageHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusNotFound, view.PageError, view.ErrorPage{
		Status:  http.StatusNotFound,
		Message: detail.MsgNotFound,
	})
}

// Detail handles GET /tienda/{id}.
func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}

	snap := h.openView(w, r, id, detail.Pending.WaitBusiness).Snapshot()
	h.page(w, r, detailStatus(snap.State), view.PageDetail, h.detailPage(r, snap))
}

// Retry handles POST /tienda/{id}/reintentar.
func (h *PageHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}

	key := viewKey(ensureSession(w, r, h.cfg.SessionTTL), id)
	v := h.views.Get(key)
	ctx := logger.WithViewID(r.Context(), key)
	if v.ID() == id {
		if p, err := v.Retry(ctx); err == nil {
			h.wait(ctx, p, detail.Pending.WaitBusiness)
		}
	} else {
		h.wait(ctx, v.Open(ctx, id), detail.Pending.WaitBusiness)
	}
	http.Redirect(w, r, "/tienda/"+url.PathEscape(id), http.StatusSeeOther)
}

// Reviews handles GET /tienda/{id}/resenas and returns the reviews fragment.
func (h *PageHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}

	snap := h.openView(w, r, id, detail.Pending.Wait).Snapshot()
	if err := h.render.RenderFragment(w, detailStatus(snap.State), h.detailPage(r, snap)); err != nil {
		h.log(r).ErrorContext(r.Context(), "render reviews failed", slog.String("error", err.Error()))
		http.Error(w, "error interno", http.StatusInternalServerError)
	}
}

// SubmitReview handles POST /tienda/{id}/resenas. The outcome is shown after
// the redirect: a cleared form and success message, or the kept draft and
// the reason it was refused.
func (h *PageHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.page(w, r, http.StatusBadRequest, view.PageError, view.ErrorPage{
			Status:  http.StatusBadRequest,
			Message: "Formulario inválido",
		})
		return
	}

	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	draft := domain.ReviewDraft{Rating: rating, Comment: r.PostFormValue("comment")}

	v := h.openView(w, r, id, detail.Pending.WaitBusiness)
	if _, err := v.Submit(r.Context(), draft); err != nil && errors.Is(err, detail.ErrNotReady) {
		v.Compose(draft)
	}

	http.Redirect(w, r, "/tienda/"+url.PathEscape(id)+"#resenas", http.StatusSeeOther)
}

// DismissFlash handles POST /tienda/{id}/aviso, the close button of the
// flash message. Only the flash named by the "seq" field is cleared.
func (h *PageHandler) DismissFlash(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}

	seq, err := strconv.ParseUint(r.PostFormValue("seq"), 10, 64)
	if v, ok := h.views.Lookup(viewKey(SessionID(r), id)); ok && err == nil && v.ID() == id {
		v.DismissFlash(seq)
	}
	http.Redirect(w, r, "/tienda/"+url.PathEscape(id)+"#resenas", http.StatusSeeOther)
}

// RegisterForm handles GET /registro.
func (h *PageHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, view.PageRegister, h.registerPage(r.Context()))
}

func (h *PageHandler) registerPage(ctx context.Context) view.RegisterPage {
	cats, err := h.registration.Categories(ctx)
	if err != nil {
		cats = []string{}
	}
	return view.RegisterPage{
		Categories:   cats,
		MaxPhotos:    h.cfg.MaxPhotos,
		FlashSeconds: int((h.cfg.FlashTTL + time.Second - 1) / time.Second),
	}
}

// Register handles POST /registro (multipart/form-data).
func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	data := h.registerPage(r.Context())

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		data.Message = "Las fotos superan el tamaño permitido"
		h.page(w, r, http.StatusRequestEntityTooLarge, view.PageRegister, data)
		return
	}

	reg := domain.Registration{
		Name:          r.FormValue("nombreEstablecimiento"),
		Address:       r.FormValue("direccion"),
		Category:      r.FormValue("categoria"),
		WhatsappPhone: r.FormValue("telefonoWhatsapp"),
		Description:   r.FormValue("descripcionVentas"),
		Website:       r.FormValue("paginaWeb"),
		SocialLinks:   r.FormValue("redesSociales"),
	}
	data.Form = reg

	photos, closeAll, err := formPhotos(r, h.cfg.MaxPhotos)
	defer closeAll()
	if err != nil {
		data.Message = directory.MsgRegistrationFailed
		h.page(w, r, http.StatusBadRequest, view.PageRegister, data)
		return
	}

	_, err = h.registration.Register(r.Context(), reg, photos)
	if err != nil {
		status, msg, fields := registrationFailure(err)
		data.Message, data.Errors = msg, fields
		h.page(w, r, status, view.PageRegister, data)
		return
	}

	data.Form = domain.Registration{}
	data.Success = true
	data.Message = service.MsgRegistered
	h.page(w, r, http.StatusOK, view.PageRegister, data)
}

func formPhotos(r *http.Request, limit int) ([]domain.Upload, func(), error) {
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}
	if r.MultipartForm == nil {
		return nil, closeAll, nil
	}

	var photos []domain.Upload
	for _, fh := range r.MultipartForm.File["fotos"] {
		if len(photos) == limit {
			break
		}
		if fh.Size == 0 && strings.TrimSpace(fh.Filename) == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, f.Close)
		photos = append(photos, domain.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return photos, closeAll, nil
}

func registrationFailure(err error) (int, string, map[string]string) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, valErr.First(), valErr.Fields()
	}
	var subErr *directory.SubmissionError
	if errors.As(err, &subErr) {
		status := http.StatusBadGateway
		if subErr.Rejected() {
			status = http.StatusUnprocessableEntity
		}
		return status, subErr.Message, nil
	}
	return http.StatusBadGateway, directory.MsgRegistrationFailed, nil
}
