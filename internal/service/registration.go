package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	apperrors "github.com/alfredfullstack2024/tiendasappfrontend/pkg/errors"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/validator"
)

// MsgRegistered is shown after a successful registration.
const MsgRegistered = "¡Tienda registrada exitosamente!"

// MsgUnknownCategory is the validation message for a category that is not
// offered by the directory.
const MsgUnknownCategory = "Debe seleccionar una categoría válida"

// RegistrationDirectory is the part of the directory client registration uses.
type RegistrationDirectory interface {
	Categories(ctx context.Context) ([]string, error)
	Register(ctx context.Context, reg domain.Registration, photos []domain.Upload) (*domain.Business, error)
}

// RegistrationEvents is notified about new businesses.
type RegistrationEvents interface {
	PublishBusinessRegistered(ctx context.Context, b *domain.Business) error
}

// RegistrationService validates and forwards new business registrations.
type RegistrationService struct {
	dir       RegistrationDirectory
	events    RegistrationEvents
	maxPhotos int
	logger    *slog.Logger
}

// NewRegistrationService creates a new registration service. Photos beyond
// maxPhotos are dropped.
func NewRegistrationService(dir RegistrationDirectory, events RegistrationEvents, maxPhotos int, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{
		dir:       dir,
		events:    events,
		maxPhotos: maxPhotos,
		logger:    logger,
	}
}

// Validate checks the form locally. A non-empty category list restricts the
// category to one of its entries.
func (s *RegistrationService) Validate(reg domain.Registration, categories []string) error {
	if err := validator.Validate(reg); err != nil {
		return err
	}
	if len(categories) > 0 && !slices.Contains(categories, reg.Category) {
		return validator.NewFieldError("categoria", MsgUnknownCategory)
	}
	return nil
}

// Register validates reg and posts it with at most maxPhotos photos. A nil
// business with a nil error means the directory accepted the form without
// echoing a record.
func (s *RegistrationService) Register(ctx context.Context, reg domain.Registration, photos []domain.Upload) (*domain.Business, error) {
	reg = reg.Normalize()
	log := logger.WithContext(ctx, s.logger)

	categories, err := s.dir.Categories(ctx)
	if err != nil {
		log.WarnContext(ctx, "categories unavailable, skipping category check",
			slog.String("error", err.Error()),
		)
		categories = nil
	}
	if err := s.Validate(reg, categories); err != nil {
		return nil, err
	}

	if s.maxPhotos >= 0 && len(photos) > s.maxPhotos {
		log.InfoContext(ctx, "dropping extra photos",
			slog.Int("received", len(photos)),
			slog.Int("max", s.maxPhotos),
		)
		photos = photos[:s.maxPhotos]
	}

	b, err := s.dir.Register(ctx, reg, photos)
	if err != nil {
		return nil, err
	}

	if s.events != nil && b != nil {
		if err := s.events.PublishBusinessRegistered(ctx, b); err != nil {
			log.WarnContext(ctx, "registration event dropped",
				slog.String("business_id", b.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return b, nil
}

// Categories returns the category names offered in the registration form.
func (s *RegistrationService) Categories(ctx context.Context) ([]string, error) {
	names, err := s.dir.Categories(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "registration categories")
	}
	return names, nil
}
