package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
)

// User-facing catalog messages.
const (
	MsgCategoryEmpty  = "Aún no hay negocios en esta categoría"
	MsgCategoryFailed = "Error cargando las tiendas. Intenta nuevamente."
	MsgMenuFailed     = "Error cargando las categorías. Intenta nuevamente."
)

// CatalogDirectory is the part of the directory client the catalog reads.
type CatalogDirectory interface {
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]domain.Business, error)
}

// CatalogService serves the menu and category listings.
type CatalogService struct {
	dir    CatalogDirectory
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(dir CatalogDirectory, logger *slog.Logger) *CatalogService {
	return &CatalogService{dir: dir, logger: logger}
}

// Listing is one category page.
type Listing struct {
	Category   string            `json:"category"`
	Icon       string            `json:"icon"`
	Businesses []domain.Business `json:"businesses"`
}

// CountText is "1 negocio encontrado" or "N negocios encontrados".
func (l Listing) CountText() string {
	return CountText(len(l.Businesses))
}

// CountText formats a number of businesses.
func CountText(n int) string {
	if n == 1 {
		return "1 negocio encontrado"
	}
	return fmt.Sprintf("%d negocios encontrados", n)
}

// Categories returns the menu categories with their icons.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	names, err := s.dir.Categories(ctx)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "categories unavailable",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return domain.NewCategories(names), nil
}

// ByCategory lists the businesses of one category.
func (s *CatalogService) ByCategory(ctx context.Context, category string) (*Listing, error) {
	category = strings.TrimSpace(category)
	businesses, err := s.dir.ByCategory(ctx, category)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "category listing unavailable",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return &Listing{
		Category:   category,
		Icon:       domain.CategoryIcon(category),
		Businesses: businesses,
	}, nil
}
