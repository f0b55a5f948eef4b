package view

import (
	"time"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/detail"
	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
)

// MenuPage lists the categories.
type MenuPage struct {
	Categories []domain.Category
	Error      string
}

// CategoryPage lists the businesses of one category.
type CategoryPage struct {
	Category   string
	Icon       string
	Businesses []domain.Business
	CountText  string
	Empty      string
	Error      string
}

// DetailPage is the business detail with its reviews.
type DetailPage struct {
	View            detail.Snapshot
	Photo           domain.Photo
	PhotoIndex      int
	HasPhoto        bool
	ShareURL        string
	CommentRequired bool
	Now             time.Time
}

// FlashSeconds is how long the flash stays visible, rounded up.
func (p DetailPage) FlashSeconds() int {
	d := p.View.Flash.Remaining(p.Now)
	return int((d + time.Second - 1) / time.Second)
}

// Loading reports whether the business fetch is still running.
func (p DetailPage) Loading() bool {
	return p.View.State == detail.StateLoading || p.View.State == detail.StateIdle
}

// RegisterPage is the registration form.
type RegisterPage struct {
	Categories   []string
	Form         domain.Registration
	Errors       map[string]string
	Message      string
	Success      bool
	MaxPhotos    int
	FlashSeconds int
}

// ErrorPage is a generic error screen.
type ErrorPage struct {
	Status  int
	Message string
}
