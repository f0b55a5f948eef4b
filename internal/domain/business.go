package domain

import (
	"time"
)

// Photo is one image of a business, in gallery order.
type Photo struct {
	URL string `json:"url"`
}

// Business is a directory listing ("tienda"). It is read-only for the front-end.
type Business struct {
	ID            string     `json:"_id"`
	Name          string     `json:"nombreEstablecimiento"`
	Category      string     `json:"categoria"`
	Description   string     `json:"descripcionVentas"`
	Address       string     `json:"direccion"`
	WhatsappPhone string     `json:"telefonoWhatsapp"`
	Website       string     `json:"paginaWeb,omitempty"`
	SocialLinks   string     `json:"redesSociales,omitempty"`
	Photos        []Photo    `json:"fotos"`
	RegisteredAt  *time.Time `json:"fechaCreacion,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// RegistrationDate returns fechaCreacion, falling back to createdAt.
func (b *Business) RegistrationDate() (time.Time, bool) {
	if b.RegisteredAt != nil && !b.RegisteredAt.IsZero() {
		return *b.RegisteredAt, true
	}
	if b.CreatedAt != nil && !b.CreatedAt.IsZero() {
		return *b.CreatedAt, true
	}
	return time.Time{}, false
}

// Photo returns the photo at index i, clamped to the gallery bounds.
func (b *Business) Photo(i int) (Photo, int, bool) {
	if len(b.Photos) == 0 {
		return Photo{}, 0, false
	}
	if i < 0 || i >= len(b.Photos) {
		i = 0
	}
	return b.Photos[i], i, true
}
