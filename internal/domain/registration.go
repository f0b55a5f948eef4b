package domain

import (
	"io"
	"strings"
)

// Registration is the form for listing a new business.
type Registration struct {
	Name          string `form:"nombreEstablecimiento" validate:"required" msg:"El nombre del establecimiento es obligatorio"`
	Address       string `form:"direccion" validate:"required" msg:"La dirección es obligatoria"`
	Category      string `form:"categoria" validate:"required" msg:"Debe seleccionar una categoría"`
	WhatsappPhone string `form:"telefonoWhatsapp" validate:"required,mindigits=10" msg_required:"El teléfono de WhatsApp es obligatorio" msg_mindigits:"El teléfono debe tener al menos 10 dígitos"`
	Description   string `form:"descripcionVentas" validate:"required" msg:"La descripción de ventas es obligatoria"`
	Website       string `form:"paginaWeb"`
	SocialLinks   string `form:"redesSociales"`
}

// Normalize trims every field.
func (r Registration) Normalize() Registration {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Category = strings.TrimSpace(r.Category)
	r.WhatsappPhone = strings.TrimSpace(r.WhatsappPhone)
	r.Description = strings.TrimSpace(r.Description)
	r.Website = strings.TrimSpace(r.Website)
	r.SocialLinks = strings.TrimSpace(r.SocialLinks)
	return r
}

// Fields returns the form in wire order, as sent to the directory.
func (r Registration) Fields() [][2]string {
	return [][2]string{
		{"nombreEstablecimiento", r.Name},
		{"direccion", r.Address},
		{"categoria", r.Category},
		{"telefonoWhatsapp", r.WhatsappPhone},
		{"descripcionVentas", r.Description},
		{"paginaWeb", r.Website},
		{"redesSociales", r.SocialLinks},
	}
}

// Upload is one photo attached to a registration.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}
