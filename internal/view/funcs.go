package view

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
)

// NotAvailable is shown for a missing registration date.
const NotAvailable = "No disponible"

const whatsappGreeting = "Hola! Estoy contactando desde TiendasApp. Me interesa "

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// WhatsAppLink builds a wa.me link for a Colombian number with a greeting
// naming the business. It returns "" when the phone has no digits.
func WhatsAppLink(phone, name string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	return "https://wa.me/57" + digits + "?text=" + url.QueryEscape(whatsappGreeting+name)
}

// MapsLink builds a Google Maps search link for an address.
func MapsLink(address string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}

// WebsiteLink prefixes https:// when the address has no scheme.
func WebsiteLink(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		return site
	}
	return "https://" + site
}

// Truncate cuts s to limit characters and appends "...".
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

// LongDate formats t like "5 de marzo de 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
}

// RegistrationDate is the business registration date in long form, or
// NotAvailable.
func RegistrationDate(b *domain.Business) string {
	if b == nil {
		return NotAvailable
	}
	t, ok := b.RegistrationDate()
	if !ok {
		return NotAvailable
	}
	return LongDate(t)
}

// Stars renders a rating as filled and empty stars.
func Stars(rating int) string {
	rating = max(min(rating, domain.MaxRating), 0)
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}

// AverageStars renders an aggregate rounded to whole stars.
func AverageStars(a domain.AggregateRating) string {
	if !a.HasAverage() {
		return ""
	}
	return Stars(int(math.Round(*a.Average)))
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"whatsapp":     WhatsAppLink,
		"maps":         MapsLink,
		"website":      WebsiteLink,
		"truncate":     Truncate,
		"longDate":     LongDate,
		"registeredOn": RegistrationDate,
		"stars":        Stars,
		"averageStars": AverageStars,
		"icon":         domain.CategoryIcon,
		"seq":          seq,
		"pathEscape":   url.PathEscape,
		"add":          func(a, b int) int { return a + b },
	}
}
