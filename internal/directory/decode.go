package directory

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
)

// record is a loosely typed JSON object. The directory backend has renamed
// fields across deployments, so every accessor takes a list of aliases.
type record map[string]json.RawMessage

var (
	envelopeKeys    = []string{"data", "tienda", "review", "resena", "reseña", "result"}
	listKeys        = []string{"data", "tiendas", "reviews", "resenas", "reseñas", "categorias", "items", "results"}
	notFoundOnlyKey = map[string]bool{"error": true, "message": true, "msg": true, "mensaje": true}
)

func isNull(body []byte) bool {
	b := bytes.TrimSpace(body)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func parseRecord(raw []byte) (record, bool) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return nil, false
	}
	return rec, true
}

// unwrap descends into a single-object envelope such as {"data": {...}}
// when the outer object carries no id of its own.
func (r record) unwrap(idFields []string) record {
	if r.id(idFields) != "" {
		return r
	}
	for _, k := range envelopeKeys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		if inner, ok := parseRecord(raw); ok {
			return inner
		}
	}
	return r
}

// empty reports whether the object holds nothing but an error notice or
// null envelopes, as in {"message": "no existe"} or {"data": null}.
func (r record) empty() bool {
	for k, raw := range r {
		if notFoundOnlyKey[k] {
			continue
		}
		if slices.Contains(envelopeKeys, k) && isNull(raw) {
			continue
		}
		return false
	}
	return true
}

func (r record) has(keys ...string) bool {
	for _, k := range keys {
		if raw, ok := r[k]; ok && !isNull(raw) {
			return true
		}
	}
	return false
}

func (r record) str(keys ...string) string {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			return n.String()
		}
	}
	return ""
}

func (r record) id(fields []string) string {
	return r.str(fields...)
}

func (r record) integer(keys ...string) int {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok || isNull(raw) {
			continue
		}
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return int(math.Round(f))
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return int(math.Round(f))
			}
		}
	}
	return 0
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func (r record) time(keys ...string) *time.Time {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
					return &t
				}
			}
			continue
		}
		var ms int64
		if json.Unmarshal(raw, &ms) == nil && ms > 0 {
			t := time.UnixMilli(ms).UTC()
			return &t
		}
	}
	return nil
}

// photos accepts [{"url": ...}] as well as a plain list of URLs.
func (r record) photos(keys ...string) []domain.Photo {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok || isNull(raw) {
			continue
		}
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			continue
		}
		out := make([]domain.Photo, 0, len(items))
		for _, item := range items {
			var s string
			if json.Unmarshal(item, &s) == nil {
				if s != "" {
					out = append(out, domain.Photo{URL: s})
				}
				continue
			}
			if rec, ok := parseRecord(item); ok {
				if u := rec.str("url", "secure_url", "src"); u != "" {
					out = append(out, domain.Photo{URL: u})
				}
			}
		}
		return out
	}
	return nil
}

// list returns the elements of a JSON array, or of the first array found
// under a known envelope key. ok is false for anything else.
func list(body []byte) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return items, true
	}
	rec, ok := parseRecord(body)
	if !ok {
		return nil, false
	}
	for _, k := range listKeys {
		raw, present := rec[k]
		if !present {
			continue
		}
		if isNull(raw) {
			return nil, true
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, true
		}
	}
	return nil, false
}

func businessFrom(rec record, idFields []string) domain.Business {
	return domain.Business{
		ID:            rec.id(idFields),
		Name:          rec.str("nombreEstablecimiento", "nombre", "name"),
		Category:      rec.str("categoria", "category"),
		Description:   rec.str("descripcionVentas", "descripcion", "description"),
		Address:       rec.str("direccion", "address"),
		WhatsappPhone: rec.str("telefonoWhatsapp", "whatsapp", "telefono", "phone"),
		Website:       rec.str("paginaWeb", "website", "web"),
		SocialLinks:   rec.str("redesSociales", "socialLinks", "redes"),
		Photos:        rec.photos("fotos", "photos", "imagenes"),
		RegisteredAt:  rec.time("fechaCreacion"),
		CreatedAt:     rec.time("createdAt"),
	}
}

// decodeBusiness classifies a 2xx body of GET /tiendas/{id}. An empty body,
// null, {} or a bare error notice is a well-formed not-found; any other
// object without an id is malformed.
func decodeBusiness(body []byte, idFields []string) (domain.Business, Outcome) {
	if isNull(body) {
		return domain.Business{}, OutcomeNotFound
	}
	rec, ok := parseRecord(body)
	if !ok {
		return domain.Business{}, OutcomeMalformed
	}
	if rec.empty() {
		return domain.Business{}, OutcomeNotFound
	}
	rec = rec.unwrap(idFields)
	if rec.empty() {
		return domain.Business{}, OutcomeNotFound
	}
	b := businessFrom(rec, idFields)
	if b.ID == "" {
		return domain.Business{}, OutcomeMalformed
	}
	return b, OutcomeOK
}

// decodeBusinessList decodes a category listing. Entries without an id
// cannot be linked to and are dropped.
func decodeBusinessList(body []byte, idFields []string) ([]domain.Business, int, Outcome) {
	if isNull(body) {
		return []domain.Business{}, 0, OutcomeOK
	}
	items, ok := list(body)
	if !ok {
		return nil, 0, OutcomeMalformed
	}
	out := make([]domain.Business, 0, len(items))
	dropped := 0
	for _, item := range items {
		rec, ok := parseRecord(item)
		if !ok {
			dropped++
			continue
		}
		b := businessFrom(rec, idFields)
		if b.ID == "" {
			dropped++
			continue
		}
		out = append(out, b)
	}
	return out, dropped, OutcomeOK
}

func reviewFrom(rec record) domain.Review {
	return domain.Review{
		ID:          rec.str("_id", "id"),
		Rating:      rec.integer("rating", "calificacion", "puntuacion", "estrellas"),
		Comment:     rec.str("comment", "comentario", "texto"),
		Author:      rec.str("author", "autor", "nombre", "usuario"),
		SubmittedAt: rec.time("submittedAt", "createdAt", "fecha", "fechaCreacion"),
	}
}

// decodeReviews decodes a review collection in API order. Elements that are
// not objects are skipped; everything else is kept as-is.
func decodeReviews(body []byte) ([]domain.Review, Outcome) {
	if isNull(body) {
		return []domain.Review{}, OutcomeOK
	}
	items, ok := list(body)
	if !ok {
		return nil, OutcomeMalformed
	}
	out := make([]domain.Review, 0, len(items))
	for _, item := range items {
		if rec, ok := parseRecord(item); ok {
			out = append(out, reviewFrom(rec))
		}
	}
	return out, OutcomeOK
}

// decodeCreatedReview extracts the review echoed by a successful submission.
func decodeCreatedReview(body []byte) (domain.Review, bool) {
	rec, ok := parseRecord(body)
	if !ok {
		return domain.Review{}, false
	}
	if !rec.has("rating", "calificacion", "puntuacion", "estrellas") {
		for _, k := range envelopeKeys {
			if inner, ok := parseRecord(rec[k]); ok {
				rec = inner
				break
			}
		}
	}
	r := reviewFrom(rec)
	if r.Rating < domain.MinRating || r.Rating > domain.MaxRating {
		return domain.Review{}, false
	}
	return r, true
}

// decodeCategories accepts a list of names or of objects carrying a name.
func decodeCategories(body []byte) ([]string, Outcome) {
	if isNull(body) {
		return []string{}, OutcomeOK
	}
	items, ok := list(body)
	if !ok {
		return nil, OutcomeMalformed
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		if rec, ok := parseRecord(item); ok {
			if name := rec.str("nombre", "name", "categoria"); name != "" {
				out = append(out, name)
			}
		}
	}
	return out, OutcomeOK
}
