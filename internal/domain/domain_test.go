package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/validator"
)

func ratings(rs ...int) []Review {
	out := make([]Review, 0, len(rs))
	for _, r := range rs {
		out = append(out, Review{Rating: r})
	}
	return out
}

// ============================================================================
// Aggregate
// ============================================================================

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		reviews []Review
		average float64
		text    string
	}{
		{"two reviews", ratings(4, 2), 3.0, "3.0"},
		{"three reviews rounds up", ratings(4, 2, 5), 3.7, "3.7"},
		{"single review", ratings(5), 5.0, "5.0"},
		{"rounds down", ratings(5, 4, 4), 4.3, "4.3"},
		{"all ones", ratings(1, 1, 1, 1), 1.0, "1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(tt.reviews)
			require.True(t, agg.HasAverage())
			assert.Equal(t, len(tt.reviews), agg.Count)
			assert.InDelta(t, tt.average, *agg.Average, 1e-9)
			assert.Equal(t, tt.text, agg.AverageText())
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Equal(t, 0, agg.Count)
	assert.Nil(t, agg.Average)
	assert.False(t, agg.HasAverage())
	assert.Empty(t, agg.AverageText())
}

// ============================================================================
// Review drafts
// ============================================================================

func TestReviewDraft_Validation(t *testing.T) {
	for _, rating := range []int{0, -1, 6} {
		err := validator.Validate(ReviewDraft{Rating: rating, Comment: "bien"})
		var valErr *validator.ValidationError
		require.ErrorAs(t, err, &valErr, "rating %d", rating)
		assert.Equal(t, "Selecciona al menos una estrella", valErr.First())
	}

	assert.NoError(t, validator.Validate(ReviewDraft{Rating: 3}))
}

func TestReviewDraft_StrictRequiresComment(t *testing.T) {
	d := ReviewDraft{Rating: 4, Comment: "   "}.Normalize()

	err := validator.Validate(d.Strict())
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Escribe un comentario", valErr.First())

	assert.NoError(t, validator.Validate(ReviewDraft{Rating: 4, Comment: "great"}.Strict()))
}

func TestReviewDraft_LongCommentAccepted(t *testing.T) {
	assert.NoError(t, validator.Validate(ReviewDraft{Rating: 4, Comment: strings.Repeat("a", 5000)}))
	assert.NoError(t, validator.Validate(ReviewDraft{Rating: 4, Comment: strings.Repeat("a", 5000)}.Strict()))
}

func TestReviewDraft_IsEmpty(t *testing.T) {
	assert.True(t, ReviewDraft{}.IsEmpty())
	assert.False(t, ReviewDraft{Comment: "x"}.IsEmpty())
	assert.False(t, ReviewDraft{Rating: 2}.IsEmpty())
}

// ============================================================================
// Categories
// ============================================================================

func TestCategoryIcon(t *testing.T) {
	assert.Equal(t, "🍕", CategoryIcon("Pizzerías"))
	assert.Equal(t, "🧘", CategoryIcon("SPA"))
	assert.Equal(t, DefaultCategoryIcon, CategoryIcon("Ferreterías"))
	assert.Equal(t, DefaultCategoryIcon, CategoryIcon(""))
	assert.Len(t, categoryIcons, 18)
}

func TestNewCategories_PreservesOrder(t *testing.T) {
	cats := NewCategories([]string{"Mascotas", "Ferreterías"})
	assert.Equal(t, []Category{
		{Name: "Mascotas", Icon: "🐱"},
		{Name: "Ferreterías", Icon: "🏪"},
	}, cats)
}

// ============================================================================
// Business
// ============================================================================

func TestBusiness_RegistrationDate(t *testing.T) {
	reg := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	b := &Business{RegisteredAt: &reg, CreatedAt: &created}
	got, ok := b.RegistrationDate()
	assert.True(t, ok)
	assert.Equal(t, reg, got)

	b = &Business{CreatedAt: &created}
	got, ok = b.RegistrationDate()
	assert.True(t, ok)
	assert.Equal(t, created, got)

	_, ok = (&Business{}).RegistrationDate()
	assert.False(t, ok)
}

func TestBusiness_Photo(t *testing.T) {
	b := &Business{Photos: []Photo{{URL: "a.jpg"}, {URL: "b.jpg"}}}

	p, i, ok := b.Photo(1)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, "b.jpg", p.URL)

	p, i, _ = b.Photo(7)
	assert.Equal(t, 0, i)
	assert.Equal(t, "a.jpg", p.URL)

	_, _, ok = (&Business{}).Photo(0)
	assert.False(t, ok)
}

// ============================================================================
// Registration
// ============================================================================

func validRegistration() Registration {
	return Registration{
		Name:          "Panadería La Espiga",
		Address:       "Cra 7 # 12-34",
		Category:      "Pastelerías",
		WhatsappPhone: "300 123 4567",
		Description:   "Pan artesanal",
	}
}

func TestRegistration_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
		want   string
	}{
		{"name", func(r *Registration) { r.Name = "  " }, "El nombre del establecimiento es obligatorio"},
		{"address", func(r *Registration) { r.Address = "" }, "La dirección es obligatoria"},
		{"category", func(r *Registration) { r.Category = "" }, "Debe seleccionar una categoría"},
		{"phone missing", func(r *Registration) { r.WhatsappPhone = "" }, "El teléfono de WhatsApp es obligatorio"},
		{"phone short", func(r *Registration) { r.WhatsappPhone = "300-123" }, "El teléfono debe tener al menos 10 dígitos"},
		{"description", func(r *Registration) { r.Description = "\t" }, "La descripción de ventas es obligatoria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)
			err := validator.Validate(r.Normalize())
			var valErr *validator.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.want, valErr.First())
		})
	}

	assert.NoError(t, validator.Validate(validRegistration().Normalize()))
}

func TestRegistration_FieldsWireOrder(t *testing.T) {
	fields := validRegistration().Fields()
	require.Len(t, fields, 7)
	assert.Equal(t, "nombreEstablecimiento", fields[0][0])
	assert.Equal(t, "Panadería La Espiga", fields[0][1])
	assert.Equal(t, "redesSociales", fields[6][0])
}
