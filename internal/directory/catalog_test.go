package directory

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"plain names", `["Mascotas","Pizzerías"]`, []string{"Mascotas", "Pizzerías"}},
		{"objects", `[{"nombre":"SPA"},{"name":"Ópticas"},{"otro":1}]`, []string{"SPA", "Ópticas"}},
		{"envelope", `{"data":["Gimnasios"," "]}`, []string{"Gimnasios"}},
		{"null", `null`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			base := fakeAPI(t, "A", "/api", rec, jsonReply(http.StatusOK, tt.body))

			got, err := newTestClient(t, base).Categories(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"A GET /api/categorias"}, rec.Hits())
		})
	}
}

func TestCategories_FallsBack(t *testing.T) {
	rec := &recorder{}
	first := fakeAPI(t, "A", "/api", rec, jsonReply(http.StatusOK, `{"unexpected":true}`))
	second := fakeAPI(t, "B", "", rec, jsonReply(http.StatusOK, `["Mascotas"]`))

	got, err := newTestClient(t, first, second).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Mascotas"}, got)
	assert.Len(t, rec.Hits(), 2)
}

func TestByCategory(t *testing.T) {
	rec := &recorder{}
	base := fakeAPI(t, "A", "/api", rec, jsonReply(http.StatusOK, `[
		{"_id":"b1","nombreEstablecimiento":"La Espiga","fotos":["https://img/1.jpg"]},
		{"nombreEstablecimiento":"sin id"},
		{"id":42,"nombreEstablecimiento":"Numérica"}
	]`))

	got, err := newTestClient(t, base).ByCategory(context.Background(), "Comidas y Restaurantes")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, "https://img/1.jpg", got[0].Photos[0].URL)
	assert.Equal(t, "42", got[1].ID)
	assert.Equal(t, []string{"A GET /api/tiendas/categoria/Comidas y Restaurantes"}, rec.Hits())
}
