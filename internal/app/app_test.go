package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewApp_Wires(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg, err := config.LoadFrom(map[string]string{"DIRECTORY_API_BASES": srv.URL + "/api," + srv.URL})
	require.NoError(t, err)

	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, a.httpServer.Handler)
	assert.Nil(t, a.kafka)
	require.NoError(t, a.Shutdown())
}

func TestNewDirectoryClient(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"DIRECTORY_API_BASES": "http://localhost:1/api"})
	require.NoError(t, err)

	c, err := NewDirectoryClient(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:1/api"}, c.Contract().Bases)
}

func TestDialBase(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	assert.NoError(t, dialBase(context.Background(), srv.URL+"/api"))
	srv.Close()
	assert.Error(t, dialBase(context.Background(), srv.URL+"/api"))
}
