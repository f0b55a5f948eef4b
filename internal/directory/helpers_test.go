package directory

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recorder logs every request reaching any fake API, tagged by server name,
// so tests can assert the exact order of a fallback walk.
type recorder struct {
	mu   sync.Mutex
	hits []string
}

func (r *recorder) record(name string, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, name+" "+req.Method+" "+req.URL.Path)
}

func (r *recorder) Hits() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.hits...)
}

// fakeAPI starts a server playing the directory under prefix (for example
// "/api") and returns its base URL.
func fakeAPI(t *testing.T, name, prefix string, rec *recorder, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(name, r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + prefix
}

// deadBase returns the URL of a server that is no longer listening.
func deadBase(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func jsonReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func testContract(bases ...string) Contract {
	c := DefaultContract()
	c.Bases = bases
	c.AttemptTimeout = 2 * time.Second
	c.UploadTimeout = 2 * time.Second
	return c
}

func newTestClient(t *testing.T, bases ...string) *Client {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	c, err := New(testContract(bases...), cfg, nil, testLogger())
	require.NoError(t, err)
	return c
}
