package detail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRegistry(now *time.Time, max int) *Registry {
	return NewRegistry(seeded(), RegistryConfig{
		TTL:      time.Minute,
		MaxViews: max,
		Options:  Options{Now: func() time.Time { return *now }},
	}, testLogger())
}

func TestRegistry_GetReturnsSameView(t *testing.T) {
	now := time.Now()
	r := testRegistry(&now, 10)

	a := r.Get("s1")
	assert.Same(t, a, r.Get("s1"))
	assert.NotSame(t, a, r.Get("s2"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ExpiredViewIsReplaced(t *testing.T) {
	now := time.Now()
	r := testRegistry(&now, 10)

	a := r.Get("s1")
	now = now.Add(2 * time.Minute)
	_, ok := r.Lookup("s1")
	assert.False(t, ok)
	assert.NotSame(t, a, r.Get("s1"))
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Now()
	r := testRegistry(&now, 2)

	r.Get("s1")
	now = now.Add(time.Second)
	r.Get("s2")
	now = now.Add(time.Second)
	r.Get("s1")
	now = now.Add(time.Second)
	r.Get("s3")

	assert.Equal(t, 2, r.Len())
	_, ok := r.Lookup("s2")
	assert.False(t, ok)
	_, ok = r.Lookup("s1")
	assert.True(t, ok)
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Now()
	r := testRegistry(&now, 10)
	r.Get("s1")
	now = now.Add(30 * time.Second)
	r.Get("s2")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	now := time.Now()
	r := testRegistry(&now, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
