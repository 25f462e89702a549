package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/critpath/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := New("Plan", DefaultTTL)
	require.NoError(t, store.Set(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = store.Get(ctx, "missing")
	assert.True(t, errs.Is(err, errs.ErrCodeSessionNotFound))

	require.NoError(t, store.Delete(ctx, s.ID))
	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.True(t, errs.Is(err, errs.ErrCodeSessionNotFound))
}

func expiredSession(t *testing.T) *Session {
	t.Helper()
	s := New("old", time.Minute)
	past := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return past }
	s.touch()
	s.now = time.Now
	return s
}

func TestMemoryStoreExpiredGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := expiredSession(t)
	require.NoError(t, store.Set(ctx, old))

	_, err := store.Get(ctx, old.ID)
	assert.True(t, errs.Is(err, errs.ErrCodeSessionNotFound))
	assert.Equal(t, 0, store.Len(), "expired session should be dropped on access")
}

func TestMemoryStoreCleanupAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live := New("live", DefaultTTL)
	forever := New("forever", 0)
	require.NoError(t, store.Set(ctx, expiredSession(t)))
	require.NoError(t, store.Set(ctx, live))
	require.NoError(t, store.Set(ctx, forever))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	removed, err := store.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, store.Len())
}

func TestRunJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, expiredSession(t)))

	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, store, 5*time.Millisecond, log.New(io.Discard))
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
