package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/critpath/pkg/errors"
)

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Returns a SESSION_NOT_FOUND error if
	// the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns the live sessions ordered by creation time.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in a map. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %s not found", id)
	}
	if sess.IsExpired() {
		_ = m.Delete(ctx, id)
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %s expired", id)
	}
	return sess, nil
}

func (m *MemoryStore) Set(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	live := out[:0]
	for _, s := range out {
		if !s.IsExpired() {
			live = append(live, s)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].ID < live[j].ID
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})
	return live, nil
}

func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)

// RunJanitor calls Cleanup every interval until ctx is done.
func RunJanitor(ctx context.Context, store Store, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
