// Package session provides in-memory editing sessions over activity
// networks.
//
// A [Session] owns one network and serializes every mutation and
// calculation behind a mutex, so concurrent HTTP requests against the same
// session observe a consistent network and a calculation never sees a
// half-applied edit. Sessions live in a [Store] until they are deleted or
// expire; nothing is written to disk.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New("Relaunch", session.DefaultTTL)
//	_ = store.Set(ctx, sess)
//
//	a, err := sess.AddActivity(ctx, "Design", 3)
//	err = sess.Connect(ctx, network.StartID, a.ID)
//	res, err := sess.Calculate(ctx)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/network"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/project"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Session is one editable network.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu        sync.Mutex
	net       *network.Network
	keys      map[network.ID]string
	paths     [][]network.ID
	ttl       time.Duration
	expiresAt time.Time
	now       func() time.Time
}

// New creates a session holding a fresh network. A ttl of zero means the
// session never expires.
func New(name string, ttl time.Duration) *Session {
	return newSession(name, network.New(), ttl)
}

// FromProject creates a session holding a network built from a project file.
// The session remembers the key each activity was declared under.
func FromProject(p *project.Project, ttl time.Duration) *Session {
	s := newSession(p.Name, p.Network, ttl)
	s.keys = p.KeysByID()
	return s
}

func newSession(name string, n *network.Network, ttl time.Duration) *Session {
	s := &Session{
		ID:   uuid.NewString(),
		Name: name,
		net:  n,
		ttl:  ttl,
		now:  time.Now,
	}
	s.CreatedAt = s.now()
	s.touch()
	return s
}

// touch extends the expiry. Callers hold mu or own s exclusively.
func (s *Session) touch() {
	if s.ttl > 0 {
		s.expiresAt = s.now().Add(s.ttl)
	}
}

// IsExpired reports whether the session has been idle longer than its TTL.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl > 0 && s.now().After(s.expiresAt)
}

// ExpiresAt returns when the session expires if left idle. Zero if never.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// AddActivity adds a disconnected activity and returns a copy of it.
func (s *Session) AddActivity(ctx context.Context, label string, duration float64) (network.Activity, error) {
	var out network.Activity
	err := s.mutate(ctx, "add_activity", func(n *network.Network) error {
		a, err := n.AddActivity(label, duration)
		if err != nil {
			return err
		}
		out = *a
		return nil
	})
	return out, err
}

// Connect adds the edge from→to.
func (s *Session) Connect(ctx context.Context, from, to network.ID) error {
	return s.mutate(ctx, "connect", func(n *network.Network) error {
		return n.Connect(from, to)
	})
}

// Disconnect removes the edge from→to if present.
func (s *Session) Disconnect(ctx context.Context, from, to network.ID) {
	_ = s.mutate(ctx, "disconnect", func(n *network.Network) error {
		n.Disconnect(from, to)
		return nil
	})
}

// DeleteActivity removes an activity, bridging its parents to its children.
func (s *Session) DeleteActivity(ctx context.Context, id network.ID) error {
	return s.mutate(ctx, "delete_activity", func(n *network.Network) error {
		return n.DeleteActivity(id)
	})
}

func (s *Session) mutate(ctx context.Context, op string, fn func(*network.Network) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	err := fn(s.net)
	observability.Session().OnMutation(ctx, s.ID, op, err)
	return err
}

// Calculate runs the critical path method over the session's network.
// On failure the network keeps its previous results.
func (s *Session) Calculate(ctx context.Context) (*cpm.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	start := time.Now()
	res, err := cpm.Calculate(s.net)
	observability.Session().OnCalculate(ctx, s.ID, s.net.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.paths = res.CriticalPaths
	return res, nil
}

// View returns a snapshot of the network and the critical paths of the
// last successful calculation.
func (s *Session) View() project.NetworkView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return project.NewView(s.Name, s.net, s.paths)
}

// File describes the network as a project file. Activities loaded from a
// project keep their keys.
func (s *Session) File() *project.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return project.FromNetwork(s.Name, s.net, s.keys)
}

// With runs fn with exclusive access to the network. fn must not retain the
// network after returning. Used by rendering, which reads the network
// without changing it.
func (s *Session) With(fn func(*network.Network) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return fn(s.net)
}
