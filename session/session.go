// Package session holds the per-shopper state container: the session
// flags plus the cart engine and wishlist, created on first sight of a
// session id and snapshotted through the persistence provider after
// every mutation.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"go-dispensary/analytics"
	"go-dispensary/cart"
	"go-dispensary/models"
	"go-dispensary/store"
)

// State is one shopper's live session.
type State struct {
	mu      sync.Mutex
	session models.ShopperSession

	Cart     *cart.Engine
	Wishlist *cart.Wishlist
}

// Session returns a copy of the session flags.
func (s *State) Session() models.ShopperSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// MarkAgeVerified flips the age-verified flag.
func (s *State) MarkAgeVerified() {
	s.mu.Lock()
	s.session.AgeVerified = true
	s.mu.Unlock()
}

// SetShippingState records the shopper's selected shipping state.
func (s *State) SetShippingState(code string) {
	s.mu.Lock()
	s.session.SelectedState = code
	s.mu.Unlock()
}

// Manager creates and caches session states. One Manager per process;
// it is constructed explicitly and passed by reference so tests can
// run isolated instances.
type Manager struct {
	snapshots store.SnapshotStore
	limiter   cart.AttemptLimiter
	tracker   analytics.Tracker
	nowFn     func() time.Time

	mu     sync.Mutex
	states map[string]*State
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimiter sets the cart add limiter shared by all sessions.
func WithLimiter(l cart.AttemptLimiter) Option {
	return func(m *Manager) { m.limiter = l }
}

// WithTracker sets the analytics sink shared by all sessions.
func WithTracker(t analytics.Tracker) Option {
	return func(m *Manager) { m.tracker = t }
}

// WithClock overrides the manager's clock.
func WithClock(nowFn func() time.Time) Option {
	return func(m *Manager) { m.nowFn = nowFn }
}

// NewManager creates a session manager backed by the given snapshot
// store.
func NewManager(snapshots store.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		snapshots: snapshots,
		limiter:   cart.NewMemoryLimiter(cart.DefaultAddLimit, cart.DefaultAddWindow),
		tracker:   analytics.NoopTracker{},
		nowFn:     time.Now,
		states:    make(map[string]*State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the live state for a session, creating it on first
// access. A persisted snapshot, when present, seeds the new state;
// afterwards the in-memory state is authoritative and snapshots only
// flow outward (load-once, local-wins — see DESIGN.md).
func (m *Manager) Get(ctx context.Context, sessionID string) *State {
	m.mu.Lock()
	if state, ok := m.states[sessionID]; ok {
		m.mu.Unlock()
		return state
	}
	m.mu.Unlock()

	state := &State{
		session: models.ShopperSession{
			SessionID: sessionID,
			CreatedAt: m.nowFn(),
		},
		Cart: cart.NewEngine(sessionID,
			cart.WithLimiter(m.limiter),
			cart.WithTracker(m.tracker),
		),
		Wishlist: cart.NewWishlist(),
	}
	if m.snapshots != nil {
		snapshot, err := m.snapshots.Load(ctx, sessionID)
		if err != nil {
			log.Printf("session: load snapshot for %s: %v", sessionID, err)
		} else if snapshot != nil {
			state.session = snapshot.Session
			state.Cart.Restore(snapshot.Lines)
			state.Wishlist.Restore(snapshot.Wishlist)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have created the state while the snapshot
	// loaded; the first one in wins.
	if existing, ok := m.states[sessionID]; ok {
		return existing
	}
	m.states[sessionID] = state
	return state
}

// Save snapshots a session through the persistence provider.
// Best-effort: failures are logged and never surfaced to the caller.
func (m *Manager) Save(ctx context.Context, state *State) {
	if m.snapshots == nil {
		return
	}
	snapshot := &models.SessionSnapshot{
		Session:  state.Session(),
		Lines:    state.Cart.Lines(),
		Stats:    state.Cart.Stats(),
		Wishlist: state.Wishlist.List(),
	}
	if err := m.snapshots.Save(ctx, snapshot); err != nil {
		log.Printf("session: save snapshot for %s: %v", snapshot.Session.SessionID, err)
	}
}

// Drop removes a session from the cache and deletes its snapshot.
func (m *Manager) Drop(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.states, sessionID)
	m.mu.Unlock()
	if m.snapshots != nil {
		if err := m.snapshots.Delete(ctx, sessionID); err != nil {
			log.Printf("session: delete snapshot for %s: %v", sessionID, err)
		}
	}
}
