package services

import (
	"context"
	"sync"
	"time"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Session is one map instance and everything the engine tracks for it.
//
// Route pipelines for a session run one at a time: a new request cancels the
// one in flight, queues behind it on the semaphore, and bumps the generation
// so that a late result from the older request is never rendered.
type Session struct {
	ID        string
	Map       ports.InteractiveMap
	CreatedAt time.Time

	pipeline *semaphore.Weighted

	mu         sync.Mutex
	origin     domain.Coordinates
	layers     domain.LayerSet
	lastRoute  *domain.RouteResult
	shareLink  string
	generation uint64
	cancelRun  context.CancelFunc
	closed     bool
}

func newSession(m ports.InteractiveMap, origin domain.Coordinates) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Map:       m,
		CreatedAt: time.Now().UTC(),
		pipeline:  semaphore.NewWeighted(1),
		origin:    origin,
		layers:    domain.DefaultLayers(),
	}
}

func (s *Session) Origin() domain.Coordinates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

func (s *Session) setOrigin(c domain.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = c
}

func (s *Session) Layers() []domain.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.Layers()
}

// applyLayerAction reduces the persisted layer state under the session lock,
// so concurrent toggles never start from a stale snapshot.
func (s *Session) applyLayerAction(action domain.LayerAction) ([]domain.Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.layers.Apply(action)
	if err != nil {
		return nil, err
	}
	s.layers = next
	return next.Layers(), nil
}

// LastRoute returns the route currently rendered, if any.
func (s *Session) LastRoute() (domain.RouteResult, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRoute == nil {
		return domain.RouteResult{}, "", false
	}
	return *s.lastRoute, s.shareLink, true
}

// begin registers a new pipeline run and waits for the previous one to
// release the session. The returned release func must be called exactly once.
func (s *Session) begin(ctx context.Context) (uint64, context.Context, func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, nil, nil, domain.ErrSessionNotFound
	}
	s.generation++
	gen := s.generation
	if s.cancelRun != nil {
		s.cancelRun()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel
	s.mu.Unlock()

	if err := s.pipeline.Acquire(runCtx, 1); err != nil {
		cancel()
		if stale := s.stale(gen); stale != nil {
			return 0, nil, nil, stale
		}
		return 0, nil, nil, err
	}

	release := func() {
		s.pipeline.Release(1)
		cancel()
		s.mu.Lock()
		if s.generation == gen {
			s.cancelRun = nil
		}
		s.mu.Unlock()
	}
	return gen, runCtx, release, nil
}

// stale reports why run gen may no longer touch the session:
// ErrSessionNotFound once it is destroyed, ErrSuperseded once a newer run
// started. It returns nil while gen is the latest run.
func (s *Session) stale(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staleLocked(gen)
}

func (s *Session) staleLocked(gen uint64) error {
	switch {
	case s.closed:
		return domain.ErrSessionNotFound
	case s.generation != gen:
		return domain.ErrSuperseded
	default:
		return nil
	}
}

// commit runs render and records the route only if gen is still the latest
// request. The session lock is held throughout, so a newer request cannot
// slip in between the check and the overlay update.
func (s *Session) commit(gen uint64, render func() error, route domain.RouteResult, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.staleLocked(gen); err != nil {
		return err
	}
	if err := render(); err != nil {
		return err
	}

	s.lastRoute = &route
	s.shareLink = link
	return nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
}

// SessionStore holds the live map sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (st *SessionStore) add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) remove(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	return s, ok
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
