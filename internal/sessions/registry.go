// Package sessions keeps one scan coordinator and one selection per client.
package sessions

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/bookscanner/internal/scan"
	"github.com/mrlokans/bookscanner/internal/selection"
)

// Session is one client's scanning state.
type Session struct {
	ID          string
	Coordinator *scan.Coordinator
	Selection   *selection.Manager
	CreatedAt   time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// LastUsed returns when the session was last touched.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Factory builds the parts of a new session.
type Factory func() (*scan.Coordinator, *selection.Manager)

// Registry maps session ids to sessions.
type Registry struct {
	factory Factory
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	onChange func(n int)
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// OnChange registers a callback that receives the session count after every
// create, delete, or sweep.
func (r *Registry) OnChange(fn func(n int)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	coordinator, sel := r.factory()
	now := r.now()
	s := &Session{
		ID:          uuid.NewString(),
		Coordinator: coordinator,
		Selection:   sel,
		CreatedAt:   now,
		lastUsed:    now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n, fn := len(r.sessions), r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(n)
	}
	log.Printf("[SESSION] Created %s", s.ID)
	return s
}

// Get returns the session with the given id and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastUsed = r.now()
	s.mu.Unlock()
	return s, true
}

// Delete closes and removes a session. It reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n, fn := len(r.sessions), r.onChange
	r.mu.Unlock()

	if !ok {
		return false
	}
	s.Coordinator.Close()
	if fn != nil {
		fn(n)
	}
	log.Printf("[SESSION] Deleted %s", id)
	return true
}

// Sweep closes sessions unused for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n, fn := len(r.sessions), r.onChange
	r.mu.Unlock()

	for _, s := range expired {
		s.Coordinator.Close()
		log.Printf("[SESSION] Expired %s", s.ID)
	}
	if len(expired) > 0 && fn != nil {
		fn(n)
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	fn := r.onChange
	r.mu.Unlock()

	for _, s := range all {
		s.Coordinator.Close()
	}
	if fn != nil {
		fn(0)
	}
}
