package server

import (
	"errors"
	"sync"
)

var (
	// ErrNameTaken is returned when a registration loses the uniqueness
	// check.
	ErrNameTaken = errors.New("registry: display name already used")

	// ErrNotRegistered is returned when unregistering a name that is not
	// present.
	ErrNotRegistered = errors.New("registry: display name not registered")

	// ErrRegistryClosed is returned by Register after the registry has been
	// drained for shutdown, so no session can slip in behind the
	// disconnect-all pass.
	ErrRegistryClosed = errors.New("registry: closed")
)

// Registry is the authoritative display-name directory. A single lock guards
// the name map and the insertion-ordered name list together, so the two can
// never disagree and no caller ever observes a half-applied mutation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // insertion order, for the online-list snapshot
	closed   bool     // set by DrainAll; Register refuses afterwards
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register atomically checks uniqueness and inserts. Two concurrent attempts
// on the same name cannot both succeed. Names compare by exact value,
// case-sensitive.
func (r *Registry) Register(sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	if _, exists := r.sessions[sess.Name]; exists {
		return ErrNameTaken
	}
	r.sessions[sess.Name] = sess
	r.order = append(r.order, sess.Name)
	return nil
}

// Unregister atomically removes the name from the map and the ordered list.
// A second removal of the same name reports ErrNotRegistered and leaves the
// registry untouched.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[name]; !exists {
		return ErrNotRegistered
	}
	delete(r.sessions, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Lookup returns the session registered under name, if any. The handle stays
// usable after removal: sends to a departed session fail gracefully instead
// of crashing, so callers need not revalidate before every write.
func (r *Registry) Lookup(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[name]
	return sess, ok
}

// Names returns a point-in-time copy of the registered names in insertion
// order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ForEach applies f to a stable snapshot of the current sessions in
// insertion order. Registrations and removals racing the pass are either
// entirely in the snapshot or entirely absent; f runs outside the lock.
func (r *Registry) ForEach(f func(*Session)) {
	for _, sess := range r.snapshot() {
		f(sess)
	}
}

func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sessions[name])
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DrainAll atomically empties the registry and returns the sessions that
// were registered, in insertion order. Used by the shutdown path so no
// handler can announce a departure from a registry that is being cleared.
func (r *Registry) DrainAll() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sessions[name])
	}
	r.sessions = make(map[string]*Session)
	r.order = nil
	r.closed = true
	return out
}
