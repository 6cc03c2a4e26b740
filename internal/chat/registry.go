package chat

import (
	"net"
	"sync"
)

// Registry tracks live sessions. It owns the only two routing views:
// connection to session for incoming events and login to session for
// directed delivery. All mutation goes through its accessors, which keeps
// both views in agreement.
type Registry struct {
	mu      sync.Mutex
	byConn  map[net.Conn]*Session
	byLogin map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn:  make(map[net.Conn]*Session),
		byLogin: make(map[string]*Session),
	}
}

// Add registers a session in both views. If the login is already routed to
// another connection, the newer session takes over the route and the
// displaced session is returned for the caller to disconnect.
func (r *Registry) Add(s *Session) (evicted *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byLogin[s.Login]; ok && prev != s {
		evicted = prev
	}
	r.byConn[s.conn] = s
	r.byLogin[s.Login] = s
	return evicted
}

// Remove drops a session from both views and reports whether it still
// owned its login route. The route is cleared only if it points at this
// session, so removing an evicted connection never tears down its
// replacement.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byConn, s.conn)
	if cur, ok := r.byLogin[s.Login]; ok && cur == s {
		delete(r.byLogin, s.Login)
		return true
	}
	return false
}

// Lookup returns the session currently routed for login.
func (r *Registry) Lookup(login string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byLogin[login]
	return s, ok
}

// Sessions returns a snapshot of every live session.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.byConn))
	for _, s := range r.byConn {
		out = append(out, s)
	}
	return out
}
