package web

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the browser session id
const SessionCookie = "v2m_session"

// SessionGuard admits at most one in-flight conversion per session
type SessionGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewSessionGuard creates an empty guard
func NewSessionGuard() *SessionGuard {
	return &SessionGuard{active: make(map[string]struct{})}
}

// TryAcquire marks the session busy. It returns false if it already is.
func (g *SessionGuard) TryAcquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[id]; busy {
		return false
	}
	g.active[id] = struct{}{}
	return true
}

// Release marks the session idle
func (g *SessionGuard) Release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, id)
}

// Busy reports whether the session has a conversion in flight
func (g *SessionGuard) Busy(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[id]
	return busy
}

// sessionID returns the request's session id, issuing a new cookie when absent
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
