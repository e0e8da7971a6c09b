package dashboard

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	authsvc "oticas/internal/auth/service"
)

type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// Registry holds one Session per admin session id. Entries expire with their
// token and are closed on eviction.
type Registry struct {
	sessions *gocache.Cache
	factory  func() *Session
	observer SessionObserver
}

// NewRegistry uses factory to build sessions for identities it has not seen,
// for example after a restart.
func NewRegistry(factory func() *Session, cleanupInterval time.Duration, observer SessionObserver) *Registry {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	r := &Registry{
		sessions: gocache.New(gocache.NoExpiration, cleanupInterval),
		factory:  factory,
		observer: observer,
	}
	r.sessions.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
		if r.observer != nil {
			r.observer.SessionClosed()
		}
	})
	return r
}

// New returns a fresh, logged-out session that is not yet registered.
func (r *Registry) New() *Session {
	return r.factory()
}

// Put registers s under its identity until the identity expires. A different
// session already held under that identity is closed; putting s again only
// refreshes its expiry.
func (r *Registry) Put(s *Session) {
	identity := s.Identity()
	if identity == nil {
		return
	}
	ttl := time.Until(identity.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if v, exists := r.sessions.Get(identity.ID); exists {
		if held, _ := v.(*Session); held == s {
			r.sessions.Set(identity.ID, s, ttl)
			return
		}
		r.sessions.Delete(identity.ID)
	}
	r.sessions.Set(identity.ID, s, ttl)
	if r.observer != nil {
		r.observer.SessionOpened()
	}
}

// Resolve returns the registered session for a verified identity, resuming a
// new one when none is held.
func (r *Registry) Resolve(identity *authsvc.Session) *Session {
	if v, ok := r.sessions.Get(identity.ID); ok {
		return v.(*Session)
	}
	s := r.factory()
	s.Resume(identity)
	ttl := time.Until(identity.ExpiresAt)
	if ttl <= 0 {
		return s
	}
	if err := r.sessions.Add(identity.ID, s, ttl); err != nil {
		// registered concurrently
		if v, ok := r.sessions.Get(identity.ID); ok {
			return v.(*Session)
		}
		return s
	}
	if r.observer != nil {
		r.observer.SessionOpened()
	}
	return s
}

// Remove drops the session; its eviction hook clears local state.
func (r *Registry) Remove(sessionID string) {
	r.sessions.Delete(sessionID)
}

func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
