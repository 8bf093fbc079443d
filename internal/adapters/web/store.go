package web

import (
	"context"
	"sync"
	"time"

	"orderdesk/internal/app"
)

// sessionTTL is how long an idle editing session survives before eviction.
const sessionTTL = 2 * time.Hour

type storedSession struct {
	session  *app.Session
	lastUsed time.Time
}

// sessionStore is a thread-safe in-memory store of editing sessions keyed by
// opaque token, with TTL expiry. An evicted session is simply a discarded
// draft — the dashboard starts a fresh one.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]storedSession)}
}

func (s *sessionStore) put(token string, sess *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = storedSession{session: sess, lastUsed: time.Now()}
}

func (s *sessionStore) get(token string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	stored.lastUsed = time.Now()
	s.sessions[token] = stored
	return stored.session, true
}

func (s *sessionStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// startPurge starts a background goroutine that evicts idle sessions every
// five minutes.
func (s *sessionStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				for token, stored := range s.sessions {
					if time.Since(stored.lastUsed) > sessionTTL {
						delete(s.sessions, token)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}
