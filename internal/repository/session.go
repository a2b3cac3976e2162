package repository

import (
	"sync"

	"github.com/sprachquiz/millionaire-backend/internal/entity"
)

// SessionStore keeps live game sessions in memory, keyed by the browser's
// session cookie ID. Sessions are not persisted; only the seen-sentence
// record survives a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entity.Session),
	}
}

// GetOrCreate returns the session for an ID, creating a fresh one on first
// contact.
func (that *SessionStore) GetOrCreate(id string) *entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	if session, ok := that.sessions[id]; ok {
		return session
	}

	session := entity.NewSession(id)
	that.sessions[id] = session

	return session
}

// Get retrieves an existing session.
func (that *SessionStore) Get(id string) (*entity.Session, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	return session, ok
}

// Delete removes a session.
func (that *SessionStore) Delete(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)
}
