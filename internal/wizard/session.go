package wizard

import (
	"sync"

	"cvwizard-backend/internal/generation"
	"cvwizard-backend/internal/language"
)

// Session bundles the per-job orchestration pieces: one Coordinator per
// wizard flow plus the flow's language preference, sharing the
// process-wide cache.
type Session struct {
	JobID    string
	Flow     *Coordinator
	Language *language.Setter
}

// SessionRegistry hands out wizard sessions keyed by job id, creating them
// lazily. Sessions live in memory for the lifetime of the process.
type SessionRegistry struct {
	api             generation.API
	cache           *DocumentCache
	defaultLanguage string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry(api generation.API, cache *DocumentCache, defaultLanguage string) *SessionRegistry {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &SessionRegistry{
		api:             api,
		cache:           cache,
		defaultLanguage: defaultLanguage,
		sessions:        make(map[string]*Session),
	}
}

// Get returns the session for a job id, creating it on first use.
func (r *SessionRegistry) Get(jobID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[jobID]; ok {
		return session
	}
	session := &Session{
		JobID:    jobID,
		Flow:     NewCoordinator(r.api, r.cache),
		Language: language.NewSetter(r.defaultLanguage),
	}
	r.sessions[jobID] = session
	return session
}

// Reset discards the session state for a job id.
func (r *SessionRegistry) Reset(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[jobID]; ok {
		session.Flow.Reset()
		delete(r.sessions, jobID)
	}
}
