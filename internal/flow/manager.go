package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/extract"
)

// DefaultIdleTTL is how long a session may sit untouched before the pruner
// reclaims it.
const DefaultIdleTTL = 30 * time.Minute

// Manager owns the live capture sessions, keyed by opaque session id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	extractor extract.Extractor
	cards     *cards.Service
	logger    *slog.Logger
	idleTTL   time.Duration
}

// NewManager creates a session manager. logger may be nil.
func NewManager(ex extract.Extractor, svc *cards.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		extractor: ex,
		cards:     svc,
		logger:    logger,
		idleTTL:   DefaultIdleTTL,
	}
}

// Create starts a new session in the list state.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.extractor, m.cards, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle drops sessions untouched for longer than ttl and returns how
// many were removed.
func (m *Manager) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes idle sessions periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := m.PruneIdle(m.idleTTL); n > 0 {
				m.logger.Debug("flow: pruned idle sessions", slog.Int("count", n))
			}
		}
	}
}
