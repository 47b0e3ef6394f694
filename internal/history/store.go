package history

import (
	"fmt"
	"sync"

	"github.com/ninesib/backend/internal/models"
)

// MaxAttempts caps the per-user history. Saves beyond the cap silently drop
// the oldest records.
const MaxAttempts = 200

// ErrNotFound is returned by GetByID when no attempt matches.
var ErrNotFound = fmt.Errorf("attempt not found")

// Store is the persistence boundary for attempt history. Implementations
// keep each user's records newest-first (save order) and enforce the
// MaxAttempts cap on write.
type Store interface {
	// Save prepends the record to the user's history.
	Save(userID int64, record models.AttemptRecord) error
	// GetAll returns the user's history newest-first. A missing or
	// unreadable history degrades to an empty list, never an error the
	// caller has to distinguish from "no attempts yet".
	GetAll(userID int64) ([]models.AttemptRecord, error)
	// GetByID returns one attempt, or ErrNotFound.
	GetByID(userID int64, id string) (models.AttemptRecord, error)
}

// ── In-Memory Store ──────────────────────────────────────

// MemoryStore keeps attempt history in process memory. Used in tests and as
// a fallback when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	attempts map[int64][]models.AttemptRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[int64][]models.AttemptRecord)}
}

func (s *MemoryStore) Save(userID int64, record models.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]models.AttemptRecord{record}, s.attempts[userID]...)
	if len(list) > MaxAttempts {
		list = list[:MaxAttempts]
	}
	s.attempts[userID] = list
	return nil
}

func (s *MemoryStore) GetAll(userID int64) ([]models.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.attempts[userID]
	out := make([]models.AttemptRecord, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) GetByID(userID int64, id string) (models.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attempts[userID] {
		if a.ID == id {
			return a, nil
		}
	}
	return models.AttemptRecord{}, ErrNotFound
}
