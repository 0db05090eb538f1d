package admin

import (
	"context"
	"sort"
	"sync"

	"github.com/harrylevesque/deviceadmin/internal/models"
)

// Store persists the admin allow-list. Add must be idempotent: adding a
// device that is already present succeeds and leaves the entry unchanged.
type Store interface {
	Contains(ctx context.Context, deviceID string) (bool, error)
	Add(ctx context.Context, entry models.AdminEntry) error
	List(ctx context.Context) ([]models.AdminEntry, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.AdminEntry
}

// NewMemoryStore returns a Store that lives only as long as the process.
func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string]models.AdminEntry),
	}
}

func (s *memoryStore) Contains(_ context.Context, deviceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[deviceID]
	return ok, nil
}

func (s *memoryStore) Add(_ context.Context, entry models.AdminEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.DeviceID]; !ok {
		s.entries[entry.DeviceID] = entry
	}
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]models.AdminEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AdminEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].DeviceID < out[j].DeviceID
		}
		return out[i].GrantedAt.Before(out[j].GrantedAt)
	})
	return out, nil
}
