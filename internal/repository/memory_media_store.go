package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediapeek/twitchpeek/internal/domain"
)

// InMemoryMediaStore implements MediaStore using in-memory storage.
// Used by tests and as a fallback when no store path is configured.
type InMemoryMediaStore struct {
	mu      sync.RWMutex
	records map[domain.MediaKey]*domain.MediaRecord
	closed  bool
}

// NewInMemoryMediaStore creates a new in-memory media store.
func NewInMemoryMediaStore() *InMemoryMediaStore {
	return &InMemoryMediaStore{
		records: make(map[domain.MediaKey]*domain.MediaRecord),
	}
}

// Record upserts a resolution record.
func (s *InMemoryMediaStore) Record(ctx context.Context, rec *domain.MediaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrStoreClosed
	}

	now := time.Now().UTC()
	if existing, ok := s.records[rec.Key]; ok {
		existing.DisplayName = rec.DisplayName
		existing.Title = rec.Title
		existing.PosterURL = rec.PosterURL
		existing.ResolveCount++
		existing.LastResolvedAt = now
		return nil
	}

	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.ResolveCount = 1
	stored.FirstResolvedAt = now
	stored.LastResolvedAt = now
	s.records[rec.Key] = &stored
	return nil
}

// Get retrieves a record by media key.
func (s *InMemoryMediaStore) Get(ctx context.Context, key domain.MediaKey) (*domain.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	rec, ok := s.records[key]
	if !ok {
		return nil, domain.ErrMediaNotFound
	}

	copied := *rec
	return &copied, nil
}

// List returns the most recently resolved records, newest first.
func (s *InMemoryMediaStore) List(ctx context.Context, limit int) ([]*domain.MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if limit <= 0 {
		limit = 50
	}

	records := make([]*domain.MediaRecord, 0, len(s.records))
	for _, rec := range s.records {
		copied := *rec
		records = append(records, &copied)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastResolvedAt.After(records[j].LastResolvedAt)
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Ping verifies the store is usable.
func (s *InMemoryMediaStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return domain.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed.
func (s *InMemoryMediaStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
