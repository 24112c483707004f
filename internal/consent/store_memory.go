package consent

import (
	"context"
	"sync"

	"privy/pkg/platform/sentinel"
)

// InMemoryStore stores consent records in memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore constructs an empty in-memory consent store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SubjectID] = copyRecord(record)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subjectID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[subjectID]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return copyRecord(record), nil
}

func (s *InMemoryStore) Delete(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[subjectID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, subjectID)
	return nil
}

func copyRecord(r Record) Record {
	purposes := make(map[string]bool, len(r.GrantedPurposes))
	for p := range r.GrantedPurposes {
		purposes[p] = true
	}
	r.GrantedPurposes = purposes
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		r.ExpiresAt = &t
	}
	return r
}
