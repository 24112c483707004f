package audit

import (
	"context"
	"math"
	"sync"

	"privy/pkg/platform/sentinel"
)

const anonymizedRequester = "[ANONYMIZED]"

// InMemoryStore stores audit records in memory. Records are append-only;
// reads return copies ordered newest first, matching the audit collaborator
// contract (limit+offset pagination over a timestamp-descending view).
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []Record
}

// NewInMemoryStore constructs an empty in-memory audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, record Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.nextID
	s.nextID++
	s.records = append(s.records, record)
	return record.ID, nil
}

func (s *InMemoryStore) List(_ context.Context, q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	var out []Record
	skipped := 0
	// Newest first.
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if q.RequesterID != "" && r.RequesterID != q.RequesterID {
			continue
		}
		if q.Decision != "" && r.Decision != q.Decision {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		out = append(out, copyRecord(r))
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return copyRecord(r), nil
		}
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalRequests: len(s.records)}
	for _, r := range s.records {
		switch r.Decision {
		case DecisionAllow:
			stats.Allowed++
		case DecisionDeny:
			stats.Denied++
		}
	}
	if stats.TotalRequests > 0 {
		stats.AllowRate = math.Round(float64(stats.Allowed)/float64(stats.TotalRequests)*100) / 100
	}
	return stats, nil
}

func (s *InMemoryStore) AnonymizeRequester(_ context.Context, requesterID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	for i := range s.records {
		if s.records[i].RequesterID != requesterID {
			continue
		}
		s.records[i].RequesterID = anonymizedRequester
		delete(s.records[i].Metadata, "device")
		delete(s.records[i].Metadata, "remote_addr")
		touched++
	}
	return touched, nil
}

func copyRecord(r Record) Record {
	if r.Metadata != nil {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		r.Metadata = meta
	}
	return r
}
