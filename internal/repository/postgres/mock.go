package postgres

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/epidash/backend/internal/domain"
)

// mockCapacity bounds how many records the in-memory log keeps
const mockCapacity = 1000

// MockRepository implements domain.FetchLogRepository in memory for
// tests and for running without a database
type MockRepository struct {
	mu      sync.Mutex
	records []domain.FetchRecord
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveFetchRecord keeps the record in memory, dropping the oldest past capacity
func (r *MockRepository) SaveFetchRecord(ctx context.Context, rec domain.FetchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	if len(r.records) > mockCapacity {
		r.records = r.records[len(r.records)-mockCapacity:]
	}
	return nil
}

// RecentFetchRecords returns the newest records first
func (r *MockRepository) RecentFetchRecords(ctx context.Context, limit int) ([]domain.FetchRecord, error) {
	r.mu.Lock()
	out := append([]domain.FetchRecord{}, r.records...)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneFetchRecords drops records older than the cutoff
func (r *MockRepository) PruneFetchRecords(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	var pruned int64
	for _, rec := range r.records {
		if rec.Timestamp.Before(before) {
			pruned++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return pruned, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
