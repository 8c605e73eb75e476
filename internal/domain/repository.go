package domain

import (
	"context"
	"time"
)

// FetchRecord is a diagnostic record of one request made to the analytics API
type FetchRecord struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id,omitempty"`
	View       string        `json:"view"`
	Slot       string        `json:"slot"`
	Generation uint64        `json:"generation"`
	Params     string        `json:"params"`
	Outcome    string        `json:"outcome"` // "ok", "error", "stale"
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Fetch outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

// FetchLogRepository defines persistence for fetch diagnostics.
// The domain owns the interface; storage backends implement it.
type FetchLogRepository interface {
	// SaveFetchRecord persists one fetch record
	SaveFetchRecord(ctx context.Context, rec FetchRecord) error

	// RecentFetchRecords returns the newest records first
	RecentFetchRecords(ctx context.Context, limit int) ([]FetchRecord, error)

	// PruneFetchRecords deletes records older than the cutoff and returns how many were removed
	PruneFetchRecords(ctx context.Context, before time.Time) (int64, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
