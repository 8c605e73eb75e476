package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/epidash/backend/internal/domain"
)

// fetchRecorder logs every fetch attempt and persists it for diagnostics
type fetchRecorder struct {
	repo      domain.FetchLogRepository
	logger    *slog.Logger
	view      string
	sessionID string
}

func newFetchRecorder(repo domain.FetchLogRepository, logger *slog.Logger, view, sessionID string) *fetchRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &fetchRecorder{
		repo:      repo,
		logger:    logger.With("component", view, "session", sessionID),
		view:      view,
		sessionID: sessionID,
	}
}

func (r *fetchRecorder) started(slot string, gen uint64, params string) time.Time {
	r.logger.Info("fetch started", "slot", slot, "generation", gen, "params", params)
	return time.Now()
}

// finished logs the outcome and saves the record. It blocks on the
// repository, so call it from the fetching goroutine.
func (r *fetchRecorder) finished(slot string, gen uint64, params string, start time.Time, outcome string, err error) {
	rec := domain.FetchRecord{
		ID:         uuid.NewString(),
		SessionID:  r.sessionID,
		View:       r.view,
		Slot:       slot,
		Generation: gen,
		Params:     params,
		Outcome:    outcome,
		Duration:   time.Since(start),
		Timestamp:  start,
	}
	if err != nil {
		rec.Error = err.Error()
	}

	switch outcome {
	case domain.OutcomeError:
		r.logger.Error("fetch failed", "slot", slot, "generation", gen, "params", params, "error", err)
	case domain.OutcomeStale:
		r.logger.Info("fetch discarded as stale", "slot", slot, "generation", gen, "params", params)
	default:
		r.logger.Info("fetch completed", "slot", slot, "generation", gen, "duration", rec.Duration)
	}

	if r.repo == nil {
		return
	}
	bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if saveErr := r.repo.SaveFetchRecord(bgCtx, rec); saveErr != nil {
		r.logger.Warn("failed to save fetch record", "error", saveErr)
	}
}
