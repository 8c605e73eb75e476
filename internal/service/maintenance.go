package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/epidash/backend/internal/domain"
)

// Maintenance prunes old fetch records and expires idle sessions on a schedule
type Maintenance struct {
	repo       domain.FetchLogRepository
	sessions   *SessionStore
	retention  time.Duration
	sessionTTL time.Duration
	logger     *slog.Logger
	cron       *cron.Cron
}

// NewMaintenance creates the maintenance scheduler
func NewMaintenance(repo domain.FetchLogRepository, sessions *SessionStore, retention, sessionTTL time.Duration, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{
		repo:       repo,
		sessions:   sessions,
		retention:  retention,
		sessionTTL: sessionTTL,
		logger:     logger.With("component", "maintenance"),
		cron:       cron.New(),
	}
}

// Start schedules RunOnce with a cron spec such as "@every 1h"
func (m *Maintenance) Start(schedule string) error {
	if _, err := m.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		m.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("maintenance: error scheduling job %q: %w", schedule, err)
	}
	m.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
}

// RunOnce prunes fetch records past retention and expires idle sessions
func (m *Maintenance) RunOnce(ctx context.Context) {
	if m.repo != nil && m.retention > 0 {
		n, err := m.repo.PruneFetchRecords(ctx, time.Now().Add(-m.retention))
		if err != nil {
			m.logger.Error("failed to prune fetch records", "error", err)
		} else if n > 0 {
			m.logger.Info("pruned fetch records", "count", n)
		}
	}

	if m.sessions != nil && m.sessionTTL > 0 {
		if n := m.sessions.ExpireIdle(m.sessionTTL); n > 0 {
			m.logger.Info("expired idle sessions", "count", n)
		}
	}
}
