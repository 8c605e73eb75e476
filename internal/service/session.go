package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/epidash/backend/internal/domain"
)

// Session is one user's pair of views. Each view owns its own filter and
// result state.
type Session struct {
	ID        string
	CreatedAt time.Time
	Dashboard *DashboardController
	Climate   *ClimateController

	lastSeen time.Time
}

// SessionStore holds the live view sessions
type SessionStore struct {
	api    EpiAPI
	repo   domain.FetchLogRepository
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store
func NewSessionStore(api EpiAPI, repo domain.FetchLogRepository, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		api:      api,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session and bootstraps both views concurrently.
// Bootstrap failures are reported through each view's error state.
func (s *SessionStore) Create(ctx context.Context) *Session {
	id := uuid.NewString()
	now := s.now()
	sess := &Session{
		ID:        id,
		CreatedAt: now,
		Dashboard: NewDashboardController(s.api, s.repo, s.logger, id),
		Climate:   NewClimateController(s.api, s.repo, s.logger, id),
		lastSeen:  now,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := sess.Dashboard.Start(ctx); err != nil {
			s.logger.Warn("dashboard bootstrap failed", "session", id, "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := sess.Climate.Start(ctx); err != nil {
			s.logger.Warn("climate bootstrap failed", "session", id, "error", err)
		}
	}()
	wg.Wait()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session", id)
	return sess
}

// Get returns a session and marks it as seen
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

// Delete drops a session. Its in-flight fetches finish in the background.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// ExpireIdle drops sessions not seen within ttl and returns how many went
func (s *SessionStore) ExpireIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	return expired
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// WaitBackground blocks until every live session's fetches complete
func (s *SessionStore) WaitBackground() {
	s.mu.Lock()
	live := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.Dashboard.WaitBackground()
		sess.Climate.WaitBackground()
	}
}
