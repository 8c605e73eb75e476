package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/epidash/backend/internal/domain"
	"github.com/epidash/backend/internal/service"
	"github.com/epidash/backend/pkg/utils"
)

// MapFetcher is the slice of the analytics client the map endpoint needs
type MapFetcher interface {
	GetMap(ctx context.Context, week, disease string) (domain.MapSnapshot, error)
}

// HealthChecker reports connectivity of a dependency
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	sessions *service.SessionStore
	maps     MapFetcher
	upstream HealthChecker
	repo     service.FetchLogRepository
}

// NewHandler creates a new handler
func NewHandler(sessions *service.SessionStore, maps MapFetcher, upstream HealthChecker, repo service.FetchLogRepository) *Handler {
	return &Handler{
		sessions: sessions,
		maps:     maps,
		upstream: upstream,
		repo:     repo,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	upstream := "ok"
	if h.upstream != nil {
		if err := h.upstream.Health(ctx); err != nil {
			upstream = service.UserMessage(err)
			status = "degraded"
		}
	}
	storage := "ok"
	if h.repo != nil {
		if err := h.repo.Health(ctx); err != nil {
			storage = err.Error()
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status":   status,
		"service":  "epidash-backend",
		"version":  "1.0.0",
		"upstream": upstream,
		"storage":  storage,
		"sessions": h.sessions.Len(),
	})
}

// CreateSession opens a view session and bootstraps its views
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	sess := h.sessions.Create(c.Context())

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":         sess.ID,
			"created_at": sess.CreatedAt,
			"dashboard":  sess.Dashboard.View(),
			"climate":    sess.Climate.View(),
		},
	})
}

// DeleteSession drops a view session
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	if !h.sessions.Delete(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFilters returns the session's filter domains
func (h *Handler) GetFilters(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    sess.Dashboard.Filters().Domains(),
	})
}

// GetDashboard returns the dashboard view
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    sess.Dashboard.View(),
	})
}

// UpdateSelection changes the dashboard filters
func (h *Handler) UpdateSelection(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req service.SelectionUpdate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	sess.Dashboard.Update(req)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data":    sess.Dashboard.View(),
	})
}

// ResetDashboard clears the dashboard filters
func (h *Handler) ResetDashboard(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	sess.Dashboard.Reset()

	return c.JSON(fiber.Map{
		"success": true,
		"data":    sess.Dashboard.View(),
	})
}

// GetClimate returns the climate impact view
func (h *Handler) GetClimate(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    sess.Climate.View(),
	})
}

// SelectClimateDisease changes the climate view's disease
func (h *Handler) SelectClimateDisease(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req struct {
		Disease string `json:"disease"`
	}
	if err := c.BodyParser(&req); err != nil || req.Disease == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	sess.Climate.SetDisease(req.Disease)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data":    sess.Climate.View(),
	})
}

// GetMap returns district case totals for a week and disease
func (h *Handler) GetMap(c *fiber.Ctx) error {
	week := c.Query("week")
	disease := c.Query("disease")
	if week == "" || disease == "" {
		return fiber.NewError(fiber.StatusBadRequest, "week and disease are required")
	}

	snapshot, err := h.maps.GetMap(c.Context(), week, disease)
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    service.SummarizeMap(snapshot),
	})
}

// GetFetchLog returns recent fetch diagnostics
func (h *Handler) GetFetchLog(c *fiber.Ctx) error {
	limit := utils.ClampInt(c.QueryInt("limit", 50), 1, 500)

	records, err := h.repo.RecentFetchRecords(c.Context(), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch diagnostics")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
		"count":   len(records),
	})
}

func (h *Handler) session(c *fiber.Ctx) (*service.Session, error) {
	sess, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return sess, nil
}

// upstreamError maps analytics API failures onto gateway statuses
func upstreamError(err error) error {
	var (
		httpErr    *service.HTTPError
		timeoutErr *service.TimeoutError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return fiber.NewError(fiber.StatusGatewayTimeout, service.UserMessage(err))
	case errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500:
		return fiber.NewError(httpErr.StatusCode, httpErr.Message)
	default:
		return fiber.NewError(fiber.StatusBadGateway, service.UserMessage(err))
	}
}
