package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/epidash/backend/internal/domain"
)

const (
	slotTrend       = "trend"
	slotTopDiseases = "top-diseases"
)

const bootstrapErrMsg = "Failed to load initial data"

// DashboardView is a snapshot of the dashboard for rendering
type DashboardView struct {
	Phase         ViewPhase              `json:"phase"`
	Loading       bool                   `json:"loading"`
	Error         string                 `json:"error,omitempty"`
	Selection     domain.FilterSelection `json:"selection"`
	Filters       FilterDomains          `json:"filters"`
	Trend         *domain.TrendSeries    `json:"trend"`
	TopDiseases   *domain.TopDiseases    `json:"top_diseases"`
	TotalCases    int                    `json:"total_cases"`
	WeeklyAverage int                    `json:"weekly_average"`
}

// dashboardState is the mutable part of the dashboard, guarded by DashboardController.mu
type dashboardState struct {
	viewStatus
	selection domain.FilterSelection
	trend     *domain.TrendSeries
	top       *domain.TopDiseases
}

// SelectionUpdate changes only the fields that are set
type SelectionUpdate struct {
	State   *string `json:"state"`
	Disease *string `json:"disease"`
	Week    *string `json:"week"`
}

// DashboardController drives the dashboard view: it bootstraps the filter
// domains and keeps the trend and top-diseases data in step with the
// selected filters.
type DashboardController struct {
	api     EpiAPI
	filters *FilterController
	rec     *fetchRecorder

	mu     sync.Mutex
	state  dashboardState
	runner *fetchRunner[dashboardState]
}

// NewDashboardController creates a dashboard view for one session
func NewDashboardController(api EpiAPI, repo domain.FetchLogRepository, logger *slog.Logger, sessionID string) *DashboardController {
	rec := newFetchRecorder(repo, logger, "dashboard", sessionID)
	c := &DashboardController{
		api:     api,
		filters: newFilterController(api, rec),
		rec:     rec,
		state:   dashboardState{viewStatus: viewStatus{phase: PhaseBootstrapping}},
	}
	c.runner = newFetchRunner(&c.mu, &c.state, &c.state.viewStatus, bootstrapErrMsg, rec, slotTrend, slotTopDiseases)
	c.runner.rules = []fetchRule[dashboardState]{
		{
			slot:   slotTrend,
			errMsg: "Failed to fetch trend data. Please try again.",
			ready: func(sel domain.FilterSelection) bool {
				return sel.State != "" && sel.Disease != ""
			},
			key: func(sel domain.FilterSelection) string {
				return sel.State + "\x00" + sel.Disease
			},
			fetch: func(ctx context.Context, sel domain.FilterSelection) (func(*dashboardState), error) {
				trend, err := c.api.GetTrend(ctx, sel.State, sel.Disease)
				if err != nil {
					return nil, err
				}
				return func(s *dashboardState) { s.trend = &trend }, nil
			},
		},
		{
			slot:   slotTopDiseases,
			errMsg: "Failed to fetch top diseases data. Please try again.",
			ready: func(sel domain.FilterSelection) bool {
				return sel.State != "" && sel.Week != ""
			},
			key: func(sel domain.FilterSelection) string {
				return sel.State + "\x00" + sel.Week
			},
			fetch: func(ctx context.Context, sel domain.FilterSelection) (func(*dashboardState), error) {
				top, err := c.api.GetTopDiseases(ctx, sel.State, sel.Week)
				if err != nil {
					return nil, err
				}
				if len(top.Rankings) == 0 {
					c.rec.logger.Warn("no top diseases data for the selected parameters",
						"state", sel.State, "week", sel.Week)
				}
				return func(s *dashboardState) { s.top = &top }, nil
			},
		},
	}
	return c
}

// Start loads the filter domains. On the first successful load the latest
// week becomes the default selection.
func (c *DashboardController) Start(ctx context.Context) error {
	first, err := c.filters.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state.phase = PhaseError
		c.state.errMsg = bootstrapErrMsg
		return err
	}

	if c.state.phase == PhaseBootstrapping || c.state.errMsg == bootstrapErrMsg {
		c.state.phase = PhaseReady
		c.state.errMsg = ""
	}
	if first && c.state.selection.Week == "" {
		if dr, ok := c.filters.DateRange(); ok && dr.MaxDate != "" {
			c.state.selection.Week = dr.MaxDate
		}
	}
	c.evaluate()
	return nil
}

// SetState selects a state/UT
func (c *DashboardController) SetState(state string) {
	c.Update(SelectionUpdate{State: &state})
}

// SetDisease selects a disease
func (c *DashboardController) SetDisease(disease string) {
	c.Update(SelectionUpdate{Disease: &disease})
}

// SetWeek selects a week
func (c *DashboardController) SetWeek(week string) {
	c.Update(SelectionUpdate{Week: &week})
}

// Update applies a selection change and fires whichever fetches it enables
func (c *DashboardController) Update(u SelectionUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.State != nil {
		c.state.selection.State = *u.State
	}
	if u.Disease != nil {
		c.state.selection.Disease = *u.Disease
	}
	if u.Week != nil {
		c.state.selection.Week = *u.Week
	}
	c.evaluate()
}

// Reset clears the selection and the data shown for it. Filter domains
// stay cached; responses still in flight are discarded.
func (c *DashboardController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.selection = domain.FilterSelection{}
	c.state.trend = nil
	c.state.top = nil
	c.runner.slots.supersedeAll()
	c.evaluate()
}

// View returns a snapshot of the dashboard
func (c *DashboardController) View() DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := DashboardView{
		Phase:       c.state.phase,
		Loading:     c.runner.inflight > 0,
		Error:       c.state.errMsg,
		Selection:   c.state.selection,
		Filters:     c.filters.Domains(),
		Trend:       c.state.trend,
		TopDiseases: c.state.top,
	}
	if c.state.trend != nil {
		v.TotalCases = TotalCases(c.state.trend.Points)
		v.WeeklyAverage = WeeklyAverage(c.state.trend.Points)
	}
	return v
}

// Filters returns the view's filter controller
func (c *DashboardController) Filters() *FilterController {
	return c.filters
}

// WaitBackground blocks until all in-flight fetches complete
func (c *DashboardController) WaitBackground() {
	c.runner.wait()
}

// evaluate runs the rule table against the current selection. Caller holds mu.
func (c *DashboardController) evaluate() {
	c.runner.evaluate(c.state.selection)
}
