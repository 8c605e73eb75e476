package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/epidash/backend/internal/domain"
)

const (
	slotDiseases = "diseases"
	slotClimate  = "climate"
)

const climateBootstrapErrMsg = "Failed to load diseases"

// ClimateView is a snapshot of the climate impact view
type ClimateView struct {
	Phase      ViewPhase             `json:"phase"`
	Loading    bool                  `json:"loading"`
	Error      string                `json:"error,omitempty"`
	Diseases   []string              `json:"diseases"`
	Disease    string                `json:"disease"`
	Series     *domain.ClimateSeries `json:"series"`
	TotalCases int                   `json:"total_cases"`
}

type climateState struct {
	viewStatus
	diseases []string
	loaded   bool
	disease  string
	series   *domain.ClimateSeries
}

// ClimateController loads the disease list once, selects the first
// disease and refetches the climate series whenever the disease changes.
type ClimateController struct {
	api EpiAPI
	rec *fetchRecorder

	mu     sync.Mutex
	state  climateState
	runner *fetchRunner[climateState]
}

// NewClimateController creates a climate impact view for one session
func NewClimateController(api EpiAPI, repo domain.FetchLogRepository, logger *slog.Logger, sessionID string) *ClimateController {
	c := &ClimateController{
		api:   api,
		rec:   newFetchRecorder(repo, logger, "climate", sessionID),
		state: climateState{viewStatus: viewStatus{phase: PhaseBootstrapping}},
	}
	c.runner = newFetchRunner(&c.mu, &c.state, &c.state.viewStatus, climateBootstrapErrMsg, c.rec, slotDiseases, slotClimate)
	c.runner.rules = []fetchRule[climateState]{{
		slot:   slotClimate,
		errMsg: "Failed to fetch climate data",
		ready: func(sel domain.FilterSelection) bool {
			return sel.Disease != ""
		},
		key: func(sel domain.FilterSelection) string {
			return sel.Disease
		},
		fetch: func(ctx context.Context, sel domain.FilterSelection) (func(*climateState), error) {
			series, err := c.api.GetClimateImpact(ctx, sel.Disease)
			if err != nil {
				return nil, err
			}
			return func(s *climateState) { s.series = &series }, nil
		},
	}}
	return c
}

// Start loads the disease list and selects the first disease. It does
// nothing once the list has loaded.
func (c *ClimateController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state.loaded {
		c.mu.Unlock()
		return nil
	}
	gen := c.runner.slots.issue(slotDiseases, "all")
	c.runner.inflight++
	c.mu.Unlock()

	start := c.rec.started(slotDiseases, gen, "")
	diseases, err := c.api.GetDiseases(ctx)

	c.mu.Lock()
	c.runner.inflight--
	if !c.runner.slots.current(slotDiseases, gen) {
		c.mu.Unlock()
		c.rec.finished(slotDiseases, gen, "", start, domain.OutcomeStale, err)
		return err
	}
	if err != nil {
		c.state.phase = PhaseError
		c.state.errMsg = climateBootstrapErrMsg
		c.mu.Unlock()
		c.rec.finished(slotDiseases, gen, "", start, domain.OutcomeError, err)
		return err
	}
	c.state.diseases = diseases
	c.state.loaded = true
	c.state.phase = PhaseReady
	c.state.errMsg = ""
	if c.state.disease == "" && len(diseases) > 0 {
		c.state.disease = diseases[0]
	}
	c.evaluate()
	c.mu.Unlock()

	c.rec.finished(slotDiseases, gen, "", start, domain.OutcomeOK, nil)
	return nil
}

// SetDisease selects a disease
func (c *ClimateController) SetDisease(disease string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.disease = disease
	c.evaluate()
}

// View returns a snapshot of the climate view
func (c *ClimateController) View() ClimateView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := ClimateView{
		Phase:    c.state.phase,
		Loading:  c.runner.inflight > 0,
		Error:    c.state.errMsg,
		Diseases: append([]string{}, c.state.diseases...),
		Disease:  c.state.disease,
		Series:   c.state.series,
	}
	if c.state.series != nil {
		v.TotalCases = ClimateTotalCases(c.state.series.Points)
	}
	return v
}

// WaitBackground blocks until all in-flight fetches complete
func (c *ClimateController) WaitBackground() {
	c.runner.wait()
}

// evaluate fires the climate fetch when the disease changed. Caller holds mu.
func (c *ClimateController) evaluate() {
	c.runner.evaluate(domain.FilterSelection{Disease: c.state.disease})
}
