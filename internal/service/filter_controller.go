package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/epidash/backend/internal/domain"
	"github.com/epidash/backend/pkg/utils"
)

// FilterStatus is the load state of the filter domains
type FilterStatus string

const (
	FilterIdle    FilterStatus = "idle"
	FilterLoading FilterStatus = "loading"
	FilterReady   FilterStatus = "ready"
	FilterError   FilterStatus = "error"
)

const slotFilters = "filters"

// FilterDomains are the selectable values for each filter dimension.
// Nothing is exposed until all three domains have loaded.
type FilterDomains struct {
	Status    FilterStatus      `json:"status"`
	Error     string            `json:"error,omitempty"`
	States    []string          `json:"states"`
	Diseases  []string          `json:"diseases"`
	DateRange *domain.DateRange `json:"date_range,omitempty"`
	Weeks     []string          `json:"weeks"`
}

// FilterController loads the filter domains once per view session
type FilterController struct {
	api EpiAPI
	rec *fetchRecorder

	loadMu sync.Mutex // serializes Load

	mu        sync.RWMutex
	status    FilterStatus
	errMsg    string
	states    []string
	diseases  []string
	dateRange domain.DateRange
	weeks     []string
	attempts  uint64
}

// NewFilterController creates a standalone filter controller
func NewFilterController(api EpiAPI, repo domain.FetchLogRepository, logger *slog.Logger) *FilterController {
	return newFilterController(api, newFetchRecorder(repo, logger, "filters", ""))
}

func newFilterController(api EpiAPI, rec *fetchRecorder) *FilterController {
	return &FilterController{
		api:    api,
		rec:    rec,
		status: FilterIdle,
	}
}

// Load fetches states, diseases and the date range concurrently. It fails
// as a unit: if any request fails none of the domains are exposed. After
// one successful load it is a no-op. first reports whether this call did
// the successful load.
func (f *FilterController) Load(ctx context.Context) (first bool, err error) {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	f.mu.Lock()
	if f.status == FilterReady {
		f.mu.Unlock()
		return false, nil
	}
	f.status = FilterLoading
	f.errMsg = ""
	f.attempts++
	gen := f.attempts
	f.mu.Unlock()

	start := f.rec.started(slotFilters, gen, "states,diseases,date_range")

	var (
		g         errgroup.Group
		states    []string
		diseases  []string
		dateRange domain.DateRange
	)
	g.Go(func() error {
		var err error
		states, err = f.api.GetStates(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		diseases, err = f.api.GetDiseases(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		dateRange, err = f.api.GetDateRange(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		f.mu.Lock()
		f.status = FilterError
		f.errMsg = "Failed to load filter options"
		f.mu.Unlock()
		f.rec.finished(slotFilters, gen, "", start, domain.OutcomeError, err)
		return false, err
	}

	f.mu.Lock()
	f.states = states
	f.diseases = diseases
	f.dateRange = dateRange
	f.weeks = utils.WeekList(dateRange.MinDate, dateRange.MaxDate)
	f.status = FilterReady
	f.mu.Unlock()

	f.rec.finished(slotFilters, gen, "", start, domain.OutcomeOK, nil)
	return true, nil
}

// Ready reports whether the domains are loaded
func (f *FilterController) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status == FilterReady
}

// DateRange returns the loaded date range
func (f *FilterController) DateRange() (domain.DateRange, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dateRange, f.status == FilterReady
}

// Domains returns a snapshot of the filter domains
func (f *FilterController) Domains() FilterDomains {
	f.mu.RLock()
	defer f.mu.RUnlock()

	d := FilterDomains{
		Status:   f.status,
		Error:    f.errMsg,
		States:   []string{},
		Diseases: []string{},
		Weeks:    []string{},
	}
	if f.status != FilterReady {
		return d
	}
	d.States = append(d.States, f.states...)
	d.Diseases = append(d.Diseases, f.diseases...)
	d.Weeks = append(d.Weeks, f.weeks...)
	dr := f.dateRange
	d.DateRange = &dr
	return d
}
