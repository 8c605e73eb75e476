package service

import (
	"context"
	"errors"
	"sync"

	"github.com/epidash/backend/internal/domain"
)

var errUpstream = errors.New("upstream unavailable")

// fakeEpiAPI serves canned data and counts calls. Trend and climate
// requests for a gated disease block until the gate is closed.
type fakeEpiAPI struct {
	mu sync.Mutex

	states    []string
	diseases  []string
	dateRange domain.DateRange

	statesErr   error
	diseasesErr error
	rangeErr    error
	trendErr    error
	topErr      error
	climateErr  error

	gates map[string]chan struct{}
	calls map[string]int
}

func newFakeEpiAPI() *fakeEpiAPI {
	return &fakeEpiAPI{
		states:    []string{"Kerala", "Maharashtra"},
		diseases:  []string{"Dengue", "Malaria"},
		dateRange: domain.DateRange{MinDate: "2024-01-01", MaxDate: "2024-01-22"},
		calls:     make(map[string]int),
	}
}

func (f *fakeEpiAPI) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeEpiAPI) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeEpiAPI) set(fn func(f *fakeEpiAPI)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

// gate holds op requests for disease until the returned channel is closed
func (f *fakeEpiAPI) gate(op, disease string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[string]chan struct{})
	}
	ch := make(chan struct{})
	f.gates[op+"/"+disease] = ch
	return ch
}

func (f *fakeEpiAPI) wait(op, disease string) {
	f.mu.Lock()
	ch := f.gates[op+"/"+disease]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeEpiAPI) GetTrend(ctx context.Context, state, disease string) (domain.TrendSeries, error) {
	f.count("trend")
	f.wait("trend", disease)

	f.mu.Lock()
	err := f.trendErr
	f.mu.Unlock()
	if err != nil {
		return domain.TrendSeries{}, err
	}
	return domain.TrendSeries{
		State:   state,
		Disease: disease,
		Points: []domain.TrendPoint{
			{Week: "2024-01-01", Cases: 100},
			{Week: "2024-01-08", Cases: 200},
			{Week: "2024-01-15", Cases: 300},
		},
	}, nil
}

func (f *fakeEpiAPI) GetTopDiseases(ctx context.Context, state, week string) (domain.TopDiseases, error) {
	f.count("top-diseases")
	f.mu.Lock()
	err := f.topErr
	f.mu.Unlock()
	if err != nil {
		return domain.TopDiseases{}, err
	}
	return domain.TopDiseases{
		State: state,
		Week:  week,
		Rankings: []domain.DiseaseRanking{
			{Disease: "Dengue", TotalCases: 900},
			{Disease: "Malaria", TotalCases: 300},
		},
	}, nil
}

func (f *fakeEpiAPI) GetClimateImpact(ctx context.Context, disease string) (domain.ClimateSeries, error) {
	f.count("climate-impact")
	f.wait("climate-impact", disease)

	f.mu.Lock()
	err := f.climateErr
	f.mu.Unlock()
	if err != nil {
		return domain.ClimateSeries{}, err
	}
	return domain.ClimateSeries{
		Disease: disease,
		Metrics: domain.ClimateMetrics{AvgTemp: 28.5, AvgPrecipitation: 3.2, AvgLAI: 1.7},
		Points: []domain.ClimatePoint{
			{Week: "2024-01-01", Cases: 40, Temp: 28, Precipitation: 3, LAI: 1.5},
			{Week: "2024-01-08", Cases: 60, Temp: 29, Precipitation: 3.4, LAI: 1.9},
		},
	}, nil
}

func (f *fakeEpiAPI) GetMap(ctx context.Context, week, disease string) (domain.MapSnapshot, error) {
	f.count("map")
	return domain.MapSnapshot{
		Week:    week,
		Disease: disease,
		Points: []domain.GeoPoint{
			{District: "Pune", State: "Maharashtra", Latitude: 18.52, Longitude: 73.85, TotalCases: 12},
			{District: "Ernakulam", State: "Kerala", Latitude: 9.98, Longitude: 76.28, TotalCases: 30},
		},
	}, nil
}

func (f *fakeEpiAPI) GetDiseases(ctx context.Context) ([]string, error) {
	f.count("diseases")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.diseasesErr != nil {
		return nil, f.diseasesErr
	}
	return append([]string{}, f.diseases...), nil
}

func (f *fakeEpiAPI) GetStates(ctx context.Context) ([]string, error) {
	f.count("states")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statesErr != nil {
		return nil, f.statesErr
	}
	return append([]string{}, f.states...), nil
}

func (f *fakeEpiAPI) GetDateRange(ctx context.Context) (domain.DateRange, error) {
	f.count("date range")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rangeErr != nil {
		return domain.DateRange{}, f.rangeErr
	}
	return f.dateRange, nil
}
