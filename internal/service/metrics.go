package service

import (
	"math"

	"github.com/epidash/backend/internal/domain"
)

// TotalCases sums cases across a trend
func TotalCases(points []domain.TrendPoint) int {
	total := 0
	for _, p := range points {
		total += p.Cases
	}
	return total
}

// WeeklyAverage is the rounded mean weekly case count. An empty trend
// averages to 0.
func WeeklyAverage(points []domain.TrendPoint) int {
	n := max(1, len(points))
	return int(math.Round(float64(TotalCases(points)) / float64(n)))
}

// ClimateTotalCases sums cases across a climate time series.
// Climate averages come from the server and are not derived here.
func ClimateTotalCases(points []domain.ClimatePoint) int {
	total := 0
	for _, p := range points {
		total += p.Cases
	}
	return total
}

// MapTotalCases sums case totals across districts
func MapTotalCases(points []domain.GeoPoint) int {
	total := 0
	for _, p := range points {
		total += p.TotalCases
	}
	return total
}

// SummarizeMap attaches totals to a map snapshot
func SummarizeMap(m domain.MapSnapshot) domain.MapSummary {
	return domain.MapSummary{
		MapSnapshot:   m,
		TotalCases:    MapTotalCases(m.Points),
		DistrictCount: len(m.Points),
	}
}
