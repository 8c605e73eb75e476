package domain

// ClimateMetrics are the server-side averages of the climate covariates.
// They are never recomputed from the time series.
type ClimateMetrics struct {
	AvgTemp          float64 `json:"avg_temp"`          // °C
	AvgPrecipitation float64 `json:"avg_precipitation"` // mm
	AvgLAI           float64 `json:"avg_lai"`
}

// ClimatePoint is one week of cases with its climate covariates
type ClimatePoint struct {
	Week          string  `json:"week"`
	Cases         int     `json:"cases"`
	Temp          float64 `json:"temp"`
	Precipitation float64 `json:"precipitation"`
	LAI           float64 `json:"lai"`
}

// ClimateSeries represents climate impact data for a disease
type ClimateSeries struct {
	Disease string         `json:"disease"`
	Metrics ClimateMetrics `json:"climate_metrics"`
	Points  []ClimatePoint `json:"time_series"`
}
