package domain

// GeoPoint is a district with its coordinates and case total
type GeoPoint struct {
	District   string  `json:"district"`
	State      string  `json:"state_ut"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	TotalCases int     `json:"total_cases"`
}

// MapSnapshot holds the districts reporting a disease in a given week
type MapSnapshot struct {
	Week    string     `json:"week"`
	Disease string     `json:"disease"`
	Points  []GeoPoint `json:"locations"`
}

// MapSummary aggregates a map snapshot for display
type MapSummary struct {
	MapSnapshot
	TotalCases    int `json:"total_cases"`
	DistrictCount int `json:"district_count"`
}
