package domain

// TrendPoint is one week of a case trend
type TrendPoint struct {
	Week  string `json:"week"`
	Cases int    `json:"cases"`
}

// TrendSeries is the weekly case trend for a state and disease.
// Points keep the order the analytics API returned them in.
type TrendSeries struct {
	State   string       `json:"state_ut"`
	Disease string       `json:"disease"`
	Points  []TrendPoint `json:"data"`
}

// DiseaseRanking is a disease with its case total
type DiseaseRanking struct {
	Disease    string `json:"disease"`
	TotalCases int    `json:"total_cases"`
}

// TopDiseases ranks diseases for a state, highest total first as ranked by the server
type TopDiseases struct {
	State    string           `json:"state_ut"`
	Week     string           `json:"week"`
	Rankings []DiseaseRanking `json:"diseases"`
}
