package domain

// FilterSelection is the filter tuple a view is currently showing.
// An empty field means nothing is selected for that dimension.
type FilterSelection struct {
	State   string `json:"state"`
	Disease string `json:"disease"`
	Week    string `json:"week"`
}

// IsEmpty reports whether no filter is selected
func (s FilterSelection) IsEmpty() bool {
	return s.State == "" && s.Disease == "" && s.Week == ""
}

// DateRange is the span of dates covered by the dataset, both as YYYY-MM-DD
type DateRange struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}
