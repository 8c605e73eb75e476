package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyticsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/states", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"states":["Kerala","Tamil Nadu"]}`))
	})
	mux.HandleFunc("/diseases", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"diseases":["Dengue","Malaria"]}`))
	})
	mux.HandleFunc("/weeks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"min_date":"2024-01-01T00:00:00","max_date":"2024-01-22T00:00:00"}`))
	})
	mux.HandleFunc("/trend", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state_ut") != "Tamil Nadu" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"No data for the selected state"}`))
			return
		}
		w.Write([]byte(`{"state_ut":"Tamil Nadu","disease":"Dengue","data":[
			{"week":"2024-01-01","cases":100},{"week":"2024-01-08","cases":200},{"week":"2024-01-15","cases":300}]}`))
	})
	mux.HandleFunc("/top-diseases", func(w http.ResponseWriter, r *http.Request) {
		week := r.URL.Query().Get("week")
		w.Write([]byte(`{"state_ut":"Kerala","week":"` + week + `","diseases":[{"disease":"Dengue","total_cases":900}]}`))
	})
	mux.HandleFunc("/climate-impact", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"disease":"` + r.URL.Query().Get("disease") + `",
			"climate_metrics":{"avg_temp":27.3,"avg_precipitation":4.1,"avg_lai":2.25},
			"time_series":[{"week":"2024-01-01","cases":12,"temp":27,"precipitation":4,"lai":2.2}]}`))
	})
	mux.HandleFunc("/map", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"week":"2024-01-08","disease":"Dengue","locations":[
			{"district":"Chennai","state_ut":"Tamil Nadu","latitude":13.08,"longitude":80.27,"total_cases":40},
			{"district":"Madurai","state_ut":"Tamil Nadu","latitude":9.93,"longitude":78.12,"total_cases":2}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	apiURL, jsonOutput, verbose = "", false, false
	trendState, trendDisease, topState, topWeek = "", "", "", ""
	climateDisease, mapWeek, mapDisease = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFiltersCommand(t *testing.T) {
	srv := analyticsServer(t)

	out, err := run(t, "filters", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Date range: 2024-01-01 to 2024-01-22 (4 weeks)")
	assert.Contains(t, out, "Tamil Nadu")
	assert.Contains(t, out, "Malaria")
}

func TestWeeksCommandJSON(t *testing.T) {
	srv := analyticsServer(t)

	out, err := run(t, "weeks", "--json", "--api-url", srv.URL)
	require.NoError(t, err)

	var weeks []string
	require.NoError(t, json.Unmarshal([]byte(out), &weeks))
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22"}, weeks)
}

func TestTrendCommand(t *testing.T) {
	srv := analyticsServer(t)

	out, err := run(t, "trend", "--state", "Tamil Nadu", "--disease", "Dengue", "--json", "--api-url", srv.URL)
	require.NoError(t, err)

	var report TrendReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 600, report.TotalCases)
	assert.Equal(t, 200, report.WeeklyAverage)
	assert.Equal(t, 3, report.Weeks)
}

func TestTrendCommandReportsServerDetail(t *testing.T) {
	srv := analyticsServer(t)

	_, err := run(t, "trend", "--state", "Kerala", "--disease", "Dengue", "--api-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch trend data: No data for the selected state")
}

func TestTopCommandDefaultsToLatestWeek(t *testing.T) {
	srv := analyticsServer(t)

	out, err := run(t, "top", "--state", "Kerala", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Kerala, week 2024-01-22")
	assert.Contains(t, out, "Dengue")
}

func TestClimateCommandDefaultsToFirstDisease(t *testing.T) {
	srv := analyticsServer(t)

	out, err := run(t, "climate", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Dengue")
	assert.Contains(t, out, "Avg temperature:   27.3°C")
	assert.Contains(t, out, "Total cases:       12")
}

func TestMapCommand(t *testing.T) {
	srv := analyticsServer(t)

	out, err := run(t, "map", "--week", "2024-01-08", "--disease", "Dengue", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Dengue, week 2024-01-08: 42 cases in 2 districts")
	assert.Contains(t, out, "Chennai")
}

func TestUnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := run(t, "weeks", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch date range")
}
