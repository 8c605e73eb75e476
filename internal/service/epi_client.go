package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/epidash/backend/internal/domain"
	"github.com/epidash/backend/pkg/utils"
)

// RequestTimeout bounds every call to the analytics API
const RequestTimeout = 10 * time.Second

// DefaultBaseURL is where the analytics API listens unless configured otherwise
const DefaultBaseURL = "http://localhost:8000"

// EpiAPI is the set of analytics API operations the views depend on
type EpiAPI interface {
	GetTrend(ctx context.Context, state, disease string) (domain.TrendSeries, error)
	GetTopDiseases(ctx context.Context, state, week string) (domain.TopDiseases, error)
	GetClimateImpact(ctx context.Context, disease string) (domain.ClimateSeries, error)
	GetMap(ctx context.Context, week, disease string) (domain.MapSnapshot, error)
	GetDiseases(ctx context.Context) ([]string, error)
	GetStates(ctx context.Context) ([]string, error)
	GetDateRange(ctx context.Context) (domain.DateRange, error)
}

// EpiClient talks to the epidemiological analytics API
type EpiClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewEpiClient creates a new analytics API client
func NewEpiClient(baseURL string, logger *slog.Logger) *EpiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EpiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
		logger: logger.With("component", "epi_client"),
	}
}

// BaseURL returns the API root the client is bound to
func (c *EpiClient) BaseURL() string {
	return c.baseURL
}

// GetTrend fetches the weekly case trend for a state and disease
func (c *EpiClient) GetTrend(ctx context.Context, state, disease string) (domain.TrendSeries, error) {
	var resp domain.TrendSeries
	err := c.get(ctx, "trend", "/trend", [][2]string{
		{"state_ut", state},
		{"disease", disease},
	}, &resp)
	if err != nil {
		return domain.TrendSeries{}, err
	}
	return resp, nil
}

// GetTopDiseases fetches the highest-burden diseases for a state
func (c *EpiClient) GetTopDiseases(ctx context.Context, state, week string) (domain.TopDiseases, error) {
	var resp domain.TopDiseases
	err := c.get(ctx, "top-diseases", "/top-diseases", [][2]string{
		{"state_ut", state},
		{"week", utils.NormalizeDate(week)},
	}, &resp)
	if err != nil {
		return domain.TopDiseases{}, err
	}
	return resp, nil
}

// GetClimateImpact fetches climate covariates and weekly cases for a disease
func (c *EpiClient) GetClimateImpact(ctx context.Context, disease string) (domain.ClimateSeries, error) {
	var resp domain.ClimateSeries
	err := c.get(ctx, "climate-impact", "/climate-impact", [][2]string{
		{"disease", disease},
	}, &resp)
	if err != nil {
		return domain.ClimateSeries{}, err
	}
	return resp, nil
}

// GetMap fetches per-district case totals for a week and disease
func (c *EpiClient) GetMap(ctx context.Context, week, disease string) (domain.MapSnapshot, error) {
	var resp domain.MapSnapshot
	err := c.get(ctx, "map", "/map", [][2]string{
		{"week", utils.NormalizeDate(week)},
		{"disease", disease},
	}, &resp)
	if err != nil {
		return domain.MapSnapshot{}, err
	}
	return resp, nil
}

// GetDiseases lists every disease in the dataset
func (c *EpiClient) GetDiseases(ctx context.Context) ([]string, error) {
	var resp struct {
		Diseases *[]string `json:"diseases"`
	}
	if err := c.get(ctx, "diseases", "/diseases", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Diseases == nil {
		return nil, &SchemaError{Op: "diseases", Field: "diseases"}
	}
	return *resp.Diseases, nil
}

// GetStates lists every state/UT in the dataset
func (c *EpiClient) GetStates(ctx context.Context) ([]string, error) {
	var resp struct {
		States *[]string `json:"states"`
	}
	if err := c.get(ctx, "states", "/states", nil, &resp); err != nil {
		return nil, err
	}
	if resp.States == nil {
		return nil, &SchemaError{Op: "states", Field: "states"}
	}
	return *resp.States, nil
}

// GetDateRange fetches the dataset's date span, normalised to YYYY-MM-DD
func (c *EpiClient) GetDateRange(ctx context.Context) (domain.DateRange, error) {
	var resp struct {
		MinDate *string `json:"min_date"`
		MaxDate *string `json:"max_date"`
	}
	if err := c.get(ctx, "date range", "/weeks", nil, &resp); err != nil {
		return domain.DateRange{}, err
	}
	if resp.MinDate == nil || *resp.MinDate == "" {
		return domain.DateRange{}, &SchemaError{Op: "date range", Field: "min_date"}
	}
	if resp.MaxDate == nil || *resp.MaxDate == "" {
		return domain.DateRange{}, &SchemaError{Op: "date range", Field: "max_date"}
	}
	return domain.DateRange{
		MinDate: utils.NormalizeDate(*resp.MinDate),
		MaxDate: utils.NormalizeDate(*resp.MaxDate),
	}, nil
}

// Health checks analytics API connectivity
func (c *EpiClient) Health(ctx context.Context) error {
	return c.get(ctx, "health", "/", nil, nil)
}

// get issues a GET and decodes a JSON body into out
func (c *EpiClient) get(ctx context.Context, op, path string, params [][2]string, out any) error {
	target := c.baseURL + path
	if q := encodeQuery(params); q != "" {
		target += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("epi: %s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	timeout := c.effectiveTimeout(ctx)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "op", op, "url", target, "error", err)
		if isTimeout(err) {
			return &TimeoutError{Op: op, URL: target, Timeout: timeout}
		}
		return &TransportError{Op: op, URL: target, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Op: op, URL: target, Timeout: timeout}
		}
		return &TransportError{Op: op, URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := newHTTPError(op, resp.StatusCode, body)
		c.logger.Error("api error",
			"op", op,
			"url", target,
			"status", resp.StatusCode,
			"message", httpErr.Message,
		)
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("epi: %s: failed to decode response: %w", op, err)
	}
	return nil
}

// encodeQuery percent-encodes parameters in order, spaces as %20
func encodeQuery(params [][2]string) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, url.QueryEscape(p[0])+"="+strings.ReplaceAll(url.QueryEscape(p[1]), "+", "%20"))
	}
	return strings.Join(parts, "&")
}

// effectiveTimeout is the client timeout, or the time left on ctx when its
// deadline comes first
func (c *EpiClient) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := c.httpClient.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline).Round(time.Millisecond)
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
