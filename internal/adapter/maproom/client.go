// Package maproom is the HTTP adapter for the IRI fbfmaproom2 API.
package maproom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/couchcryptid/forecast-trigger-etl/internal/observability"
)

const (
	defaultBaseURL = "http://iridl.ldeo.columbia.edu/fbfmaproom2"
	defaultToolURL = "https://iridl.ldeo.columbia.edu/fbfmaproom2"
)

// Credentials holds optional basic-auth credentials for the maproom API.
type Credentials struct {
	Username string
	Password string
}

// Client talks to the maproom export and regions endpoints.
type Client struct {
	baseURL    string
	toolURL    string
	creds      Credentials
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a maproom API client. Empty credentials disable basic auth.
func NewClient(creds Credentials, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		toolURL: defaultToolURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchExport retrieves and flattens one export payload. A non-200 response
// yields a *domain.APIError and no table; a single attempt is made.
func (c *Client) FetchExport(ctx context.Context, p domain.ExportParams) (domain.ExportTable, error) {
	params := url.Values{
		"season":           {p.Season},
		"issue_month0":     {strconv.Itoa(p.IssueMonth0)},
		"freq":             {strconv.Itoa(p.Frequency)},
		"predictor":        {p.Predictor},
		"predictand":       {p.Predictand},
		"include_upcoming": {strconv.FormatBool(p.IncludeUpcoming)},
		"mode":             {strconv.Itoa(p.Mode)},
		"region":           {strings.Join(p.Regions, ",")},
	}
	u := fmt.Sprintf("%s/%s/export?%s", c.baseURL, url.PathEscape(p.Maproom), params.Encode())

	body, err := c.doRequest(ctx, u, "export")
	if err != nil {
		return domain.ExportTable{}, err
	}

	table, err := domain.FlattenExport(body)
	if err != nil {
		return domain.ExportTable{}, fmt.Errorf("export %s: %w", p.Maproom, err)
	}
	return table, nil
}

// DesignToolURL builds the public maproom design-tool link for a query, so
// analysts can jump from a table row back to the interactive tool.
func (c *Client) DesignToolURL(p domain.ExportParams) string {
	params := url.Values{
		"mode":             {strconv.Itoa(p.Mode)},
		"map_column":       {p.Predictor},
		"season":           {p.Season},
		"predictors":       {p.Predictor},
		"predictand":       {p.Predictand},
		"year":             {strconv.Itoa(p.Year)},
		"issue_month0":     {strconv.Itoa(p.IssueMonth0)},
		"freq":             {strconv.Itoa(p.Frequency)},
		"severity":         {"0"},
		"include_upcoming": {strconv.FormatBool(p.IncludeUpcoming)},
	}
	return fmt.Sprintf("%s/%s?%s", c.toolURL, url.PathEscape(p.Maproom), params.Encode())
}

// Regions fetches the key/label pairs for all regions of a maproom at the
// given administrative level. For levels above 0 with NeedValidKeys set, the
// result is filtered to the caller's whitelist.
func (c *Client) Regions(ctx context.Context, p domain.RegionsParams) ([]domain.AdminRegion, error) {
	params := url.Values{
		"country": {p.Maproom},
		"level":   {strconv.Itoa(p.Level)},
	}
	u := fmt.Sprintf("%s/regions?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, u, "regions")
	if err != nil {
		return nil, err
	}

	var resp regionsResponse
	if err := unmarshalRegions(body, &resp); err != nil {
		return nil, err
	}

	regions := resp.Regions
	if p.Level != 0 && p.NeedValidKeys {
		regions = filterRegions(regions, p.ValidKeys)
	}
	return regions, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.creds.Username != "" {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("maproom API error",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
		return nil, &domain.APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	c.metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	return body, nil
}

// Maproom API response types.

type regionsResponse struct {
	Regions []domain.AdminRegion
}

// unmarshalRegions decodes the regions payload. Keys arrive as strings or
// numbers depending on the maproom's admin-level configuration, so they are
// decoded loosely and normalized to strings.
func unmarshalRegions(body []byte, resp *regionsResponse) error {
	var wire struct {
		Regions []struct {
			Key   json.RawMessage `json:"key"`
			Label string          `json:"label"`
		} `json:"regions"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return fmt.Errorf("parse regions payload: %w", err)
	}

	resp.Regions = make([]domain.AdminRegion, 0, len(wire.Regions))
	for _, r := range wire.Regions {
		resp.Regions = append(resp.Regions, domain.AdminRegion{
			Key:   rawKeyString(r.Key),
			Label: r.Label,
		})
	}
	return nil
}

func rawKeyString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func filterRegions(regions []domain.AdminRegion, validKeys []string) []domain.AdminRegion {
	valid := make(map[string]bool, len(validKeys))
	for _, k := range validKeys {
		valid[k] = true
	}
	filtered := make([]domain.AdminRegion, 0, len(regions))
	for _, r := range regions {
		if valid[r.Key] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
