// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

// Package ga4 implements the Google Analytics Data API (v1beta) client.
//
// The client authenticates with a service-account JWT (analytics.readonly
// scope), paces outbound calls against GA4 quota limits, and converts the
// Data API's nested row shape into the flat report.Result consumed by the
// normalizer. Failures carry the upstream message verbatim as *APIError;
// the client never retries on its own (the circuit breaker in breaker.go
// only rejects, it does not replay).
package ga4

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"github.com/tomtom215/metior/internal/config"
	"github.com/tomtom215/metior/internal/metrics"
	"github.com/tomtom215/metior/internal/report"
)

const (
	// defaultEndpoint is the public Data API base URL.
	defaultEndpoint = "https://analyticsdata.googleapis.com"

	// scopeAnalyticsReadonly is the OAuth scope for report queries.
	scopeAnalyticsReadonly = "https://www.googleapis.com/auth/analytics.readonly"

	// maxErrorBodySize caps how much of an error response is read back for
	// diagnostics, preventing unbounded allocation on large error bodies.
	maxErrorBodySize = 64 * 1024
)

// ReportClient is the reporting capability consumed by the HTTP handlers.
// Implemented by Client for production and by mocks in tests; the
// CircuitBreakerClient wrapper also satisfies it.
//
// All methods are safe for concurrent use and honor context cancellation.
type ReportClient interface {
	// RunRealtimeReport queries activity from the last 30 minutes.
	RunRealtimeReport(ctx context.Context, dimensions, metricNames []string, limit int64) (*report.Result, error)

	// RunReport queries aggregated data over a date range.
	RunReport(ctx context.Context, dateRange DateRange, dimensions, metricNames []string, limit int64) (*report.Result, error)
}

// Client talks to the GA4 Data API over REST for a single property.
type Client struct {
	property   string // "properties/<numeric id>"
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a Data API client from configuration. The
// service-account key file is read once, here; a missing or malformed key
// is a startup error, not a per-request one.
func NewClient(cfg *config.GA4Config) (*Client, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, scopeAnalyticsReadonly)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	httpClient := jwtCfg.Client(context.Background())
	httpClient.Timeout = cfg.Timeout

	return newClient(cfg.Property(), cfg.Endpoint, httpClient, newLimiter(cfg.RequestsPerSecond)), nil
}

// newClient wires a client from parts; tests use it to inject an
// unauthenticated http.Client pointed at a local server.
func newClient(property, baseURL string, httpClient *http.Client, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = defaultEndpoint
	}
	return &Client{
		property:   property,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// newLimiter builds the outbound pacer. Zero qps disables pacing.
func newLimiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(qps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(qps), burst)
}

// RunRealtimeReport implements ReportClient.
func (c *Client) RunRealtimeReport(ctx context.Context, dimensions, metricNames []string, limit int64) (*report.Result, error) {
	body := runReportBody{
		Dimensions: newDimensions(dimensions),
		Metrics:    newMetrics(metricNames),
		Limit:      limit,
	}
	return c.run(ctx, "runRealtimeReport", body)
}

// RunReport implements ReportClient.
func (c *Client) RunReport(ctx context.Context, dateRange DateRange, dimensions, metricNames []string, limit int64) (*report.Result, error) {
	body := runReportBody{
		DateRanges: []DateRange{dateRange},
		Dimensions: newDimensions(dimensions),
		Metrics:    newMetrics(metricNames),
		Limit:      limit,
	}
	return c.run(ctx, "runReport", body)
}

// run posts one report request and decodes the response.
func (c *Client) run(ctx context.Context, method string, body runReportBody) (*report.Result, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}
	metrics.UpstreamRateLimitWait.Observe(time.Since(waitStart).Seconds())

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/%s:%s", c.baseURL, c.property, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(method, 0, time.Since(start), err)
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp)
		metrics.RecordUpstreamRequest(method, resp.StatusCode, time.Since(start), apiErr)
		return nil, apiErr
	}
	metrics.RecordUpstreamRequest(method, resp.StatusCode, time.Since(start), nil)

	var decoded reportResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	return toResult(&decoded), nil
}

// decodeAPIError parses the google.rpc error envelope from a non-2xx
// response, falling back to the raw (truncated) body when it is not JSON.
func decodeAPIError(resp *http.Response) *APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		body = []byte("(failed to read response body)")
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = fmt.Sprintf("%d %s", resp.StatusCode, envelope.Error.Message)
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("GA4 Data API returned status %d: %s", resp.StatusCode, string(body))
	return apiErr
}

// toResult flattens the Data API row shape into the normalizer's input.
func toResult(resp *reportResponse) *report.Result {
	rows := make([]report.Row, 0, len(resp.Rows))
	for _, wr := range resp.Rows {
		row := report.Row{
			Dimensions: make([]string, 0, len(wr.DimensionValues)),
			Metrics:    make([]string, 0, len(wr.MetricValues)),
		}
		for _, dv := range wr.DimensionValues {
			row.Dimensions = append(row.Dimensions, dv.Value)
		}
		for _, mv := range wr.MetricValues {
			row.Metrics = append(row.Metrics, mv.Value)
		}
		rows = append(rows, row)
	}
	return &report.Result{Rows: rows, RowCount: resp.RowCount}
}
