package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

// HTTPClient implements ChartClient using the HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client targeting baseURL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Statistics(ctx context.Context, lang string) (*api.StatisticsResponse, error) {
	q := url.Values{}
	if lang != "" {
		q.Set("lang", lang)
	}
	var resp api.StatisticsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/statistics", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Options(ctx context.Context, stat model.Statistic, typ model.ChartType, lang string) (*api.OptionsResponse, error) {
	q := url.Values{}
	if typ != "" {
		q.Set("type", string(typ))
	}
	if lang != "" {
		q.Set("lang", lang)
	}
	path := "/v1/statistics/" + url.PathEscape(string(stat)) + "/options"
	var resp api.OptionsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery(path, q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Chart(ctx context.Context, req *api.ChartRequest) (*api.ChartResponse, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"type":    string(req.Options.Type),
		"range":   string(req.Options.Range),
		"compare": string(req.Options.Compare),
		"mode":    string(req.Mode),
		"widget":  req.Widget,
		"lang":    req.Lang,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	path := "/v1/statistics/" + url.PathEscape(string(req.Statistic)) + "/chart"
	var resp api.ChartResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery(path, q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Live(ctx context.Context) (*model.LiveSnapshot, error) {
	var snap model.LiveSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/v1/live", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Widgets lists the widgets the server is tracking.
func (c *HTTPClient) Widgets(ctx context.Context) (*api.WidgetsResponse, error) {
	var resp api.WidgetsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/widgets", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Invalidate drops a cache entry on the server.
func (c *HTTPClient) Invalidate(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/cache/"+key, nil, nil)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// doJSON performs an HTTP request with an optional JSON body and decodes the
// JSON response into result (if non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
