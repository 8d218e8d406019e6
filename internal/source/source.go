// Package source talks to the upstream statistics API.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// ErrUnavailable matches every failure to obtain data from the upstream,
// whether the request could not be made or the upstream answered with an
// error status.
var ErrUnavailable = errors.New("upstream unavailable")

// UpstreamError is a non-2xx answer from the upstream API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream HTTP %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnavailable) match upstream error statuses.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUnavailable
}

// HTTPSource fetches series from the upstream REST API.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPSource returns a source for the API rooted at baseURL
// (e.g. "https://stats.example.com").
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Fetch retrieves the payload described by q. Single-statistic queries hit
// /v1/stats/{stat}; combined queries hit /v1/{apiName} with the statistics
// listed in the stat parameter.
func (s *HTTPSource) Fetch(ctx context.Context, q model.Query) (*model.Payload, error) {
	params := url.Values{}
	if q.Range != "" {
		params.Set("range", string(q.Range))
	}

	if !q.Combined() {
		if len(q.Stats) != 1 {
			return nil, fmt.Errorf("single query needs exactly one statistic, got %d", len(q.Stats))
		}
		var series model.Series
		path := "/v1/stats/" + url.PathEscape(string(q.Stats[0]))
		if err := s.getJSON(ctx, path, params, &series); err != nil {
			return nil, err
		}
		return &model.Payload{Single: series}, nil
	}

	stats := make([]string, len(q.Stats))
	for i, st := range q.Stats {
		stats[i] = string(st)
	}
	params.Set("stat", strings.Join(stats, ","))
	if q.IsCompressed {
		params.Set("compressed", "true")
	}
	apiName := q.APIName
	if apiName == "" {
		apiName = "stats"
	}

	var byStat map[model.Statistic]model.Series
	if err := s.getJSON(ctx, "/v1/"+url.PathEscape(apiName), params, &byStat); err != nil {
		return nil, err
	}
	if byStat == nil {
		byStat = map[model.Statistic]model.Series{}
	}
	return &model.Payload{ByStat: byStat}, nil
}

// FetchLive retrieves the current hourly live snapshot.
func (s *HTTPSource) FetchLive(ctx context.Context) (*model.LiveSnapshot, error) {
	var snap model.LiveSnapshot
	if err := s.getJSON(ctx, "/v1/live", nil, &snap); err != nil {
		return nil, err
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = s.now().UTC()
	}
	return &snap, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, params url.Values, result any) error {
	u := s.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return &UpstreamError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &UpstreamError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrUnavailable, path, err)
	}
	return nil
}
