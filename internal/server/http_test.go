package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rec.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	env := newTestServer()
	rec := doRequest(t, env.handler, http.MethodGet, "/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp api.HealthResponse
	decodeJSON(t, rec, &resp)
	if resp.Status != "ok" || resp.CacheEntries != 3 {
		t.Errorf("health = %+v", resp)
	}
}

func TestHandleStatistics(t *testing.T) {
	env := newTestServer()
	rec := doRequest(t, env.handler, http.MethodGet, "/v1/statistics?lang=ko")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.StatisticsResponse
	decodeJSON(t, rec, &resp)
	if resp.Language != "ko" || len(resp.Statistics) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	e, ok := resp.Statistics[0].Base.Enabled(model.OptionType)
	if !ok || e.Default() != string(model.TypeLive) {
		t.Errorf("confirmed type entry = %+v", e)
	}
	if _, ok := resp.Statistics[0].Base.Get(model.OptionCompare); !ok {
		t.Error("confirmed base should declare compare")
	}
}

func TestHandleOptions(t *testing.T) {
	env := newTestServer()

	rec := doRequest(t, env.handler, http.MethodGet, "/v1/statistics/confirmed/options?type=live")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.OptionsResponse
	decodeJSON(t, rec, &resp)
	compare, ok := resp.Schema.Enabled(model.OptionCompare)
	if !ok {
		t.Fatal("compare should be enabled for live")
	}
	if vals := compare.Values(); len(vals) != 2 || vals[0].Label != "Yesterday" {
		t.Errorf("compare values = %+v", vals)
	}

	for _, target := range []string{
		"/v1/statistics/recovered/options",
		"/v1/statistics/deceased/options?type=live",
		"/v1/statistics/deceased/options?lang=xx",
	} {
		if rec := doRequest(t, env.handler, http.MethodGet, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestHandleChart(t *testing.T) {
	env := newTestServer()

	rec := doRequest(t, env.handler, http.MethodGet, "/v1/statistics/deceased/chart?type=accumulated&range=all")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("accumulated deceased: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, env.handler, http.MethodGet, "/v1/statistics/deceased/chart?type=weekly&range=oneMonth&widget=w1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.ChartResponse
	decodeJSON(t, rec, &resp)
	if resp.Options.Type != model.TypeWeekly || resp.Options.Range != model.RangeOneMonth {
		t.Errorf("options = %+v", resp.Options)
	}
	if resp.Token == "" {
		t.Error("widget request should carry a token")
	}
	if len(resp.Bundles) != 1 || resp.Bundles[0].XAxis.Unit != "week" {
		t.Fatalf("bundles = %+v", resp.Bundles)
	}
	if got := resp.Bundles[0].DataSet[0].Config.ChartKind; got != model.KindBar {
		t.Errorf("chart kind = %s, want bar", got)
	}
}

func TestHandleChart_UpstreamDown(t *testing.T) {
	env := newTestServer()
	env.fetcher.err = &json.SyntaxError{}
	rec := doRequest(t, env.handler, http.MethodGet, "/v1/statistics/deceased/chart")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	if resp["error"] == "" {
		t.Error("expected error message")
	}
}

func TestHandleLive(t *testing.T) {
	env := newTestServer()
	rec := doRequest(t, env.handler, http.MethodGet, "/v1/live")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap model.LiveSnapshot
	decodeJSON(t, rec, &snap)
	if len(snap.Today()) != 2 || len(snap.Compared(model.CompareYesterday)) != 3 {
		t.Errorf("snapshot = %+v", snap)
	}

	env.live.snap = nil
	if rec := doRequest(t, env.handler, http.MethodGet, "/v1/live"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without snapshot, got %d", rec.Code)
	}
}

func TestHandleWidgets(t *testing.T) {
	env := newTestServer()
	if _, err := env.srv.Selection.Begin("w1"); err != nil {
		t.Fatal(err)
	}
	rec := doRequest(t, env.handler, http.MethodGet, "/v1/widgets")
	var resp api.WidgetsResponse
	decodeJSON(t, rec, &resp)
	if len(resp.Widgets) != 1 || resp.Widgets[0].Widget != "w1" || resp.Widgets[0].Requests != 1 {
		t.Errorf("widgets = %+v", resp.Widgets)
	}
}

func TestHandleInvalidate(t *testing.T) {
	env := newTestServer()
	rec := doRequest(t, env.handler, http.MethodDelete, "/v1/cache/single:deceased:oneWeek")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d; body: %s", rec.Code, rec.Body.String())
	}
	if len(env.cache.invalidated) != 1 || env.cache.invalidated[0] != "single:deceased:oneWeek" {
		t.Errorf("invalidated = %v", env.cache.invalidated)
	}
}

func TestNewHTTPHandler_Auth(t *testing.T) {
	env := newTestServer()
	h := env.srv.NewHTTPHandler("secret")
	if rec := doRequest(t, h, http.MethodGet, "/v1/statistics"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/v1/health"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", rec.Code)
	}
}
