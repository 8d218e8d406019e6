package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/selection"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ChartServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/statistics", s.handleStatistics)
	mux.HandleFunc("GET /v1/statistics/{stat}/options", s.handleOptions)
	mux.HandleFunc("GET /v1/statistics/{stat}/chart", s.handleChart)
	mux.HandleFunc("GET /v1/live", s.handleLive)
	mux.HandleFunc("GET /v1/widgets", s.handleWidgets)
	mux.HandleFunc("DELETE /v1/cache/{key...}", s.handleInvalidate)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *ChartServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Health())
}

// handleStatistics handles GET /v1/statistics.
func (s *ChartServer) handleStatistics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Statistics(r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleOptions handles GET /v1/statistics/{stat}/options.
func (s *ChartServer) handleOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.Options(model.Statistic(r.PathValue("stat")), model.ChartType(q.Get("type")), q.Get("lang"))
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChart handles GET /v1/statistics/{stat}/chart.
func (s *ChartServer) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &api.ChartRequest{
		Statistic: model.Statistic(r.PathValue("stat")),
		Options: model.OptionSet{
			Type:    model.ChartType(q.Get("type")),
			Range:   model.ChartRange(q.Get("range")),
			Compare: model.CompareKey(q.Get("compare")),
		},
		Mode:   model.Mode(q.Get("mode")),
		Widget: q.Get("widget"),
		Lang:   q.Get("lang"),
	}
	resp, err := s.Chart(r.Context(), req)
	if err != nil {
		status := httpStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("chart request failed", "statistic", req.Statistic, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLive handles GET /v1/live.
func (s *ChartServer) handleLive(w http.ResponseWriter, _ *http.Request) {
	snap := s.Live()
	if snap == nil {
		writeError(w, http.StatusNotFound, "no live snapshot loaded")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleWidgets handles GET /v1/widgets.
func (s *ChartServer) handleWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.WidgetsResponse{Widgets: s.Selection.Widgets()})
}

// handleInvalidate handles DELETE /v1/cache/{key...}.
func (s *ChartServer) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := s.Invalidate(r.Context(), r.PathValue("key")); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// httpStatus maps service errors to HTTP status codes.
func httpStatus(err error) int {
	var ue *upstreamError
	switch {
	case isInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, selection.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &ue):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
