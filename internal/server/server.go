package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/chart"
	"github.com/alfredjeanlab/worldchart/internal/i18n"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/options"
	"github.com/alfredjeanlab/worldchart/internal/selection"
)

// LiveReader exposes the resident hourly snapshot.
type LiveReader interface {
	Current() *model.LiveSnapshot
}

// CacheControl is the part of the series cache the service exposes.
type CacheControl interface {
	Len() int
	Invalidate(ctx context.Context, key string) error
}

// Deps are the collaborators a ChartServer is built from. Live, Cache and
// Hub may be nil.
type Deps struct {
	Pipeline  *chart.Pipeline
	Live      LiveReader
	Cache     CacheControl
	Selection *selection.Tracker
	Hub       *Hub
	Language  string
	Logger    *slog.Logger
}

// ChartServer serves option schemas and chart data over HTTP and gRPC.
type ChartServer struct {
	pipeline  *chart.Pipeline
	live      LiveReader
	cache     CacheControl
	Selection *selection.Tracker
	hub       *Hub
	lang      string
	logger    *slog.Logger
}

// NewChartServer returns a ChartServer wired to d.
func NewChartServer(d Deps) *ChartServer {
	s := &ChartServer{
		pipeline:  d.Pipeline,
		live:      d.Live,
		cache:     d.Cache,
		Selection: d.Selection,
		hub:       d.Hub,
		lang:      d.Language,
		logger:    d.Logger,
	}
	if s.Selection == nil {
		s.Selection = selection.New()
	}
	if s.hub == nil {
		s.hub = NewHub(nil)
	}
	if s.lang == "" {
		s.lang = i18n.DefaultLanguage
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// upstreamError marks a failure to obtain raw data.
// Transport layers map this to 502 / Unavailable.
type upstreamError struct{ err error }

func (e *upstreamError) Error() string { return "fetch series: " + e.err.Error() }

func (e *upstreamError) Unwrap() error { return e.err }

// isInputError reports whether err was caused by the caller's request.
func isInputError(err error) bool {
	var ie inputError
	var ve *model.ValidationError
	return errors.As(err, &ie) ||
		errors.As(err, &ve) ||
		errors.Is(err, options.ErrInvalidStatistic) ||
		errors.Is(err, chart.ErrUnknownMode)
}

func (s *ChartServer) translator(lang string) (i18n.Translator, error) {
	if lang == "" {
		lang = s.lang
	}
	c, err := i18n.Load(lang)
	if err != nil {
		return nil, inputError(fmt.Sprintf("unsupported language %q", lang))
	}
	return c, nil
}

// Health reports service status.
func (s *ChartServer) Health() *api.HealthResponse {
	resp := &api.HealthResponse{Status: "ok"}
	if s.cache != nil {
		resp.CacheEntries = s.cache.Len()
	}
	if snap := s.currentLive(); snap != nil && !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt
		resp.LiveUpdated = &t
	}
	return resp
}

// Statistics returns the option schema of every statistic.
func (s *ChartServer) Statistics(lang string) (*api.StatisticsResponse, error) {
	t, err := s.translator(lang)
	if err != nil {
		return nil, err
	}
	all, err := options.BuildAll(t)
	if err != nil {
		return nil, err
	}
	resp := &api.StatisticsResponse{Language: t.Language()}
	for _, o := range all {
		resp.Statistics = append(resp.Statistics, api.FromStatOptions(o))
	}
	return resp, nil
}

// Options returns the schema in effect for stat when typ is selected.
func (s *ChartServer) Options(stat model.Statistic, typ model.ChartType, lang string) (*api.OptionsResponse, error) {
	t, err := s.translator(lang)
	if err != nil {
		return nil, err
	}
	o, err := options.Build(stat, t)
	if err != nil {
		return nil, err
	}
	if typ != "" {
		if _, err := o.Normalize(model.OptionSet{Type: typ}); err != nil {
			return nil, err
		}
	}
	resolved := o.Resolve(typ)
	if typ == "" {
		if e, ok := resolved.Enabled(model.OptionType); ok {
			typ = model.ChartType(e.Default())
		}
	}
	return &api.OptionsResponse{Statistic: stat, Label: o.Label, Type: typ, Schema: resolved}, nil
}

// parseMode defaults to COMPACT and accepts either case.
func parseMode(m model.Mode) (model.Mode, error) {
	if m == "" {
		return model.ModeCompact, nil
	}
	m = model.Mode(strings.ToUpper(string(m)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", chart.ErrUnknownMode, m)
	}
	return m, nil
}

// Chart normalizes the requested options and produces the bundles. When a
// widget is named, the result is discarded with selection.ErrSuperseded if
// the widget issued a newer request in the meantime.
func (s *ChartServer) Chart(ctx context.Context, req *api.ChartRequest) (*api.ChartResponse, error) {
	t, err := s.translator(req.Lang)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	o, err := options.Build(req.Statistic, t)
	if err != nil {
		return nil, err
	}
	opts, err := o.Normalize(req.Options)
	if err != nil {
		return nil, err
	}

	var token string
	if req.Widget != "" {
		if token, err = s.Selection.Begin(req.Widget); err != nil {
			return nil, fmt.Errorf("begin selection: %w", err)
		}
	}

	bundles, err := s.pipeline.GetChartData(ctx, t, req.Statistic, opts, mode, s.currentLive())
	if err != nil {
		if isInputError(err) {
			return nil, err
		}
		return nil, &upstreamError{err: err}
	}

	if req.Widget != "" {
		if err := s.Selection.Check(req.Widget, token); err != nil {
			s.logger.Debug("discarding superseded chart", "widget", req.Widget, "token", token)
			return nil, err
		}
	}

	return &api.ChartResponse{
		Statistic: req.Statistic,
		Mode:      mode,
		Options:   opts,
		Token:     token,
		Bundles:   bundles,
	}, nil
}

// Live returns the resident snapshot, or nil before the first load.
func (s *ChartServer) Live() *model.LiveSnapshot {
	return s.currentLive()
}

func (s *ChartServer) currentLive() *model.LiveSnapshot {
	if s.live == nil {
		return nil
	}
	return s.live.Current()
}

// Invalidate drops a cache entry by key.
func (s *ChartServer) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return inputError("key is required")
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, key)
}
