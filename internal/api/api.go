// Package api holds the request and response bodies shared by the chart
// service transports and their clients.
package api

import (
	"time"

	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/options"
	"github.com/alfredjeanlab/worldchart/internal/selection"
)

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status       string     `json:"status"`
	CacheEntries int        `json:"cache_entries"`
	LiveUpdated  *time.Time `json:"live_updated,omitempty"`
}

// Rule is the wire form of a conditional override.
type Rule struct {
	Key   model.OptionKey `json:"key"`
	Value string          `json:"value"`
	Patch options.Schema  `json:"patch"`
}

// Statistic describes the option schema of one statistic.
type Statistic struct {
	Statistic model.Statistic `json:"statistic"`
	Label     string          `json:"label"`
	Base      options.Schema  `json:"base"`
	Rules     []Rule          `json:"rules,omitempty"`
}

// StatisticsResponse lists every statistic in display order.
type StatisticsResponse struct {
	Language   string      `json:"language"`
	Statistics []Statistic `json:"statistics"`
}

// FromStatOptions converts a built schema to its wire form.
func FromStatOptions(o *options.StatOptions) Statistic {
	s := Statistic{Statistic: o.Statistic, Label: o.Label, Base: o.Base}
	for _, r := range o.Rules {
		s.Rules = append(s.Rules, Rule{Key: r.Key, Value: r.Value, Patch: r.Patch})
	}
	return s
}

// OptionsResponse is the schema in effect for one statistic and chart type.
type OptionsResponse struct {
	Statistic model.Statistic `json:"statistic"`
	Label     string          `json:"label"`
	Type      model.ChartType `json:"type"`
	Schema    options.Schema  `json:"schema"`
}

// ChartRequest asks for the bundles of one statistic.
type ChartRequest struct {
	Statistic model.Statistic `json:"statistic"`
	Options   model.OptionSet `json:"options"`
	Mode      model.Mode      `json:"mode,omitempty"`
	Widget    string          `json:"widget,omitempty"`
	Lang      string          `json:"lang,omitempty"`
}

// ChartResponse carries the bundles together with the normalized options
// they were produced for.
type ChartResponse struct {
	Statistic model.Statistic      `json:"statistic"`
	Mode      model.Mode           `json:"mode"`
	Options   model.OptionSet      `json:"options"`
	Token     string               `json:"token,omitempty"`
	Bundles   []model.SeriesBundle `json:"bundles"`
}

// WidgetsResponse lists the widgets with an outstanding selection.
type WidgetsResponse struct {
	Widgets []selection.Entry `json:"widgets"`
}
