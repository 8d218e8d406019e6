package chart

import "github.com/alfredjeanlab/worldchart/internal/model"

// Palette colors shared by every renderer.
const (
	ColorPrimary = "#3B82F6" // blue500
	ColorMuted   = "#9CA3AF" // gray400
)

// ConfigOverrides carries optional per-series settings. Zero fields keep the
// default.
type ConfigOverrides struct {
	Color        string
	TooltipLabel string
	StatLabel    string
	ChartKind    model.ChartKind
	ShowPoints   *bool
	Emphasis     *bool
}

// DefaultConfig returns the series config for opts with overrides applied.
func DefaultConfig(opts model.OptionSet, o ConfigOverrides) model.ChartConfig {
	cfg := model.ChartConfig{
		Color:     ColorPrimary,
		ChartKind: defaultKind(opts.Type),
		Emphasis:  true,
		Type:      opts.Type,
		Range:     opts.Range,
	}
	if o.Color != "" {
		cfg.Color = o.Color
	}
	if o.TooltipLabel != "" {
		cfg.TooltipLabel = o.TooltipLabel
	}
	if o.StatLabel != "" {
		cfg.StatLabel = o.StatLabel
	}
	if o.ChartKind != "" {
		cfg.ChartKind = o.ChartKind
	}
	if o.ShowPoints != nil {
		cfg.ShowPoints = *o.ShowPoints
	}
	if o.Emphasis != nil {
		cfg.Emphasis = *o.Emphasis
	}
	return cfg
}

func defaultKind(t model.ChartType) model.ChartKind {
	switch t {
	case model.TypeDaily, model.TypeWeekly, model.TypeMonthly:
		return model.KindBar
	}
	return model.KindLine
}

// Assemble pairs transformed samples with their config. A nil series is
// emitted as empty data.
func Assemble(samples model.Series, cfg model.ChartConfig) model.DataSeries {
	if samples == nil {
		samples = model.Series{}
	}
	return model.DataSeries{Data: samples, Config: cfg}
}

// XAxis returns the time axis for opts.
func XAxis(opts model.OptionSet) *model.Axis {
	a := &model.Axis{Position: "bottom"}
	switch opts.Type {
	case model.TypeLive:
		a.TickFormat = "15h"
		a.Unit = "hour"
	case model.TypeMonthly:
		a.TickFormat = "2006.01"
		a.Unit = "month"
	case model.TypeWeekly:
		a.TickFormat = "01.02"
		a.Unit = "week"
	default:
		a.TickFormat = "01.02"
		a.Unit = "day"
	}
	return a
}

// YAxis returns the value axes for opts, with the right axis keyed to rightID.
func YAxis(opts model.OptionSet, rightID string) *model.YAxis {
	unit := "count"
	if opts.Type == model.TypeAccumulated {
		unit = "total"
	}
	return &model.YAxis{
		Right: &model.Axis{
			ID:         rightID,
			Position:   "right",
			TickFormat: "#,###",
			Unit:       unit,
		},
	}
}
