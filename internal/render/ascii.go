// Package render draws series bundles for the terminal and as standalone
// HTML pages.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/alfredjeanlab/worldchart/internal/chart"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/ui"
)

// ASCIIOptions controls terminal rendering.
type ASCIIOptions struct {
	Width  int // plot columns; 0 lets asciigraph size to the data
	Height int // plot rows; default 10
	Color  bool
}

var seriesColors = map[string]asciigraph.AnsiColor{
	chart.ColorPrimary: asciigraph.Blue,
	chart.ColorMuted:   asciigraph.DarkGray,
}

// ASCII writes one plot per bundle, each followed by a legend line.
func ASCII(w io.Writer, bundles []model.SeriesBundle, o ASCIIOptions) error {
	if o.Height <= 0 {
		o.Height = 10
	}
	for i, b := range bundles {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, plotBundle(b, o)); err != nil {
			return err
		}
	}
	return nil
}

func plotBundle(b model.SeriesBundle, o ASCIIOptions) string {
	var (
		data   [][]float64
		colors []asciigraph.AnsiColor
		legend []string
	)
	for _, ds := range b.DataSet {
		if len(ds.Data) == 0 {
			continue
		}
		data = append(data, ds.Data.Values())
		colors = append(colors, colorFor(ds.Config.Color))
		legend = append(legend, legendEntry(ds.Config, o.Color))
	}

	var sb strings.Builder
	if title := bundleTitle(b); title != "" {
		sb.WriteString(title + "\n")
	}
	if len(data) == 0 {
		sb.WriteString("(no data)\n")
		return sb.String()
	}

	opts := []asciigraph.Option{
		asciigraph.Height(o.Height),
		asciigraph.Caption(xRange(b)),
	}
	if o.Width > 0 {
		opts = append(opts, asciigraph.Width(o.Width))
	}
	if o.Color {
		opts = append(opts,
			asciigraph.SeriesColors(colors...),
			asciigraph.AxisColor(asciigraph.DarkGray),
			asciigraph.LabelColor(asciigraph.DarkGray),
		)
	}
	sb.WriteString(asciigraph.PlotMany(data, opts...))
	sb.WriteString("\n" + strings.Join(legend, "  ") + "\n")
	return sb.String()
}

func colorFor(hex string) asciigraph.AnsiColor {
	if c, ok := seriesColors[hex]; ok {
		return c
	}
	return asciigraph.Default
}

// bundleTitle is the statistic label of the first labelled series.
func bundleTitle(b model.SeriesBundle) string {
	for _, ds := range b.DataSet {
		if ds.Config.StatLabel != "" {
			return ds.Config.StatLabel
		}
	}
	return ""
}

func legendEntry(cfg model.ChartConfig, color bool) string {
	label := cfg.TooltipLabel
	if label == "" {
		label = cfg.StatLabel
	}
	if label == "" {
		label = string(cfg.Type)
	}
	marker := "■"
	if color {
		marker = ui.RenderHex(cfg.Color, marker)
	}
	return marker + " " + label
}

// xRange formats the earliest and latest timestamps with the x axis tick
// format.
func xRange(b model.SeriesBundle) string {
	layout := "01.02"
	if b.XAxis != nil && b.XAxis.TickFormat != "" {
		layout = b.XAxis.TickFormat
	}
	var first, last time.Time
	for _, ds := range b.DataSet {
		for _, s := range ds.Data {
			if first.IsZero() || s.Time.Before(first) {
				first = s.Time
			}
			if s.Time.After(last) {
				last = s.Time
			}
		}
	}
	if first.Equal(last) {
		return first.Format(layout)
	}
	return first.Format(layout) + " ~ " + last.Format(layout)
}
