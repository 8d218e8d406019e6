package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// HTML writes a standalone page with one echarts panel per bundle.
func HTML(w io.Writer, title string, bundles []model.SeriesBundle) error {
	page := components.NewPage().SetPageTitle(title)
	for i, b := range bundles {
		name := bundleTitle(b)
		if name == "" {
			name = fmt.Sprintf("%s #%d", title, i+1)
		}
		page.AddCharts(panel(name, b))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// panel builds a bar chart when every series asks for bars, and a line
// chart otherwise.
func panel(title string, b model.SeriesBundle) components.Charter {
	labels := axisLabels(b)
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: xRange(b)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(b.DataSet) > 1)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(yAxisOpts(b.YAxis)),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
	}

	if allBars(b) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(labels)
		for _, ds := range b.DataSet {
			bar.AddSeries(seriesName(ds.Config), barData(ds.Data, labels, b.XAxis),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Config.Color}))
		}
		return bar
	}

	line := charts.NewLine()
	line.SetGlobalOptions(global...)
	line.SetXAxis(labels)
	for _, ds := range b.DataSet {
		style := opts.LineStyle{Color: ds.Config.Color}
		if !ds.Config.Emphasis {
			style.Type = "dashed"
		}
		line.AddSeries(seriesName(ds.Config), lineData(ds.Data, labels, b.XAxis),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(ds.Config.ShowPoints)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Config.Color}),
			charts.WithLineStyleOpts(style),
		)
	}
	return line
}

func allBars(b model.SeriesBundle) bool {
	if len(b.DataSet) == 0 {
		return false
	}
	for _, ds := range b.DataSet {
		if ds.Config.ChartKind != model.KindBar {
			return false
		}
	}
	return true
}

func seriesName(cfg model.ChartConfig) string {
	if cfg.TooltipLabel != "" {
		return cfg.TooltipLabel
	}
	if cfg.StatLabel != "" {
		return cfg.StatLabel
	}
	return string(cfg.Type)
}

func yAxisOpts(y *model.YAxis) opts.YAxis {
	a := opts.YAxis{Type: "value"}
	if y != nil && y.Right != nil {
		a.Name = y.Right.Unit
	}
	return a
}

func tickLayout(x *model.Axis) string {
	if x != nil && x.TickFormat != "" {
		return x.TickFormat
	}
	return "01.02"
}

// axisLabels takes the tick labels of the longest series. Shorter series
// are aligned onto them.
func axisLabels(b model.SeriesBundle) []string {
	layout := tickLayout(b.XAxis)
	var longest model.Series
	for _, ds := range b.DataSet {
		if len(ds.Data) > len(longest) {
			longest = ds.Data
		}
	}
	labels := make([]string, 0, len(longest))
	seen := make(map[string]bool, len(longest))
	for _, s := range longest {
		l := s.Time.Format(layout)
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	return labels
}

// aligned places each sample value at its label's index. Missing points
// stay nil so echarts leaves a gap.
func aligned(series model.Series, labels []string, x *model.Axis) []any {
	layout := tickLayout(x)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	out := make([]any, len(labels))
	for _, s := range series {
		if i, ok := index[s.Time.Format(layout)]; ok {
			out[i] = s.Value
		}
	}
	return out
}

func lineData(series model.Series, labels []string, x *model.Axis) []opts.LineData {
	vals := aligned(series, labels, x)
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func barData(series model.Series, labels []string, x *model.Axis) []opts.BarData {
	vals := aligned(series, labels, x)
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}
