package model

// ChartKind is the rendering kind requested for a data series.
type ChartKind string

const (
	KindLine ChartKind = "line"
	KindBar  ChartKind = "bar"
)

// ChartConfig is the visual and semantic configuration of one data series.
type ChartConfig struct {
	Color        string     `json:"color"`
	TooltipLabel string     `json:"tooltip_label,omitempty"`
	StatLabel    string     `json:"stat_label,omitempty"`
	ChartKind    ChartKind  `json:"chart_kind"`
	ShowPoints   bool       `json:"show_points"`
	Emphasis     bool       `json:"emphasis"`
	Type         ChartType  `json:"type"`
	Range        ChartRange `json:"range,omitempty"`
}

// Axis describes one chart axis.
type Axis struct {
	ID         string `json:"id,omitempty"`
	Position   string `json:"position"`
	TickFormat string `json:"tick_format,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

// YAxis holds the optional left and right value axes.
type YAxis struct {
	Left  *Axis `json:"left,omitempty"`
	Right *Axis `json:"right,omitempty"`
}

// DataSeries is one transformed series with its configuration.
type DataSeries struct {
	Data   Series      `json:"data"`
	Config ChartConfig `json:"config"`
}

// SeriesBundle is the data for one rendered chart panel.
type SeriesBundle struct {
	DataSet []DataSeries `json:"data_set"`
	XAxis   *Axis        `json:"x_axis"`
	YAxis   *YAxis       `json:"y_axis"`
}
