package model

// Statistic identifies the metric a chart displays.
type Statistic string

const (
	StatConfirmed Statistic = "confirmed"
	StatDeceased  Statistic = "deceased"
)

// String returns the string representation of the statistic.
func (s Statistic) String() string {
	return string(s)
}

// IsValid checks whether the statistic is a known value.
func (s Statistic) IsValid() bool {
	switch s {
	case StatConfirmed, StatDeceased:
		return true
	}
	return false
}

// AllStatistics returns every supported statistic in display order.
func AllStatistics() []Statistic {
	return []Statistic{StatConfirmed, StatDeceased}
}

// ChartType selects how raw samples are bucketed before rendering.
type ChartType string

const (
	TypeLive        ChartType = "live"
	TypeDaily       ChartType = "daily"
	TypeWeekly      ChartType = "weekly"
	TypeMonthly     ChartType = "monthly"
	TypeAccumulated ChartType = "accumulated"
)

// String returns the string representation of the chart type.
func (t ChartType) String() string {
	return string(t)
}

// IsValid checks whether the chart type is a known value.
func (t ChartType) IsValid() bool {
	switch t {
	case TypeLive, TypeDaily, TypeWeekly, TypeMonthly, TypeAccumulated:
		return true
	}
	return false
}

// AllChartTypes returns every chart type in display order.
func AllChartTypes() []ChartType {
	return []ChartType{TypeLive, TypeDaily, TypeWeekly, TypeMonthly, TypeAccumulated}
}

// ChartRange is the time window a chart covers.
type ChartRange string

const (
	RangeOneWeek     ChartRange = "oneWeek"
	RangeOneMonth    ChartRange = "oneMonth"
	RangeThreeMonths ChartRange = "threeMonths"
	RangeAll         ChartRange = "all"
)

// String returns the string representation of the range.
func (r ChartRange) String() string {
	return string(r)
}

// IsValid checks whether the range is a known value.
func (r ChartRange) IsValid() bool {
	switch r {
	case RangeOneWeek, RangeOneMonth, RangeThreeMonths, RangeAll:
		return true
	}
	return false
}

// Days returns the length of the range in days. Zero means unbounded.
func (r ChartRange) Days() int {
	switch r {
	case RangeOneWeek:
		return 7
	case RangeOneMonth:
		return 30
	case RangeThreeMonths:
		return 90
	}
	return 0
}

// AllChartRanges returns every range in display order.
func AllChartRanges() []ChartRange {
	return []ChartRange{RangeOneWeek, RangeOneMonth, RangeThreeMonths, RangeAll}
}

// CompareKey names a past reference point for the live comparison chart.
type CompareKey string

const (
	CompareYesterday   CompareKey = "yesterday"
	CompareWeekAgo     CompareKey = "weekAgo"
	CompareTwoWeeksAgo CompareKey = "twoWeeksAgo"
	CompareMonthAgo    CompareKey = "monthAgo"
)

// String returns the string representation of the compare key.
func (c CompareKey) String() string {
	return string(c)
}

// IsValid checks whether the compare key is a known value.
func (c CompareKey) IsValid() bool {
	switch c {
	case CompareYesterday, CompareWeekAgo, CompareTwoWeeksAgo, CompareMonthAgo:
		return true
	}
	return false
}

// Mode is the widget display state the pipeline produces data for.
type Mode string

const (
	ModeCompact  Mode = "COMPACT"
	ModeExpanded Mode = "EXPANDED"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks whether the mode is a known value.
func (m Mode) IsValid() bool {
	return m == ModeCompact || m == ModeExpanded
}
