// Package transform reshapes raw sample series for a chart type and range.
package transform

import (
	"time"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// Apply filters series to the range and buckets it for the chart type.
// The input is not modified.
func Apply(series model.Series, typ model.ChartType, rng model.ChartRange) model.Series {
	out := FilterRange(series, rng)
	switch typ {
	case model.TypeWeekly:
		return bucket(out, weekStart)
	case model.TypeMonthly:
		return bucket(out, monthStart)
	case model.TypeAccumulated:
		return accumulate(out)
	}
	return out
}

// FilterRange keeps the samples within rng.Days() days of the newest sample.
// Unbounded ranges keep everything.
func FilterRange(series model.Series, rng model.ChartRange) model.Series {
	if len(series) == 0 {
		return model.Series{}
	}
	days := rng.Days()
	if days == 0 {
		return append(model.Series(nil), series...)
	}

	newest := series[0].Time
	for _, s := range series[1:] {
		if s.Time.After(newest) {
			newest = s.Time
		}
	}
	cutoff := newest.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	out := make(model.Series, 0, len(series))
	for _, s := range series {
		if !s.Time.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// bucket sums consecutive samples sharing the same bucket start. Each output
// sample is stamped with its bucket start.
func bucket(series model.Series, start func(time.Time) time.Time) model.Series {
	out := make(model.Series, 0, len(series))
	for _, s := range series {
		b := start(s.Time)
		if n := len(out); n > 0 && out[n-1].Time.Equal(b) {
			out[n-1].Value += s.Value
			continue
		}
		out = append(out, model.Sample{Time: b, Value: s.Value})
	}
	return out
}

func accumulate(series model.Series) model.Series {
	out := make(model.Series, len(series))
	var total float64
	for i, s := range series {
		total += s.Value
		out[i] = model.Sample{Time: s.Time, Value: total}
	}
	return out
}

// weekStart returns midnight UTC of the Monday starting t's ISO week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -offset)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
