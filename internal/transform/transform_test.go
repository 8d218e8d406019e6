package transform

import (
	"testing"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// days returns one sample per day starting at start, with the given values.
func days(start time.Time, vals ...float64) model.Series {
	out := make(model.Series, len(vals))
	for i, v := range vals {
		out[i] = model.Sample{Time: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

var monday = time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC)

func TestFilterRange(t *testing.T) {
	series := days(monday, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	got := FilterRange(series, model.RangeOneWeek)
	if len(got) != 7 {
		t.Fatalf("oneWeek kept %d samples, want 7", len(got))
	}
	if got[0].Value != 4 || got[6].Value != 10 {
		t.Errorf("oneWeek kept %v", got.Values())
	}

	if got := FilterRange(series, model.RangeAll); len(got) != 10 {
		t.Errorf("all kept %d samples, want 10", len(got))
	}
	if got := FilterRange(series, ""); len(got) != 10 {
		t.Errorf("empty range kept %d samples, want 10", len(got))
	}
	if got := FilterRange(nil, model.RangeOneWeek); got == nil || len(got) != 0 {
		t.Errorf("nil input should yield an empty series, got %v", got)
	}
}

func TestApply_Daily(t *testing.T) {
	series := days(monday, 1, 2, 3)
	got := Apply(series, model.TypeDaily, model.RangeAll)
	if len(got) != 3 || got[2].Value != 3 {
		t.Errorf("daily = %v", got.Values())
	}
	got[0].Value = 99
	if series[0].Value != 1 {
		t.Error("Apply modified its input")
	}
}

func TestApply_Weekly(t *testing.T) {
	// Monday..Sunday then Monday, Tuesday.
	series := days(monday, 1, 1, 1, 1, 1, 1, 1, 5, 5)
	got := Apply(series, model.TypeWeekly, model.RangeAll)
	if len(got) != 2 {
		t.Fatalf("weekly produced %d buckets, want 2: %v", len(got), got.Values())
	}
	if got[0].Value != 7 || got[1].Value != 10 {
		t.Errorf("weekly = %v, want [7 10]", got.Values())
	}
	if !got[0].Time.Equal(monday) || !got[1].Time.Equal(monday.AddDate(0, 0, 7)) {
		t.Errorf("bucket starts = %v, %v", got[0].Time, got[1].Time)
	}
}

func TestApply_WeeklyMidWeekStart(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2)
	got := Apply(days(wednesday, 1, 2), model.TypeWeekly, model.RangeAll)
	if len(got) != 1 || !got[0].Time.Equal(monday) || got[0].Value != 3 {
		t.Errorf("weekly = %+v", got)
	}
}

func TestApply_Monthly(t *testing.T) {
	series := days(time.Date(2026, 9, 29, 0, 0, 0, 0, time.UTC), 1, 2, 3, 4)
	got := Apply(series, model.TypeMonthly, model.RangeAll)
	if len(got) != 2 {
		t.Fatalf("monthly produced %d buckets: %v", len(got), got.Values())
	}
	if got[0].Value != 3 || got[1].Value != 7 {
		t.Errorf("monthly = %v, want [3 7]", got.Values())
	}
	if got[1].Time.Month() != time.October || got[1].Time.Day() != 1 {
		t.Errorf("second bucket starts %v", got[1].Time)
	}
}

func TestApply_Accumulated(t *testing.T) {
	got := Apply(days(monday, 1, 2, 3), model.TypeAccumulated, model.RangeAll)
	want := []float64{1, 3, 6}
	for i, v := range got.Values() {
		if v != want[i] {
			t.Fatalf("accumulated = %v, want %v", got.Values(), want)
		}
	}
}

func TestApply_RangeBeforeBucketing(t *testing.T) {
	series := days(monday, 100, 1, 1, 1, 1, 1, 1, 1)
	got := Apply(series, model.TypeAccumulated, model.RangeOneWeek)
	if got[len(got)-1].Value != 7 {
		t.Errorf("accumulated over oneWeek = %v, want last value 7", got.Values())
	}
}
