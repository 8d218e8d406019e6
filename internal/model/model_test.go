package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatistic_IsValid(t *testing.T) {
	for _, tc := range []struct {
		stat Statistic
		want bool
	}{
		{StatConfirmed, true},
		{StatDeceased, true},
		{Statistic(""), false},
		{Statistic("recovered"), false},
	} {
		if got := tc.stat.IsValid(); got != tc.want {
			t.Errorf("Statistic(%q).IsValid() = %v, want %v", tc.stat, got, tc.want)
		}
	}
}

func TestChartType_IsValid(t *testing.T) {
	for _, typ := range AllChartTypes() {
		if !typ.IsValid() {
			t.Errorf("ChartType(%q).IsValid() = false, want true", typ)
		}
	}
	if ChartType("hourly").IsValid() {
		t.Error(`ChartType("hourly").IsValid() = true, want false`)
	}
}

func TestChartRange_Days(t *testing.T) {
	for _, tc := range []struct {
		r    ChartRange
		want int
	}{
		{RangeOneWeek, 7},
		{RangeOneMonth, 30},
		{RangeThreeMonths, 90},
		{RangeAll, 0},
		{ChartRange(""), 0},
	} {
		if got := tc.r.Days(); got != tc.want {
			t.Errorf("ChartRange(%q).Days() = %d, want %d", tc.r, got, tc.want)
		}
	}
}

func TestMode_IsValid(t *testing.T) {
	if !ModeCompact.IsValid() || !ModeExpanded.IsValid() {
		t.Fatal("known modes must be valid")
	}
	if Mode("compact").IsValid() {
		t.Error("mode names are case sensitive")
	}
}

func TestOptionSet_GetWith(t *testing.T) {
	o := OptionSet{}.With(OptionType, "live").With(OptionCompare, "weekAgo")
	if o.Get(OptionType) != "live" {
		t.Errorf("type = %q, want live", o.Get(OptionType))
	}
	if o.Get(OptionCompare) != "weekAgo" {
		t.Errorf("compare = %q, want weekAgo", o.Get(OptionCompare))
	}
	if o.Get(OptionRange) != "" {
		t.Errorf("range = %q, want empty", o.Get(OptionRange))
	}
	if got := o.With(OptionKey("bogus"), "x"); got != o {
		t.Errorf("With(unknown) changed the set: %+v", got)
	}
}

func TestSample_JSON(t *testing.T) {
	s := Sample{Time: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Value: 42}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[1790812800,42]" {
		t.Fatalf("marshal = %s", data)
	}

	var got Sample
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Time.Equal(s.Time) || got.Value != 42 {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}

	if err := json.Unmarshal([]byte("[1,2,3]"), &got); err == nil {
		t.Error("expected error for 3-element sample")
	}
}

func TestQuery_Key(t *testing.T) {
	a := Query{Stats: []Statistic{StatDeceased}, Range: RangeOneMonth}
	b := Query{Stats: []Statistic{StatDeceased}, Range: RangeOneMonth}
	if a.Key() != b.Key() {
		t.Fatalf("equal queries produced different keys: %q vs %q", a.Key(), b.Key())
	}

	for _, other := range []Query{
		{Stats: []Statistic{StatConfirmed}, Range: RangeOneMonth},
		{Stats: []Statistic{StatDeceased}, Range: RangeOneWeek},
		{Stats: []Statistic{StatDeceased}, Range: RangeOneMonth, IsCompressed: true},
		{Stats: []Statistic{StatDeceased}, Range: RangeOneMonth, IsSingle: Bool(true)},
		{Stats: []Statistic{StatDeceased}, Range: RangeOneMonth, APIName: "all"},
	} {
		if other.Key() == a.Key() {
			t.Errorf("query %+v shares key with %+v", other, a)
		}
	}
}

func TestQuery_Combined(t *testing.T) {
	for _, tc := range []struct {
		name string
		q    Query
		want bool
	}{
		{"single stat", Query{Stats: []Statistic{StatConfirmed}}, false},
		{"api name", Query{Stats: []Statistic{StatConfirmed}, APIName: "all"}, true},
		{"many stats", Query{Stats: AllStatistics()}, true},
		{"explicit single", Query{Stats: AllStatistics(), IsSingle: Bool(true)}, false},
		{"explicit combined", Query{Stats: []Statistic{StatConfirmed}, IsSingle: Bool(false)}, true},
	} {
		if got := tc.q.Combined(); got != tc.want {
			t.Errorf("%s: Combined() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPayload_Statistics(t *testing.T) {
	p := &Payload{ByStat: map[Statistic]Series{
		"recovered":   nil,
		StatDeceased:  nil,
		StatConfirmed: nil,
	}}
	got := p.Statistics()
	want := []Statistic{StatConfirmed, StatDeceased, "recovered"}
	if len(got) != len(want) {
		t.Fatalf("Statistics() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Statistics() = %v, want %v", got, want)
		}
	}

	var nilPayload *Payload
	if nilPayload.Statistics() != nil {
		t.Error("nil payload should have no statistics")
	}
}

func TestLiveSnapshot_Entry(t *testing.T) {
	today := Series{{Time: time.Unix(0, 0), Value: 1}}
	snap := &LiveSnapshot{HourlyLive: map[LiveKey]Series{LiveToday: today}}
	if len(snap.Today()) != 1 {
		t.Errorf("Today() = %v", snap.Today())
	}
	if snap.Compared(CompareMonthAgo) != nil {
		t.Error("missing compare key should yield nil")
	}

	var nilSnap *LiveSnapshot
	if nilSnap.Today() != nil {
		t.Error("nil snapshot should yield nil")
	}
}
