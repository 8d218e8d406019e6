package options

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/alfredjeanlab/worldchart/internal/i18n"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

var testLabels = i18n.Static{
	"stat.confirmed":    "Confirmed",
	"stat.deceased":     "Deceased",
	"live.yesterday":    "Yesterday",
	"live.one_week_ago": "1 week ago",
}

func mustBuild(t *testing.T, stat model.Statistic) *StatOptions {
	t.Helper()
	o, err := Build(stat, testLabels)
	if err != nil {
		t.Fatalf("Build(%s): %v", stat, err)
	}
	return o
}

func values(e Entry) []string {
	var out []string
	for _, v := range e.Values() {
		out = append(out, v.Value)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild_EveryEntryDisabledOrDefaulted(t *testing.T) {
	all, err := BuildAll(testLabels)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(all) != len(model.AllStatistics()) {
		t.Fatalf("BuildAll returned %d schemas", len(all))
	}
	for _, o := range all {
		schemas := []Schema{o.Base}
		for _, typ := range model.AllChartTypes() {
			schemas = append(schemas, o.Resolve(typ))
		}
		for _, s := range schemas {
			for _, k := range s.Keys() {
				e, _ := s.Get(k)
				if !e.IsEnabled() {
					continue
				}
				if len(e.Values()) == 0 {
					t.Errorf("%s/%s: enabled entry with no values", o.Statistic, k)
				}
				if !e.Has(e.Default()) {
					t.Errorf("%s/%s: default %q not in value set", o.Statistic, k, e.Default())
				}
			}
		}
	}
}

func TestBuild_Confirmed(t *testing.T) {
	o := mustBuild(t, model.StatConfirmed)
	if o.Label != "Confirmed" {
		t.Errorf("Label = %q", o.Label)
	}

	typ, ok := o.Base.Enabled(model.OptionType)
	if !ok {
		t.Fatal("type should be enabled")
	}
	if want := []string{"live", "daily", "weekly", "monthly"}; !equalStrings(values(typ), want) {
		t.Errorf("type values = %v, want %v", values(typ), want)
	}

	compare, ok := o.Base.Get(model.OptionCompare)
	if !ok {
		t.Fatal("compare must be present in the base schema")
	}
	if compare.IsEnabled() {
		t.Error("compare must be inert in the base schema")
	}
	if len(o.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(o.Rules))
	}
}

func TestBuild_Deceased(t *testing.T) {
	o := mustBuild(t, model.StatDeceased)
	typ, _ := o.Base.Enabled(model.OptionType)
	if want := []string{"daily", "weekly", "monthly"}; !equalStrings(values(typ), want) {
		t.Errorf("type values = %v, want %v", values(typ), want)
	}
	if _, ok := o.Base.Get(model.OptionCompare); ok {
		t.Error("deceased must not have a compare key")
	}
	if len(o.Rules) != 0 {
		t.Errorf("deceased must have no rules, got %d", len(o.Rules))
	}
}

func TestBuild_InvalidStatistic(t *testing.T) {
	_, err := Build("recovered", testLabels)
	if !errors.Is(err, ErrInvalidStatistic) {
		t.Fatalf("Build(recovered) error = %v, want ErrInvalidStatistic", err)
	}
}

func TestResolve_LiveOverride(t *testing.T) {
	o := mustBuild(t, model.StatConfirmed)
	s := o.Resolve(model.TypeLive)

	rng, ok := s.Get(model.OptionRange)
	if !ok || rng.IsEnabled() {
		t.Error("range must be disabled while type is live")
	}
	compare, ok := s.Enabled(model.OptionCompare)
	if !ok {
		t.Fatal("compare must be enabled while type is live")
	}
	if want := []string{"yesterday", "weekAgo"}; !equalStrings(values(compare), want) {
		t.Errorf("compare values = %v, want %v", values(compare), want)
	}
	if labels := compare.Values(); labels[0].Label != "Yesterday" || labels[1].Label != "1 week ago" {
		t.Errorf("compare labels = %+v", labels)
	}

	// The base schema is untouched.
	if e, _ := o.Base.Get(model.OptionRange); !e.IsEnabled() {
		t.Error("Resolve mutated the base schema")
	}
}

func TestResolve_NonLive(t *testing.T) {
	o := mustBuild(t, model.StatConfirmed)
	for _, typ := range []model.ChartType{model.TypeDaily, model.TypeWeekly, model.TypeMonthly} {
		s := o.Resolve(typ)
		if _, ok := s.Enabled(model.OptionCompare); ok {
			t.Errorf("%s: compare must be inert", typ)
		}
		if _, ok := s.Enabled(model.OptionRange); !ok {
			t.Errorf("%s: range must be populated", typ)
		}
	}
}

func TestResolve_EmptyTypeUsesDefault(t *testing.T) {
	o := mustBuild(t, model.StatConfirmed)
	// live is the default type for confirmed, so the override applies.
	if _, ok := o.Resolve("").Enabled(model.OptionCompare); !ok {
		t.Error("expected the default type to trigger the live override")
	}
}

func TestRule_LaterRulesWin(t *testing.T) {
	a := Enabled([]Value{{Value: "a"}}, "")
	b := Enabled([]Value{{Value: "b"}}, "")
	o := &StatOptions{
		Statistic: "test",
		Base: NewSchema(
			Set(model.OptionType, Enabled([]Value{{Value: "live"}}, "")),
			Set(model.OptionCompare, Disabled()),
		),
		Rules: []Rule{
			{Key: model.OptionType, Value: "live", Patch: NewSchema(Set(model.OptionCompare, a))},
			{Key: model.OptionType, Value: "live", Patch: NewSchema(Set(model.OptionCompare, b))},
		},
	}
	e, ok := o.Resolve("live").Enabled(model.OptionCompare)
	if !ok || !equalStrings(values(e), []string{"b"}) {
		t.Errorf("compare = %v, want [b]", values(e))
	}
}

func TestRule_ReplacesWholeEntry(t *testing.T) {
	base := NewSchema(Set(model.OptionRange, Enabled([]Value{{Value: "x"}, {Value: "y"}}, "y")))
	r := Rule{Key: model.OptionType, Value: "live", Patch: NewSchema(Set(model.OptionRange, Enabled([]Value{{Value: "z"}}, "")))}
	e, _ := r.Apply(base).Get(model.OptionRange)
	if !equalStrings(values(e), []string{"z"}) || e.Default() != "z" {
		t.Errorf("range = %v default %q, want [z] default z", values(e), e.Default())
	}
}

func TestValidateRules_MissingKey(t *testing.T) {
	base := NewSchema(Set(model.OptionType, Enabled([]Value{{Value: "live"}}, "")))
	rules := []Rule{{Key: model.OptionType, Value: "live", Patch: NewSchema(Set(model.OptionCompare, Disabled()))}}
	if err := validateRules(base, rules); err == nil {
		t.Fatal("expected error for patch key missing from base")
	}
	rules = []Rule{{Key: model.OptionRange, Value: "all"}}
	if err := validateRules(base, rules); err == nil {
		t.Fatal("expected error for non-type trigger")
	}
}

func TestNormalize(t *testing.T) {
	confirmed := mustBuild(t, model.StatConfirmed)
	deceased := mustBuild(t, model.StatDeceased)

	for _, tc := range []struct {
		name string
		o    *StatOptions
		in   model.OptionSet
		want model.OptionSet
	}{
		{"defaults confirmed", confirmed, model.OptionSet{},
			model.OptionSet{Type: model.TypeLive, Compare: model.CompareYesterday}},
		{"defaults deceased", deceased, model.OptionSet{},
			model.OptionSet{Type: model.TypeDaily, Range: model.RangeOneWeek}},
		{"live clears range", confirmed, model.OptionSet{Type: model.TypeLive, Range: model.RangeAll, Compare: model.CompareWeekAgo},
			model.OptionSet{Type: model.TypeLive, Compare: model.CompareWeekAgo}},
		{"daily clears compare", confirmed, model.OptionSet{Type: model.TypeDaily, Range: model.RangeOneMonth, Compare: model.CompareYesterday},
			model.OptionSet{Type: model.TypeDaily, Range: model.RangeOneMonth}},
	} {
		got, err := tc.o.Normalize(tc.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: Normalize = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	confirmed := mustBuild(t, model.StatConfirmed)
	deceased := mustBuild(t, model.StatDeceased)

	for _, tc := range []struct {
		name string
		o    *StatOptions
		in   model.OptionSet
	}{
		{"live for deceased", deceased, model.OptionSet{Type: model.TypeLive}},
		{"accumulated for confirmed", confirmed, model.OptionSet{Type: model.TypeAccumulated}},
		{"monthAgo not offered", confirmed, model.OptionSet{Type: model.TypeLive, Compare: model.CompareMonthAgo}},
		{"unknown type", confirmed, model.OptionSet{Type: "hourly"}},
	} {
		_, err := tc.o.Normalize(tc.in)
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: error = %v, want *model.ValidationError", tc.name, err)
		}
	}
}

func TestSchema_JSON(t *testing.T) {
	o := mustBuild(t, model.StatConfirmed)
	data, err := json.Marshal(o.Resolve(model.TypeLive))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["range"]) != "null" {
		t.Errorf("range = %s, want null", raw["range"])
	}

	var back Schema
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	keys := back.Keys()
	if len(keys) != 3 || keys[0] != model.OptionType || keys[1] != model.OptionRange || keys[2] != model.OptionCompare {
		t.Errorf("keys = %v", keys)
	}
	if e, ok := back.Enabled(model.OptionCompare); !ok || e.Default() != "yesterday" {
		t.Errorf("compare entry lost in round trip: %+v", e)
	}
}

func TestEnabled_EmptyIsDisabled(t *testing.T) {
	if Enabled(nil, "x").IsEnabled() {
		t.Error("an empty value set must be disabled")
	}
	if e := Enabled([]Value{{Value: "a"}, {Value: "b"}}, "c"); e.Default() != "a" {
		t.Errorf("unknown default should fall back to first value, got %q", e.Default())
	}
}

func TestCompareLabel(t *testing.T) {
	if got := CompareLabel(testLabels, model.CompareYesterday); got != "Yesterday" {
		t.Errorf("CompareLabel(yesterday) = %q", got)
	}
	if got := CompareLabel(testLabels, "decadeAgo"); got != "" {
		t.Errorf("CompareLabel(unknown) = %q, want empty", got)
	}
}
