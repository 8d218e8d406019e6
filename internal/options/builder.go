package options

import (
	"errors"
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/i18n"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

// ErrInvalidStatistic is returned when a schema is requested for a
// statistic that is not supported.
var ErrInvalidStatistic = errors.New("invalid statistic")

// StatOptions is the option schema of one statistic: the base schema plus
// the ordered override rules applied on top of it.
type StatOptions struct {
	Statistic model.Statistic
	Label     string
	Base      Schema
	Rules     []Rule
}

// compareLabelKeys is the fixed label table for live comparison points.
var compareLabelKeys = map[model.CompareKey]string{
	model.CompareYesterday:   "live.yesterday",
	model.CompareWeekAgo:     "live.one_week_ago",
	model.CompareTwoWeeksAgo: "live.two_weeks_ago",
	model.CompareMonthAgo:    "live.one_month_ago",
}

// CompareLabel returns the localized label for a compare key. Unknown keys
// yield an empty label.
func CompareLabel(t i18n.Translator, key model.CompareKey) string {
	k, ok := compareLabelKeys[key]
	if !ok {
		return ""
	}
	return t.T(k)
}

// StatLabel returns the localized label for a statistic.
func StatLabel(t i18n.Translator, stat model.Statistic) string {
	return t.T("stat." + string(stat))
}

// Build returns the option schema for stat, labelled with t.
func Build(stat model.Statistic, t i18n.Translator) (*StatOptions, error) {
	var o *StatOptions
	switch stat {
	case model.StatConfirmed:
		o = &StatOptions{
			Statistic: stat,
			Label:     StatLabel(t, stat),
			Base: NewSchema(
				Set(model.OptionType, typeOptions(t, model.TypeAccumulated)),
				Set(model.OptionRange, rangeOptions(t)),
				Set(model.OptionCompare, Disabled()),
			),
			Rules: []Rule{
				{
					Key:   model.OptionType,
					Value: string(model.TypeLive),
					Patch: NewSchema(
						Set(model.OptionCompare, compareOptions(t, model.CompareYesterday, model.CompareWeekAgo)),
						Set(model.OptionRange, Disabled()),
					),
				},
			},
		}
	case model.StatDeceased:
		o = &StatOptions{
			Statistic: stat,
			Label:     StatLabel(t, stat),
			Base: NewSchema(
				Set(model.OptionType, typeOptions(t, model.TypeLive, model.TypeAccumulated)),
				Set(model.OptionRange, rangeOptions(t)),
			),
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatistic, stat)
	}

	if err := validateRules(o.Base, o.Rules); err != nil {
		return nil, fmt.Errorf("%s options: %w", stat, err)
	}
	return o, nil
}

// BuildAll returns the option schema of every supported statistic in
// display order.
func BuildAll(t i18n.Translator) ([]*StatOptions, error) {
	all := make([]*StatOptions, 0, len(model.AllStatistics()))
	for _, stat := range model.AllStatistics() {
		o, err := Build(stat, t)
		if err != nil {
			return nil, err
		}
		all = append(all, o)
	}
	return all, nil
}

// Resolve returns the schema in effect when chartType is selected. An empty
// chartType selects the base default.
func (o *StatOptions) Resolve(chartType model.ChartType) Schema {
	if chartType == "" {
		if e, ok := o.Base.Enabled(model.OptionType); ok {
			chartType = model.ChartType(e.Default())
		}
	}
	sel := model.OptionSet{Type: chartType}
	s := o.Base
	for _, r := range o.Rules {
		if r.Matches(sel) {
			s = r.Apply(s)
		}
	}
	return s
}

// Normalize validates sel against the schema in effect for its type. Empty
// values of enabled options are replaced by their defaults; values of
// options that are disabled or absent are cleared.
// It returns a *model.ValidationError when a value is not offered.
func (o *StatOptions) Normalize(sel model.OptionSet) (model.OptionSet, error) {
	if err := model.ValidateOptionSet(sel); err != nil {
		return model.OptionSet{}, err
	}

	var ve model.ValidationError

	typeEntry, ok := o.Base.Enabled(model.OptionType)
	if !ok {
		return model.OptionSet{}, fmt.Errorf("%s options: type is not enabled", o.Statistic)
	}
	if sel.Type == "" {
		sel.Type = model.ChartType(typeEntry.Default())
	} else if !typeEntry.Has(string(sel.Type)) {
		ve.Add("type", fmt.Sprintf("%q is not offered for %s", sel.Type, o.Statistic))
		return model.OptionSet{}, &ve
	}

	resolved := o.Resolve(sel.Type)
	for _, key := range []model.OptionKey{model.OptionRange, model.OptionCompare} {
		e, ok := resolved.Enabled(key)
		if !ok {
			sel = sel.With(key, "")
			continue
		}
		v := sel.Get(key)
		switch {
		case v == "":
			sel = sel.With(key, e.Default())
		case !e.Has(v):
			ve.Add(string(key), fmt.Sprintf("%q is not offered for %s/%s", v, o.Statistic, sel.Type))
		}
	}

	if ve.HasErrors() {
		return model.OptionSet{}, &ve
	}
	return sel, nil
}

func typeOptions(t i18n.Translator, omit ...model.ChartType) Entry {
	var values []Value
	for _, typ := range model.AllChartTypes() {
		if containsType(omit, typ) {
			continue
		}
		values = append(values, Value{Value: string(typ), Label: t.T("chart.type." + string(typ))})
	}
	return Enabled(values, "")
}

func rangeOptions(t i18n.Translator) Entry {
	var values []Value
	for _, r := range model.AllChartRanges() {
		values = append(values, Value{Value: string(r), Label: t.T("chart.range." + string(r))})
	}
	return Enabled(values, "")
}

func compareOptions(t i18n.Translator, keys ...model.CompareKey) Entry {
	values := make([]Value, 0, len(keys))
	for _, k := range keys {
		values = append(values, Value{Value: string(k), Label: CompareLabel(t, k)})
	}
	return Enabled(values, "")
}

func containsType(list []model.ChartType, typ model.ChartType) bool {
	for _, x := range list {
		if x == typ {
			return true
		}
	}
	return false
}
