package model

// OptionKey names a display option a statistic may offer.
type OptionKey string

const (
	OptionType    OptionKey = "type"
	OptionRange   OptionKey = "range"
	OptionCompare OptionKey = "compare"
)

// String returns the string representation of the option key.
func (k OptionKey) String() string {
	return string(k)
}

// OptionSet is the concrete selection a user has made for one statistic.
// Empty fields mean the option is absent.
type OptionSet struct {
	Type    ChartType  `json:"type"`
	Range   ChartRange `json:"range,omitempty"`
	Compare CompareKey `json:"compare,omitempty"`
}

// Get returns the selected value for key, or "" when absent.
func (o OptionSet) Get(key OptionKey) string {
	switch key {
	case OptionType:
		return string(o.Type)
	case OptionRange:
		return string(o.Range)
	case OptionCompare:
		return string(o.Compare)
	}
	return ""
}

// With returns a copy of o with key set to value. Unknown keys are ignored.
func (o OptionSet) With(key OptionKey, value string) OptionSet {
	switch key {
	case OptionType:
		o.Type = ChartType(value)
	case OptionRange:
		o.Range = ChartRange(value)
	case OptionCompare:
		o.Compare = CompareKey(value)
	}
	return o
}
