// Package options declares which display options each statistic offers,
// their defaults, and the conditional overrides that change them when the
// selected chart type takes a particular value.
package options

import (
	"bytes"
	"encoding/json"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// Value is one selectable option value with its display label.
type Value struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Entry is the schema entry for one option key: either disabled or an
// enabled, non-empty value set with a designated default.
type Entry struct {
	enabled bool
	values  []Value
	def     string
}

// Disabled returns an entry for an option that is not applicable.
func Disabled() Entry {
	return Entry{}
}

// Enabled returns an entry offering values. When def is empty or not one of
// values, the first value is the default. An empty value set yields a
// disabled entry.
func Enabled(values []Value, def string) Entry {
	if len(values) == 0 {
		return Disabled()
	}
	e := Entry{enabled: true, values: append([]Value(nil), values...), def: values[0].Value}
	if def != "" && e.Has(def) {
		e.def = def
	}
	return e
}

// IsEnabled reports whether the option is applicable.
func (e Entry) IsEnabled() bool {
	return e.enabled
}

// Values returns a copy of the selectable values.
func (e Entry) Values() []Value {
	return append([]Value(nil), e.values...)
}

// Default returns the default value, or "" for a disabled entry.
func (e Entry) Default() string {
	return e.def
}

// Has reports whether v is one of the selectable values.
func (e Entry) Has(v string) bool {
	for _, x := range e.values {
		if x.Value == v {
			return true
		}
	}
	return false
}

// MarshalJSON encodes a disabled entry as null.
func (e Entry) MarshalJSON() ([]byte, error) {
	if !e.enabled {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Values  []Value `json:"values"`
		Default string  `json:"default"`
	}{e.values, e.def})
}

// UnmarshalJSON accepts null or {"values":[...],"default":"..."}.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = Disabled()
		return nil
	}
	var raw struct {
		Values  []Value `json:"values"`
		Default string  `json:"default"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Enabled(raw.Values, raw.Default)
	return nil
}

// Schema maps option keys to entries, remembering the order keys were added.
// Schemas are values: With returns a modified copy.
type Schema struct {
	keys    []model.OptionKey
	entries map[model.OptionKey]Entry
}

// NewSchema builds a schema from key/entry pairs in order.
func NewSchema(pairs ...KeyEntry) Schema {
	var s Schema
	for _, p := range pairs {
		s = s.With(p.Key, p.Entry)
	}
	return s
}

// KeyEntry pairs an option key with its entry, for NewSchema.
type KeyEntry struct {
	Key   model.OptionKey
	Entry Entry
}

// Set is shorthand for a KeyEntry.
func Set(key model.OptionKey, e Entry) KeyEntry {
	return KeyEntry{Key: key, Entry: e}
}

// With returns a copy of s where key maps to e.
func (s Schema) With(key model.OptionKey, e Entry) Schema {
	out := Schema{
		keys:    append([]model.OptionKey(nil), s.keys...),
		entries: make(map[model.OptionKey]Entry, len(s.entries)+1),
	}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	if _, ok := out.entries[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.entries[key] = e
	return out
}

// Get returns the entry for key and whether the key is present.
func (s Schema) Get(key model.OptionKey) (Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Enabled returns the entry for key when it is present and enabled.
func (s Schema) Enabled(key model.OptionKey) (Entry, bool) {
	e, ok := s.entries[key]
	if !ok || !e.IsEnabled() {
		return Entry{}, false
	}
	return e, true
}

// Keys returns the option keys in insertion order.
func (s Schema) Keys() []model.OptionKey {
	return append([]model.OptionKey(nil), s.keys...)
}

// Len returns the number of keys.
func (s Schema) Len() int {
	return len(s.keys)
}

// MarshalJSON encodes the schema as an object in key order.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a schema object, preserving key order.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := Schema{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return err
		}
		out = out.With(model.OptionKey(key), e)
	}
	*s = out
	return nil
}
