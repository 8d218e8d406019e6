package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sample is a single (timestamp, value) point of a raw series.
// On the wire it is the pair [unixSeconds, value].
type Sample struct {
	Time  time.Time
	Value float64
}

// MarshalJSON encodes the sample as [unixSeconds, value].
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(s.Time.Unix()), s.Value})
}

// UnmarshalJSON decodes the [unixSeconds, value] pair form.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("sample: expected 2 elements, got %d", len(pair))
	}
	s.Time = time.Unix(int64(pair[0]), 0).UTC()
	s.Value = pair[1]
	return nil
}

// Series is a time-ordered sequence of samples.
type Series []Sample

// Values returns the sample values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Payload is the result of a cached fetch. Single-statistic queries fill
// Single; combined queries fill ByStat.
type Payload struct {
	Single Series               `json:"single,omitempty"`
	ByStat map[Statistic]Series `json:"by_stat,omitempty"`
}

// Statistics returns the keys of ByStat in AllStatistics order, followed by
// any unknown keys sorted by name.
func (p *Payload) Statistics() []Statistic {
	if p == nil || len(p.ByStat) == 0 {
		return nil
	}
	out := make([]Statistic, 0, len(p.ByStat))
	seen := make(map[Statistic]bool, len(p.ByStat))
	for _, s := range AllStatistics() {
		if _, ok := p.ByStat[s]; ok {
			out = append(out, s)
			seen[s] = true
		}
	}
	var extra []Statistic
	for s := range p.ByStat {
		if !seen[s] {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Query describes one cached fetch. Two queries address the same cache entry
// iff they are equal field by field.
type Query struct {
	Stats        []Statistic `json:"stat"`
	Range        ChartRange  `json:"range,omitempty"`
	APIName      string      `json:"api_name,omitempty"`
	IsCompressed bool        `json:"is_compressed,omitempty"`
	IsSingle     *bool       `json:"is_single,omitempty"`
}

// Key returns the canonical cache key for the query.
func (q Query) Key() string {
	stats := make([]string, len(q.Stats))
	for i, s := range q.Stats {
		stats[i] = string(s)
	}
	single := "-"
	if q.IsSingle != nil {
		single = strconv.FormatBool(*q.IsSingle)
	}
	return strings.Join([]string{
		"stat=" + strings.Join(stats, ","),
		"range=" + string(q.Range),
		"api=" + q.APIName,
		"compressed=" + strconv.FormatBool(q.IsCompressed),
		"single=" + single,
	}, "&")
}

// Combined reports whether the query asks for a per-statistic payload.
func (q Query) Combined() bool {
	if q.IsSingle != nil {
		return !*q.IsSingle
	}
	return q.APIName != "" || len(q.Stats) > 1
}

// Bool returns a pointer to b, for optional query fields.
func Bool(b bool) *bool {
	return &b
}
