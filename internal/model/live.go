package model

import "time"

// LiveKey names an entry of the hourly live snapshot.
type LiveKey string

// LiveToday is the snapshot entry for the current day.
const LiveToday LiveKey = "today"

// LiveSnapshot is the pre-fetched hourly live dataset, keyed by relative
// time offset ("today", "yesterday", "weekAgo", ...).
type LiveSnapshot struct {
	HourlyLive map[LiveKey]Series `json:"hourlyLive"`
	UpdatedAt  time.Time          `json:"updated_at,omitempty"`
}

// Today returns the series for the current day, or nil.
func (l *LiveSnapshot) Today() Series {
	return l.Entry(LiveToday)
}

// Compared returns the series for the given compare key, or nil when the
// snapshot has no such entry.
func (l *LiveSnapshot) Compared(key CompareKey) Series {
	return l.Entry(LiveKey(key))
}

// Entry returns the series stored under key. A nil snapshot has no entries.
func (l *LiveSnapshot) Entry(key LiveKey) Series {
	if l == nil || l.HourlyLive == nil {
		return nil
	}
	return l.HourlyLive[key]
}
