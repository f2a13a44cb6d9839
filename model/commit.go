package model

import "time"

// Commit holds the only commit fields the tracker consumes
// a zero AuthoredAt means the timestamp was missing or unparsable upstream
type Commit struct {
	Message    string    `json:"message"`
	AuthoredAt time.Time `json:"authoredAt"`
}

// TimeWindow bounds the commits fetched for one run
type TimeWindow struct {
	Since time.Time
	Until time.Time
}

// NewTimeWindow returns the window covering the last periodDays days ending at now
func NewTimeWindow(now time.Time, periodDays int) TimeWindow {
	return TimeWindow{
		Since: now.AddDate(0, 0, -periodDays),
		Until: now,
	}
}

// Contains reports whether t falls inside the window, bounds included
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Until)
}
