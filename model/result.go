package model

import "time"

// Busiest period labels
const (
	PeriodNight   = "Night"
	PeriodMorning = "Morning"
	PeriodDaytime = "Daytime"
	PeriodEvening = "Evening"
	PeriodUnknown = "Unknown"
)

// TimeOfDay counts commits per UTC hour bucket
// night [0,6) morning [6,12) daytime [12,18) evening [18,24)
type TimeOfDay struct {
	Night   int `json:"night"`
	Morning int `json:"morning"`
	Daytime int `json:"daytime"`
	Evening int `json:"evening"`
}

// Record increments the bucket matching the UTC hour of t
func (h *TimeOfDay) Record(t time.Time) {
	switch hour := t.UTC().Hour(); {
	case hour < 6:
		h.Night++
	case hour < 12:
		h.Morning++
	case hour < 18:
		h.Daytime++
	default:
		h.Evening++
	}
}

// Add sums other into h bucket by bucket
func (h *TimeOfDay) Add(other TimeOfDay) {
	h.Night += other.Night
	h.Morning += other.Morning
	h.Daytime += other.Daytime
	h.Evening += other.Evening
}

func (h TimeOfDay) Total() int {
	return h.Night + h.Morning + h.Daytime + h.Evening
}

// Busiest returns the label of the bucket with the highest count.
// Ties resolve in the order Morning, Daytime, Evening, Night and an
// empty histogram yields PeriodUnknown.
func (h TimeOfDay) Busiest() string {
	buckets := []struct {
		label string
		count int
	}{
		{PeriodMorning, h.Morning},
		{PeriodDaytime, h.Daytime},
		{PeriodEvening, h.Evening},
		{PeriodNight, h.Night},
	}

	best, bestCount := PeriodUnknown, 0
	for _, b := range buckets {
		if b.count > bestCount {
			best, bestCount = b.label, b.count
		}
	}

	return best
}

// RepoResult is produced once per repository and never mutated afterwards
type RepoResult struct {
	Name       string            `json:"name"`
	Langs      LanguageBreakdown `json:"langs"`
	Frameworks FrameworkSet      `json:"frameworks"`
	Hours      float64           `json:"hours"`
	TimeOfDay  TimeOfDay         `json:"timeOfDay"`
}

// NewEmptyRepoResult returns the zero result of a repository, excluded from aggregation
func NewEmptyRepoResult(name string) RepoResult {
	return RepoResult{
		Name:       name,
		Langs:      LanguageBreakdown{},
		Frameworks: FrameworkSet{},
	}
}

// AuxCounts holds the social activity counters fetched beside the repositories
type AuxCounts struct {
	PullRequests int `json:"pullRequests"`
	Issues       int `json:"issues"`
}

// HoursEntry is one line of a ranking sorted by hours
type HoursEntry struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// AggregateResult is the final output of a tracker run
// hours are estimated from commit sessions, they are not measured
type AggregateResult struct {
	Username      string       `json:"username"`
	PeriodDays    int          `json:"periodDays"`
	Languages     []HoursEntry `json:"langs"`
	Frameworks    []HoursEntry `json:"frameworks"`
	TotalHours    float64      `json:"totalHours"`
	RepoCount     int          `json:"repoCount"`
	TimeOfDay     TimeOfDay    `json:"timeOfDay"`
	BusiestPeriod string       `json:"busiestPeriod"`
	PRCount       int          `json:"prCount"`
	IssueCount    int          `json:"issueCount"`
	Partial       bool         `json:"partial"` // true when the deadline cut the run short
}

// IsEmpty reports a run without any attributable activity
// callers should render a "no activity" state instead of zeros
func (r AggregateResult) IsEmpty() bool {
	return r.RepoCount == 0 && r.TotalHours == 0
}
