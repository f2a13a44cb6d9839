package tracker

import (
	"sort"
	"time"

	"github.com/codestats/codestats-api/model"
)

const (
	DefaultSessionGapThreshold = 2 * time.Hour
	DefaultMaxSessionCap       = 4 * time.Hour
	DefaultMinSession          = 15 * time.Minute
)

// Estimator turns commit timestamps into an estimate of coding hours.
//
// Consecutive commits closer than GapThreshold belong to the same session and
// the gap between them is counted, bounded by SessionCap. A larger gap closes
// the session, which is credited MinSession since its real length is unknown.
// The last session is always credited MinSession as well.
type Estimator struct {
	GapThreshold time.Duration
	SessionCap   time.Duration
	MinSession   time.Duration
}

// NewEstimator returns an estimator using the default thresholds
func NewEstimator() Estimator {
	return Estimator{
		GapThreshold: DefaultSessionGapThreshold,
		SessionCap:   DefaultMaxSessionCap,
		MinSession:   DefaultMinSession,
	}
}

// Estimate returns the estimated hours and the UTC time of day histogram of the commits.
// Commits with a zero timestamp are ignored. The input is not modified.
func (e Estimator) Estimate(commits []model.Commit) (float64, model.TimeOfDay) {
	var histogram model.TimeOfDay

	times := make([]time.Time, 0, len(commits))
	for _, c := range commits {
		if c.AuthoredAt.IsZero() {
			continue
		}

		times = append(times, c.AuthoredAt)
		histogram.Record(c.AuthoredAt)
	}

	switch len(times) {
	case 0:
		return 0, histogram
	case 1:
		return e.MinSession.Hours(), histogram
	}

	sort.Slice(times, func(i, j int) bool {
		return times[i].Before(times[j])
	})

	var total time.Duration
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])

		if gap < e.GapThreshold {
			total += min(gap, e.SessionCap)
		} else {
			total += e.MinSession
		}
	}

	// the end of the last session is never observed
	total += e.MinSession

	return total.Hours(), histogram
}
