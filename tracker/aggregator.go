package tracker

import (
	"math"
	"sort"

	"github.com/codestats/codestats-api/model"
)

// Aggregator merges repository results into global totals.
// It is fed by the single consumer of the scheduler and is not safe for concurrent use.
type Aggregator struct {
	languageHours  map[string]float64
	frameworkHours map[string]float64
	timeOfDay      model.TimeOfDay
	totalHours     float64
	repoCount      int
	aux            model.AuxCounts
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		languageHours:  make(map[string]float64),
		frameworkHours: make(map[string]float64),
	}
}

// Add merges one repository result and reports whether it was included.
// Hours are split across languages by byte share, while every framework
// receives the full repository hours.
func (a *Aggregator) Add(result model.RepoResult) bool {
	if result.Hours <= 0 {
		return false
	}

	totalBytes := result.Langs.TotalBytes()
	if totalBytes <= 0 {
		return false
	}

	for language, bytes := range result.Langs {
		a.languageHours[language] += result.Hours * float64(bytes) / float64(totalBytes)
	}

	for framework := range result.Frameworks {
		a.frameworkHours[framework] += result.Hours
	}

	a.timeOfDay.Add(result.TimeOfDay)
	a.totalHours += result.Hours
	a.repoCount++

	return true
}

// AddAux sums social activity counters
func (a *Aggregator) AddAux(counts model.AuxCounts) {
	a.aux.PullRequests += counts.PullRequests
	a.aux.Issues += counts.Issues
}

// Finalize builds the aggregate, rankings sorted by descending hours
func (a *Aggregator) Finalize(username string, periodDays int) model.AggregateResult {
	return model.AggregateResult{
		Username:      username,
		PeriodDays:    periodDays,
		Languages:     sortedByHours(a.languageHours),
		Frameworks:    sortedByHours(a.frameworkHours),
		TotalHours:    roundHours(a.totalHours),
		RepoCount:     a.repoCount,
		TimeOfDay:     a.timeOfDay,
		BusiestPeriod: a.timeOfDay.Busiest(),
		PRCount:       a.aux.PullRequests,
		IssueCount:    a.aux.Issues,
	}
}

// Merge aggregates a complete set of results at once
func Merge(results []model.RepoResult, aux model.AuxCounts, username string, periodDays int) model.AggregateResult {
	aggregator := NewAggregator()
	for _, r := range results {
		aggregator.Add(r)
	}

	aggregator.AddAux(aux)
	return aggregator.Finalize(username, periodDays)
}

func sortedByHours(hours map[string]float64) []model.HoursEntry {
	entries := make([]model.HoursEntry, 0, len(hours))
	for name, h := range hours {
		entries = append(entries, model.HoursEntry{Name: name, Hours: h})
	}

	// name as secondary key keeps the output stable between runs
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hours != entries[j].Hours {
			return entries[i].Hours > entries[j].Hours
		}

		return entries[i].Name < entries[j].Name
	})

	return entries
}

func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
