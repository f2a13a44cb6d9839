package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codestats/codestats-api/model"
)

const barCells = 20

// CodeBlock renders result as a monospace text block for a README
func CodeBlock(result model.AggregateResult, langsCount int, showFrameworks bool) string {
	langs, totalLangs := topEntries(result.Languages, langsCount)

	lines := []string{
		"Coding Time Tracker — " + result.Username,
		"",
		fmt.Sprintf("Total Time: %s  (%d days)", formatLong(result.TotalHours), result.PeriodDays),
		fmt.Sprintf("Repos scanned: %d", result.RepoCount),
	}

	if result.BusiestPeriod != "" && result.BusiestPeriod != model.PeriodUnknown {
		lines = append(lines, "Busiest time: "+result.BusiestPeriod+" (UTC)")
	}

	if result.PRCount > 0 || result.IssueCount > 0 {
		lines = append(lines, fmt.Sprintf("Pull requests: %d  Issues: %d", result.PRCount, result.IssueCount))
	}

	if result.Partial {
		lines = append(lines, "Partial results: some repositories were not scanned in time")
	}

	lines = append(lines, "", "💻 Languages:")
	lines = append(lines, tableRows(langs, totalLangs)...)

	if showFrameworks {
		// frameworks share the languages total, a framework used in every repository reads close to 100%
		frameworks, _ := topEntries(result.Frameworks, langsCount)

		if len(frameworks) > 0 {
			lines = append(lines, "", "⚡ Frameworks & Tools:")
			lines = append(lines, tableRows(frameworks, totalLangs)...)
		}
	}

	return strings.Join(lines, "\n")
}

func tableRows(entries []model.HoursEntry, total float64) []string {
	nameWidth, timeWidth := 0, 0
	for _, e := range entries {
		nameWidth = max(nameWidth, utf8.RuneCountInString(e.Name))
		timeWidth = max(timeWidth, len(formatLong(e.Hours)))
	}

	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		pct := e.Hours / total * 100
		rows = append(rows, fmt.Sprintf("%s   %s  %s  %5.2f %%",
			padRight(e.Name, nameWidth), padRight(formatLong(e.Hours), timeWidth), progressBar(pct, barCells), pct))
	}

	return rows
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}

	return s
}
