package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codestats/codestats-api/model"
)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(text string) string {
	return xmlEscaper.Replace(text)
}

func splitHours(hours float64) (int, int) {
	whole := int(hours)
	return whole, int((hours - float64(whole)) * 60)
}

// formatLong renders hours as "3 hrs 30 mins"
func formatLong(hours float64) string {
	h, m := splitHours(hours)
	return fmt.Sprintf("%d hrs %d mins", h, m)
}

// formatShort renders hours as "3h 30m", or "30m" under one hour
func formatShort(hours float64) string {
	h, m := splitHours(hours)

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}

	return fmt.Sprintf("%dm", m)
}

// periodLabel renders a period in days as years, months or days
func periodLabel(days int) string {
	plural := func(n int, unit string) string {
		if n > 1 {
			return strconv.Itoa(n) + " " + unit + "s"
		}

		return strconv.Itoa(n) + " " + unit
	}

	switch {
	case days >= 365:
		return plural(days/365, "year")
	case days >= 30:
		return plural(days/30, "month")
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// luminance returns the relative luminance of a #rrggbb color, 0.5 when unparsable
func luminance(color string) float64 {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) < 6 {
		return 0.5
	}

	channel := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0.5
		}

		return float64(v) / 255
	}

	return 0.2126*channel(hex[0:2]) + 0.7152*channel(hex[2:4]) + 0.0722*channel(hex[4:6])
}

// contrastText picks a readable text color for the given background
func contrastText(background string) string {
	if luminance(background) < 0.5 {
		return "#ffffff"
	}

	return "#1a1a2e"
}

// progressBar draws a block bar of width cells filled at percent
func progressBar(percent float64, width int) string {
	filled := min(max(int(percent/100*float64(width)), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// topEntries returns at most n entries and the sum of their hours, never zero
func topEntries(entries []model.HoursEntry, n int) ([]model.HoursEntry, float64) {
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}

	total := 0.0
	for _, e := range entries {
		total += e.Hours
	}

	if total == 0 {
		total = 1
	}

	return entries, total
}
