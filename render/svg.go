// Package render draws an aggregate as an SVG card or a plain text block.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codestats/codestats-api/model"
)

// Options controls what a card shows
type Options struct {
	Theme          string
	Layout         string // landscape | portrait
	Width          int    // 0 picks the layout default
	LangsCount     int
	ShowFrameworks bool
	ShowLanguages  bool
	ShowTitle      bool
	ShowFooter     bool
}

// OptionsFromQuery maps the query parameters of the card endpoint
func OptionsFromQuery(q model.StatsQuery) Options {
	return Options{
		Theme:          q.Theme,
		Layout:         q.Layout,
		Width:          q.Width,
		LangsCount:     q.LangsCount,
		ShowFrameworks: q.ShowFrameworks,
		ShowLanguages:  q.ShowLanguages,
		ShowTitle:      q.ShowTitle,
		ShowFooter:     q.ShowFooter,
	}
}

const (
	padding          = 22
	landscapeWidth   = 720
	portraitWidth    = 480
	footerText       = "CodeStats · coding time estimated from commit sessions"
	partialFooterTag = " · partial"
)

type pill struct {
	icon  string
	label string
	value string
}

// SVG renders the stats card of result
func SVG(result model.AggregateResult, opts Options) string {
	theme := GetTheme(opts.Theme)

	if opts.Layout == LayoutPortrait {
		if opts.Width <= 0 {
			opts.Width = portraitWidth
		}

		return buildPortrait(result, theme, opts)
	}

	if opts.Width <= 0 {
		opts.Width = landscapeWidth
	}

	return buildLandscape(result, theme, opts)
}

// ErrorSVG renders a small card carrying message
func ErrorSVG(message string, themeName string) string {
	theme := GetTheme(themeName)

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100%%" viewBox="0 0 495 80"
     preserveAspectRatio="xMidYMin meet">
  <rect width="495" height="80" rx="12" fill="%s" stroke="%s" stroke-width="1"/>
  <text x="247" y="35" text-anchor="middle" style="font:600 14px 'Segoe UI',sans-serif;fill:%s">⚠️ CodeStats Error</text>
  <text x="247" y="58" text-anchor="middle" style="font:400 11px 'Segoe UI',sans-serif;fill:%s">%s</text>
</svg>`, theme.Background, theme.Border, theme.Title, theme.Muted, escape(message))
}

func statPills(result model.AggregateResult) []pill {
	pills := []pill{
		{"⏱", "Total", formatShort(result.TotalHours)},
		{"📁", "Repos", fmt.Sprint(result.RepoCount)},
		{"📅", "Period", periodLabel(result.PeriodDays)},
	}

	if result.BusiestPeriod != "" && result.BusiestPeriod != model.PeriodUnknown {
		pills = append(pills, pill{"🕒", "Peak", result.BusiestPeriod})
	}

	if result.PRCount > 0 {
		pills = append(pills, pill{"🔀", "PRs", fmt.Sprint(result.PRCount)})
	}

	if result.IssueCount > 0 {
		pills = append(pills, pill{"🐛", "Issues", fmt.Sprint(result.IssueCount)})
	}

	return pills
}

// writePills lays pills out from left to right and wraps at maxX, it returns the y below the last row
func writePills(sb *strings.Builder, pills []pill, left int, y int, maxX int, theme Theme) int {
	x := float64(left)

	for _, p := range pills {
		w := max(float64(utf8.RuneCountInString(p.label+": "+p.value))*6.5+30, 80)

		if x+w > float64(maxX) && x > float64(left) {
			x = float64(left)
			y += 32
		}

		fmt.Fprintf(sb, `<rect x="%.0f" y="%d" width="%.0f" height="26" rx="13" fill="%s" opacity="0.8"/>`, x, y, w, theme.BarBackground)
		fmt.Fprintf(sb, `<text x="%.0f" y="%d" class="pill">%s %s: <tspan class="pv">%s</tspan></text>`, x+14, y+17, p.icon, escape(p.label), escape(p.value))
		sb.WriteString("\n  ")

		x += w + 8
	}

	return y + 26
}

func writeAccent(sb *strings.Builder, width int, y int, theme Theme) {
	fmt.Fprintf(sb, `<defs><linearGradient id="g1" x1="0" y1="0" x2="1" y2="0">`+
		`<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s" stop-opacity="0.1"/>`+
		`</linearGradient></defs>`, theme.Title, theme.Title)
	fmt.Fprintf(sb, `<rect x="%d" y="%d" width="%d" height="2" rx="1" fill="url(#g1)"/>`, padding, y, width-padding*2)
	sb.WriteString("\n  ")
}

// writeLanguageStripe draws the proportion bar of every language side by side
func writeLanguageStripe(sb *strings.Builder, langs []model.HoursEntry, total float64, width int, y int) {
	barWidth := float64(width - padding*2)
	x := float64(padding)

	for i, lang := range langs {
		w := max(lang.Hours/total*barWidth, 2)

		rxLeft, rxRight := "0", "0"
		if i == 0 {
			rxLeft = "6"
		}
		if i == len(langs)-1 {
			rxRight = "6"
		}

		fmt.Fprintf(sb, `<rect x="%.1f" y="%d" width="%.1f" height="10" fill="%s" rx="%s" ry="%s"/>`, x, y, w, languageColor(lang.Name), rxLeft, rxRight)
		sb.WriteString("\n  ")

		x += w
	}
}

// writeBadges flows framework badges between left and maxX, it returns the y of the last row
func writeBadges(sb *strings.Builder, frameworks []model.HoursEntry, left int, y int, maxX int, height float64, gap float64) int {
	x := float64(left)

	for _, fw := range frameworks {
		background := frameworkColor(fw.Name)
		w := float64(utf8.RuneCountInString(fw.Name))*7.2 + 18

		if x+w > float64(maxX) && x > float64(left) {
			x = float64(left)
			y += 28
		}

		fmt.Fprintf(sb, `<rect x="%.0f" y="%d" width="%.0f" height="%.0f" rx="%.1f" fill="%s" opacity="0.85"/>`, x, y-14, w, height, height/2, background)
		fmt.Fprintf(sb, `<text x="%.0f" y="%d" text-anchor="middle" class="b" fill="%s">%s</text>`, x+w/2, y+2, contrastText(background), escape(fw.Name))
		sb.WriteString("\n  ")

		x += w + gap
	}

	return y
}

func writeFooter(sb *strings.Builder, result model.AggregateResult, width int, y int) {
	text := footerText
	if result.Partial {
		text += partialFooterTag
	}

	fmt.Fprintf(sb, `<text x="%d" y="%d" text-anchor="middle" class="f">%s</text>`, width/2, y, escape(text))
	sb.WriteString("\n  ")
}

func buildLandscape(result model.AggregateResult, theme Theme, opts Options) string {
	width := opts.Width
	langs, totalLangs := topEntries(result.Languages, opts.LangsCount)

	var frameworks []model.HoursEntry
	if opts.ShowFrameworks {
		frameworks = result.Frameworks
	}

	const rowHeight = 26
	nameWidth, timeWidth, barWidth, pctWidth := 80, 85, 130, 45

	divider := padding + nameWidth + timeWidth + barWidth + pctWidth + 30
	if limit := int(float64(width) * 0.62); divider > limit {
		divider = limit
		barWidth = max(divider-padding-nameWidth-timeWidth-pctWidth-30, 60)
	}

	var sb strings.Builder

	header := 10
	if opts.ShowTitle {
		fmt.Fprintf(&sb, `<text x="%d" y="24" class="t">📊 %s's Coding Stats</text>`, padding, escape(result.Username))
		sb.WriteString("\n  ")

		y := writePills(&sb, statPills(result), padding, 36, width-padding, theme)
		writeAccent(&sb, width, y+6, theme)
		header = y + 16
	}

	showLangs := opts.ShowLanguages && len(langs) > 0
	if showLangs {
		writeLanguageStripe(&sb, langs, totalLangs, width, header+4)
		header += 18
	}

	y := header + 16
	if showLangs {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" class="sec">💻 Languages</text>`, padding, y)
		sb.WriteString("\n  ")
		y += 18

		for _, lang := range langs {
			pct := lang.Hours / totalLangs * 100
			filled := max(pct/100*float64(barWidth), 2)
			color := languageColor(lang.Name)
			timeX := padding + nameWidth
			barX := timeX + timeWidth

			fmt.Fprintf(&sb, `<g transform="translate(0,%d)">`, y)
			fmt.Fprintf(&sb, `<circle cx="%d" cy="-3" r="3.5" fill="%s"/>`, padding+4, color)
			fmt.Fprintf(&sb, `<text x="%d" y="0" class="l">%s</text>`, padding+13, escape(lang.Name))
			fmt.Fprintf(&sb, `<text x="%d" y="0" class="tm">%s</text>`, timeX, formatShort(lang.Hours))
			fmt.Fprintf(&sb, `<rect x="%d" y="-7" width="%d" height="7" rx="3.5" fill="%s"/>`, barX, barWidth, theme.BarBackground)
			fmt.Fprintf(&sb, `<rect x="%d" y="-7" width="%.1f" height="7" rx="3.5" fill="%s">`, barX, filled, color)
			fmt.Fprintf(&sb, `<animate attributeName="width" from="0" to="%.1f" dur="0.6s" fill="freeze" begin="0.2s"/></rect>`, filled)
			fmt.Fprintf(&sb, `<text x="%d" y="0" class="p">%.1f%%</text></g>`, barX+barWidth+8, pct)
			sb.WriteString("\n  ")

			y += rowHeight
		}
	}
	bottom := y

	fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="0.5" opacity="0.2"/>`, divider, header+8, divider, bottom-6, theme.Border)
	sb.WriteString("\n  ")

	if len(frameworks) > 0 {
		right := divider + padding
		fy := header + 16

		fmt.Fprintf(&sb, `<text x="%d" y="%d" class="sec">⚡ Frameworks</text>`, right, fy)
		sb.WriteString("\n  ")

		fy = writeBadges(&sb, frameworks, right, fy+22, width-padding, 23, 7)
		bottom = max(bottom, fy+20)
	}

	height := bottom + 8
	if opts.ShowFooter {
		height += 6
		writeFooter(&sb, result, width, height)
		height += 10
	}

	return wrap(width, height+6, theme, sb.String())
}

func buildPortrait(result model.AggregateResult, theme Theme, opts Options) string {
	width := opts.Width
	langs, totalLangs := topEntries(result.Languages, opts.LangsCount)

	var sb strings.Builder

	y := padding
	if opts.ShowTitle {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" class="t">📊 %s's Coding Stats</text>`, padding, y+18, escape(result.Username))
		sb.WriteString("\n  ")
		y += 32

		y = writePills(&sb, statPills(result), padding, y, width-padding, theme) + 12
		writeAccent(&sb, width, y, theme)
		y += 12
	}

	if opts.ShowLanguages && len(langs) > 0 {
		writeLanguageStripe(&sb, langs, totalLangs, width, y)
		y += 20

		fmt.Fprintf(&sb, `<text x="%d" y="%d" class="sec">💻 Languages</text>`, padding, y+14)
		sb.WriteString("\n  ")
		y += 26

		barWidth := max(width-padding*2-180, 50)
		barX := padding + 95

		for _, lang := range langs {
			pct := lang.Hours / totalLangs * 100
			filled := max(pct/100*float64(barWidth), 2)
			color := languageColor(lang.Name)

			fmt.Fprintf(&sb, `<g transform="translate(0,%d)">`, y)
			fmt.Fprintf(&sb, `<circle cx="%d" cy="-3" r="4" fill="%s"/>`, padding+5, color)
			fmt.Fprintf(&sb, `<text x="%d" y="0" class="l">%s</text>`, padding+14, escape(lang.Name))
			fmt.Fprintf(&sb, `<rect x="%d" y="-8" width="%d" height="8" rx="4" fill="%s"/>`, barX, barWidth, theme.BarBackground)
			fmt.Fprintf(&sb, `<rect x="%d" y="-8" width="%.1f" height="8" rx="4" fill="%s">`, barX, filled, color)
			fmt.Fprintf(&sb, `<animate attributeName="width" from="0" to="%.1f" dur="0.6s" fill="freeze" begin="0.2s"/></rect>`, filled)
			fmt.Fprintf(&sb, `<text x="%d" y="0" class="p">%.1f%%</text>`, barX+barWidth+8, pct)
			fmt.Fprintf(&sb, `<text x="%d" y="0" class="tm" text-anchor="end">%s</text></g>`, width-padding, formatShort(lang.Hours))
			sb.WriteString("\n  ")

			y += 26
		}
	}

	if opts.ShowFrameworks && len(result.Frameworks) > 0 {
		y += 10
		fmt.Fprintf(&sb, `<text x="%d" y="%d" class="sec">⚡ Frameworks &amp; Tools</text>`, padding, y+14)
		sb.WriteString("\n  ")
		y += 28

		y = writeBadges(&sb, result.Frameworks, padding, y, width-padding, 24, 8) + 18
	}

	if opts.ShowFooter {
		y += 14
		writeFooter(&sb, result, width, y)
		y += 8
	}

	return wrap(width, y+10, theme, sb.String())
}

func wrap(width int, height int, theme Theme, body string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100%%" viewBox="0 0 %[1]d %[2]d"
     preserveAspectRatio="xMidYMin meet">
  <defs><style>
    .t { font: 700 16px 'Segoe UI', Ubuntu, sans-serif; fill: %[3]s; }
    .sec { font: 600 11px 'Segoe UI', Ubuntu, sans-serif; fill: %[3]s; }
    .l { font: 500 11px 'Segoe UI', Ubuntu, sans-serif; fill: %[4]s; }
    .tm { font: 400 10px 'Segoe UI', monospace; fill: %[5]s; }
    .p { font: 500 10px 'Segoe UI', sans-serif; fill: %[5]s; }
    .b { font: 600 9.5px 'Segoe UI', sans-serif; }
    .f { font: 400 9px 'Segoe UI', sans-serif; fill: %[5]s; opacity: 0.4; }
    .pill { font: 500 9.5px 'Segoe UI', sans-serif; fill: %[5]s; }
    .pv { fill: %[4]s; font-weight: 700; }
  </style></defs>
  <rect width="%[1]d" height="%[2]d" rx="12" fill="%[6]s" stroke="%[7]s" stroke-width="1"/>
  %[8]s
</svg>`, width, height, theme.Title, theme.Text, theme.Muted, theme.Background, theme.Border, body)
}
