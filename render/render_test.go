package render

import (
	"strings"
	"testing"

	"github.com/codestats/codestats-api/model"
	"github.com/stretchr/testify/assert"
)

func sampleResult() model.AggregateResult {
	return model.AggregateResult{
		Username:   "octo<cat>",
		PeriodDays: 730,
		Languages: []model.HoursEntry{
			{Name: "Go", Hours: 10.5},
			{Name: "TypeScript", Hours: 6},
			{Name: "Shell", Hours: 1.5},
		},
		Frameworks: []model.HoursEntry{
			{Name: "Gin", Hours: 10.5},
			{Name: "React", Hours: 6},
		},
		TotalHours:    18,
		RepoCount:     3,
		BusiestPeriod: model.PeriodEvening,
		PRCount:       4,
		IssueCount:    2,
	}
}

func defaultOptions() Options {
	return Options{
		Theme:          "dark",
		Layout:         "landscape",
		LangsCount:     8,
		ShowFrameworks: true,
		ShowLanguages:  true,
		ShowTitle:      true,
		ShowFooter:     true,
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"long", formatLong(3.5), "3 hrs 30 mins"},
		{"long zero", formatLong(0), "0 hrs 0 mins"},
		{"short", formatShort(2.25), "2h 15m"},
		{"short under one hour", formatShort(0.5), "30m"},
		{"period years", periodLabel(730), "2 years"},
		{"period one year", periodLabel(400), "1 year"},
		{"period months", periodLabel(90), "3 months"},
		{"period one month", periodLabel(30), "1 month"},
		{"period days", periodLabel(7), "7 days"},
		{"escape", escape(`a<b>&"c"`), "a&lt;b&gt;&amp;&quot;c&quot;"},
		{"dark background", contrastText("#000000"), "#ffffff"},
		{"light background", contrastText("#ffffff"), "#1a1a2e"},
		{"half bar", progressBar(50, 10), "█████░░░░░"},
		{"overflowing bar", progressBar(150, 4), "████"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestGetThemeFallback(t *testing.T) {
	assert.Equal(t, themes["light"], GetTheme("light"))
	assert.Equal(t, themes["dark"], GetTheme("unknown"))
}

func TestTopEntries(t *testing.T) {
	entries, total := topEntries(sampleResult().Languages, 2)
	assert.Len(t, entries, 2)
	assert.Equal(t, 16.5, total)

	entries, total = topEntries(nil, 5)
	assert.Empty(t, entries)
	assert.Equal(t, 1.0, total)
}

func TestSVGLandscape(t *testing.T) {
	svg := SVG(sampleResult(), defaultOptions())

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `viewBox="0 0 720 `)
	assert.Contains(t, svg, "octo&lt;cat&gt;'s Coding Stats")
	assert.NotContains(t, svg, "octo<cat>")
	assert.Contains(t, svg, ">Go</text>")
	assert.Contains(t, svg, ">TypeScript</text>")
	assert.Contains(t, svg, ">Gin</text>")
	assert.Contains(t, svg, `<tspan class="pv">Evening</tspan>`)
	assert.Contains(t, svg, `<tspan class="pv">2 years</tspan>`)
	assert.Contains(t, svg, "#00ADD8")
	assert.Contains(t, svg, themes["dark"].Background)
	assert.NotContains(t, svg, partialFooterTag)
}

func TestSVGPortraitAndToggles(t *testing.T) {
	opts := defaultOptions()
	opts.Layout = LayoutPortrait
	opts.Theme = "radical"
	opts.ShowFrameworks = false
	opts.ShowFooter = false
	opts.LangsCount = 1

	svg := SVG(sampleResult(), opts)

	assert.Contains(t, svg, `viewBox="0 0 480 `)
	assert.Contains(t, svg, themes["radical"].Background)
	assert.Contains(t, svg, ">Go</text>")
	assert.NotContains(t, svg, ">TypeScript</text>")
	assert.NotContains(t, svg, "Frameworks")
	assert.NotContains(t, svg, footerText)
}

func TestSVGCustomWidthAndPartial(t *testing.T) {
	opts := defaultOptions()
	opts.Width = 900

	result := sampleResult()
	result.Partial = true

	svg := SVG(result, opts)

	assert.Contains(t, svg, `viewBox="0 0 900 `)
	assert.Contains(t, svg, partialFooterTag)
}

func TestSVGWithoutLanguages(t *testing.T) {
	opts := defaultOptions()
	opts.ShowLanguages = false
	opts.ShowTitle = false

	svg := SVG(sampleResult(), opts)

	assert.NotContains(t, svg, "Languages")
	assert.NotContains(t, svg, "Coding Stats")
	assert.Contains(t, svg, ">React</text>")
}

func TestErrorSVG(t *testing.T) {
	svg := ErrorSVG("No coding activity found for 'a&b'", "light")

	assert.Contains(t, svg, "CodeStats Error")
	assert.Contains(t, svg, "a&amp;b")
	assert.Contains(t, svg, themes["light"].Background)
}

func TestCodeBlock(t *testing.T) {
	block := CodeBlock(sampleResult(), 10, true)
	lines := strings.Split(block, "\n")

	assert.Equal(t, "Coding Time Tracker — octo<cat>", lines[0])
	assert.Contains(t, block, "Total Time: 18 hrs 0 mins  (730 days)")
	assert.Contains(t, block, "Repos scanned: 3")
	assert.Contains(t, block, "Busiest time: Evening (UTC)")
	assert.Contains(t, block, "Pull requests: 4  Issues: 2")
	assert.Contains(t, block, "Go           10 hrs 30 mins  ")
	assert.Contains(t, block, "58.33 %")
	assert.Contains(t, block, "Frameworks & Tools:")
	assert.NotContains(t, block, "Partial results")

	withoutFrameworks := CodeBlock(sampleResult(), 1, false)
	assert.NotContains(t, withoutFrameworks, "Frameworks")
	assert.NotContains(t, withoutFrameworks, "TypeScript")
	assert.Contains(t, withoutFrameworks, "100.00 %")
}
