package tracker

import (
	"strings"

	"github.com/codestats/codestats-api/model"
)

// noisePhrases marks commits that do not reflect hands-on coding time:
// merges, automation, dependency bumps, formatter runs and boilerplate
var noisePhrases = []string{
	"merge",
	"automated",
	"bot",
	"auto-update",
	"bump version",
	"bump ",
	"dependabot",
	"renovate",
	"update readme",
	"prettier",
	"eslint fix",
	"gofmt",
	"initial commit",
}

// IsAttributable reports whether a commit counts as real work.
// Commits without a message are never attributable.
func IsAttributable(commit model.Commit) bool {
	message := strings.ToLower(strings.TrimSpace(commit.Message))
	if message == "" {
		return false
	}

	for _, phrase := range noisePhrases {
		if strings.Contains(message, phrase) {
			return false
		}
	}

	return true
}

// FilterAttributable keeps only the attributable commits
func FilterAttributable(commits []model.Commit) []model.Commit {
	valid := make([]model.Commit, 0, len(commits))
	for _, c := range commits {
		if IsAttributable(c) {
			valid = append(valid, c)
		}
	}

	return valid
}
