package model

import (
	"fmt"
	"strings"
)

// StatsQuery contains every query parameter accepted by the stats endpoints
type StatsQuery struct {
	Username       string `form:"username" binding:"required"`
	Theme          string `form:"theme,default=dark"`
	Layout         string `form:"layout,default=landscape"`
	Width          int    `form:"width,default=0" binding:"min=0,max=1200"`
	LangsCount     int    `form:"langs_count,default=8" binding:"min=1,max=20"`
	Period         int    `form:"period,default=365" binding:"min=7,max=3650"`
	MaxRepos       int    `form:"max_repos,default=200" binding:"min=1,max=500"`
	ShowFrameworks bool   `form:"show_frameworks,default=true"`
	ShowLanguages  bool   `form:"show_languages,default=true"`
	ShowTitle      bool   `form:"show_title,default=true"`
	ShowFooter     bool   `form:"show_footer,default=true"`
	NoCache        bool   `form:"no_cache,default=false"`
}

// CacheKey identifies an aggregate in the cache
// the username is lowercased because github logins are case insensitive
func (q StatsQuery) CacheKey() string {
	return fmt.Sprintf("codestats:%s:%d:%d", strings.ToLower(q.Username), q.Period, q.MaxRepos)
}

// AuthorSearchQuery builds a github search query for the items authored by username
// kind is "pr" or "issue"
func AuthorSearchQuery(username string, kind string) string {
	var githubQuery strings.Builder

	githubQuery.WriteString("author:" + username + " ")
	githubQuery.WriteString("type:" + kind)

	return strings.TrimSpace(githubQuery.String())
}
