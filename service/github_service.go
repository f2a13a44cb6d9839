package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codestats/codestats-api/config"
	"github.com/codestats/codestats-api/model"
	"github.com/codestats/codestats-api/tracker"
	"github.com/google/go-github/v66/github"

	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

var (
	ErrRateLimitReached = errors.New("RATE_LIMIT_REACHED")
	ErrRateLimiter      = errors.New("RATE_LIMITER_ERROR")
	ErrFetch            = errors.New("FETCH_ERROR")
)

const (
	perPage = 100

	// safety net against huge histories, github also caps search pagination
	maxPages = 20
)

type GithubService interface {
	ListRepositories(ctx context.Context, username string, maxRepos int) ([]model.RepoDescriptor, error)
	ListLanguages(ctx context.Context, owner string, repo string) (model.LanguageBreakdown, error)
	ListCommits(ctx context.Context, owner string, repo string, author string, window model.TimeWindow) ([]model.Commit, error)
	CountPullRequests(ctx context.Context, username string) (int, error)
	CountIssues(ctx context.Context, username string) (int, error)
	GetFileContent(ctx context.Context, owner string, repo string, path string) (string, error)
	ListDirectory(ctx context.Context, owner string, repo string, path string) ([]string, error)

	HandleRequestErrors(ctx context.Context, err error) error
}

var _ tracker.HostingClient = githubService{}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	config            config.Config
}

// the local rate limiter mirrors the github core limit (5000 calls per hour with a token)
// every request consumes one token, so a burst of users can not exhaust the github quota
// without us noticing it before github does
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	return githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		config:            config,
	}
}

// ListRepositories returns the repositories owned by username, most recently pushed first.
// With a token the authenticated endpoint is tried first because it also lists private repositories,
// then the public endpoint is used as fallback.
func (s githubService) ListRepositories(ctx context.Context, username string, maxRepos int) ([]model.RepoDescriptor, error) {
	log.WithFields(log.Fields{
		"username": username,
		"maxRepos": maxRepos,
	}).Debug("fetch repositories from github")

	var repos []*github.Repository

	if s.config.Github.Token != "" {
		authenticatedRepos, err := paginate(ctx, s, maxRepos, func(opts github.ListOptions) ([]*github.Repository, *github.Response, error) {
			return s.githubClient.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
				Visibility:  "all",
				Affiliation: "owner",
				Sort:        "pushed",
				Direction:   "desc",
				ListOptions: opts,
			})
		})

		if err != nil {
			log.WithError(err).Debug("unable to list repositories of authenticated user, fallback to public listing")
		}

		// the token may belong to another user than the one requested
		for _, r := range authenticatedRepos {
			if strings.EqualFold(r.GetOwner().GetLogin(), username) {
				repos = append(repos, r)
			}
		}
	}

	if len(repos) == 0 {
		publicRepos, err := paginate(ctx, s, maxRepos, func(opts github.ListOptions) ([]*github.Repository, *github.Response, error) {
			return s.githubClient.Repositories.ListByUser(ctx, username, &github.RepositoryListByUserOptions{
				Sort:        "pushed",
				Direction:   "desc",
				ListOptions: opts,
			})
		})

		if err != nil {
			return []model.RepoDescriptor{}, err
		}

		repos = publicRepos
	}

	descriptors := make([]model.RepoDescriptor, 0, len(repos))

	for _, r := range repos {
		if r == nil || r.Name == nil || r.Owner == nil || r.Owner.Login == nil {
			log.WithField("repositoryID", r.GetID()).Debug("repository found with invalid information. skipped")
			continue
		}

		if r.GetFork() && !s.config.Github.IncludeForks {
			continue
		}

		descriptors = append(descriptors, model.RepoDescriptor{
			Name:            r.GetName(),
			Owner:           r.GetOwner().GetLogin(),
			PrimaryLanguage: r.GetLanguage(),
			Size:            r.GetSize(),
			PushedAt:        r.GetPushedAt().Time,
			IsFork:          r.GetFork(),
		})
	}

	if maxRepos > 0 && len(descriptors) > maxRepos {
		descriptors = descriptors[:maxRepos]
	}

	log.WithFields(log.Fields{
		"username":     username,
		"repositories": len(descriptors),
	}).Info("repositories fetched from github")

	return descriptors, nil
}

// ListLanguages returns the language byte count of a repository
func (s githubService) ListLanguages(ctx context.Context, owner string, repo string) (model.LanguageBreakdown, error) {
	if err := s.allow(); err != nil {
		return model.LanguageBreakdown{}, err
	}

	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
	}).Debug("fetch languages for repository")

	res, resp, err := s.githubClient.Repositories.ListLanguages(ctx, owner, repo)

	if isNoData(resp) {
		return model.LanguageBreakdown{}, nil
	}

	if err != nil {
		return model.LanguageBreakdown{}, s.HandleRequestErrors(ctx, err)
	}

	return model.LanguageBreakdown(res), nil
}

// ListCommits returns the commits of author in the repository during the window
func (s githubService) ListCommits(ctx context.Context, owner string, repo string, author string, window model.TimeWindow) ([]model.Commit, error) {
	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
		"author":     author,
	}).Debug("fetch commits for repository")

	res, err := paginate(ctx, s, 0, func(opts github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
		return s.githubClient.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
			Author:      author,
			Since:       window.Since,
			Until:       window.Until,
			ListOptions: opts,
		})
	})

	if err != nil {
		return []model.Commit{}, err
	}

	commits := make([]model.Commit, 0, len(res))

	for _, c := range res {
		commits = append(commits, model.Commit{
			Message:    c.GetCommit().GetMessage(),
			AuthoredAt: c.GetCommit().GetAuthor().GetDate().Time,
		})
	}

	return commits, nil
}

// CountPullRequests returns the number of pull requests authored by username
func (s githubService) CountPullRequests(ctx context.Context, username string) (int, error) {
	return s.countSearchResults(ctx, model.AuthorSearchQuery(username, "pr"))
}

// CountIssues returns the number of issues authored by username
func (s githubService) CountIssues(ctx context.Context, username string) (int, error) {
	return s.countSearchResults(ctx, model.AuthorSearchQuery(username, "issue"))
}

func (s githubService) countSearchResults(ctx context.Context, query string) (int, error) {
	if err := s.allow(); err != nil {
		return 0, err
	}

	log.WithField("query", query).Debug("count issues search results")

	// only the total is needed
	res, resp, err := s.githubClient.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{Page: 1, PerPage: 1},
	})

	if isNoData(resp) {
		return 0, nil
	}

	if err != nil {
		return 0, s.HandleRequestErrors(ctx, err)
	}

	return res.GetTotal(), nil
}

// GetFileContent returns the decoded content of a file, or an empty string when it does not exist
func (s githubService) GetFileContent(ctx context.Context, owner string, repo string, path string) (string, error) {
	if err := s.allow(); err != nil {
		return "", err
	}

	file, _, resp, err := s.githubClient.Repositories.GetContents(ctx, owner, repo, path, nil)

	if isNoData(resp) {
		return "", nil
	}

	if err != nil {
		return "", s.HandleRequestErrors(ctx, err)
	}

	// path is a directory
	if file == nil {
		return "", nil
	}

	content, err := file.GetContent()
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("unable to decode file content")
		return "", ErrFetch
	}

	return content, nil
}

// ListDirectory returns the lowercased entry names of a directory, path "" being the repository root
func (s githubService) ListDirectory(ctx context.Context, owner string, repo string, path string) ([]string, error) {
	if err := s.allow(); err != nil {
		return []string{}, err
	}

	_, entries, resp, err := s.githubClient.Repositories.GetContents(ctx, owner, repo, path, nil)

	if isNoData(resp) {
		return []string{}, nil
	}

	if err != nil {
		return []string{}, s.HandleRequestErrors(ctx, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.ToLower(entry.GetName()))
	}

	return names, nil
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// If error is a rate limit error, this function will update the local rate limiter to consume all available requests
// this can help us to keep the local rate limiter up to date
func (s githubService) HandleRequestErrors(ctx context.Context, err error) error {
	var rateLimitErr *github.RateLimitError
	var abuseRateLimitErr *github.AbuseRateLimitError

	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseRateLimitErr) {
		if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
			return ErrRateLimiter
		}

		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return ErrRateLimitReached
	}

	// deadline reached or request abandoned, nothing worth an error log
	if ctx.Err() != nil {
		return ctx.Err()
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return ErrFetch
}

// allow consumes one request from the local rate limiter
func (s githubService) allow() error {
	if !s.githubRateLimiter.Allow() {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return ErrRateLimitReached
	}

	return nil
}

// isNoData reports responses meaning the resource does not exist,
// 409 is returned by github when listing commits of an empty repository
func isNoData(resp *github.Response) bool {
	return resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict)
}

// paginate calls fetch page after page until the last page, maxItems items (0 for no limit) or maxPages pages
// a page missing means no data and ends the listing without error
func paginate[T any](ctx context.Context, s githubService, maxItems int, fetch func(opts github.ListOptions) ([]T, *github.Response, error)) ([]T, error) {
	items := make([]T, 0)
	opts := github.ListOptions{Page: 1, PerPage: perPage}

	for page := 0; page < maxPages; page++ {
		if err := s.allow(); err != nil {
			return items, err
		}

		res, resp, err := fetch(opts)

		if isNoData(resp) {
			return items, nil
		}

		if err != nil {
			return items, s.HandleRequestErrors(ctx, err)
		}

		items = append(items, res...)

		if maxItems > 0 && len(items) >= maxItems {
			return items[:maxItems], nil
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return items, nil
}
