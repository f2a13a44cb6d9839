package tracker

import (
	"context"
	"strings"

	"github.com/codestats/codestats-api/model"
	log "github.com/sirupsen/logrus"
)

// Status tags the outcome of one unit of work
type Status int

const (
	StatusOK     Status = iota // attributable hours found
	StatusEmpty                // nothing to attribute, not an error
	StatusFailed               // fetch failure, timeout or panic
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HostingClient is everything the tracker needs from the source hosting API.
// A resource that does not exist must be reported as an empty value with a nil error.
type HostingClient interface {
	ListRepositories(ctx context.Context, username string, maxRepos int) ([]model.RepoDescriptor, error)
	ListLanguages(ctx context.Context, owner string, repo string) (model.LanguageBreakdown, error)
	ListCommits(ctx context.Context, owner string, repo string, author string, window model.TimeWindow) ([]model.Commit, error)
	CountPullRequests(ctx context.Context, username string) (int, error)
	CountIssues(ctx context.Context, username string) (int, error)
}

// FrameworkDetector finds the frameworks and tools used by a repository
// detection is best effort and never fails
type FrameworkDetector interface {
	Detect(ctx context.Context, owner string, repo string, primaryLanguage string) model.FrameworkSet
}

// Job describes the processing of a single repository
type Job struct {
	Repo             model.RepoDescriptor
	Username         string
	Window           model.TimeWindow
	IgnoredLanguages map[string]struct{} // lowercased language names
}

// Processor computes the RepoResult of one repository
type Processor struct {
	client    HostingClient
	detector  FrameworkDetector
	estimator Estimator
}

func NewProcessor(client HostingClient, detector FrameworkDetector, estimator Estimator) *Processor {
	return &Processor{
		client:    client,
		detector:  detector,
		estimator: estimator,
	}
}

// Process never returns an error: every failure degrades the result to zero hours,
// which excludes the repository from aggregation
func (p *Processor) Process(ctx context.Context, job Job) (model.RepoResult, Status) {
	repo := job.Repo
	result := model.NewEmptyRepoResult(repo.Name)

	logger := log.WithFields(log.Fields{
		"repository": repo.FullName(),
	})

	if repo.Size == 0 {
		logger.Debug("empty repository. skipped")
		return result, StatusEmpty
	}

	langs, err := p.client.ListLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		logger.WithError(err).Warning("unable to fetch repository languages")
		return result, StatusFailed
	}

	langs = withoutIgnoredLanguages(langs, job.IgnoredLanguages)
	if langs.TotalBytes() == 0 {
		logger.Debug("repository without attributable language. skipped")
		return result, StatusEmpty
	}

	result.Langs = langs

	commits, err := p.client.ListCommits(ctx, repo.Owner, repo.Name, job.Username, job.Window)
	if err != nil {
		logger.WithError(err).Warning("unable to fetch repository commits")
		return result, StatusFailed
	}

	// commits of organization repositories or forks can be attributed to the owner identity
	if len(commits) == 0 && repo.Owner != "" && !strings.EqualFold(repo.Owner, job.Username) {
		logger.Debug("no commits found for user, retry with repository owner")

		commits, err = p.client.ListCommits(ctx, repo.Owner, repo.Name, repo.Owner, job.Window)
		if err != nil {
			logger.WithError(err).Warning("unable to fetch repository commits for owner")
			return result, StatusFailed
		}
	}

	result.Hours, result.TimeOfDay = p.estimator.Estimate(FilterAttributable(commits))
	if result.Hours <= 0 {
		logger.Debug("no attributable commits in period")
		return result, StatusEmpty
	}

	if p.detector != nil {
		result.Frameworks = p.detector.Detect(ctx, repo.Owner, repo.Name, repo.PrimaryLanguage)
	}

	logger.WithFields(log.Fields{
		"hours":      result.Hours,
		"commits":    len(commits),
		"frameworks": len(result.Frameworks),
	}).Debug("repository processed")

	return result, StatusOK
}

// withoutIgnoredLanguages returns a copy of langs without the ignored entries
func withoutIgnoredLanguages(langs model.LanguageBreakdown, ignored map[string]struct{}) model.LanguageBreakdown {
	filtered := make(model.LanguageBreakdown, len(langs))
	for name, bytes := range langs {
		if _, skip := ignored[strings.ToLower(name)]; skip {
			continue
		}

		filtered[name] = bytes
	}

	return filtered
}

// NewLanguageSet lowercases and deduplicates language names
func NewLanguageSet(languages ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range languages {
		for _, name := range list {
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
				set[name] = struct{}{}
			}
		}
	}

	return set
}
