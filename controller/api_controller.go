package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codestats/codestats-api/cache"
	"github.com/codestats/codestats-api/config"
	"github.com/codestats/codestats-api/model"
	"github.com/codestats/codestats-api/render"
	"github.com/codestats/codestats-api/service"
	"github.com/gin-gonic/gin"

	log "github.com/sirupsen/logrus"
)

var (
	ErrTokenNotConfigured = errors.New("TOKEN_NOT_CONFIGURED")
	ErrInvalidQuery       = errors.New("INVALID_QUERY")
)

const (
	svgCacheControl  = "public, max-age=7200, s-maxage=7200, stale-while-revalidate=3600"
	textCacheControl = "public, max-age=7200"

	// the text block shows more languages than the card by default
	codeBlockLangsCount = 10
)

// StatsTracker computes the aggregate of a user
type StatsTracker interface {
	Run(ctx context.Context, username string, periodDays int, maxRepos int, ignoreLanguages []string) model.AggregateResult
}

type APIController interface {
	GetStats(ctx *gin.Context)
	GetJSON(ctx *gin.Context)
	GetCode(ctx *gin.Context)
	Health(ctx *gin.Context)
}

type apiController struct {
	tracker StatsTracker
	cache   cache.CacheService
	config  config.Config
}

func NewAPIController(config config.Config, tracker StatsTracker, cache cache.CacheService) APIController {
	return apiController{
		tracker: tracker,
		cache:   cache,
		config:  config,
	}
}

// GetStats renders the SVG card.
// Errors are rendered as an error card with a 200 status so that embedded images still display.
func (s apiController) GetStats(c *gin.Context) {
	query, err := s.bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(err))
		return
	}

	c.Header("Cache-Control", svgCacheControl)

	result, err := s.loadStats(c, query)
	if err != nil {
		s.writeSVG(c, render.ErrorSVG(model.NewAPIError(err).Message, query.Theme))
		return
	}

	if result.IsEmpty() {
		s.writeSVG(c, render.ErrorSVG(fmt.Sprintf("No coding activity found for '%s' in the last %d days.", query.Username, query.Period), query.Theme))
		return
	}

	s.writeSVG(c, render.SVG(result, render.OptionsFromQuery(query)))
}

// GetJSON returns the raw aggregate
func (s apiController) GetJSON(c *gin.Context) {
	query, err := s.bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(err))
		return
	}

	result, err := s.loadStats(c, query)
	if err != nil {
		c.JSON(errorStatus(err), model.NewAPIError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCode returns the aggregate as a text block for README markdown
func (s apiController) GetCode(c *gin.Context) {
	query, err := s.bindQuery(c)
	if err != nil {
		c.String(http.StatusBadRequest, "Error: "+model.NewAPIError(err).Message)
		return
	}

	if _, provided := c.GetQuery("langs_count"); !provided {
		query.LangsCount = codeBlockLangsCount
	}

	result, err := s.loadStats(c, query)
	if err != nil {
		c.String(errorStatus(err), "Error: "+model.NewAPIError(err).Message)
		return
	}

	c.Header("Cache-Control", textCacheControl)
	c.String(http.StatusOK, render.CodeBlock(result, query.LangsCount, query.ShowFrameworks))
}

func (s apiController) Health(c *gin.Context) {
	cacheStatus := "unavailable"
	if s.cache.Available() {
		cacheStatus = "connected"
	}

	tokenStatus := "missing"
	if s.config.Github.Token != "" {
		tokenStatus = "configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  cacheStatus,
		"token":  tokenStatus,
	})
}

// bindQuery reads the query parameters, period and max_repos default to the configured values
func (s apiController) bindQuery(c *gin.Context) (model.StatsQuery, error) {
	var query model.StatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Debug("invalid query parameters")
		return query, ErrInvalidQuery
	}

	if _, provided := c.GetQuery("period"); !provided {
		query.Period = s.config.Tracker.DefaultPeriodDays
	}

	if _, provided := c.GetQuery("max_repos"); !provided {
		query.MaxRepos = s.config.Tracker.DefaultMaxRepos
	}

	return query, nil
}

// loadStats serves the aggregate from cache when possible, otherwise runs the tracker
// and caches any non empty result
func (s apiController) loadStats(c *gin.Context, query model.StatsQuery) (model.AggregateResult, error) {
	if s.config.Github.Token == "" {
		return model.AggregateResult{}, ErrTokenNotConfigured
	}

	if !s.cache.Allow(c, c.ClientIP(), s.config.Cache.RateLimitPerMinute, time.Minute) {
		log.WithField("client", c.ClientIP()).Info("client request limit reached")
		return model.AggregateResult{}, service.ErrRateLimitReached
	}

	key := query.CacheKey()
	logger := log.WithFields(log.Fields{
		"username": query.Username,
		"cacheKey": key,
	})

	if !query.NoCache && s.cache.Available() {
		var cached model.AggregateResult

		found, err := s.cache.Get(c, key, &cached)
		if err != nil {
			logger.WithError(err).Warning("unable to read cached stats")
		}

		if found {
			logger.Debug("cache hit")
			return cached, nil
		}
	}

	logger.Info("processing stats")
	result := s.tracker.Run(c, query.Username, query.Period, query.MaxRepos, nil)

	if !result.IsEmpty() && s.cache.Available() {
		if err := s.cache.Set(c, key, result, s.config.Cache.CacheTTL()); err != nil {
			logger.WithError(err).Warning("unable to cache stats")
		}
	}

	return result, nil
}

func (s apiController) writeSVG(c *gin.Context, svg string) {
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrTokenNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRateLimitReached):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
