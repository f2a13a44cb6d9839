package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codestats/codestats-api/cache"
	"github.com/codestats/codestats-api/config"
	"github.com/codestats/codestats-api/controller"
	"github.com/codestats/codestats-api/logger"
	"github.com/codestats/codestats-api/service"
	"github.com/codestats/codestats-api/tracker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// used when github rate limits can not be loaded at startup
const unauthenticatedCoreLimit = 60

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("unable to load configuration, default values will be used")
		cfg = config.GetDefault()
	}

	// configure logger
	logger.Setup(*cfg)

	// setup github client
	// we do here and pass the client to Github service to easily improve tests with mock client
	githubClient := github.NewClient(nil)

	if cfg.Github.Token != "" {
		log.Debug("will setup github client with authorization token")
		githubClient = githubClient.WithAuthToken(cfg.Github.Token)
	} else {
		log.Warning("GITHUB_TOKEN is not configured, stats endpoints will answer with an error")
	}

	rateLimiter := newRateLimiter(githubClient)

	// setup handlers and services
	githubService := service.NewGithubService(*cfg, githubClient, rateLimiter)
	frameworkDetector := service.NewFrameworkDetector(githubService)
	statsTracker := tracker.NewTracker(*cfg, githubService, frameworkDetector)

	statsCache, err := cache.NewCacheService(*cfg)
	if err != nil {
		log.WithError(err).Error("unable to open cache, continuing without cache")

		cfg.Cache.Path = ""
		statsCache, _ = cache.NewCacheService(*cfg)
	}

	apiController := controller.NewAPIController(*cfg, statsTracker, statsCache)

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: newRouter(apiController),
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	// the server has 15 seconds to finish the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}

	if err := statsCache.Close(); err != nil {
		log.WithError(err).Error("unable to close cache")
	}
}

// newRouter defines all routes, the stats endpoints only answer GET requests
func newRouter(apiController controller.APIController) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		logger.RequestLogger(),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			MaxAge:       12 * time.Hour,
		}),
	)

	api := router.Group("/api")
	{
		api.GET("", apiController.GetStats)
		api.GET("/json", apiController.GetJSON)
		api.GET("/code", apiController.GetCode)
		api.GET("/health", apiController.Health)
	}

	return router
}

// newRateLimiter mirrors the github core rate limit locally.
// The tokens already consumed elsewhere are taken from the bucket so that
// the limiter stays right even if external requests are made with the same token.
func newRateLimiter(githubClient *github.Client) *rate.Limiter {
	log.Debug("loading current rate limit from github")

	rateLimits, _, err := githubClient.RateLimit.Get(context.Background())
	if err != nil || rateLimits == nil || rateLimits.Core == nil {
		log.WithError(err).Warning("unable to load current github rate limits, using the unauthenticated limit")
		return rate.NewLimiter(rate.Every(time.Hour/unauthenticatedCoreLimit), unauthenticatedCoreLimit)
	}

	log.WithFields(log.Fields{
		"totalAvailable":    rateLimits.Core.Limit,
		"remainingRequests": rateLimits.Core.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	limit := max(rateLimits.Core.Limit, 1)
	rateLimiter := rate.NewLimiter(rate.Every(time.Hour/time.Duration(limit)), limit)

	if !rateLimiter.AllowN(time.Now(), rateLimits.Core.Limit-rateLimits.Core.Remaining) {
		log.Warning("unable to consume the github used quota from the local rate limiter")
	}

	return rateLimiter
}
