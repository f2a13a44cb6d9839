package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/CIDgravity/snakelet"
)

// config structure
type Config struct {
	API     APIConfig     `mapstructure:"API"`
	Github  GithubConfig  `mapstructure:"GITHUB"`
	Tasks   TasksConfig   `mapstructure:"TASKS"`
	Tracker TrackerConfig `mapstructure:"TRACKER"`
	Cache   CacheConfig   `mapstructure:"CACHE"`
	Logs    LogsConfig    `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
}

type GithubConfig struct {
	Token        string `mapstructure:"Token"` // overridden by GITHUB_TOKEN env variable when set
	IncludeForks bool   `mapstructure:"IncludeForks"`
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
	TaskTimeoutMs           int `mapstructure:"TaskTimeoutMs"`
	DeadlineMs              int `mapstructure:"DeadlineMs"` // must stay under the hosting platform execution limit
}

type TrackerConfig struct {
	SessionGapMinutes int      `mapstructure:"SessionGapMinutes"`
	SessionCapMinutes int      `mapstructure:"SessionCapMinutes"`
	MinSessionMinutes int      `mapstructure:"MinSessionMinutes"`
	DefaultPeriodDays int      `mapstructure:"DefaultPeriodDays"`
	DefaultMaxRepos   int      `mapstructure:"DefaultMaxRepos"`
	IgnoredLanguages  []string `mapstructure:"IgnoredLanguages"`
}

type CacheConfig struct {
	Path               string `mapstructure:"Path"` // empty disables the cache
	TTLSeconds         int    `mapstructure:"TTLSeconds"`
	RateLimitPerMinute int    `mapstructure:"RateLimitPerMinute"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJSON bool   `mapstructure:"OutputLogsAsJSON"`
}

// Load
func Load() (*Config, error) {
	cfg := GetDefault()
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))

	if err != nil {
		return nil, err
	}

	// check config file exists, next to the binary first then from the working directory
	// without any config file, the default values are used
	configFilePath := dir + "/config/config.toml"

	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		configFilePath = "config/config.toml"

		if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
			configFilePath = ""
		}
	}

	// load default and config file content
	if configFilePath != "" {
		if _, err = snakelet.InitAndLoad(cfg, configFilePath); err != nil {
			return nil, err
		}
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}

	return cfg, nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
		},
		Github: GithubConfig{
			IncludeForks: false,
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
			TaskTimeoutMs:           5000,
			DeadlineMs:              8500,
		},
		Tracker: TrackerConfig{
			SessionGapMinutes: 120,
			SessionCapMinutes: 240,
			MinSessionMinutes: 15,
			DefaultPeriodDays: 365,
			DefaultMaxRepos:   200,
			IgnoredLanguages:  []string{},
		},
		Cache: CacheConfig{
			Path:               "",
			TTLSeconds:         43200,
			RateLimitPerMinute: 30,
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJSON: false,
		},
	}
}

// TaskTimeout is the bounded wait applied to every single scheduled task
func (c TasksConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutMs) * time.Millisecond
}

// Deadline is the global wall-clock budget of one tracker run
func (c TasksConfig) Deadline() time.Duration {
	return time.Duration(c.DeadlineMs) * time.Millisecond
}

// CacheTTL returns how long a computed aggregate stays in cache
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
