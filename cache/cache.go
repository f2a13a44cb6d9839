// Package cache stores computed statistics with a TTL and limits requests per client.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codestats/codestats-api/config"
	log "github.com/sirupsen/logrus"

	_ "modernc.org/sqlite" // pure go SQLite driver
)

type CacheService interface {
	Available() bool
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Allow(ctx context.Context, identifier string, limit int, window time.Duration) bool
	Close() error
}

type cacheService struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
	CREATE TABLE IF NOT EXISTS cache_entries (
		cache_key TEXT PRIMARY KEY,
		cache_value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS rate_limits (
		identifier TEXT PRIMARY KEY,
		window_start INTEGER NOT NULL,
		hits INTEGER NOT NULL
	);
`

// NewCacheService opens the SQLite cache configured in CACHE.Path
// an empty path returns a disabled cache where every lookup misses and every request is allowed
func NewCacheService(cfg config.Config) (CacheService, error) {
	if cfg.Cache.Path == "" {
		return &cacheService{now: time.Now}, nil
	}

	db, err := sql.Open("sqlite", cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite cache at %q: %w", cfg.Cache.Path, err)
	}

	// a single connection avoids "database is locked" errors
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache tables: %w", err)
	}

	return &cacheService{db: db, now: time.Now}, nil
}

func (c *cacheService) Available() bool {
	return c.db != nil
}

// Get decodes the cached value of key into dest, it reports false on a miss or an expired entry
func (c *cacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.db == nil {
		return false, nil
	}

	var value []byte

	row := c.db.QueryRowContext(ctx, `SELECT cache_value FROM cache_entries WHERE cache_key = ? AND expires_at > ?`, key, c.now().Unix())
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	if err := json.Unmarshal(value, dest); err != nil {
		return false, err
	}

	return true, nil
}

// Set stores value as JSON for ttl and purges expired entries
func (c *cacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.db == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	now := c.now()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, now.Unix()); err != nil {
		log.WithError(err).Warning("unable to purge expired cache entries")
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (cache_key, cache_value, expires_at) VALUES (?, ?, ?)`,
		key, data, now.Add(ttl).Unix(),
	)

	return err
}

func (c *cacheService) Delete(ctx context.Context, key string) error {
	if c.db == nil {
		return nil
	}

	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = ?`, key)
	return err
}

// Allow counts one request of identifier in the current fixed window and reports
// whether the limit is respected. Storage errors allow the request.
func (c *cacheService) Allow(ctx context.Context, identifier string, limit int, window time.Duration) bool {
	if c.db == nil || limit <= 0 {
		return true
	}

	windowStart := c.now().Truncate(window).Unix()

	var hits int

	row := c.db.QueryRowContext(ctx, `
		INSERT INTO rate_limits (identifier, window_start, hits) VALUES (?, ?, 1)
		ON CONFLICT (identifier) DO UPDATE SET
			hits = CASE WHEN window_start = excluded.window_start THEN hits + 1 ELSE 1 END,
			window_start = excluded.window_start
		RETURNING hits`,
		identifier, windowStart,
	)

	if err := row.Scan(&hits); err != nil {
		log.WithError(err).WithField("identifier", identifier).Warning("rate limit check failed, request allowed")
		return true
	}

	return hits <= limit
}

func (c *cacheService) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}
