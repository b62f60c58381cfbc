package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/utils"
)

// LaunchCache keeps the most recent launch parameters per (user, course) so
// the sync engine can post without waiting for the next launch.
type LaunchCache interface {
	Set(ctx context.Context, username, courseID string, params map[string]any) error
	Get(ctx context.Context, username, courseID string) (map[string]any, error)
	Close() error
}

type launchCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLaunchCache(log *logger.Logger) (LaunchCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := time.Duration(utils.GetEnvAsInt("LAUNCH_CACHE_TTL_SECONDS", 600, log)) * time.Second

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &launchCache{
		log: log.With("service", "LaunchCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func launchKey(username, courseID string) string {
	return fmt.Sprintf("gradesync:launch:%s:%s", username, courseID)
}

func (c *launchCache) Set(ctx context.Context, username, courseID string, params map[string]any) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("launch cache not initialized")
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, launchKey(username, courseID), raw, c.ttl).Err()
}

func (c *launchCache) Get(ctx context.Context, username, courseID string) (map[string]any, error) {
	if c == nil || c.rdb == nil {
		return nil, fmt.Errorf("launch cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, launchKey(username, courseID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("bad cached launch payload", "error", err)
		return nil, nil
	}
	return out, nil
}

func (c *launchCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
