package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

// lock TTL bounds a wedged sync run; a healthy run releases much earlier.
const lockTTL = 15 * time.Minute

// releaseScript deletes the lock only when the caller still holds it.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// CourseLocker serializes sync runs per course across processes.
type CourseLocker interface {
	// Acquire returns a release token, or ok=false when another run holds
	// the course.
	Acquire(ctx context.Context, courseID string) (token string, ok bool, err error)
	Release(ctx context.Context, courseID, token string) error
	Close() error
}

type courseLocker struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewCourseLocker(log *logger.Logger) (CourseLocker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

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

	return &courseLocker{
		log: log.With("service", "CourseLocker"),
		rdb: rdb,
	}, nil
}

func lockKey(courseID string) string {
	return "gradesync:lock:" + courseID
}

func (l *courseLocker) Acquire(ctx context.Context, courseID string) (string, bool, error) {
	if l == nil || l.rdb == nil {
		return "", false, fmt.Errorf("course locker not initialized")
	}
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, lockKey(courseID), token, lockTTL).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *courseLocker) Release(ctx context.Context, courseID, token string) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("course locker not initialized")
	}
	return l.rdb.Eval(ctx, releaseScript, []string{lockKey(courseID)}, token).Err()
}

func (l *courseLocker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
