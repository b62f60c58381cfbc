package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, scrub(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, scrub(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(keysAndValues)...)}
}

// Launch requests carry learner PII (lis_person_* fields) and broker
// credentials that must not land in log aggregation. Secret-shaped keys
// are replaced outright; learner identifiers are salted-hashed so log
// lines from the same user still correlate.
var (
	redactKeys = []string{
		"secret", "token", "authorization", "oauth",
		"ext_wl_launch_key", "email",
		"lis_person_name", "lis_person_sourcedid", "lis_person_contact",
	}
	hashKeys = []string{"user_id", "username", "lti_user_id"}
)

var (
	scrubOnce sync.Once
	scrubOff  bool
	hashSalt  string
)

func scrub(kv []interface{}) []interface{} {
	if len(kv) < 2 || scrubDisabled() {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key := strings.ToLower(asString(out[i]))
		out[i+1] = scrubValue(key, out[i+1])
	}
	return out
}

func scrubValue(key string, val interface{}) interface{} {
	for _, frag := range redactKeys {
		if strings.Contains(key, frag) {
			return "[REDACTED]"
		}
	}
	for _, frag := range hashKeys {
		if strings.Contains(key, frag) {
			return hashed(asString(val))
		}
	}
	if m, ok := val.(map[string]interface{}); ok {
		clean := make(map[string]interface{}, len(m))
		for k, v := range m {
			clean[k] = scrubValue(strings.ToLower(k), v)
		}
		return clean
	}
	return val
}

func hashed(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(hashSalt + raw))
	return "h:" + hex.EncodeToString(sum[:6])
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(v)
	}
}

func scrubDisabled() bool {
	scrubOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			scrubOff = true
		}
		hashSalt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return scrubOff
}
