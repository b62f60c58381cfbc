package willo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

// Content types of the two Willo Labs outcome write operations.
const (
	contentTypeResult   = "application/vnd.willolabs.outcome.result+json"
	contentTypeActivity = "application/vnd.willolabs.outcome.activity+json"
)

// Disposition classifies the broker's answer to a post. Transient means the
// post may be retried; permanent means it never should be.
type Disposition string

const (
	DispositionAccepted  Disposition = "accepted"
	DispositionTransient Disposition = "transient"
	DispositionPermanent Disposition = "permanent"
)

// Grade is one learner score for one gradebook column. ResultID identifies
// the score record on the broker side ("<context_id>:<user_id>").
type Grade struct {
	ResultID       string
	ActivityID     string
	UserID         string
	ResultDate     time.Time
	Score          float64
	PointsPossible float64
}

// Column declares (or re-declares, posts are idempotent on the broker side)
// one gradebook column.
type Column struct {
	ActivityID     string
	Title          string
	Description    string
	DueDate        *time.Time
	PointsPossible float64
}

// Client posts outcome writes to a Willo Labs outcome service endpoint.
type Client interface {
	PostGrade(ctx context.Context, outcomeURL, accessKey string, g Grade) (Disposition, error)
	PostColumn(ctx context.Context, outcomeURL, accessKey string, c Column) (Disposition, error)
}

type client struct {
	http *http.Client
	log  *logger.Logger
}

func NewClient(baseLog *logger.Logger) Client {
	return &client{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  baseLog.With("component", "WilloClient"),
	}
}

func (c *client) PostGrade(ctx context.Context, outcomeURL, accessKey string, g Grade) (Disposition, error) {
	body := map[string]any{
		"type":            "result",
		"id":              g.ResultID,
		"activity_id":     g.ActivityID,
		"user_id":         g.UserID,
		"result_date":     g.ResultDate.UTC().Format(time.RFC3339),
		"score":           g.Score,
		"points_possible": g.PointsPossible,
	}
	return c.post(ctx, outcomeURL, accessKey, contentTypeResult, body)
}

func (c *client) PostColumn(ctx context.Context, outcomeURL, accessKey string, col Column) (Disposition, error) {
	body := map[string]any{
		"type":            "activity",
		"id":              col.ActivityID,
		"title":           col.Title,
		"description":     col.Description,
		"points_possible": col.PointsPossible,
	}
	if col.DueDate != nil {
		body["due_date"] = col.DueDate.UTC().Format(time.RFC3339)
	}
	return c.post(ctx, outcomeURL, accessKey, contentTypeActivity, body)
}

func (c *client) post(ctx context.Context, outcomeURL, accessKey, contentType string, body map[string]any) (Disposition, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return DispositionPermanent, fmt.Errorf("encode outcome body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, NormalizeURL(outcomeURL), bytes.NewReader(payload))
	if err != nil {
		return DispositionPermanent, fmt.Errorf("build outcome request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Token "+accessKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return DispositionTransient, fmt.Errorf("outcome post timed out: %w", err)
		}
		if errors.Is(err, context.Canceled) {
			return DispositionTransient, err
		}
		return DispositionTransient, fmt.Errorf("outcome post failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return DispositionAccepted, nil
	case resp.StatusCode >= 500,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests:
		return DispositionTransient, fmt.Errorf("outcome service returned %d", resp.StatusCode)
	default:
		return DispositionPermanent, fmt.Errorf("outcome service rejected post with %d", resp.StatusCode)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// NormalizeURL appends the trailing slash the outcome service requires.
func NormalizeURL(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// IDFromURL extracts the broker's opaque identifier from a value that may be
// a full URL ("https://app.willolabs.com/.../users/1234/" -> "1234") or a
// block usage key ("block-v1:...+block@abc123" -> "abc123").
func IDFromURL(v string) string {
	s := strings.TrimRight(v, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// ActivityID derives a stable gradebook column id from an assignment name.
// The broker accepts only lowercase alphanumerics.
func ActivityID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
