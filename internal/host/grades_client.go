package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/utils"
)

// gradesClient talks to the host's grades API
// (GET /grades_api/v2/courses/{course_id}/...).
type gradesClient struct {
	baseURL string
	token   string
	staff   StaffUserProvider
	http    *http.Client
	log     *logger.Logger
}

// NewGradesClient builds the HTTP GradeService from HOST_GRADES_API_URL and
// HOST_GRADES_API_TOKEN. staff may be nil when the deployment does not scope
// grade reads to a staff account.
func NewGradesClient(baseLog *logger.Logger, staff StaffUserProvider) GradeService {
	return &gradesClient{
		baseURL: strings.TrimRight(utils.GetEnv("HOST_GRADES_API_URL", "http://localhost:8000", baseLog), "/"),
		token:   utils.GetEnv("HOST_GRADES_API_TOKEN", "", baseLog),
		staff:   staff,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     baseLog.With("component", "GradesClient"),
	}
}

func (c *gradesClient) GetGradedSubsections(ctx context.Context, courseID string) ([]Subsection, error) {
	u := fmt.Sprintf("%s/grades_api/v2/courses/%s/subsections/", c.baseURL, url.PathEscape(courseID))
	var out []Subsection
	if err := c.get(ctx, courseID, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gradesClient) GetGrade(ctx context.Context, courseID, username, usageKey string) (*Grade, error) {
	u := fmt.Sprintf("%s/grades_api/v2/courses/%s/users/%s/problems/%s/",
		c.baseURL, url.PathEscape(courseID), url.PathEscape(username), url.PathEscape(usageKey))
	var out Grade
	err := c.get(ctx, courseID, u, &out)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var errNotFound = fmt.Errorf("not found")

func (c *gradesClient) get(ctx context.Context, courseID, u string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build grades request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.staff != nil {
		staff, err := c.staff.StaffUsername(ctx, courseID)
		if err != nil {
			return fmt.Errorf("resolve staff user: %w", err)
		}
		req.Header.Set("X-Requesting-User", staff)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("grades request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("grades API returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode grades response: %w", err)
	}
	return nil
}
