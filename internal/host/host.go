package host

import (
	"context"
	"time"
)

// Subsection is a graded unit of the host course (a homework set, a quiz).
// One subsection becomes one gradebook column on the broker side.
type Subsection struct {
	URLName        string     `json:"url_name"`
	DisplayName    string     `json:"display_name"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Graded         bool       `json:"graded"`
	PointsPossible float64    `json:"points_possible"`
	Problems       []Problem  `json:"problems,omitempty"`
}

// Problem is one scorable block inside a subsection.
type Problem struct {
	UsageKey       string  `json:"usage_key"`
	DisplayName    string  `json:"display_name,omitempty"`
	PointsPossible float64 `json:"points_possible,omitempty"`
}

// Grade is one learner's score on one problem.
type Grade struct {
	Earned    float64 `json:"earned"`
	Possible  float64 `json:"possible"`
	Attempted bool    `json:"attempted"`
}

// ShouldSync reports whether the subsection is ripe for posting: the due
// date has passed, or the subsection is graded, or g records an attempt.
func ShouldSync(s Subsection, g *Grade, now time.Time) bool {
	if s.DueDate != nil && s.DueDate.Before(now) {
		return true
	}
	if s.Graded {
		return true
	}
	return g != nil && g.Attempted
}

// GradeService reads course structure and learner scores from the host LMS.
type GradeService interface {
	// GetGradedSubsections lists the gradable subsections of a course.
	GetGradedSubsections(ctx context.Context, courseID string) ([]Subsection, error)
	// GetGrade returns the learner's score on one problem, or (nil, nil)
	// when the learner has no score recorded for it.
	GetGrade(ctx context.Context, courseID, username, usageKey string) (*Grade, error)
}

// StaffUserProvider names a course-staff account the grades API calls run
// as. The host deployment decides how that account is picked.
type StaffUserProvider interface {
	StaffUsername(ctx context.Context, courseID string) (string, error)
}
