package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExternalCourseAssignment is a graded Rover subsection as known to the
// external course. url_name is the host's subsection slug.
type ExternalCourseAssignment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContextID string          `gorm:"column:context_id;not null;size:255;index:idx_assignment_course_url,unique" json:"context_id"`
	Course    *ExternalCourse `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContextID;references:ContextID" json:"course,omitempty"`
	URLName   string          `gorm:"column:url_name;not null;size:255;index:idx_assignment_course_url,unique" json:"url_name"`

	DisplayName    string     `gorm:"column:display_name;size:255" json:"display_name"`
	DueDate        *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	PointsPossible float64    `gorm:"column:points_possible;not null;default:0" json:"points_possible"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ExternalCourseAssignment) TableName() string { return "lti_external_course_assignment" }

func (a *ExternalCourseAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ExternalCourseAssignmentProblem is one graded problem block inside an
// assignment. usage_key is the host's block usage locator.
type ExternalCourseAssignmentProblem struct {
	ID           uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID                 `gorm:"type:uuid;not null;index:idx_problem_assignment_usage,unique" json:"assignment_id"`
	Assignment   *ExternalCourseAssignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	UsageKey     string                    `gorm:"column:usage_key;not null;size:255;index:idx_problem_assignment_usage,unique" json:"usage_key"`

	DisplayName    string  `gorm:"column:display_name;size:255" json:"display_name"`
	PointsPossible float64 `gorm:"column:points_possible;not null;default:0" json:"points_possible"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ExternalCourseAssignmentProblem) TableName() string {
	return "lti_external_course_assignment_problem"
}

func (p *ExternalCourseAssignmentProblem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
