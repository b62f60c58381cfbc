package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Posting states of an EnrollmentGrade row. A new grade computation always
// inserts pending; terminal rows (accepted, permanent-failed) are never
// mutated afterwards.
const (
	GradePending         = "pending"
	GradeAccepted        = "accepted"
	GradeTransientFailed = "transient-failed"
	GradePermanentFailed = "permanent-failed"
)

// EnrollmentGrade is the audit trail of grade posts. The most recent row per
// (enrollment, assignment, usage_key) is the current one.
type EnrollmentGrade struct {
	ID           uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID                 `gorm:"type:uuid;not null;index:idx_grade_triple" json:"enrollment_id"`
	Enrollment   *ExternalCourseEnrollment `gorm:"constraint:OnDelete:CASCADE;foreignKey:EnrollmentID;references:ID" json:"enrollment,omitempty"`
	AssignmentID uuid.UUID                 `gorm:"type:uuid;not null;index:idx_grade_triple" json:"assignment_id"`
	Assignment   *ExternalCourseAssignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	UsageKey     string                    `gorm:"column:usage_key;not null;size:255;index:idx_grade_triple" json:"usage_key"`

	Earned    float64 `gorm:"column:earned;not null" json:"earned"`
	Possible  float64 `gorm:"column:possible;not null" json:"possible"`
	Percent   float64 `gorm:"column:percent;not null" json:"percent"`
	Attempted bool    `gorm:"column:attempted;not null;default:false" json:"attempted"`

	PostedStatus string     `gorm:"column:posted_status;not null;default:'pending';index" json:"posted_status"`
	PostedAt     *time.Time `gorm:"column:posted_at" json:"posted_at,omitempty"`
	AttemptCount int        `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	LastError    string     `gorm:"column:last_error" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (EnrollmentGrade) TableName() string { return "lti_enrollment_grade" }

func (g *EnrollmentGrade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Terminal reports whether the row may no longer be mutated.
func (g *EnrollmentGrade) Terminal() bool {
	return g.PostedStatus == GradeAccepted || g.PostedStatus == GradePermanentFailed
}
