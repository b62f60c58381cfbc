package types

import (
	"time"

	"github.com/google/uuid"
)

// InternalCourse is the master record for a Rover course that participates
// in LTI grade sync. Rows are created administratively; course_id is the
// opaque CourseKey string, e.g. "course-v1:edX+DemoX+Demo_Course".
type InternalCourse struct {
	CourseID          string         `gorm:"column:course_id;primaryKey;size:255" json:"course_id"`
	Enabled           bool           `gorm:"column:enabled;not null;default:false" json:"enabled"`
	ConfigurationID   *uuid.UUID     `gorm:"type:uuid;column:configuration_id;index" json:"configuration_id,omitempty"`
	Configuration     *Configuration `gorm:"constraint:OnDelete:SET NULL;foreignKey:ConfigurationID;references:ID" json:"configuration,omitempty"`
	ExternalCourseKey string         `gorm:"column:external_course_key;size:255;index" json:"external_course_key,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (InternalCourse) TableName() string { return "lti_internal_course" }
