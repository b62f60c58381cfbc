package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExternalCourseEnrollment links one Rover user to one external course.
// Exactly one row exists per (context_id, username); a re-launch by the
// same user updates the row in place.
type ExternalCourseEnrollment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContextID string          `gorm:"column:context_id;not null;size:255;index:idx_enrollment_course_user,unique" json:"context_id"`
	Course    *ExternalCourse `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContextID;references:ContextID" json:"course,omitempty"`
	Username  string          `gorm:"column:username;not null;size:255;index:idx_enrollment_course_user,unique" json:"username"`

	LtiUserID          string `gorm:"column:lti_user_id;size:255" json:"lti_user_id,omitempty"`
	CustomUserID       string `gorm:"column:custom_user_id;size:25" json:"custom_user_id,omitempty"`
	CustomUserLoginID  string `gorm:"column:custom_user_login_id;size:50" json:"custom_user_login_id,omitempty"`
	CustomPersonTZ     string `gorm:"column:custom_person_timezone;size:50" json:"custom_person_timezone,omitempty"`
	Roles              string `gorm:"column:roles;size:255" json:"roles,omitempty"`
	ExtRoles           string `gorm:"column:ext_roles;size:255" json:"ext_roles,omitempty"`
	ExtWlPrivacyMode   string `gorm:"column:ext_wl_privacy_mode;size:50" json:"ext_wl_privacy_mode,omitempty"`
	LisPersonEmail     string `gorm:"column:lis_person_contact_email_primary;size:255" json:"lis_person_contact_email_primary,omitempty"`
	LisPersonNameFull  string `gorm:"column:lis_person_name_full;size:255" json:"lis_person_name_full,omitempty"`
	LisPersonNameGiven string `gorm:"column:lis_person_name_given;size:255" json:"lis_person_name_given,omitempty"`
	LisPersonNameFam   string `gorm:"column:lis_person_name_family;size:50" json:"lis_person_name_family,omitempty"`
	LisPersonSourcedID string `gorm:"column:lis_person_sourcedid;size:255" json:"lis_person_sourcedid,omitempty"`

	// Durable snapshot of the most recent launch; complements the
	// short-TTL redis launch cache so sync passes can outlive it.
	RawParams datatypes.JSON `gorm:"column:raw_params;type:jsonb" json:"raw_params,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ExternalCourseEnrollment) TableName() string { return "lti_external_course_enrollment" }

func (e *ExternalCourseEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
