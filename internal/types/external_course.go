package types

import (
	"time"
)

// ExternalCourse caches course data delivered by Willo Labs LTI launches
// from a third-party LMS (Canvas, Moodle, Blackboard). context_id uniquely
// identifies the consumer-side course run and keys all lookups.
type ExternalCourse struct {
	ContextID string          `gorm:"column:context_id;primaryKey;size:255" json:"context_id"`
	CourseID  string          `gorm:"column:course_id;not null;size:255;index" json:"course_id"`
	Course    *InternalCourse `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:CourseID" json:"course,omitempty"`

	ContextTitle string `gorm:"column:context_title;size:255" json:"context_title,omitempty"`
	ContextLabel string `gorm:"column:context_label;size:255" json:"context_label,omitempty"`

	ExtWlLaunchKey         string `gorm:"column:ext_wl_launch_key;size:50" json:"ext_wl_launch_key,omitempty"`
	ExtWlLaunchURL         string `gorm:"column:ext_wl_launch_url;size:255" json:"ext_wl_launch_url,omitempty"`
	ExtWlVersion           string `gorm:"column:ext_wl_version;size:25" json:"ext_wl_version,omitempty"`
	ExtWlOutcomeServiceURL string `gorm:"column:ext_wl_outcome_service_url;size:255" json:"ext_wl_outcome_service_url,omitempty"`

	CustomTpaNext       string     `gorm:"column:custom_tpa_next;size:255" json:"custom_tpa_next,omitempty"`
	CustomOrigContextID string     `gorm:"column:custom_orig_context_id;size:50" json:"custom_orig_context_id,omitempty"`
	CustomProfileURL    string     `gorm:"column:custom_profile_url;size:255" json:"custom_profile_url,omitempty"`
	CustomAPIDomain     string     `gorm:"column:custom_api_domain;size:255" json:"custom_api_domain,omitempty"`
	CustomCourseID      string     `gorm:"column:custom_course_id;size:50" json:"custom_course_id,omitempty"`
	CustomCourseStartAt *time.Time `gorm:"column:custom_course_startat" json:"custom_course_startat,omitempty"`

	ToolConsumerInfoProductFamilyCode  string `gorm:"column:tool_consumer_info_product_family_code;size:50" json:"tool_consumer_info_product_family_code,omitempty"`
	ToolConsumerInfoVersion            string `gorm:"column:tool_consumer_info_version;size:50" json:"tool_consumer_info_version,omitempty"`
	ToolConsumerInstanceContactEmail   string `gorm:"column:tool_consumer_instance_contact_email;size:255" json:"tool_consumer_instance_contact_email,omitempty"`
	ToolConsumerInstanceGUID           string `gorm:"column:tool_consumer_instance_guid;size:100" json:"tool_consumer_instance_guid,omitempty"`
	ToolConsumerInstanceName           string `gorm:"column:tool_consumer_instance_name;size:50" json:"tool_consumer_instance_name,omitempty"`
	ToolConsumerInstanceDescription    string `gorm:"column:tool_consumer_instance_description;size:255" json:"tool_consumer_instance_description,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ExternalCourse) TableName() string { return "lti_external_course" }
