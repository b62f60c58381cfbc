package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table names a ConfigurationParam row may target. These are the five
// external cache tables that accept projected launch parameters.
const (
	TableExternalCourse             = "ExternalCourse"
	TableExternalCourseEnrollment   = "ExternalCourseEnrollment"
	TableExternalCourseEnrollGrades = "ExternalCourseEnrollmentGrades"
	TableExternalCourseAssignments  = "ExternalCourseAssignments"
	TableExternalCourseProblems     = "ExternalCourseAssignmentProblems"
)

// CacheTables lists the valid ConfigurationParam targets.
var CacheTables = []string{
	TableExternalCourse,
	TableExternalCourseEnrollment,
	TableExternalCourseEnrollGrades,
	TableExternalCourseAssignments,
	TableExternalCourseProblems,
}

// Configuration is a per-institution field-mapping profile,
// e.g. "KU - Willo Labs - Blackboard".
type Configuration struct {
	ID        uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string               `gorm:"column:name;size:255;not null" json:"name"`
	Comments  string               `gorm:"column:comments" json:"comments"`
	Params    []ConfigurationParam `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConfigurationID;references:ID" json:"params,omitempty"`
	CreatedAt time.Time            `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Configuration) TableName() string { return "lti_configuration" }

func (c *Configuration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ConfigurationParam maps one launch-parameter key (external_field) onto one
// column (internal_field) of one external cache table. One profile may not
// map the same (table, internal_field) twice.
type ConfigurationParam struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConfigurationID uuid.UUID `gorm:"type:uuid;not null;index:idx_config_table_field,unique" json:"configuration_id"`
	TableName_      string    `gorm:"column:table_name;size:255;not null;index:idx_config_table_field,unique" json:"table_name"`
	InternalField   string    `gorm:"column:internal_field;size:255;not null;index:idx_config_table_field,unique" json:"internal_field"`
	ExternalField   string    `gorm:"column:external_field;size:255;not null" json:"external_field"`
	Comments        string    `gorm:"column:comments" json:"comments"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ConfigurationParam) TableName() string { return "lti_configuration_param" }

func (p *ConfigurationParam) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
