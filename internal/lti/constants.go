package lti

// InstructorRoles is the instructor-role vocabulary from the LTI 1.1 role
// vocabulary (https://www.imsglobal.org/specs/ltiv1p1/implementation-guide).
// Matching is exact and case-sensitive.
var InstructorRoles = map[string]struct{}{
	"Instructor":                              {},
	"urn:lti:role:ims/lis/Instructor":         {},
	"urn:lti:instrole:ims/lis/Instructor":     {},
	"Faculty":                                 {},
	"urn:lti:instrole:ims/lis/Faculty":        {},
	"ContentDeveloper":                        {},
	"urn:lti:role:ims/lis/ContentDeveloper":   {},
	"TeachingAssistant":                       {},
	"urn:lti:role:ims/lis/TeachingAssistant":  {},
	"Administrator":                           {},
	"urn:lti:role:ims/lis/Administrator":      {},
	"urn:lti:instrole:ims/lis/Administrator":  {},
	"urn:lti:sysrole:ims/lis/Administrator":   {},
}

// DefaultBrokerDomains are the Willo Labs hostnames recognized as grade-sync
// brokers. Overridable via the YAML config overlay.
var DefaultBrokerDomains = []string{
	"test.willolabs.com",
	"stage.willolabs.com",
	"app.willolabs.com",
	"ca.willolabs.com",
	"ca-stage.willolabs.com",
}

// DefaultFieldMappings projects launch parameters onto the external cache
// tables when an internal course carries no configuration profile. Keys are
// internal column names, values the launch-parameter key that supplies them.
var DefaultFieldMappings = map[string]map[string]string{
	"ExternalCourse": {
		"context_title": "context_title",
		"context_label": "context_label",

		"ext_wl_launch_key":          "ext_wl_launch_key",
		"ext_wl_launch_url":          "ext_wl_launch_url",
		"ext_wl_version":             "ext_wl_version",
		"ext_wl_outcome_service_url": "ext_wl_outcome_service_url",

		"tool_consumer_info_product_family_code": "tool_consumer_info_product_family_code",
		"tool_consumer_info_version":             "tool_consumer_info_version",
		"tool_consumer_instance_contact_email":   "tool_consumer_instance_contact_email",
		"tool_consumer_instance_guid":            "tool_consumer_instance_guid",
		"tool_consumer_instance_name":            "tool_consumer_instance_name",
		"tool_consumer_instance_description":     "tool_consumer_instance_description",

		"custom_tpa_next":        "custom_tpa_next",
		"custom_api_domain":      "custom_canvas_api_domain",
		"custom_course_id":       "custom_canvas_course_id",
		"custom_orig_context_id": "custom_orig_context_id",
		"custom_profile_url":     "custom_tc_profile_url",
	},

	"ExternalCourseEnrollment": {
		"roles":                            "roles",
		"ext_roles":                        "ext_roles",
		"ext_wl_privacy_mode":              "ext_wl_privacy_mode",
		"lis_person_contact_email_primary": "lis_person_contact_email_primary",
		"lis_person_name_family":           "lis_person_name_family",
		"lis_person_name_full":             "lis_person_name_full",
		"lis_person_name_given":            "lis_person_name_given",
		"lis_person_sourcedid":             "lis_person_sourcedid",

		"custom_user_id":         "custom_canvas_user_id",
		"custom_user_login_id":   "custom_canvas_user_login_id",
		"custom_person_timezone": "custom_canvas_person_timezone",
	},

	"ExternalCourseEnrollmentGrades": {},

	"ExternalCourseAssignments": {},

	"ExternalCourseAssignmentProblems": {},
}
