package lti

import "testing"

func willoLaunch() map[string]any {
	return map[string]any{
		"context_id":                       "ctx-1",
		"custom_canvas_course_id":          "42",
		"ext_wl_launch_url":                "https://app.willolabs.com/launch/x",
		"ext_wl_outcome_service_url":       "https://app.willolabs.com/outcomes/ctx-1",
		"roles":                            "Learner",
		"user_id":                          "u-7",
		"lis_person_contact_email_primary": "s@x.edu",
		"lis_person_name_full":             "Sam Student",
		"lis_person_name_given":            "Sam",
		"lis_person_name_family":           "Student",
	}
}

func TestIsGradeSyncLaunch_Willo(t *testing.T) {
	p := NewParams(willoLaunch())
	if !p.IsGradeSyncLaunch(nil) {
		t.Fatalf("expected willo launch to be grade-sync eligible")
	}
}

func TestIsGradeSyncLaunch_MissingLaunchURL(t *testing.T) {
	raw := willoLaunch()
	delete(raw, "ext_wl_launch_url")
	p := NewParams(raw)
	if p.IsGradeSyncLaunch(nil) {
		t.Fatalf("launch without ext_wl_launch_url must not be eligible")
	}
}

func TestIsGradeSyncLaunch_ForeignOutcomeDomain(t *testing.T) {
	raw := willoLaunch()
	raw["ext_wl_outcome_service_url"] = "https://lms.example.edu/outcomes/ctx-1"
	p := NewParams(raw)
	if p.IsGradeSyncLaunch(nil) {
		t.Fatalf("foreign outcome domain must not be eligible")
	}
}

func TestIsGradeSyncLaunch_FallsBackToLisOutcomeURL(t *testing.T) {
	raw := willoLaunch()
	delete(raw, "ext_wl_outcome_service_url")
	raw["lis_outcome_service_url"] = "https://stage.willolabs.com/outcomes/ctx-1"
	p := NewParams(raw)
	if !p.IsGradeSyncLaunch(nil) {
		t.Fatalf("lis_outcome_service_url on a broker domain must be eligible")
	}
}

func TestIsGradeSyncLaunch_CustomDomainSet(t *testing.T) {
	raw := willoLaunch()
	raw["ext_wl_outcome_service_url"] = "https://broker.internal/outcomes/ctx-1"
	p := NewParams(raw)
	if p.IsGradeSyncLaunch(nil) {
		t.Fatalf("unexpected eligibility on default domains")
	}
	if !p.IsGradeSyncLaunch([]string{"broker.internal"}) {
		t.Fatalf("expected eligibility on overridden domains")
	}
}

func TestValidate_MissingIdentityFields(t *testing.T) {
	raw := willoLaunch()
	delete(raw, "lis_person_contact_email_primary")
	delete(raw, "user_id")
	missing := NewParams(raw).Validate()
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing fields, got %v", missing)
	}
}

func TestValidate_NameFieldsOptional(t *testing.T) {
	raw := willoLaunch()
	delete(raw, "lis_person_name_full")
	delete(raw, "lis_person_name_given")
	delete(raw, "lis_person_name_family")
	if missing := NewParams(raw).Validate(); len(missing) != 0 {
		t.Fatalf("name fields must not be required, got %v", missing)
	}
}

func TestValidate_WellFormed(t *testing.T) {
	if missing := NewParams(willoLaunch()).Validate(); len(missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", missing)
	}
}

func TestParams_StringsCoercion(t *testing.T) {
	p := NewParams(map[string]any{"roles_param": "Instructor"})
	got := p.Strings("roles_param")
	if len(got) != 1 || got[0] != "Instructor" {
		t.Fatalf("scalar roles_param should coerce to one-element slice, got %v", got)
	}
}
