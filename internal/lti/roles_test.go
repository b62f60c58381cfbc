package lti

import "testing"

func TestClassify_InstructorRole(t *testing.T) {
	p := NewParams(map[string]any{"roles": "Instructor,urn:lti:sysrole:ims/lis/Administrator"})
	if got := Classify(p); got != RoleFaculty {
		t.Fatalf("expected faculty, got %q", got)
	}
}

func TestClassify_EveryVocabularyEntryIsFaculty(t *testing.T) {
	for role := range InstructorRoles {
		p := NewParams(map[string]any{"roles": role})
		if got := Classify(p); got != RoleFaculty {
			t.Fatalf("role %q: expected faculty, got %q", role, got)
		}
	}
}

func TestClassify_LearnerRole(t *testing.T) {
	p := NewParams(map[string]any{"roles": "Learner"})
	if got := Classify(p); got != RoleLearner {
		t.Fatalf("expected learner, got %q", got)
	}
}

func TestClassify_RolesParamSequence(t *testing.T) {
	p := NewParams(map[string]any{
		"roles_param": []any{
			"urn:lti:instrole:ims/lis/Student,Student,urn:lti:instrole:ims/lis/Learner,Learner",
			"Instructor,urn:lti:sysrole:ims/lis/Administrator,urn:lti:instrole:ims/lis/Administrator",
		},
	})
	if got := Classify(p); got != RoleFaculty {
		t.Fatalf("expected faculty, got %q", got)
	}
}

func TestClassify_ExtRolesStudent(t *testing.T) {
	p := NewParams(map[string]any{
		"ext_roles": "urn:lti:instrole:ims/lis/Student,urn:lti:role:ims/lis/Learner,urn:lti:sysrole:ims/lis/User",
	})
	if got := Classify(p); got != RoleLearner {
		t.Fatalf("expected learner, got %q", got)
	}
}

func TestClassify_MissingInput(t *testing.T) {
	if got := Classify(NewParams(nil)); got != RoleUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := Classify(NewParams(map[string]any{"context_id": "ctx-1"})); got != RoleUnknown {
		t.Fatalf("expected unknown for role-free params, got %q", got)
	}
}

func TestClassify_CaseSensitive(t *testing.T) {
	p := NewParams(map[string]any{"roles": "instructor"})
	if got := Classify(p); got != RoleLearner {
		t.Fatalf("lowercase instructor must not match vocabulary; got %q", got)
	}
}

func TestClassify_WhitespaceTokens(t *testing.T) {
	p := NewParams(map[string]any{"roles": "  Learner ,   TeachingAssistant  "})
	if got := Classify(p); got != RoleFaculty {
		t.Fatalf("expected faculty, got %q", got)
	}
}

func TestClassify_DependsOnlyOnRoleFields(t *testing.T) {
	a := NewParams(map[string]any{"roles": "Learner"})
	b := NewParams(map[string]any{
		"roles":      "Learner",
		"context_id": "ctx-9",
		"user_id":    "u-1",
		"custom_foo": "bar",
	})
	if Classify(a) != Classify(b) {
		t.Fatalf("classification must depend only on role fields")
	}
}

func TestClassifyStrings_EnrollmentColumns(t *testing.T) {
	if got := ClassifyStrings("Learner", ""); got != RoleLearner {
		t.Fatalf("expected learner, got %q", got)
	}
	if got := ClassifyStrings("Learner", "urn:lti:instrole:ims/lis/Faculty"); got != RoleFaculty {
		t.Fatalf("expected faculty, got %q", got)
	}
	if got := ClassifyStrings("", ""); got != RoleUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
}
