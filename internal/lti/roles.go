package lti

import "strings"

// Role is the grade-sync classification of a launching user.
type Role string

const (
	RoleFaculty Role = "faculty"
	RoleLearner Role = "learner"
	RoleUnknown Role = "unknown"
)

// Classify decides whether the launch belongs to faculty or a learner.
// It tokenises every roles / ext_roles / roles_param value on comma and
// intersects the token set with the instructor vocabulary. A non-empty
// intersection means faculty; any token at all means learner; an empty
// or missing set means unknown. Pure and deterministic.
func Classify(p Params) Role {
	tokens := map[string]struct{}{}
	collectRoleTokens(tokens, p.Get("roles"))
	collectRoleTokens(tokens, p.Get("ext_roles"))
	for _, v := range p.Strings("roles_param") {
		collectRoleTokens(tokens, v)
	}
	return classifyTokens(tokens)
}

// ClassifyStrings classifies raw comma-separated role strings, e.g. the
// roles and ext_roles columns of a cached enrollment row.
func ClassifyStrings(values ...string) Role {
	tokens := map[string]struct{}{}
	for _, v := range values {
		collectRoleTokens(tokens, v)
	}
	return classifyTokens(tokens)
}

func classifyTokens(tokens map[string]struct{}) Role {
	if len(tokens) == 0 {
		return RoleUnknown
	}
	for t := range tokens {
		if _, ok := InstructorRoles[t]; ok {
			return RoleFaculty
		}
	}
	return RoleLearner
}

func collectRoleTokens(into map[string]struct{}, raw string) {
	if raw == "" {
		return
	}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			into[tok] = struct{}{}
		}
	}
}
