package lti

import (
	"fmt"
	"net/url"
)

// Params wraps the tpa_lti_params dictionary delivered in the body of an
// LTI authentication. Values are kept loosely typed because multi-message
// launches carry sequences (roles_param) alongside plain strings.
type Params struct {
	raw map[string]any
}

func NewParams(raw map[string]any) Params {
	if raw == nil {
		raw = map[string]any{}
	}
	return Params{raw: raw}
}

// Raw returns the underlying dictionary.
func (p Params) Raw() map[string]any { return p.raw }

// Get returns the string value for key, or "" when absent or not a string.
func (p Params) Get(key string) string {
	v, ok := p.raw[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Strings returns the sequence value for key. A scalar string becomes a
// one-element sequence.
func (p Params) Strings(key string) []string {
	v, ok := p.raw[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			} else if e != nil {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	case string:
		return []string{t}
	default:
		return nil
	}
}

func (p Params) ContextID() string { return p.Get("context_id") }
func (p Params) UserID() string    { return p.Get("user_id") }

// IsGradeSyncLaunch reports whether the launch came through a recognized
// grade-sync broker: the Willo launch URL extension must be present and the
// outcome-service URL must live on a recognized broker domain. domains nil
// means DefaultBrokerDomains.
func (p Params) IsGradeSyncLaunch(domains []string) bool {
	if p.Get("ext_wl_launch_url") == "" {
		return false
	}
	outcome := p.Get("ext_wl_outcome_service_url")
	if outcome == "" {
		outcome = p.Get("lis_outcome_service_url")
	}
	if outcome == "" {
		return false
	}
	parsed, err := url.Parse(outcome)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}
	if domains == nil {
		domains = DefaultBrokerDomains
	}
	for _, d := range domains {
		if host == d {
			return true
		}
	}
	return false
}

// requiredFields are the identity parameters a launch must carry before it
// can be projected onto the cache tables.
var requiredFields = []string{
	"context_id",
	"user_id",
	"lis_person_contact_email_primary",
}

// Validate checks the identity fields of the launch. It returns the names of
// the missing fields; an empty slice means the launch is well formed.
func (p Params) Validate() []string {
	var missing []string
	for _, f := range requiredFields {
		if p.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
