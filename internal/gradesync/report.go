package gradesync

import "time"

// Terminal statuses of a sync pass.
const (
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusAlreadyRunning = "already-running"
	StatusMisconfigured  = "misconfigured"
)

// Error classes aggregated in a SyncReport.
const (
	ErrClassCourseMisconfigured = "CourseMisconfigured"
	ErrClassHostUnavailable     = "HostUnavailable"
	ErrClassTransientFailure    = "TransientFailure"
	ErrClassPermanentFailure    = "PermanentFailure"
)

// Entry records the outcome of one (enrollment, assignment, problem) post,
// or one course-level failure.
type Entry struct {
	Username   string `json:"username,omitempty"`
	URLName    string `json:"url_name,omitempty"`
	UsageKey   string `json:"usage_key,omitempty"`
	Status     string `json:"status"`
	ErrorClass string `json:"error_class,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SyncReport aggregates one sync pass over one course.
type SyncReport struct {
	CourseID   string         `json:"course_id"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Posted     map[string]int `json:"posted"`
	Skipped    int            `json:"skipped"`
	Errors     map[string]int `json:"errors"`
	Entries    []Entry        `json:"entries,omitempty"`
}

func newReport(courseID string, now time.Time) *SyncReport {
	return &SyncReport{
		CourseID:  courseID,
		StartedAt: now,
		Posted:    map[string]int{},
		Errors:    map[string]int{},
	}
}

func (r *SyncReport) recordPost(username, urlName, usageKey, status string) {
	r.Posted[status]++
	r.Entries = append(r.Entries, Entry{
		Username: username,
		URLName:  urlName,
		UsageKey: usageKey,
		Status:   status,
	})
}

func (r *SyncReport) recordError(username, urlName, usageKey, class, msg string) {
	r.Errors[class]++
	r.Entries = append(r.Entries, Entry{
		Username:   username,
		URLName:    urlName,
		UsageKey:   usageKey,
		Status:     "error",
		ErrorClass: class,
		Error:      msg,
	})
}

// HasTransientFailures reports whether any row was left for the next pass.
func (r *SyncReport) HasTransientFailures() bool {
	return r.Posted["transient-failed"] > 0 || r.Errors[ErrClassTransientFailure] > 0
}
