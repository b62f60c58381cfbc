package gradesync

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/queriumcorp/rover-gradesync/internal/host"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/lti"
	"github.com/queriumcorp/rover-gradesync/internal/repos"
	"github.com/queriumcorp/rover-gradesync/internal/types"
	"github.com/queriumcorp/rover-gradesync/internal/willo"
)

// ErrAlreadyRunning means another pass holds the course lock.
var ErrAlreadyRunning = errors.New("a sync pass is already running for this course")

// CourseLocker serializes passes per course. The redis client satisfies it.
type CourseLocker interface {
	Acquire(ctx context.Context, courseID string) (token string, ok bool, err error)
	Release(ctx context.Context, courseID, token string) error
}

// OutcomePoster is the broker write surface the engine posts through.
// willo.Client satisfies it.
type OutcomePoster interface {
	PostGrade(ctx context.Context, outcomeURL, accessKey string, g willo.Grade) (willo.Disposition, error)
	PostColumn(ctx context.Context, outcomeURL, accessKey string, c willo.Column) (willo.Disposition, error)
}

// RetryConfig bounds transient-failure retries within one pass.
type RetryConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
	Factor      float64
	Jitter      float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BackoffBase: time.Second,
		Factor:      2,
		Jitter:      0.25,
	}
}

// Options tunes one pass. ForceAll treats every triple as changed, used by
// the cache_rebuild command.
type Options struct {
	ForceAll bool
}

// Engine runs sync passes: it walks every (enrollment, assignment, problem)
// of a course in lexicographic order and posts changed grades to the broker.
type Engine interface {
	SyncCourse(ctx context.Context, courseID string, opts Options) (*SyncReport, error)
}

type engine struct {
	courses     repos.ExternalCourseRepo
	enrollments repos.ExternalCourseEnrollmentRepo
	assignments repos.ExternalCourseAssignmentRepo
	problems    repos.ExternalCourseAssignmentProblemRepo
	grades      repos.EnrollmentGradeRepo
	hostGrades  host.GradeService
	poster      OutcomePoster
	locks       CourseLocker
	retry       RetryConfig
	log         *logger.Logger

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewEngine(
	courses repos.ExternalCourseRepo,
	enrollments repos.ExternalCourseEnrollmentRepo,
	assignments repos.ExternalCourseAssignmentRepo,
	problems repos.ExternalCourseAssignmentProblemRepo,
	grades repos.EnrollmentGradeRepo,
	hostGrades host.GradeService,
	poster OutcomePoster,
	locks CourseLocker,
	retry RetryConfig,
	baseLog *logger.Logger,
) Engine {
	return &engine{
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		problems:    problems,
		grades:      grades,
		hostGrades:  hostGrades,
		poster:      poster,
		locks:       locks,
		retry:       retry,
		log:         baseLog.With("component", "SyncEngine"),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *engine) SyncCourse(ctx context.Context, courseID string, opts Options) (*SyncReport, error) {
	rep := newReport(courseID, e.now())

	token, ok, err := e.locks.Acquire(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("acquire course lock: %w", err)
	}
	if !ok {
		rep.Status = StatusAlreadyRunning
		rep.FinishedAt = e.now()
		return rep, ErrAlreadyRunning
	}
	defer func() {
		if err := e.locks.Release(context.WithoutCancel(ctx), courseID, token); err != nil {
			e.log.Warn("course lock release failed", "course_id", courseID, "error", err)
		}
	}()

	course, err := e.courses.GetByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.ExtWlOutcomeServiceURL == "" {
		rep.Status = StatusMisconfigured
		rep.recordError("", "", "", ErrClassCourseMisconfigured,
			"no outcome service URL is mapped for this course")
		rep.FinishedAt = e.now()
		return rep, nil
	}
	outcomeURL := course.ExtWlOutcomeServiceURL
	accessKey := course.ExtWlLaunchKey

	enrollments, err := e.enrollments.ListByContextID(ctx, nil, course.ContextID)
	if err != nil {
		return nil, err
	}
	subsections, err := e.hostGrades.GetGradedSubsections(ctx, courseID)
	if err != nil {
		rep.recordError("", "", "", ErrClassHostUnavailable, err.Error())
		rep.Status = StatusCompleted
		rep.FinishedAt = e.now()
		return rep, nil
	}
	sort.Slice(subsections, func(i, j int) bool {
		return subsections[i].URLName < subsections[j].URLName
	})

	assignmentByURL, err := e.upsertAssignments(ctx, course.ContextID, subsections)
	if err != nil {
		return nil, err
	}
	e.postColumns(ctx, rep, outcomeURL, accessKey, subsections)

	now := e.now()
	for _, enr := range enrollments {
		if lti.ClassifyStrings(enr.Roles, enr.ExtRoles) == lti.RoleFaculty {
			rep.Skipped++
			continue
		}
		for _, sub := range subsections {
			asg := assignmentByURL[sub.URLName]
			problems := append([]host.Problem(nil), sub.Problems...)
			sort.Slice(problems, func(i, j int) bool {
				return problems[i].UsageKey < problems[j].UsageKey
			})
			for _, prob := range problems {
				if ctx.Err() != nil {
					rep.Status = StatusCancelled
					rep.FinishedAt = e.now()
					return rep, nil
				}
				done, err := e.syncTriple(ctx, rep, courseID, outcomeURL, accessKey, course.ContextID, enr, sub, asg, prob, now, opts)
				if err != nil {
					return nil, err
				}
				if done {
					rep.Status = StatusCancelled
					rep.FinishedAt = e.now()
					return rep, nil
				}
			}
		}
	}

	rep.Status = StatusCompleted
	rep.FinishedAt = e.now()
	e.log.Info("sync pass finished",
		"course_id", courseID,
		"status", rep.Status,
		"posted", rep.Posted,
		"skipped", rep.Skipped,
		"errors", rep.Errors)
	return rep, nil
}

func (e *engine) upsertAssignments(ctx context.Context, contextID string, subsections []host.Subsection) (map[string]*types.ExternalCourseAssignment, error) {
	out := make(map[string]*types.ExternalCourseAssignment, len(subsections))
	for _, sub := range subsections {
		row := &types.ExternalCourseAssignment{
			ContextID:      contextID,
			URLName:        sub.URLName,
			DisplayName:    sub.DisplayName,
			DueDate:        sub.DueDate,
			PointsPossible: sub.PointsPossible,
		}
		if err := e.assignments.Upsert(ctx, nil, row); err != nil {
			return nil, fmt.Errorf("upsert assignment %s: %w", sub.URLName, err)
		}
		for _, prob := range sub.Problems {
			if err := e.problems.Upsert(ctx, nil, &types.ExternalCourseAssignmentProblem{
				AssignmentID:   row.ID,
				UsageKey:       prob.UsageKey,
				DisplayName:    prob.DisplayName,
				PointsPossible: prob.PointsPossible,
			}); err != nil {
				return nil, fmt.Errorf("upsert problem %s: %w", prob.UsageKey, err)
			}
		}
		out[sub.URLName] = row
	}
	return out, nil
}

// postColumns declares the gradebook columns before any result lands in
// them. Column posts are best-effort; a failed column does not block the
// grade posts (the broker auto-creates columns on first result).
func (e *engine) postColumns(ctx context.Context, rep *SyncReport, outcomeURL, accessKey string, subsections []host.Subsection) {
	for _, sub := range subsections {
		if ctx.Err() != nil {
			return
		}
		_, err := e.poster.PostColumn(ctx, outcomeURL, accessKey, willo.Column{
			ActivityID:     willo.ActivityID(sub.DisplayName),
			Title:          sub.DisplayName,
			Description:    sub.DisplayName,
			DueDate:        sub.DueDate,
			PointsPossible: sub.PointsPossible,
		})
		if err != nil {
			e.log.Warn("column post failed", "url_name", sub.URLName, "error", err)
		}
	}
}

// syncTriple runs steps 3a-3e for one (enrollment, assignment, problem).
// done=true means cancellation was observed mid-retry.
func (e *engine) syncTriple(
	ctx context.Context,
	rep *SyncReport,
	courseID, outcomeURL, accessKey, contextID string,
	enr *types.ExternalCourseEnrollment,
	sub host.Subsection,
	asg *types.ExternalCourseAssignment,
	prob host.Problem,
	now time.Time,
	opts Options,
) (done bool, err error) {
	g, err := e.hostGrades.GetGrade(ctx, courseID, enr.Username, prob.UsageKey)
	if err != nil {
		rep.recordError(enr.Username, sub.URLName, prob.UsageKey, ErrClassHostUnavailable, err.Error())
		return false, nil
	}
	if g == nil {
		// never post zeroes for ungraded work
		rep.Skipped++
		return false, nil
	}
	if !opts.ForceAll && !host.ShouldSync(sub, g, now) {
		rep.Skipped++
		return false, nil
	}

	percent := 0.0
	if g.Possible > 0 {
		percent = g.Earned / g.Possible
	}

	prev, err := e.grades.Latest(ctx, nil, enr.ID, asg.ID, prob.UsageKey)
	if err != nil {
		return false, err
	}
	if !opts.ForceAll && prev != nil && prev.PostedStatus == types.GradeAccepted &&
		prev.Earned == g.Earned && prev.Possible == g.Possible && prev.Attempted == g.Attempted {
		rep.Skipped++
		return false, nil
	}

	row := &types.EnrollmentGrade{
		EnrollmentID: enr.ID,
		AssignmentID: asg.ID,
		UsageKey:     prob.UsageKey,
		Earned:       g.Earned,
		Possible:     g.Possible,
		Percent:      percent,
		Attempted:    g.Attempted,
		PostedStatus: types.GradePending,
	}
	if err := e.grades.Create(ctx, nil, row); err != nil {
		return false, err
	}

	userID := willo.IDFromURL(enr.LtiUserID)
	grade := willo.Grade{
		ResultID:       contextID + ":" + userID,
		ActivityID:     willo.ActivityID(asg.DisplayName),
		UserID:         userID,
		ResultDate:     e.now(),
		Score:          percent,
		PointsPossible: 1,
	}

	cancelled := false
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		disp, perr := e.poster.PostGrade(ctx, outcomeURL, accessKey, grade)
		row.AttemptCount = attempt
		switch disp {
		case willo.DispositionAccepted:
			ts := e.now()
			row.PostedStatus = types.GradeAccepted
			row.PostedAt = &ts
			row.LastError = ""
		case willo.DispositionPermanent:
			ts := e.now()
			row.PostedStatus = types.GradePermanentFailed
			row.PostedAt = &ts
			row.LastError = errString(perr)
			rep.Errors[ErrClassPermanentFailure]++
		default:
			row.LastError = errString(perr)
			if attempt < e.retry.MaxAttempts {
				if err := e.sleep(ctx, e.backoff(attempt)); err != nil {
					cancelled = true
				}
			}
		}
		if row.PostedStatus != types.GradePending || cancelled {
			break
		}
	}
	if row.PostedStatus == types.GradePending {
		// out of retries; the next pass re-posts
		row.PostedStatus = types.GradeTransientFailed
		rep.Errors[ErrClassTransientFailure]++
	}

	// bookkeeping must land even when the pass was cancelled mid-retry
	if err := e.grades.Update(context.WithoutCancel(ctx), nil, row); err != nil {
		return false, err
	}
	rep.recordPost(enr.Username, sub.URLName, prob.UsageKey, row.PostedStatus)
	return cancelled, nil
}

// backoff computes the wait before retry attempt+1: base * factor^(attempt-1)
// spread by ±jitter.
func (e *engine) backoff(attempt int) time.Duration {
	d := float64(e.retry.BackoffBase)
	for i := 1; i < attempt; i++ {
		d *= e.retry.Factor
	}
	spread := 1 - e.retry.Jitter + 2*e.retry.Jitter*rand.Float64()
	return time.Duration(d * spread)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
