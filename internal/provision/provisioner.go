package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/lti"
	"github.com/queriumcorp/rover-gradesync/internal/registry"
	"github.com/queriumcorp/rover-gradesync/internal/repos"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

var (
	// ErrUnknownCourse means the launch could not be resolved to any
	// internal course.
	ErrUnknownCourse = errors.New("launch does not resolve to a known course")
	// ErrMissingRequiredField means the launch lacks identity parameters.
	ErrMissingRequiredField = errors.New("launch is missing required fields")
)

// Skip reasons reported when a launch is valid but provisioning does not
// apply to it.
const (
	SkipNotGradeSync   = "not-grade-sync"
	SkipCourseDisabled = "course-disabled"
)

// LaunchCache is the write-through cache of recent launch parameters. The
// redis client satisfies it.
type LaunchCache interface {
	Set(ctx context.Context, username, courseID string, params map[string]any) error
}

// Result describes what one launch did to the cache tables.
type Result struct {
	CourseID          string `json:"course_id,omitempty"`
	ContextID         string `json:"context_id,omitempty"`
	CourseCreated     bool   `json:"course_created"`
	EnrollmentCreated bool   `json:"enrollment_created"`
	IsFaculty         bool   `json:"is_faculty"`
	Eligible          bool   `json:"eligible"`
	SkipReason        string `json:"skip_reason,omitempty"`
}

// Provisioner classifies an LTI launch and, when it came through a
// grade-sync broker for an enabled course, records the course and the
// enrollment in the cache tables.
type Provisioner interface {
	Provision(ctx context.Context, username string, params lti.Params) (*Result, error)
}

type provisioner struct {
	db          *gorm.DB
	registry    registry.Registry
	internal    repos.InternalCourseRepo
	courses     repos.ExternalCourseRepo
	enrollments repos.ExternalCourseEnrollmentRepo
	cache       LaunchCache
	domains     []string
	log         *logger.Logger
}

// NewProvisioner wires the launch classifier. domains nil means the stock
// broker domain set; cache may be nil when no redis is deployed.
func NewProvisioner(
	db *gorm.DB,
	reg registry.Registry,
	internal repos.InternalCourseRepo,
	courses repos.ExternalCourseRepo,
	enrollments repos.ExternalCourseEnrollmentRepo,
	cache LaunchCache,
	domains []string,
	baseLog *logger.Logger,
) Provisioner {
	return &provisioner{
		db:          db,
		registry:    reg,
		internal:    internal,
		courses:     courses,
		enrollments: enrollments,
		cache:       cache,
		domains:     domains,
		log:         baseLog.With("component", "Provisioner"),
	}
}

func (p *provisioner) Provision(ctx context.Context, username string, params lti.Params) (*Result, error) {
	if !params.IsGradeSyncLaunch(p.domains) {
		return &Result{Eligible: false, SkipReason: SkipNotGradeSync}, nil
	}
	if missing := params.Validate(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, strings.Join(missing, ", "))
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingRequiredField)
	}

	courseID, err := p.resolveCourseID(ctx, params)
	if err != nil {
		return nil, err
	}

	course, err := p.registry.GetCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}
	if !course.Enabled {
		return &Result{
			CourseID:   courseID,
			ContextID:  params.ContextID(),
			Eligible:   false,
			SkipReason: SkipCourseDisabled,
		}, nil
	}

	role := lti.Classify(params)
	contextID := params.ContextID()

	raw, err := json.Marshal(params.Raw())
	if err != nil {
		return nil, fmt.Errorf("snapshot launch params: %w", err)
	}

	res := &Result{
		CourseID:  courseID,
		ContextID: contextID,
		IsFaculty: role == lti.RoleFaculty,
		Eligible:  true,
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseAttrs := p.registry.Project(course, types.TableExternalCourse, params)
		created, err := p.courses.Upsert(ctx, tx, &types.ExternalCourse{
			ContextID: contextID,
			CourseID:  courseID,
		}, courseAttrs)
		if err != nil {
			return err
		}
		res.CourseCreated = created

		enrollAttrs := p.registry.Project(course, types.TableExternalCourseEnrollment, params)
		enrollAttrs["lti_user_id"] = params.UserID()
		enrollAttrs["raw_params"] = datatypes.JSON(raw)
		created, err = p.enrollments.Upsert(ctx, tx, &types.ExternalCourseEnrollment{
			ContextID: contextID,
			Username:  username,
		}, enrollAttrs)
		if err != nil {
			return err
		}
		res.EnrollmentCreated = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, username, courseID, params.Raw()); err != nil {
			// cache is an accelerator; the jsonb snapshot is authoritative
			p.log.Warn("launch cache write failed", "error", err)
		}
	}

	p.log.Info("launch provisioned",
		"course_id", courseID,
		"context_id", contextID,
		"username", username,
		"role", string(role),
		"course_created", res.CourseCreated,
		"enrollment_created", res.EnrollmentCreated)
	return res, nil
}

// resolveCourseID maps a launch onto an internal course id. Resolution is
// ordered: the cached external course wins, then the course_id carried in
// custom_tpa_next, then the consumer's course key matched against
// external_course_key.
func (p *provisioner) resolveCourseID(ctx context.Context, params lti.Params) (string, error) {
	ext, err := p.courses.GetByContextID(ctx, nil, params.ContextID())
	if err != nil {
		return "", err
	}
	if ext != nil {
		return ext.CourseID, nil
	}

	if next := params.Get("custom_tpa_next"); next != "" {
		if id := courseIDFromTPANext(next); id != "" {
			return id, nil
		}
	}

	key := params.Get("custom_canvas_course_id")
	if key == "" {
		key = params.Get("lis_course_offering_sourcedid")
	}
	if key != "" {
		row, err := p.internal.GetByExternalKey(ctx, nil, key)
		if err != nil {
			return "", err
		}
		if row != nil {
			return row.CourseID, nil
		}
	}

	return "", fmt.Errorf("%w: context_id %s", ErrUnknownCourse, params.ContextID())
}

// courseIDFromTPANext pulls course_id out of the relative next-URL the
// consumer sends, e.g. "/account/finish_auth?course_id=course-v1%3A...".
func courseIDFromTPANext(next string) string {
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	return u.Query().Get("course_id")
}
