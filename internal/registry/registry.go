package registry

import (
	"context"

	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/lti"
	"github.com/queriumcorp/rover-gradesync/internal/repos"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

// Registry answers two questions about an internal course: is grade sync
// enabled for it, and which launch parameters land in which cache columns.
// Courses without a configuration profile fall back to the stock Willo Labs
// mappings.
type Registry interface {
	IsEnabled(ctx context.Context, tx *gorm.DB, courseID string) (bool, error)
	GetCourse(ctx context.Context, tx *gorm.DB, courseID string) (*types.InternalCourse, error)
	Project(course *types.InternalCourse, table string, params lti.Params) map[string]any
}

type registry struct {
	courses repos.InternalCourseRepo
	log     *logger.Logger
}

func NewRegistry(courses repos.InternalCourseRepo, baseLog *logger.Logger) Registry {
	return &registry{courses: courses, log: baseLog.With("component", "Registry")}
}

func (r *registry) GetCourse(ctx context.Context, tx *gorm.DB, courseID string) (*types.InternalCourse, error) {
	return r.courses.GetByID(ctx, tx, courseID)
}

func (r *registry) IsEnabled(ctx context.Context, tx *gorm.DB, courseID string) (bool, error) {
	row, err := r.courses.GetByID(ctx, tx, courseID)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, nil
	}
	return row.Enabled, nil
}

// Project builds the column assignments for one cache table from the launch
// parameters. Profile params override the defaults per table: a profile that
// maps any field of a table replaces the whole default set for that table.
// Launch parameters absent from the payload are left out so an update never
// blanks a previously cached value.
func (r *registry) Project(course *types.InternalCourse, table string, params lti.Params) map[string]any {
	mapping := map[string]string{}
	if course != nil && course.Configuration != nil {
		for _, p := range course.Configuration.Params {
			if p.TableName_ == table {
				mapping[p.InternalField] = p.ExternalField
			}
		}
	}
	if len(mapping) == 0 {
		for internal, external := range lti.DefaultFieldMappings[table] {
			mapping[internal] = external
		}
	}

	raw := params.Raw()
	out := map[string]any{}
	for internal, external := range mapping {
		v, ok := raw[external]
		if !ok || v == nil {
			continue
		}
		out[internal] = params.Get(external)
	}
	return out
}
