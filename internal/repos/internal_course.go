package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

type InternalCourseRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, courseID string) (*types.InternalCourse, error)
	GetByExternalKey(ctx context.Context, tx *gorm.DB, key string) (*types.InternalCourse, error)
	ListEnabled(ctx context.Context, tx *gorm.DB) ([]*types.InternalCourse, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.InternalCourse) error
	Delete(ctx context.Context, tx *gorm.DB, courseID string) error
}

type internalCourseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInternalCourseRepo(db *gorm.DB, baseLog *logger.Logger) InternalCourseRepo {
	return &internalCourseRepo{db: db, log: baseLog.With("repo", "InternalCourseRepo")}
}

func (r *internalCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID string) (*types.InternalCourse, error) {
	transaction := orDefault(tx, r.db)

	var row types.InternalCourse
	err := transaction.WithContext(ctx).
		Preload("Configuration.Params").
		Where("course_id = ?", courseID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *internalCourseRepo) GetByExternalKey(ctx context.Context, tx *gorm.DB, key string) (*types.InternalCourse, error) {
	transaction := orDefault(tx, r.db)

	if key == "" {
		return nil, nil
	}
	var row types.InternalCourse
	err := transaction.WithContext(ctx).
		Where("external_course_key = ?", key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *internalCourseRepo) ListEnabled(ctx context.Context, tx *gorm.DB) ([]*types.InternalCourse, error) {
	transaction := orDefault(tx, r.db)

	var rows []*types.InternalCourse
	if err := transaction.WithContext(ctx).
		Where("enabled = ?", true).
		Order("course_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *internalCourseRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.InternalCourse) error {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return nil
	}
	err := transaction.WithContext(ctx).
		Where("course_id = ?", row.CourseID).
		Assign(map[string]any{
			"enabled":             row.Enabled,
			"configuration_id":    row.ConfigurationID,
			"external_course_key": row.ExternalCourseKey,
		}).
		FirstOrCreate(row).Error
	if isUniqueViolation(err) {
		return transaction.WithContext(ctx).
			Model(&types.InternalCourse{}).
			Where("course_id = ?", row.CourseID).
			Updates(map[string]any{
				"enabled":             row.Enabled,
				"configuration_id":    row.ConfigurationID,
				"external_course_key": row.ExternalCourseKey,
			}).Error
	}
	return err
}

// Delete removes the course and, through the cascade constraints, its
// entire dependent subtree in one transaction.
func (r *internalCourseRepo) Delete(ctx context.Context, tx *gorm.DB, courseID string) error {
	transaction := orDefault(tx, r.db)

	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var contexts []string
		if err := inner.Model(&types.ExternalCourse{}).
			Where("course_id = ?", courseID).
			Pluck("context_id", &contexts).Error; err != nil {
			return err
		}
		if len(contexts) > 0 {
			var assignmentIDs []string
			if err := inner.Model(&types.ExternalCourseAssignment{}).
				Where("context_id IN ?", contexts).
				Pluck("id", &assignmentIDs).Error; err != nil {
				return err
			}
			if len(assignmentIDs) > 0 {
				if err := inner.Where("assignment_id IN ?", assignmentIDs).
					Delete(&types.EnrollmentGrade{}).Error; err != nil {
					return err
				}
				if err := inner.Where("assignment_id IN ?", assignmentIDs).
					Delete(&types.ExternalCourseAssignmentProblem{}).Error; err != nil {
					return err
				}
			}
			if err := inner.Where("context_id IN ?", contexts).
				Delete(&types.ExternalCourseAssignment{}).Error; err != nil {
				return err
			}
			if err := inner.Where("context_id IN ?", contexts).
				Delete(&types.ExternalCourseEnrollment{}).Error; err != nil {
				return err
			}
			if err := inner.Where("context_id IN ?", contexts).
				Delete(&types.ExternalCourse{}).Error; err != nil {
				return err
			}
		}
		return inner.Where("course_id = ?", courseID).
			Delete(&types.InternalCourse{}).Error
	})
}
