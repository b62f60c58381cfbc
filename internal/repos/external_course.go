package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

type ExternalCourseRepo interface {
	GetByContextID(ctx context.Context, tx *gorm.DB, contextID string) (*types.ExternalCourse, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) (*types.ExternalCourse, error)
	// Upsert creates-or-updates keyed on context_id; attrs carries the
	// dynamically projected launch-parameter columns. Returns true when a
	// row was created.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourse, attrs map[string]any) (bool, error)
}

type externalCourseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExternalCourseRepo(db *gorm.DB, baseLog *logger.Logger) ExternalCourseRepo {
	return &externalCourseRepo{db: db, log: baseLog.With("repo", "ExternalCourseRepo")}
}

func (r *externalCourseRepo) GetByContextID(ctx context.Context, tx *gorm.DB, contextID string) (*types.ExternalCourse, error) {
	transaction := orDefault(tx, r.db)

	if contextID == "" {
		return nil, nil
	}
	var row types.ExternalCourse
	err := transaction.WithContext(ctx).
		Where("context_id = ?", contextID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *externalCourseRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID string) (*types.ExternalCourse, error) {
	transaction := orDefault(tx, r.db)

	var row types.ExternalCourse
	err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *externalCourseRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourse, attrs map[string]any) (bool, error) {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Where("context_id = ?", row.ContextID).
		FirstOrCreate(row)
	err := res.Error
	if isUniqueViolation(err) {
		// concurrent launch created the row first; fall through to update
		err = transaction.WithContext(ctx).
			Where("context_id = ?", row.ContextID).
			First(row).Error
		if err != nil {
			return false, err
		}
		res.RowsAffected = 0
	} else if err != nil {
		return false, err
	}
	created := res.RowsAffected > 0

	if len(attrs) > 0 {
		if err := transaction.WithContext(ctx).
			Model(&types.ExternalCourse{}).
			Where("context_id = ?", row.ContextID).
			Updates(attrs).Error; err != nil {
			return created, err
		}
	}
	return created, nil
}
