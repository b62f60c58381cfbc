package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

type ExternalCourseEnrollmentRepo interface {
	Get(ctx context.Context, tx *gorm.DB, contextID, username string) (*types.ExternalCourseEnrollment, error)
	ListByContextID(ctx context.Context, tx *gorm.DB, contextID string) ([]*types.ExternalCourseEnrollment, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourseEnrollment, attrs map[string]any) (bool, error)
}

type externalCourseEnrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExternalCourseEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) ExternalCourseEnrollmentRepo {
	return &externalCourseEnrollmentRepo{db: db, log: baseLog.With("repo", "ExternalCourseEnrollmentRepo")}
}

func (r *externalCourseEnrollmentRepo) Get(ctx context.Context, tx *gorm.DB, contextID, username string) (*types.ExternalCourseEnrollment, error) {
	transaction := orDefault(tx, r.db)

	var row types.ExternalCourseEnrollment
	err := transaction.WithContext(ctx).
		Where("context_id = ? AND username = ?", contextID, username).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByContextID returns enrollments ordered by username so sync passes
// walk learners deterministically.
func (r *externalCourseEnrollmentRepo) ListByContextID(ctx context.Context, tx *gorm.DB, contextID string) ([]*types.ExternalCourseEnrollment, error) {
	transaction := orDefault(tx, r.db)

	var rows []*types.ExternalCourseEnrollment
	if err := transaction.WithContext(ctx).
		Where("context_id = ?", contextID).
		Order("username").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *externalCourseEnrollmentRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourseEnrollment, attrs map[string]any) (bool, error) {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Where("context_id = ? AND username = ?", row.ContextID, row.Username).
		FirstOrCreate(row)
	err := res.Error
	if isUniqueViolation(err) {
		err = transaction.WithContext(ctx).
			Where("context_id = ? AND username = ?", row.ContextID, row.Username).
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
			Model(&types.ExternalCourseEnrollment{}).
			Where("context_id = ? AND username = ?", row.ContextID, row.Username).
			Updates(attrs).Error; err != nil {
			return created, err
		}
	}
	return created, nil
}
