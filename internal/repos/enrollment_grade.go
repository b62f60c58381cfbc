package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

type EnrollmentGradeRepo interface {
	// Latest returns the most recent row for the (enrollment, assignment,
	// usage_key) triple, or nil when no grade has been recorded.
	Latest(ctx context.Context, tx *gorm.DB, enrollmentID, assignmentID uuid.UUID, usageKey string) (*types.EnrollmentGrade, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.EnrollmentGrade) error
	Update(ctx context.Context, tx *gorm.DB, row *types.EnrollmentGrade) error
	CountByStatus(ctx context.Context, tx *gorm.DB, contextID string) (map[string]int64, error)
	// PruneOlderThan trims non-current audit rows beyond the operator
	// retention window. Terminal rows newer than the cutoff are kept.
	PruneOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type enrollmentGradeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentGradeRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentGradeRepo {
	return &enrollmentGradeRepo{db: db, log: baseLog.With("repo", "EnrollmentGradeRepo")}
}

func (r *enrollmentGradeRepo) Latest(ctx context.Context, tx *gorm.DB, enrollmentID, assignmentID uuid.UUID, usageKey string) (*types.EnrollmentGrade, error) {
	transaction := orDefault(tx, r.db)

	var row types.EnrollmentGrade
	err := transaction.WithContext(ctx).
		Where("enrollment_id = ? AND assignment_id = ? AND usage_key = ?", enrollmentID, assignmentID, usageKey).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *enrollmentGradeRepo) Create(ctx context.Context, tx *gorm.DB, row *types.EnrollmentGrade) error {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *enrollmentGradeRepo) Update(ctx context.Context, tx *gorm.DB, row *types.EnrollmentGrade) error {
	transaction := orDefault(tx, r.db)

	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.EnrollmentGrade{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"posted_status": row.PostedStatus,
			"posted_at":     row.PostedAt,
			"attempt_count": row.AttemptCount,
			"last_error":    row.LastError,
		}).Error
}

func (r *enrollmentGradeRepo) CountByStatus(ctx context.Context, tx *gorm.DB, contextID string) (map[string]int64, error) {
	transaction := orDefault(tx, r.db)

	type bucket struct {
		PostedStatus string
		N            int64
	}
	var buckets []bucket
	err := transaction.WithContext(ctx).
		Model(&types.EnrollmentGrade{}).
		Select("lti_enrollment_grade.posted_status, count(*) as n").
		Joins("JOIN lti_external_course_enrollment e ON e.id = lti_enrollment_grade.enrollment_id").
		Where("e.context_id = ?", contextID).
		Group("lti_enrollment_grade.posted_status").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		out[b.PostedStatus] = b.N
	}
	return out, nil
}

func (r *enrollmentGradeRepo) PruneOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := orDefault(tx, r.db)

	res := transaction.WithContext(ctx).
		Where("created_at < ? AND posted_status IN ?", cutoff, []string{types.GradeAccepted, types.GradePermanentFailed}).
		Delete(&types.EnrollmentGrade{})
	return res.RowsAffected, res.Error
}
