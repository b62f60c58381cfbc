package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

type ExternalCourseAssignmentRepo interface {
	Get(ctx context.Context, tx *gorm.DB, contextID, urlName string) (*types.ExternalCourseAssignment, error)
	ListByContextID(ctx context.Context, tx *gorm.DB, contextID string) ([]*types.ExternalCourseAssignment, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourseAssignment) error
}

type externalCourseAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExternalCourseAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) ExternalCourseAssignmentRepo {
	return &externalCourseAssignmentRepo{db: db, log: baseLog.With("repo", "ExternalCourseAssignmentRepo")}
}

func (r *externalCourseAssignmentRepo) Get(ctx context.Context, tx *gorm.DB, contextID, urlName string) (*types.ExternalCourseAssignment, error) {
	transaction := orDefault(tx, r.db)

	var row types.ExternalCourseAssignment
	err := transaction.WithContext(ctx).
		Where("context_id = ? AND url_name = ?", contextID, urlName).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *externalCourseAssignmentRepo) ListByContextID(ctx context.Context, tx *gorm.DB, contextID string) ([]*types.ExternalCourseAssignment, error) {
	transaction := orDefault(tx, r.db)

	var rows []*types.ExternalCourseAssignment
	if err := transaction.WithContext(ctx).
		Where("context_id = ?", contextID).
		Order("url_name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *externalCourseAssignmentRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourseAssignment) error {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return nil
	}
	attrs := map[string]any{
		"display_name":    row.DisplayName,
		"due_date":        row.DueDate,
		"points_possible": row.PointsPossible,
	}
	err := transaction.WithContext(ctx).
		Where("context_id = ? AND url_name = ?", row.ContextID, row.URLName).
		Assign(attrs).
		FirstOrCreate(row).Error
	if isUniqueViolation(err) {
		return transaction.WithContext(ctx).
			Model(&types.ExternalCourseAssignment{}).
			Where("context_id = ? AND url_name = ?", row.ContextID, row.URLName).
			Updates(attrs).Error
	}
	return err
}

type ExternalCourseAssignmentProblemRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourseAssignmentProblem) error
	ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.ExternalCourseAssignmentProblem, error)
}

type externalCourseAssignmentProblemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExternalCourseAssignmentProblemRepo(db *gorm.DB, baseLog *logger.Logger) ExternalCourseAssignmentProblemRepo {
	return &externalCourseAssignmentProblemRepo{db: db, log: baseLog.With("repo", "ExternalCourseAssignmentProblemRepo")}
}

func (r *externalCourseAssignmentProblemRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ExternalCourseAssignmentProblem) error {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return nil
	}
	attrs := map[string]any{
		"display_name":    row.DisplayName,
		"points_possible": row.PointsPossible,
	}
	err := transaction.WithContext(ctx).
		Where("assignment_id = ? AND usage_key = ?", row.AssignmentID, row.UsageKey).
		Assign(attrs).
		FirstOrCreate(row).Error
	if isUniqueViolation(err) {
		return transaction.WithContext(ctx).
			Model(&types.ExternalCourseAssignmentProblem{}).
			Where("assignment_id = ? AND usage_key = ?", row.AssignmentID, row.UsageKey).
			Updates(attrs).Error
	}
	return err
}

func (r *externalCourseAssignmentProblemRepo) ListByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) ([]*types.ExternalCourseAssignmentProblem, error) {
	transaction := orDefault(tx, r.db)

	var rows []*types.ExternalCourseAssignmentProblem
	if err := transaction.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("usage_key").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
