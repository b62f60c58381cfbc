package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

type ConfigurationRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Configuration, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.Configuration) error
	// Delete removes a profile. When force is false the delete is refused
	// while internal courses still reference the profile; when true the
	// references are nulled first (the default operator setting).
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID, force bool) error
}

type configurationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigurationRepo(db *gorm.DB, baseLog *logger.Logger) ConfigurationRepo {
	return &configurationRepo{db: db, log: baseLog.With("repo", "ConfigurationRepo")}
}

func (r *configurationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Configuration, error) {
	transaction := orDefault(tx, r.db)

	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Configuration
	err := transaction.WithContext(ctx).
		Preload("Params").
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *configurationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Configuration) error {
	transaction := orDefault(tx, r.db)

	if row == nil {
		return nil
	}
	for _, p := range row.Params {
		if !validCacheTable(p.TableName_) {
			return fmt.Errorf("configuration param targets unknown table %q", p.TableName_)
		}
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *configurationRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID, force bool) error {
	transaction := orDefault(tx, r.db)

	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var refs int64
		if err := inner.Model(&types.InternalCourse{}).
			Where("configuration_id = ?", id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			if !force {
				return fmt.Errorf("configuration %s is referenced by %d courses", id, refs)
			}
			if err := inner.Model(&types.InternalCourse{}).
				Where("configuration_id = ?", id).
				Update("configuration_id", nil).Error; err != nil {
				return err
			}
		}
		if err := inner.Where("configuration_id = ?", id).
			Delete(&types.ConfigurationParam{}).Error; err != nil {
			return err
		}
		return inner.Where("id = ?", id).Delete(&types.Configuration{}).Error
	})
}

func validCacheTable(name string) bool {
	for _, t := range types.CacheTables {
		if t == name {
			return true
		}
	}
	return false
}
