package repository

import (
	"context"

	"contenthub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository persists keyed settings.
type SettingRepository interface {
	FindByKey(ctx context.Context, key string) (*model.Setting, error)
	// Upsert inserts the setting or replaces the values of an existing key.
	Upsert(ctx context.Context, setting *model.Setting) error
	DeleteByKey(ctx context.Context, key string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) FindByKey(ctx context.Context, key string) (*model.Setting, error) {
	var setting model.Setting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &setting, nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *model.Setting) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_values"}),
	}).Create(setting).Error
	return translateGormError(err)
}

func (r *settingRepository) DeleteByKey(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Where("setting_key = ?", key).Delete(&model.Setting{})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AutoMigrateAccounts creates the users, images and settings tables.
func AutoMigrateAccounts(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Image{}, &model.Setting{})
}
