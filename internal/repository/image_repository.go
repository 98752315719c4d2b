package repository

import (
	"context"

	"contenthub/internal/model"

	"gorm.io/gorm"
)

// ImageListQuery pages through image metadata. Sort must already be a
// whitelisted column name.
type ImageListQuery struct {
	Sort  string
	Desc  bool
	Skip  int
	Limit int
}

// ImageRepository persists image metadata; blobs live in object storage.
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByFilename(ctx context.Context, filename string) (*model.Image, error)
	List(ctx context.Context, q ImageListQuery) ([]model.Image, int64, error)
	DeleteByFilename(ctx context.Context, filename string) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return translateGormError(r.db.WithContext(ctx).Create(image).Error)
}

func (r *imageRepository) FindByFilename(ctx context.Context, filename string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("filename = ?", filename).First(&image).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &image, nil
}

func (r *imageRepository) List(ctx context.Context, q ImageListQuery) ([]model.Image, int64, error) {
	var images []model.Image
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Image{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translateGormError(err)
	}
	order := q.Sort
	if q.Desc {
		order += " DESC"
	}
	if err := db.Order(order).Offset(q.Skip).Limit(q.Limit).Find(&images).Error; err != nil {
		return nil, 0, translateGormError(err)
	}
	return images, total, nil
}

func (r *imageRepository) DeleteByFilename(ctx context.Context, filename string) error {
	res := r.db.WithContext(ctx).Where("filename = ?", filename).Delete(&model.Image{})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
