package repository

import (
	"context"
	"fmt"
	"strings"

	"contenthub/internal/model"

	"gorm.io/gorm"
)

type gormTreeStore struct {
	db         *gorm.DB
	categories *categoryRepository
	contents   *contentRepository
}

// NewGormTreeStore returns a TreeStore backed by db. GORM transactions are
// always available.
func NewGormTreeStore(db *gorm.DB) TreeStore {
	return &gormTreeStore{
		db:         db,
		categories: &categoryRepository{db: db},
		contents:   &contentRepository{db: db},
	}
}

// AutoMigrateTree creates or updates the category, content and search term
// tables and indexes records that have no search terms yet.
func AutoMigrateTree(db *gorm.DB) error {
	if err := migrateParentKey(db); err != nil {
		return fmt.Errorf("migrate parent_key: %w", err)
	}
	if err := db.AutoMigrate(&model.Category{}, &model.Content{}, &searchTerm{}); err != nil {
		return err
	}
	return backfillTerms(db)
}

// migrateParentKey fills parent_key on databases created before the column
// existed and drops the old (parent_id, name) index, which let duplicate
// root names through.
func migrateParentKey(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&model.Category{}) {
		return nil
	}
	if m.HasIndex(&model.Category{}, "idx_category_parent_name") {
		if err := m.DropIndex(&model.Category{}, "idx_category_parent_name"); err != nil {
			return err
		}
	}
	if m.HasColumn(&model.Category{}, "ParentKey") {
		return nil
	}
	if err := m.AddColumn(&model.Category{}, "ParentKey"); err != nil {
		return err
	}
	return db.Exec("UPDATE categories SET parent_key = COALESCE(parent_id, '')").Error
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

func (s *gormTreeStore) Categories() CategoryRepository { return s.categories }
func (s *gormTreeStore) Contents() ContentRepository    { return s.contents }
func (s *gormTreeStore) SupportsTransactions() bool     { return true }

func (s *gormTreeStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx TreeStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormTreeStore(tx))
	})
}

// likePattern builds a lower-cased LIKE pattern using '!' as the escape
// character, which MySQL and SQLite both accept. It is matched against
// search_terms, which are lower-cased the same way.
func likePattern(text string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(text)) + "%"
}

func whereNullable(db *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return db.Where(column + " IS NULL")
	}
	return db.Where(column+" = ?", *value)
}

// categoryRepository is the GORM CategoryRepository.
type categoryRepository struct {
	db *gorm.DB
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &category, nil
}

func (r *categoryRepository) FindByParentAndName(ctx context.Context, parentID *string, name string) (*model.Category, error) {
	var category model.Category
	q := whereNullable(r.db.WithContext(ctx), "parent_id", parentID)
	if err := q.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &category, nil
}

func (r *categoryRepository) FindByParent(ctx context.Context, parentID *string, enabledOnly bool) ([]model.Category, error) {
	var categories []model.Category
	q := whereNullable(r.db.WithContext(ctx), "parent_id", parentID)
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	err := q.Order("created_at, id").Find(&categories).Error
	return categories, translateGormError(err)
}

func (r *categoryRepository) FindAll(ctx context.Context, enabledOnly bool) ([]model.Category, error) {
	var categories []model.Category
	q := r.db.WithContext(ctx)
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	err := q.Order("created_at, id").Find(&categories).Error
	return categories, translateGormError(err)
}

func (r *categoryRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	existing := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id IN ?", ids).Pluck("id", &existing).Error
	return existing, translateGormError(err)
}

func (r *categoryRepository) Search(ctx context.Context, q TextQuery) ([]model.Category, error) {
	var categories []model.Category
	db := matchesTerm(r.db.WithContext(ctx), "categories", model.KindCategory, likePattern(q.Text))
	if q.EnabledOnly {
		db = db.Where("enabled = ?", true)
	}
	err := db.Order("created_at, id").Offset(q.Skip).Limit(q.Limit).Find(&categories).Error
	return categories, translateGormError(err)
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	category.ParentKey = parentKey(category.ParentID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		return replaceTerms(tx, model.KindCategory, category.ID, categoryTerms(category))
	})
	return translateGormError(err)
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	category.ParentKey = parentKey(category.ParentID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(category).Error; err != nil {
			return err
		}
		return replaceTerms(tx, model.KindCategory, category.ID, categoryTerms(category))
	})
	return translateGormError(err)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return deleteTerms(tx, model.KindCategory, id)
	})
	return translateGormError(err)
}

// contentRepository is the GORM ContentRepository.
type contentRepository struct {
	db *gorm.DB
}

func (r *contentRepository) FindByID(ctx context.Context, id string) (*model.Content, error) {
	var content model.Content
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&content).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &content, nil
}

func (r *contentRepository) FindByCategoryAndName(ctx context.Context, categoryID *string, name string) (*model.Content, error) {
	var content model.Content
	q := whereNullable(r.db.WithContext(ctx), "category_id", categoryID)
	if err := q.Where("name = ?", name).Order("created_at, id").First(&content).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &content, nil
}

func (r *contentRepository) FindByCategory(ctx context.Context, categoryID *string, enabledOnly bool) ([]model.Content, error) {
	var contents []model.Content
	q := whereNullable(r.db.WithContext(ctx), "category_id", categoryID)
	if enabledOnly {
		q = q.Where("enabled = ?", true)
	}
	err := q.Order("created_at, id").Find(&contents).Error
	return contents, translateGormError(err)
}

func (r *contentRepository) DistinctCategoryIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Content{}).
		Where("category_id IS NOT NULL").
		Distinct().Pluck("category_id", &ids).Error
	return ids, translateGormError(err)
}

func (r *contentRepository) Search(ctx context.Context, q TextQuery) ([]model.Content, error) {
	var contents []model.Content
	db := matchesTerm(r.db.WithContext(ctx), "contents", model.KindContent, likePattern(q.Text))
	if q.EnabledOnly {
		db = db.Where("enabled = ?", true)
	}
	err := db.Order("created_at, id").Offset(q.Skip).Limit(q.Limit).Find(&contents).Error
	return contents, translateGormError(err)
}

func (r *contentRepository) Create(ctx context.Context, content *model.Content) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return err
		}
		return replaceTerms(tx, model.KindContent, content.ID, contentTerms(content))
	})
	return translateGormError(err)
}

func (r *contentRepository) Update(ctx context.Context, content *model.Content) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(content).Error; err != nil {
			return err
		}
		return replaceTerms(tx, model.KindContent, content.ID, contentTerms(content))
	})
	return translateGormError(err)
}

func (r *contentRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Content{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return deleteTerms(tx, model.KindContent, id)
	})
	return translateGormError(err)
}

func (r *contentRepository) DeleteByCategory(ctx context.Context, categoryID string) ([]string, error) {
	var ids []string
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Content{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error; err != nil {
		return nil, translateGormError(err)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Delete(&model.Content{}).Error; err != nil {
			return err
		}
		return deleteTerms(tx, model.KindContent, ids...)
	})
	if err != nil {
		return nil, translateGormError(err)
	}
	return ids, nil
}
