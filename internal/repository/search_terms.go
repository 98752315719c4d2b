package repository

import (
	"strings"

	"contenthub/internal/model"

	"gorm.io/gorm"
)

// searchTerm is one searchable string of a tree record: its name, one of its
// keywords or, for content, its description. Term is lower-cased in Go so
// matching does not depend on the database folding non-ASCII letters.
type searchTerm struct {
	Kind     string `gorm:"type:varchar(16);primaryKey"`
	OwnerID  string `gorm:"type:varchar(36);primaryKey"`
	Position int    `gorm:"primaryKey;autoIncrement:false"`
	Term     string `gorm:"type:text;not null"`
}

func (searchTerm) TableName() string {
	return "search_terms"
}

func categoryTerms(c *model.Category) []string {
	return append([]string{c.Name}, c.Keywords...)
}

func contentTerms(c *model.Content) []string {
	terms := []string{c.Name, c.Description}
	return append(terms, c.Keywords...)
}

// replaceTerms rewrites the terms of one record. Run it in the same
// transaction as the record write.
func replaceTerms(tx *gorm.DB, kind, ownerID string, terms []string) error {
	if err := deleteTerms(tx, kind, ownerID); err != nil {
		return err
	}
	rows := make([]searchTerm, 0, len(terms))
	for i, t := range terms {
		if t == "" {
			continue
		}
		rows = append(rows, searchTerm{Kind: kind, OwnerID: ownerID, Position: i, Term: strings.ToLower(t)})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func deleteTerms(tx *gorm.DB, kind string, ownerIDs ...string) error {
	return tx.Where("kind = ? AND owner_id IN ?", kind, ownerIDs).Delete(&searchTerm{}).Error
}

// matchesTerm builds an EXISTS condition matching records of kind that have
// a term containing pattern. table is the record table.
func matchesTerm(db *gorm.DB, table, kind, pattern string) *gorm.DB {
	return db.Where(
		"EXISTS (SELECT 1 FROM search_terms t WHERE t.kind = ? AND t.owner_id = "+table+".id AND t.term LIKE ? ESCAPE '!')",
		kind, pattern,
	)
}

// backfillTerms indexes records written before search_terms existed.
func backfillTerms(db *gorm.DB) error {
	var categories []model.Category
	err := db.Where("NOT EXISTS (SELECT 1 FROM search_terms t WHERE t.kind = ? AND t.owner_id = categories.id)", model.KindCategory).
		Find(&categories).Error
	if err != nil {
		return err
	}
	for i := range categories {
		if err := replaceTerms(db, model.KindCategory, categories[i].ID, categoryTerms(&categories[i])); err != nil {
			return err
		}
	}

	var contents []model.Content
	err = db.Where("NOT EXISTS (SELECT 1 FROM search_terms t WHERE t.kind = ? AND t.owner_id = contents.id)", model.KindContent).
		Find(&contents).Error
	if err != nil {
		return err
	}
	for i := range contents {
		if err := replaceTerms(db, model.KindContent, contents[i].ID, contentTerms(&contents[i])); err != nil {
			return err
		}
	}
	return nil
}
