// Package model defines the records persisted by the stores and the
// request-shaped types shared between handlers and services.
package model

import "time"

// Category is a node of the content tree. A nil ParentID marks a root.
// (ParentID, Name) is unique.
type Category struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	ParentID  *string   `gorm:"type:varchar(36);index" bson:"parentId" json:"parentId"`
	// ParentKey is ParentID with roots stored as "". SQL unique indexes treat
	// NULLs as distinct, so uniqueness of root names is enforced on this column.
	ParentKey string    `gorm:"type:varchar(36);not null;default:'';uniqueIndex:idx_category_parent_key_name" bson:"-" json:"-"`
	Name      string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_category_parent_key_name" bson:"name" json:"name"`
	Image     string    `gorm:"type:varchar(512)" bson:"image" json:"image"`
	Keywords  []string  `gorm:"type:text;serializer:json" bson:"keywords" json:"keywords"`
	Enabled   bool      `gorm:"not null;default:false;index" bson:"enabled" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryNode is a category with its children, used for tree listings.
type CategoryNode struct {
	*Category
	Children []*CategoryNode `json:"children"`
}

// AncestorLink is one step of a walk from a category up to its root.
type AncestorLink struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parentId"`
	Name     string  `json:"name"`
}
