package model

import "time"

// Content is a leaf item, optionally filed under a category.
type Content struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	CategoryID  *string   `gorm:"type:varchar(36);index" bson:"categoryId" json:"categoryId"`
	Name        string    `gorm:"type:varchar(16);not null;index" bson:"name" json:"name"`
	Image       string    `gorm:"type:varchar(512)" bson:"image" json:"image"`
	Keywords    []string  `gorm:"type:text;serializer:json" bson:"keywords" json:"keywords"`
	Enabled     bool      `gorm:"not null;default:false;index" bson:"enabled" json:"enabled"`
	Checklist   []string  `gorm:"type:text;serializer:json" bson:"checklist" json:"checklist"`
	Description string    `gorm:"type:text" bson:"description" json:"description"`
	Video       string    `gorm:"type:varchar(512)" bson:"video" json:"video"`
	CreatedAt   time.Time `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

func (Content) TableName() string {
	return "contents"
}
