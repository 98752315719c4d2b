package model

import "time"

// Image records the metadata of an uploaded blob. The bytes live in object
// storage under Filename.
type Image struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Filename     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"filename"`
	OriginalName string    `gorm:"type:varchar(255)" json:"originalName"`
	ContentType  string    `gorm:"type:varchar(128)" json:"contentType"`
	Length       int64     `gorm:"not null" json:"length"`
	MD5          string    `gorm:"type:varchar(32)" json:"md5"`
	UploadedBy   uint      `gorm:"index" json:"uploadedBy"`
	UploadDate   time.Time `gorm:"autoCreateTime;index" json:"uploadDate"`
}

func (Image) TableName() string {
	return "images"
}
