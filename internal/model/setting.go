package model

// Setting is a named map of string values, e.g. the "event" setting.
type Setting struct {
	ID     uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Key    string            `gorm:"column:setting_key;type:varchar(64);uniqueIndex;not null" json:"key"`
	Values map[string]string `gorm:"column:setting_values;type:text;serializer:json" json:"settings"`
}

func (Setting) TableName() string {
	return "settings"
}
