package models

import (
	"time"
)

type Translation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Locale    string    `gorm:"size:10;uniqueIndex:idx_locale_key" json:"locale"`
	Key       string    `gorm:"size:191;uniqueIndex:idx_locale_key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
