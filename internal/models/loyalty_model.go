package models

import (
	"time"
)

type LoyaltyAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex" json:"user_id"`
	Balance   int64     `gorm:"default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoyaltyTransaction rows are append-only; the account balance is updated in
// the same database transaction that inserts the row.
type LoyaltyTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"index" json:"account_id"`
	Type      string    `gorm:"size:20" json:"type"` // earn, redeem, adjust
	Points    int64     `json:"points"`
	Reference string    `gorm:"size:64;uniqueIndex" json:"reference"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
