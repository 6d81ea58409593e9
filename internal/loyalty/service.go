package loyalty

import (
	"errors"
	"fmt"

	"github.com/Kyz7/console/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeEarn   = "earn"
	TypeRedeem = "redeem"
	TypeAdjust = "adjust"
)

// ErrInsufficientBalance is returned when a redeem would drive the account
// balance below zero. The transaction row is not written.
var ErrInsufficientBalance = errors.New("insufficient loyalty balance")

// Account returns the loyalty account for a user, creating an empty one on
// first touch.
func Account(db *gorm.DB, userID uint) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	err := db.Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account = models.LoyaltyAccount{UserID: userID}
		if err := db.Create(&account).Error; err != nil {
			return nil, fmt.Errorf("create loyalty account for user %d: %w", userID, err)
		}
		return &account, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Earn credits points to a user's account.
func Earn(db *gorm.DB, userID uint, points int64, note string) (*models.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("earn points must be positive, got %d", points)
	}
	return apply(db, userID, TypeEarn, points, note)
}

// Redeem debits points from a user's account. The debit and the ledger row
// commit together or not at all.
func Redeem(db *gorm.DB, userID uint, points int64, note string) (*models.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("redeem points must be positive, got %d", points)
	}
	return apply(db, userID, TypeRedeem, -points, note)
}

// Adjust applies a signed correction to a user's balance. Negative adjustments
// may not take the balance below zero.
func Adjust(db *gorm.DB, userID uint, points int64, note string) (*models.LoyaltyTransaction, error) {
	if points == 0 {
		return nil, fmt.Errorf("adjustment must be non-zero")
	}
	return apply(db, userID, TypeAdjust, points, note)
}

func apply(db *gorm.DB, userID uint, txType string, delta int64, note string) (*models.LoyaltyTransaction, error) {
	account, err := Account(db, userID)
	if err != nil {
		return nil, err
	}

	txn := models.LoyaltyTransaction{
		AccountID: account.ID,
		Type:      txType,
		Points:    delta,
		Reference: uuid.NewString(),
		Note:      note,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var locked models.LoyaltyAccount
		if err := tx.First(&locked, account.ID).Error; err != nil {
			return err
		}
		if locked.Balance+delta < 0 {
			return ErrInsufficientBalance
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return tx.Model(&models.LoyaltyAccount{}).
			Where("id = ?", locked.ID).
			Update("balance", gorm.Expr("balance + ?", delta)).Error
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Statement lists a user's ledger entries newest-first.
func Statement(db *gorm.DB, userID uint, limit int) ([]models.LoyaltyTransaction, error) {
	account, err := Account(db, userID)
	if err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = 50
	}

	var txns []models.LoyaltyTransaction
	if err := db.Where("account_id = ?", account.ID).
		Order("id DESC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
