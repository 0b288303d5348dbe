package common

import (
	"rbs/src/models"

	"gorm.io/gorm"
)

// DebitBucks spends balance with a guarded UPDATE so two concurrent
// purchases cannot overdraw the account.
func DebitBucks(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.
		Model(&models.User{}).
		Where("id = ? AND raffle_bucks >= ?", userID, amount).
		UpdateColumn("raffle_bucks", gorm.Expr("raffle_bucks - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientFunds
	}
	return nil
}

func CreditBucks(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("raffle_bucks", gorm.Expr("raffle_bucks + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func CreditPoints(tx *gorm.DB, userID uint, amount int64) error {
	res := tx.
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
