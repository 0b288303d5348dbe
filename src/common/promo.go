package common

import (
	"log"
	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"
	"time"

	"gorm.io/gorm"
)

type PromoQuote struct {
	Promo    *models.PromoCode `json:"promo"`
	Subtotal int64             `json:"subtotal"`
	Discount int64             `json:"discount"`
	Total    int64             `json:"total"`
}

// QuotePromo validates a code against the subtotal without consuming a
// use. Private codes only resolve for their owner.
func QuotePromo(tx *gorm.DB, code string, userID uint, subtotal int64) (*PromoQuote, error) {
	var promo models.PromoCode
	err := tx.
		Where("code = ? AND is_deleted = ?", code, false).
		First(&promo).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPromoUnavailable
		}
		return nil, err
	}
	if promo.Status != types.PROMO_AVAILABLE {
		return nil, ErrPromoUnavailable
	}
	if time.Now().After(promo.ExpiryDate) {
		return nil, ErrPromoExpired
	}
	if promo.PromoUsed >= promo.TotalUses {
		return nil, ErrPromoExhausted
	}
	if promo.Visibility == types.PROMO_PRIVATE {
		if promo.OwnerID == nil || *promo.OwnerID != userID {
			return nil, ErrPromoNotAllowed
		}
	}
	discount := subtotal * int64(promo.Discount) / 100
	return &PromoQuote{
		Promo:    &promo,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}, nil
}

// ConsumePromo burns one use. The guarded UPDATE keeps the use counter
// at or below total_uses under concurrent checkouts.
func ConsumePromo(tx *gorm.DB, promoID uint) error {
	res := tx.
		Model(&models.PromoCode{}).
		Where("id = ? AND promo_used < total_uses", promoID).
		UpdateColumn("promo_used", gorm.Expr("promo_used + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPromoExhausted
	}
	if err := tx.
		Model(&models.PromoCode{}).
		Where("id = ? AND promo_used >= total_uses", promoID).
		Update("status", types.PROMO_EXHAUSTED).
		Error; err != nil {
		return err
	}
	return nil
}

// ExpirePromos flags codes past their expiry date. Run daily by the
// scheduler.
func ExpirePromos() {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.PromoCode{}).
			Where("status = ? AND expiry_date <= ?", types.PROMO_AVAILABLE, time.Now()).
			Update("status", types.PROMO_EXPIRED).
			Error
	})
	if err != nil {
		log.Printf("Error expiring promo codes: %s\n", err.Error())
	}
}
