package models

import (
	"rbs/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Transaction struct {
	ID                uuid.UUID               `gorm:"primarykey;type:uuid" json:"id"`
	UserID            uint                    `json:"user_id,omitempty"`
	RaffleIDs         types.JSONBArray        `gorm:"type:jsonb" json:"raffle_ids,omitempty"`
	Subtotal          int64                   `json:"subtotal,omitempty"`
	Discount          int64                   `json:"discount,omitempty"`
	Total             int64                   `json:"total,omitempty"`
	Bucks             int64                   `json:"bucks,omitempty"`
	Currency          string                  `json:"currency,omitempty"`
	PromoCodeID       *uint                   `json:"promo_code_id,omitempty"`
	PaymentIntentId   *string                 `gorm:"uniqueIndex" json:"payment_intent_id,omitempty"`
	CheckoutSessionId *string                 `json:"checkout_session_id,omitempty"`
	ReferenceID       string                  `gorm:"uniqueIndex" json:"reference_id,omitempty"`
	Status            types.TransactionStatus `gorm:"default:'PENDING'" json:"status,omitempty"`
	IsProcessed       bool                    `json:"is_processed"`
	Metadata          *types.Metadata         `gorm:"type:jsonb" json:"metadata,omitempty"`

	User      User       `gorm:"foreignKey:user_id" json:"-"`
	PromoCode *PromoCode `gorm:"foreignKey:promo_code_id" json:"promo_code,omitempty"`

	types.Timestamps
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RaffleIDList converts the stored JSONB array back into ids. Values
// come out of the decoder as float64.
func (t *Transaction) RaffleIDList() []uint {
	ids := make([]uint, 0, len(t.RaffleIDs))
	for _, v := range t.RaffleIDs {
		switch n := v.(type) {
		case float64:
			ids = append(ids, uint(n))
		case int:
			ids = append(ids, uint(n))
		case uint:
			ids = append(ids, n)
		}
	}
	return ids
}
