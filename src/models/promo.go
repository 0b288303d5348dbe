package models

import (
	"rbs/src/types"
	"time"
)

type PromoCode struct {
	ID         uint                  `gorm:"primarykey" json:"id"`
	Code       string                `gorm:"uniqueIndex" json:"code,omitempty"`
	Discount   uint                  `json:"discount,omitempty"`
	TotalUses  uint                  `json:"total_uses,omitempty"`
	PromoUsed  uint                  `json:"promo_used"`
	ExpiryDate time.Time             `json:"expiry_date,omitempty"`
	Visibility types.PromoVisibility `gorm:"default:'PUBLIC'" json:"visibility,omitempty"`
	OwnerID    *uint                 `json:"owner_id,omitempty"`
	Status     types.PromoStatus     `gorm:"default:'AVAILABLE'" json:"status,omitempty"`
	IsDeleted  bool                  `json:"-"`

	Owner *User `gorm:"foreignKey:owner_id" json:"-"`

	types.Timestamps
}
