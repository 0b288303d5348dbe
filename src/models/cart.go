package models

import (
	"rbs/src/types"
	"time"
)

// Cart holds reserved slots for a single user. Each item pins one slot
// on its raffle until checkout or until the expiry sweep reclaims it.
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex" json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	User  User       `gorm:"foreignKey:user_id" json:"-"`
	Items []CartItem `json:"items,omitempty"`

	types.Timestamps
}

type CartItem struct {
	ID       uint `gorm:"primarykey" json:"id"`
	CartID   uint `gorm:"uniqueIndex:idx_cart_item_raffle" json:"cart_id,omitempty"`
	RaffleID uint `gorm:"uniqueIndex:idx_cart_item_raffle" json:"raffle_id,omitempty"`

	Cart   Cart   `gorm:"foreignKey:cart_id" json:"-"`
	Raffle Raffle `gorm:"foreignKey:raffle_id" json:"raffle,omitempty"`

	types.Timestamps
}
