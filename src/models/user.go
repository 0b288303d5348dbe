package models

import "rbs/src/types"

type User struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	Email            string  `gorm:"uniqueIndex" json:"email,omitempty"`
	Name             string  `json:"name,omitempty"`
	Role             string  `gorm:"default:'user'" json:"role,omitempty"`
	RaffleBucks      int64   `json:"raffle_bucks"`
	TotalPoints      int64   `json:"total_points"`
	IsBlocked        bool    `json:"is_blocked,omitempty"`
	StripeCustomerId *string `json:"-"`

	Entries []Entry `json:"entries,omitempty"`
	Orders  []Order `json:"orders,omitempty"`

	types.Timestamps
}
