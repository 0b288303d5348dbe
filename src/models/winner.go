package models

import (
	"rbs/src/types"
	"time"
)

// RaffleWinner records the drawn entry for a raffle. The unique index
// on raffle_id is what makes repeated draw sweeps idempotent.
type RaffleWinner struct {
	ID           uint                    `gorm:"primarykey" json:"id"`
	RaffleID     uint                    `gorm:"uniqueIndex" json:"raffle_id,omitempty"`
	UserID       uint                    `json:"user_id,omitempty"`
	EntryID      uint                    `json:"entry_id,omitempty"`
	RewardID     *uint                   `json:"reward_id,omitempty"`
	RewardType   types.RewardType        `json:"reward_type,omitempty"`
	Status       types.FulfillmentStatus `gorm:"default:'GRANTED'" json:"status,omitempty"`
	AwardedAt    time.Time               `json:"awarded_at,omitempty"`
	TrackingLink *string                 `json:"tracking_link,omitempty"`

	User   User    `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Raffle Raffle  `gorm:"foreignKey:raffle_id" json:"raffle,omitempty"`
	Entry  Entry   `gorm:"foreignKey:entry_id" json:"-"`
	Reward *Reward `gorm:"foreignKey:reward_id" json:"reward,omitempty"`

	types.Timestamps
}
