package models

import (
	"rbs/src/types"
	"time"
)

type Raffle struct {
	ID                 uint               `gorm:"primarykey" json:"id"`
	Title              string             `json:"title,omitempty"`
	Slug               string             `gorm:"index" json:"slug,omitempty"`
	Description        string             `json:"description,omitempty"`
	Price              int64              `json:"price,omitempty"`
	TotalSlots         uint               `json:"total_slots,omitempty"`
	BookedSlots        uint               `json:"booked_slots"`
	StartDate          time.Time          `json:"start_date,omitempty"`
	EndDate            time.Time          `json:"end_date,omitempty"`
	Status             types.RaffleStatus `gorm:"default:'INACTIVE'" json:"status,omitempty"`
	IsDeleted          bool               `json:"-"`
	HasWinnerAnnounced bool               `json:"has_winner_announced"`
	WinnerUserID       *uint              `json:"winner_user_id,omitempty"`
	CreatedBy          uint               `json:"created_by,omitempty"`
	IsAddedInCart      bool               `gorm:"-" json:"is_added_in_cart"`

	Creator User     `gorm:"foreignKey:created_by" json:"-"`
	Rewards []Reward `json:"rewards,omitempty"`

	types.Timestamps
}

type Reward struct {
	ID                uint                    `gorm:"primarykey" json:"id"`
	RaffleID          uint                    `json:"raffle_id,omitempty"`
	Name              string                  `json:"name,omitempty"`
	Type              types.RewardType        `gorm:"default:'DIGITAL'" json:"type,omitempty"`
	GiftCardCategory  *string                 `json:"gift_card_category,omitempty"`
	ConsolationPoints int64                   `json:"consolation_points,omitempty"`
	Status            types.FulfillmentStatus `gorm:"default:'PENDING'" json:"status,omitempty"`

	Raffle Raffle `gorm:"foreignKey:raffle_id" json:"-"`

	types.Timestamps
}
