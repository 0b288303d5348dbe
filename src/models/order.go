package models

import (
	"rbs/src/types"

	"github.com/google/uuid"
)

// Order is the immutable purchase record. Raffle fields are snapshotted
// at purchase time so later edits to the raffle do not rewrite history.
type Order struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	UserID        uint                `json:"user_id,omitempty"`
	RaffleID      uint                `json:"raffle_id,omitempty"`
	TransactionID *uuid.UUID          `json:"transaction_id,omitempty"`
	BucksSpent    int64               `json:"bucks_spent"`
	PaymentSource types.PaymentSource `gorm:"default:'WALLET'" json:"payment_source,omitempty"`
	Status        types.OrderStatus   `gorm:"default:'CONFIRMED'" json:"status,omitempty"`

	RaffleTitle      string `json:"raffle_title,omitempty"`
	RafflePrice      int64  `json:"raffle_price,omitempty"`
	RaffleTotalSlots uint   `json:"raffle_total_slots,omitempty"`

	User        User         `gorm:"foreignKey:user_id" json:"-"`
	Raffle      Raffle       `gorm:"foreignKey:raffle_id" json:"raffle,omitempty"`
	Transaction *Transaction `gorm:"foreignKey:transaction_id" json:"transaction,omitempty"`

	types.Timestamps
}

type Entry struct {
	ID       uint `gorm:"primarykey" json:"id"`
	UserID   uint `gorm:"uniqueIndex:idx_entry_user_raffle" json:"user_id,omitempty"`
	RaffleID uint `gorm:"uniqueIndex:idx_entry_user_raffle" json:"raffle_id,omitempty"`
	OrderID  uint `json:"order_id,omitempty"`

	Status types.EntryStatus `gorm:"default:'ACTIVE'" json:"status,omitempty"`
	Result types.EntryResult `gorm:"default:'TBD'" json:"result,omitempty"`

	User   User   `gorm:"foreignKey:user_id" json:"-"`
	Raffle Raffle `gorm:"foreignKey:raffle_id" json:"raffle,omitempty"`
	Order  Order  `gorm:"foreignKey:order_id" json:"order,omitempty"`

	types.Timestamps
}
