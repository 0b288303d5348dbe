package common

import (
	"rbs/src/models"
	"rbs/src/types"

	"gorm.io/gorm"
)

// Inventory owns the booked_slots counter. Both operations are single
// conditional UPDATEs so concurrent buyers can never push the counter
// past total_slots or below zero.
type Inventory struct {
	events EventPublisher
}

func NewInventory(events EventPublisher) *Inventory {
	if events == nil {
		events = NoopPublisher()
	}
	return &Inventory{events: events}
}

// ReserveSlot takes one slot on the raffle. It fails with
// ErrNotAvailable when the raffle is deleted, not open for booking, or
// already full.
func (inv *Inventory) ReserveSlot(tx *gorm.DB, raffleID uint) (*models.Raffle, error) {
	res := tx.
		Model(&models.Raffle{}).
		Where("id = ? AND is_deleted = ?", raffleID, false).
		Where("status IN ?", []types.RaffleStatus{types.RAFFLE_INACTIVE, types.RAFFLE_ACTIVE}).
		Where("booked_slots < total_slots").
		UpdateColumn("booked_slots", gorm.Expr("booked_slots + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotAvailable
	}
	var raffle models.Raffle
	if err := tx.First(&raffle, raffleID).Error; err != nil {
		return nil, err
	}
	return &raffle, nil
}

// ReleaseSlot gives one slot back. Releasing at zero is a no-op rather
// than an error so repeated releases stay safe.
func (inv *Inventory) ReleaseSlot(tx *gorm.DB, raffleID uint) (*models.Raffle, error) {
	res := tx.
		Model(&models.Raffle{}).
		Where("id = ? AND booked_slots > ?", raffleID, 0).
		UpdateColumn("booked_slots", gorm.Expr("booked_slots - ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	var raffle models.Raffle
	if err := tx.First(&raffle, raffleID).Error; err != nil {
		return nil, err
	}
	return &raffle, nil
}

// PublishSlots pushes the counter out to subscribers. Callers invoke
// it after their transaction commits, never inside one.
func (inv *Inventory) PublishSlots(raffle *models.Raffle) {
	if raffle == nil {
		return
	}
	inv.events.PublishSlotUpdate(raffle.ID, raffle.BookedSlots, raffle.TotalSlots)
}
