package common

import (
	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryService turns paid-for slots into orders and raffle entries.
type EntryService struct {
	inv   *Inventory
	carts *CartService
}

func NewEntryService(inv *Inventory, carts *CartService) *EntryService {
	return &EntryService{inv: inv, carts: carts}
}

// RecordPurchase writes the order ledger row and the entry for a slot
// the caller has already secured. One entry per user per raffle.
func (s *EntryService) RecordPurchase(tx *gorm.DB, userID uint, raffle *models.Raffle, txnID *uuid.UUID, source types.PaymentSource, bucksSpent int64) (*models.Order, error) {
	var count int64
	err := tx.
		Model(&models.Entry{}).
		Where("user_id = ? AND raffle_id = ? AND status = ?", userID, raffle.ID, types.ENTRY_ACTIVE).
		Count(&count).
		Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEntry
	}
	order := models.Order{
		UserID:           userID,
		RaffleID:         raffle.ID,
		TransactionID:    txnID,
		BucksSpent:       bucksSpent,
		PaymentSource:    source,
		Status:           types.ORDER_CONFIRMED,
		RaffleTitle:      raffle.Title,
		RafflePrice:      raffle.Price,
		RaffleTotalSlots: raffle.TotalSlots,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	entry := models.Entry{
		UserID:   userID,
		RaffleID: raffle.ID,
		OrderID:  order.ID,
		Status:   types.ENTRY_ACTIVE,
		Result:   types.RESULT_TBD,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Buy purchases one slot with wallet balance. A live cart hold on the
// raffle is converted in place so the slot counter is not bumped
// twice.
func (s *EntryService) Buy(userID, raffleID uint) (*models.Order, error) {
	var order *models.Order
	var raffle *models.Raffle
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var existing models.Raffle
		if err := tx.
			Where("id = ? AND is_deleted = ?", raffleID, false).
			First(&existing).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if existing.Status == types.RAFFLE_COMPLETED || existing.Status == types.RAFFLE_EXPIRED {
			// A stale cart hold must not buy into a closed raffle.
			return ErrNotAvailable
		}
		if err := DebitBucks(tx, userID, existing.Price); err != nil {
			return err
		}
		held, err := s.carts.ConsumeHold(tx, userID, raffleID)
		if err != nil {
			return err
		}
		if held {
			raffle = &existing
		} else {
			raffle, err = s.inv.ReserveSlot(tx, raffleID)
			if err != nil {
				return err
			}
		}
		order, err = s.RecordPurchase(tx, userID, raffle, nil, types.PAYMENT_WALLET, existing.Price)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raffle != nil {
		s.inv.PublishSlots(raffle)
	}
	return order, nil
}

// Withdraw refunds an entry while the raffle is still INACTIVE. Once
// the raffle goes live the entry is locked in.
func (s *EntryService) Withdraw(userID, raffleID uint) error {
	var raffle *models.Raffle
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var r models.Raffle
		if err := tx.First(&r, raffleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		if r.IsDeleted || r.Status == types.RAFFLE_ACTIVE || r.Status == types.RAFFLE_COMPLETED {
			return ErrRaffleLocked
		}
		var entry models.Entry
		if err := tx.
			Where("user_id = ? AND raffle_id = ? AND status = ?", userID, raffleID, types.ENTRY_ACTIVE).
			First(&entry).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		var order models.Order
		if err := tx.First(&order, entry.OrderID).Error; err != nil {
			return err
		}
		if err := CreditBucks(tx, userID, order.BucksSpent); err != nil {
			return err
		}
		if err := tx.
			Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", types.ORDER_REFUNDED).
			Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&entry).Error; err != nil {
			return err
		}
		var err error
		raffle, err = s.inv.ReleaseSlot(tx, raffleID)
		return err
	})
	if err != nil {
		return err
	}
	s.inv.PublishSlots(raffle)
	return nil
}

// ListEntries returns the user's entries newest first.
func (s *EntryService) ListEntries(userID uint) ([]models.Entry, error) {
	conn := db.GetDb()
	var entries []models.Entry
	err := conn.
		Model(&models.Entry{}).
		Where(&models.Entry{UserID: userID}).
		Preload("Raffle").
		Preload("Order").
		Order("created_at DESC").
		Find(&entries).
		Error
	return entries, err
}
