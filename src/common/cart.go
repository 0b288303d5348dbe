package common

import (
	"log"
	"rbs/src/db"
	"rbs/src/models"
	"time"

	"gorm.io/gorm"
)

// CartService manages per-user slot holds. Adding an item reserves a
// slot immediately; the hold survives until checkout, explicit
// removal, or the expiry sweep.
type CartService struct {
	inv *Inventory
	ttl time.Duration
}

func NewCartService(inv *Inventory, ttl time.Duration) *CartService {
	return &CartService{inv: inv, ttl: ttl}
}

func (s *CartService) Add(userID, raffleID uint) (*models.Raffle, error) {
	var raffle *models.Raffle
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.
			Model(&models.CartItem{}).
			Joins("JOIN carts ON carts.id = cart_items.cart_id").
			Where("carts.user_id = ? AND cart_items.raffle_id = ?", userID, raffleID).
			Count(&count).
			Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInCart
		}
		raffle, err = s.inv.ReserveSlot(tx, raffleID)
		if err != nil {
			return err
		}
		var cart models.Cart
		if err := tx.
			Where(&models.Cart{UserID: userID}).
			FirstOrCreate(&cart, &models.Cart{UserID: userID}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Cart{}).
			Where("id = ?", cart.ID).
			UpdateColumn("expires_at", time.Now().Add(s.ttl)).
			Error; err != nil {
			return err
		}
		item := models.CartItem{CartID: cart.ID, RaffleID: raffleID}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.inv.PublishSlots(raffle)
	return raffle, nil
}

func (s *CartService) Remove(userID, raffleID uint) (*models.Raffle, error) {
	var raffle *models.Raffle
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.
			Where(&models.Cart{UserID: userID}).
			First(&cart).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotInCart
			}
			return err
		}
		res := tx.
			Unscoped().
			Where("cart_id = ? AND raffle_id = ?", cart.ID, raffleID).
			Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotInCart
		}
		var err error
		raffle, err = s.inv.ReleaseSlot(tx, raffleID)
		if err != nil {
			return err
		}
		if err := tx.
			Model(&models.Cart{}).
			Where("id = ?", cart.ID).
			UpdateColumn("expires_at", time.Now().Add(s.ttl)).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.inv.PublishSlots(raffle)
	return raffle, nil
}

// List returns the active cart items. An expired cart reads as empty
// even before the sweep has reclaimed it.
func (s *CartService) List(userID uint) ([]models.CartItem, *time.Time, error) {
	conn := db.GetDb()
	var cart models.Cart
	err := conn.
		Where(&models.Cart{UserID: userID}).
		Preload("Items").
		Preload("Items.Raffle").
		First(&cart).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return []models.CartItem{}, nil, nil
		}
		return nil, nil, err
	}
	if time.Now().After(cart.ExpiresAt) {
		return []models.CartItem{}, nil, nil
	}
	return cart.Items, &cart.ExpiresAt, nil
}

// ConsumeHold removes the user's hold on a raffle during checkout so
// the purchase reuses the already reserved slot. Returns true when a
// hold existed.
func (s *CartService) ConsumeHold(tx *gorm.DB, userID, raffleID uint) (bool, error) {
	res := tx.
		Unscoped().
		Where("raffle_id = ? AND cart_id IN (?)",
			raffleID,
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Cart{}).
				Select("id").
				Where("user_id = ? AND expires_at > ?", userID, time.Now()),
		).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClearCart drops all of the user's cart records without touching slot
// counters. Used after checkout has converted the holds into entries.
func (s *CartService) ClearCart(tx *gorm.DB, userID uint) error {
	var cart models.Cart
	if err := tx.
		Where(&models.Cart{UserID: userID}).
		First(&cart).
		Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&cart).Error
}

// ExpireCarts releases the holds of every cart past its deadline. Each
// cart is processed in its own transaction so one failure does not
// roll back the rest of the sweep.
func (s *CartService) ExpireCarts() {
	conn := db.GetDb()
	var carts []models.Cart
	err := conn.
		Where("expires_at <= ?", time.Now()).
		Preload("Items").
		Find(&carts).
		Error
	if err != nil {
		log.Printf("Error retrieving expired carts: %s\n", err.Error())
		return
	}
	for _, cart := range carts {
		released := make([]*models.Raffle, 0, len(cart.Items))
		err := conn.Transaction(func(tx *gorm.DB) error {
			for _, item := range cart.Items {
				raffle, err := s.inv.ReleaseSlot(tx, item.RaffleID)
				if err != nil {
					return err
				}
				released = append(released, raffle)
			}
			if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Unscoped().Delete(&models.Cart{}, cart.ID).Error
		})
		if err != nil {
			log.Printf("Error expiring cart %d: %s\n", cart.ID, err.Error())
			continue
		}
		for _, raffle := range released {
			s.inv.PublishSlots(raffle)
		}
	}
}
