package common

import (
	"rbs/src/models"
	"rbs/src/types"
	"time"

	"gorm.io/gorm"
)

func (s *CommonTestSuite) TestCartAddAndRemove() {
	user := s.seedUser("cart@example.com", 0)
	raffle := s.seedRaffle("Cart raffle", 10, 3, types.RAFFLE_ACTIVE)

	s.Run("Should reserve a slot when adding to cart", func() {
		_, err := s.Carts.Add(user.ID, raffle.ID)
		s.NoError(err)
		s.Equal(uint(1), s.bookedSlots(raffle.ID))

		items, expiresAt, err := s.Carts.List(user.ID)
		s.NoError(err)
		s.Len(items, 1)
		s.Require().NotNil(expiresAt)
		s.True(expiresAt.After(time.Now()))
	})

	s.Run("Should reject a second add of the same raffle", func() {
		_, err := s.Carts.Add(user.ID, raffle.ID)
		s.ErrorIs(err, ErrAlreadyInCart)
		s.Equal(uint(1), s.bookedSlots(raffle.ID))
	})

	s.Run("Should release the slot on remove", func() {
		_, err := s.Carts.Remove(user.ID, raffle.ID)
		s.NoError(err)
		s.Equal(uint(0), s.bookedSlots(raffle.ID))
	})

	s.Run("Should fail removing an item that is not held", func() {
		_, err := s.Carts.Remove(user.ID, raffle.ID)
		s.ErrorIs(err, ErrNotInCart)
	})
}

func (s *CommonTestSuite) TestCartAddSoldOut() {
	alice := s.seedUser("alice@example.com", 0)
	bob := s.seedUser("bob@example.com", 0)
	raffle := s.seedRaffle("Tiny raffle", 10, 1, types.RAFFLE_ACTIVE)

	_, err := s.Carts.Add(alice.ID, raffle.ID)
	s.Require().NoError(err)

	_, err = s.Carts.Add(bob.ID, raffle.ID)
	s.ErrorIs(err, ErrNotAvailable)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))
}

func (s *CommonTestSuite) TestCartExpiry() {
	user := s.seedUser("expiry@example.com", 0)
	raffle := s.seedRaffle("Expiring raffle", 10, 3, types.RAFFLE_ACTIVE)

	_, err := s.Carts.Add(user.ID, raffle.ID)
	s.Require().NoError(err)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))

	err = s.DB.
		Model(&models.Cart{}).
		Where("user_id = ?", user.ID).
		UpdateColumn("expires_at", time.Now().Add(-time.Minute)).
		Error
	s.Require().NoError(err)

	s.Run("Should read an expired cart as empty before the sweep", func() {
		items, _, err := s.Carts.List(user.ID)
		s.NoError(err)
		s.Empty(items)
	})

	s.Run("Should release held slots on sweep", func() {
		s.Carts.ExpireCarts()
		s.Equal(uint(0), s.bookedSlots(raffle.ID))

		var count int64
		s.Require().NoError(s.DB.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&count).Error)
		s.Equal(int64(0), count)
	})

	s.Run("Should allow re-adding after the sweep", func() {
		_, err := s.Carts.Add(user.ID, raffle.ID)
		s.NoError(err)
		s.Equal(uint(1), s.bookedSlots(raffle.ID))
	})
}

func (s *CommonTestSuite) TestConsumeHold() {
	user := s.seedUser("hold@example.com", 0)
	raffle := s.seedRaffle("Held raffle", 10, 3, types.RAFFLE_ACTIVE)

	_, err := s.Carts.Add(user.ID, raffle.ID)
	s.Require().NoError(err)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		held, err := s.Carts.ConsumeHold(tx, user.ID, raffle.ID)
		s.True(held)
		return err
	})
	s.NoError(err)

	// The slot stays booked, only the cart row is gone.
	s.Equal(uint(1), s.bookedSlots(raffle.ID))
	var count int64
	s.Require().NoError(s.DB.Model(&models.CartItem{}).Where("raffle_id = ?", raffle.ID).Count(&count).Error)
	s.Equal(int64(0), count)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		held, err := s.Carts.ConsumeHold(tx, user.ID, raffle.ID)
		s.False(held)
		return err
	})
	s.NoError(err)
}
