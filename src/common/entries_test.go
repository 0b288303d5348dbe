package common

import (
	"rbs/src/models"
	"rbs/src/types"
)

func (s *CommonTestSuite) TestBuyWithWallet() {
	user := s.seedUser("buyer@example.com", 100)
	raffle := s.seedRaffle("Wallet raffle", 40, 3, types.RAFFLE_ACTIVE)

	order, err := s.Entries.Buy(user.ID, raffle.ID)
	s.Require().NoError(err)
	s.Equal(types.PAYMENT_WALLET, order.PaymentSource)
	s.Equal(int64(40), order.BucksSpent)
	s.Equal(raffle.Title, order.RaffleTitle)

	var after models.User
	s.Require().NoError(s.DB.First(&after, user.ID).Error)
	s.Equal(int64(60), after.RaffleBucks)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))

	entries, err := s.Entries.ListEntries(user.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(types.ENTRY_ACTIVE, entries[0].Status)
	s.Equal(types.RESULT_TBD, entries[0].Result)
}

func (s *CommonTestSuite) TestBuyInsufficientFunds() {
	user := s.seedUser("poor@example.com", 10)
	raffle := s.seedRaffle("Pricey raffle", 40, 3, types.RAFFLE_ACTIVE)

	_, err := s.Entries.Buy(user.ID, raffle.ID)
	s.ErrorIs(err, ErrInsufficientFunds)

	var after models.User
	s.Require().NoError(s.DB.First(&after, user.ID).Error)
	s.Equal(int64(10), after.RaffleBucks)
	s.Equal(uint(0), s.bookedSlots(raffle.ID))
}

func (s *CommonTestSuite) TestBuyDuplicateEntry() {
	user := s.seedUser("repeat@example.com", 100)
	raffle := s.seedRaffle("One per user", 20, 3, types.RAFFLE_ACTIVE)

	_, err := s.Entries.Buy(user.ID, raffle.ID)
	s.Require().NoError(err)

	_, err = s.Entries.Buy(user.ID, raffle.ID)
	s.ErrorIs(err, ErrDuplicateEntry)

	// The failed attempt must not burn balance or a slot.
	var after models.User
	s.Require().NoError(s.DB.First(&after, user.ID).Error)
	s.Equal(int64(80), after.RaffleBucks)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))
}

func (s *CommonTestSuite) TestBuyMissingRaffle() {
	user := s.seedUser("lost@example.com", 100)
	_, err := s.Entries.Buy(user.ID, 9999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CommonTestSuite) TestBuyConsumesCartHold() {
	user := s.seedUser("held-buyer@example.com", 100)
	raffle := s.seedRaffle("Held then bought", 30, 2, types.RAFFLE_ACTIVE)

	_, err := s.Carts.Add(user.ID, raffle.ID)
	s.Require().NoError(err)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))

	_, err = s.Entries.Buy(user.ID, raffle.ID)
	s.Require().NoError(err)

	// The hold converted in place, not a second reservation.
	s.Equal(uint(1), s.bookedSlots(raffle.ID))
	var count int64
	s.Require().NoError(s.DB.Model(&models.CartItem{}).Where("raffle_id = ?", raffle.ID).Count(&count).Error)
	s.Equal(int64(0), count)
}

func (s *CommonTestSuite) TestBuyStaleHoldOnClosedRaffle() {
	user := s.seedUser("stalehold@example.com", 100)
	raffle := s.seedRaffle("Closing soon", 40, 3, types.RAFFLE_ACTIVE)
	_, err := s.Carts.Add(user.ID, raffle.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.DB.Model(&models.Raffle{}).Where("id = ?", raffle.ID).Update("status", types.RAFFLE_COMPLETED).Error)

	_, err = s.Entries.Buy(user.ID, raffle.ID)
	s.ErrorIs(err, ErrNotAvailable)

	var after models.User
	s.Require().NoError(s.DB.First(&after, user.ID).Error)
	s.Equal(int64(100), after.RaffleBucks)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))
}

func (s *CommonTestSuite) TestWithdrawEntry() {
	user := s.seedUser("withdrawer@example.com", 50)
	raffle := s.seedRaffle("Refundable raffle", 50, 3, types.RAFFLE_INACTIVE)

	order, err := s.Entries.Buy(user.ID, raffle.ID)
	s.Require().NoError(err)

	err = s.Entries.Withdraw(user.ID, raffle.ID)
	s.Require().NoError(err)

	var after models.User
	s.Require().NoError(s.DB.First(&after, user.ID).Error)
	s.Equal(int64(50), after.RaffleBucks)
	s.Equal(uint(0), s.bookedSlots(raffle.ID))

	var refunded models.Order
	s.Require().NoError(s.DB.First(&refunded, order.ID).Error)
	s.Equal(types.ORDER_REFUNDED, refunded.Status)

	entries, err := s.Entries.ListEntries(user.ID)
	s.Require().NoError(err)
	s.Empty(entries)

	s.Run("Should allow re-entering after a withdrawal", func() {
		_, err := s.Entries.Buy(user.ID, raffle.ID)
		s.NoError(err)
	})
}

func (s *CommonTestSuite) TestWithdrawLockedRaffle() {
	user := s.seedUser("locked@example.com", 100)
	raffle := s.seedRaffle("Locked raffle", 25, 3, types.RAFFLE_INACTIVE)

	_, err := s.Entries.Buy(user.ID, raffle.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.DB.Model(&models.Raffle{}).Where("id = ?", raffle.ID).Update("status", types.RAFFLE_ACTIVE).Error)

	err = s.Entries.Withdraw(user.ID, raffle.ID)
	s.ErrorIs(err, ErrRaffleLocked)

	var after models.User
	s.Require().NoError(s.DB.First(&after, user.ID).Error)
	s.Equal(int64(75), after.RaffleBucks)
	s.Equal(uint(1), s.bookedSlots(raffle.ID))
}

func (s *CommonTestSuite) TestWithdrawWithoutEntry() {
	user := s.seedUser("no-entry@example.com", 100)
	raffle := s.seedRaffle("Never entered", 25, 3, types.RAFFLE_INACTIVE)

	err := s.Entries.Withdraw(user.ID, raffle.ID)
	s.ErrorIs(err, ErrNotFound)
}
