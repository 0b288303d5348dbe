package common

import (
	"rbs/src/models"
	"rbs/src/types"
	"sync"

	"gorm.io/gorm"
)

func (s *CommonTestSuite) TestReserveSlotBounds() {
	raffle := s.seedRaffle("Bounded raffle", 10, 2, types.RAFFLE_ACTIVE)

	s.Run("Should reserve up to total_slots and no further", func() {
		for i := 0; i < 2; i++ {
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				_, err := s.Inv.ReserveSlot(tx, raffle.ID)
				return err
			})
			s.NoError(err)
		}
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			_, err := s.Inv.ReserveSlot(tx, raffle.ID)
			return err
		})
		s.ErrorIs(err, ErrNotAvailable)
		s.Equal(uint(2), s.bookedSlots(raffle.ID))
	})

	s.Run("Should never release below zero", func() {
		for i := 0; i < 3; i++ {
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				_, err := s.Inv.ReleaseSlot(tx, raffle.ID)
				return err
			})
			s.NoError(err)
		}
		s.Equal(uint(0), s.bookedSlots(raffle.ID))
	})
}

func (s *CommonTestSuite) TestReserveSlotClosedRaffle() {
	completed := s.seedRaffle("Completed raffle", 10, 5, types.RAFFLE_COMPLETED)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.Inv.ReserveSlot(tx, completed.ID)
		return err
	})
	s.ErrorIs(err, ErrNotAvailable)

	deleted := s.seedRaffle("Deleted raffle", 10, 5, types.RAFFLE_ACTIVE)
	s.Require().NoError(s.DB.Model(&deleted).Update("is_deleted", true).Error)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.Inv.ReserveSlot(tx, deleted.ID)
		return err
	})
	s.ErrorIs(err, ErrNotAvailable)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.Inv.ReserveSlot(tx, 9999)
		return err
	})
	s.ErrorIs(err, ErrNotAvailable)
}

func (s *CommonTestSuite) TestReserveSlotConcurrent() {
	raffle := s.seedRaffle("Contested raffle", 10, 5, types.RAFFLE_ACTIVE)

	var wg sync.WaitGroup
	var mu sync.Mutex
	reserved := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				_, err := s.Inv.ReserveSlot(tx, raffle.ID)
				return err
			})
			if err == nil {
				mu.Lock()
				reserved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(5, reserved)
	s.Equal(uint(5), s.bookedSlots(raffle.ID))
}

func (s *CommonTestSuite) TestPublishSlots() {
	raffle := s.seedRaffle("Published raffle", 10, 4, types.RAFFLE_ACTIVE)
	var reserved *models.Raffle
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		reserved, err = s.Inv.ReserveSlot(tx, raffle.ID)
		return err
	})
	s.Require().NoError(err)
	s.Inv.PublishSlots(reserved)

	events := s.Pub.Events()
	s.Require().Len(events, 1)
	s.Equal(raffle.ID, events[0].RaffleID)
	s.Equal(uint(1), events[0].BookedSlots)
	s.Equal(uint(4), events[0].TotalSlots)
}
