package common

import (
	"rbs/src/models"
	"rbs/src/types"
	"time"

	"github.com/stretchr/testify/assert"
)

func (s *CommonTestSuite) TestActivateAndCompleteSweeps() {
	pending := s.seedRaffle("Opens now", 10, 5, types.RAFFLE_INACTIVE)
	future := models.Raffle{
		Title:      "Opens later",
		Price:      10,
		TotalSlots: 5,
		StartDate:  time.Now().Add(time.Hour),
		EndDate:    time.Now().Add(2 * time.Hour),
		Status:     types.RAFFLE_INACTIVE,
	}
	s.Require().NoError(s.DB.Create(&future).Error)

	s.Sweeps.ActivateRaffles()

	var activated models.Raffle
	s.Require().NoError(s.DB.First(&activated, pending.ID).Error)
	s.Equal(types.RAFFLE_ACTIVE, activated.Status)

	var untouched models.Raffle
	s.Require().NoError(s.DB.First(&untouched, future.ID).Error)
	s.Equal(types.RAFFLE_INACTIVE, untouched.Status)

	s.Require().NoError(s.DB.Model(&models.Raffle{}).Where("id = ?", pending.ID).Update("end_date", time.Now().Add(-time.Minute)).Error)

	s.Sweeps.CompleteRaffles()

	var completed models.Raffle
	s.Require().NoError(s.DB.First(&completed, pending.ID).Error)
	s.Equal(types.RAFFLE_COMPLETED, completed.Status)
}

func (s *CommonTestSuite) TestDrawWinner() {
	raffle := s.seedRaffle("Drawable raffle", 10, 5, types.RAFFLE_ACTIVE)
	reward := models.Reward{
		RaffleID:          raffle.ID,
		Name:              "Gift Card",
		Type:              types.REWARD_DIGITAL,
		ConsolationPoints: 5,
	}
	s.Require().NoError(s.DB.Create(&reward).Error)

	users := make([]models.User, 0, 3)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := s.seedUser(email, 20)
		users = append(users, user)
		_, err := s.Entries.Buy(user.ID, raffle.ID)
		s.Require().NoError(err)
	}

	s.Require().NoError(s.DB.Model(&models.Raffle{}).Where("id = ?", raffle.ID).Update("status", types.RAFFLE_COMPLETED).Error)

	s.Sweeps.DrawWinners()

	var winners []models.RaffleWinner
	s.Require().NoError(s.DB.Where("raffle_id = ?", raffle.ID).Find(&winners).Error)
	s.Require().Len(winners, 1)
	s.Equal(types.REWARD_DIGITAL, winners[0].RewardType)
	s.Equal(types.FULFILLMENT_GRANTED, winners[0].Status)

	var after models.Raffle
	s.Require().NoError(s.DB.First(&after, raffle.ID).Error)
	s.True(after.HasWinnerAnnounced)
	s.Require().NotNil(after.WinnerUserID)
	s.Equal(winners[0].UserID, *after.WinnerUserID)

	var winCount, lossCount int64
	s.Require().NoError(s.DB.Model(&models.Entry{}).Where("raffle_id = ? AND result = ?", raffle.ID, types.RESULT_WIN).Count(&winCount).Error)
	s.Require().NoError(s.DB.Model(&models.Entry{}).Where("raffle_id = ? AND result = ?", raffle.ID, types.RESULT_LOSS).Count(&lossCount).Error)
	s.Equal(int64(1), winCount)
	s.Equal(int64(2), lossCount)

	// Losers picked up consolation points, the winner did not.
	for _, user := range users {
		var u models.User
		s.Require().NoError(s.DB.First(&u, user.ID).Error)
		if u.ID == winners[0].UserID {
			s.Equal(int64(0), u.TotalPoints)
		} else {
			s.Equal(int64(5), u.TotalPoints)
		}
	}

	assert.Eventually(s.T(), func() bool {
		return len(s.Notifier.Winners()) == 1 && len(s.Notifier.Announced()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	s.Len(s.Notifier.Announced()[0], 2)

	s.Run("Should not draw a second winner on rerun", func() {
		s.Sweeps.DrawWinners()
		var count int64
		s.Require().NoError(s.DB.Model(&models.RaffleWinner{}).Where("raffle_id = ?", raffle.ID).Count(&count).Error)
		s.Equal(int64(1), count)
	})
}

func (s *CommonTestSuite) TestDrawWinnerZeroEntrants() {
	raffle := s.seedRaffle("Nobody entered", 10, 5, types.RAFFLE_COMPLETED)

	s.Sweeps.DrawWinners()

	var after models.Raffle
	s.Require().NoError(s.DB.First(&after, raffle.ID).Error)
	s.Equal(types.RAFFLE_EXPIRED, after.Status)
	s.True(after.HasWinnerAnnounced)

	var count int64
	s.Require().NoError(s.DB.Model(&models.RaffleWinner{}).Where("raffle_id = ?", raffle.ID).Count(&count).Error)
	s.Equal(int64(0), count)
}

func (s *CommonTestSuite) TestDrawWinnerPhysicalReward() {
	raffle := s.seedRaffle("Physical prize", 10, 5, types.RAFFLE_ACTIVE)
	reward := models.Reward{
		RaffleID: raffle.ID,
		Name:     "Game Console",
		Type:     types.REWARD_PHYSICAL,
	}
	s.Require().NoError(s.DB.Create(&reward).Error)

	user := s.seedUser("phys@example.com", 20)
	_, err := s.Entries.Buy(user.ID, raffle.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.DB.Model(&models.Raffle{}).Where("id = ?", raffle.ID).Update("status", types.RAFFLE_COMPLETED).Error)

	s.Sweeps.DrawWinners()

	var winner models.RaffleWinner
	s.Require().NoError(s.DB.Where("raffle_id = ?", raffle.ID).First(&winner).Error)
	s.Equal(types.REWARD_PHYSICAL, winner.RewardType)
	s.Equal(types.FULFILLMENT_PENDING, winner.Status)
	s.Equal(user.ID, winner.UserID)
}

func (s *CommonTestSuite) TestSweepsEndedInactiveRaffle() {
	stale := models.Raffle{
		Title:      "Never opened",
		Price:      10,
		TotalSlots: 5,
		StartDate:  time.Now().Add(-2 * time.Hour),
		EndDate:    time.Now().Add(-time.Hour),
		Status:     types.RAFFLE_INACTIVE,
	}
	s.Require().NoError(s.DB.Create(&stale).Error)

	// The whole window is in the past, so activation must not make
	// the raffle bookable even for one sweep interval.
	s.Sweeps.ActivateRaffles()

	var after models.Raffle
	s.Require().NoError(s.DB.First(&after, stale.ID).Error)
	s.Equal(types.RAFFLE_INACTIVE, after.Status)

	s.Sweeps.CompleteRaffles()

	s.Require().NoError(s.DB.First(&after, stale.ID).Error)
	s.Equal(types.RAFFLE_COMPLETED, after.Status)
}

func (s *CommonTestSuite) TestDrawWinnerRepairsOrphanedDraw() {
	raffle := s.seedRaffle("Half drawn", 10, 5, types.RAFFLE_ACTIVE)
	lucky := s.seedUser("orphan-win@example.com", 20)
	other := s.seedUser("orphan-loss@example.com", 20)
	_, err := s.Entries.Buy(lucky.ID, raffle.ID)
	s.Require().NoError(err)
	_, err = s.Entries.Buy(other.ID, raffle.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.DB.Model(&models.Raffle{}).Where("id = ?", raffle.ID).Update("status", types.RAFFLE_COMPLETED).Error)

	// Simulate a prior run that persisted the winner but crashed
	// before the rest of the bookkeeping.
	var luckyEntry models.Entry
	s.Require().NoError(s.DB.Where("raffle_id = ? AND user_id = ?", raffle.ID, lucky.ID).First(&luckyEntry).Error)
	s.Require().NoError(s.DB.Create(&models.RaffleWinner{
		RaffleID:  raffle.ID,
		UserID:    lucky.ID,
		EntryID:   luckyEntry.ID,
		AwardedAt: time.Now(),
	}).Error)

	s.Sweeps.DrawWinners()

	var after models.Raffle
	s.Require().NoError(s.DB.First(&after, raffle.ID).Error)
	s.True(after.HasWinnerAnnounced)
	s.Require().NotNil(after.WinnerUserID)
	s.Equal(lucky.ID, *after.WinnerUserID)

	var winEntry models.Entry
	s.Require().NoError(s.DB.First(&winEntry, luckyEntry.ID).Error)
	s.Equal(types.RESULT_WIN, winEntry.Result)

	var lossEntry models.Entry
	s.Require().NoError(s.DB.Where("raffle_id = ? AND user_id = ?", raffle.ID, other.ID).First(&lossEntry).Error)
	s.Equal(types.RESULT_LOSS, lossEntry.Result)

	var count int64
	s.Require().NoError(s.DB.Model(&models.RaffleWinner{}).Where("raffle_id = ?", raffle.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}
