package common

import (
	"log"
	"math/rand/v2"
	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sweeps are the periodic jobs that move raffles through their
// lifecycle and draw winners. Every status transition is guarded on
// the previous status so overlapping runs cannot double-apply.
type Sweeps struct {
	inv      *Inventory
	notifier Notifier
}

func NewSweeps(inv *Inventory, notifier Notifier) *Sweeps {
	if notifier == nil {
		notifier = NoopNotifier()
	}
	return &Sweeps{inv: inv, notifier: notifier}
}

// ActivateRaffles opens INACTIVE raffles whose start date has passed
// and whose end date has not. Raffles that sat out their whole window
// are left for the completion sweep.
func (s *Sweeps) ActivateRaffles() {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.
			Model(&models.Raffle{}).
			Where("status = ? AND is_deleted = ? AND start_date <= ? AND end_date > ?", types.RAFFLE_INACTIVE, false, now, now).
			Update("status", types.RAFFLE_ACTIVE)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("Activated %d raffles\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error activating raffles: %s\n", err.Error())
	}
}

// CompleteRaffles closes raffles past their end date, covering both
// ACTIVE ones and INACTIVE ones that never opened. The draw sweep
// picks them up from there.
func (s *Sweeps) CompleteRaffles() {
	conn := db.GetDb()
	err := conn.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Raffle{}).
			Where("status IN ? AND is_deleted = ? AND end_date <= ?", []types.RaffleStatus{types.RAFFLE_ACTIVE, types.RAFFLE_INACTIVE}, false, time.Now()).
			Update("status", types.RAFFLE_COMPLETED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("Completed %d raffles\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error completing raffles: %s\n", err.Error())
	}
}

// DrawWinners picks one winner per completed raffle that has none yet.
// Raffles that closed with zero entrants are marked EXPIRED instead.
func (s *Sweeps) DrawWinners() {
	conn := db.GetDb()
	var raffles []models.Raffle
	err := conn.
		Where("status = ? AND is_deleted = ? AND has_winner_announced = ?", types.RAFFLE_COMPLETED, false, false).
		Preload("Rewards").
		Find(&raffles).
		Error
	if err != nil {
		log.Printf("Error retrieving completed raffles: %s\n", err.Error())
		return
	}
	for _, raffle := range raffles {
		if err := s.drawWinner(&raffle); err != nil {
			log.Printf("Error drawing winner for raffle %d: %s\n", raffle.ID, err.Error())
		}
	}
}

func (s *Sweeps) drawWinner(raffle *models.Raffle) error {
	conn := db.GetDb()
	var announce []string
	var winnerEmail string
	var rewardName string
	err := conn.Transaction(func(tx *gorm.DB) error {
		var persisted models.RaffleWinner
		err := tx.
			Where("raffle_id = ?", raffle.ID).
			First(&persisted).
			Error
		if err == nil {
			// Drawn in a previous run that failed before flagging the
			// raffle. Replay the bookkeeping from the persisted row.
			return s.repairDraw(tx, raffle.ID, &persisted)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		var entries []models.Entry
		err = tx.
			Where("raffle_id = ? AND status = ?", raffle.ID, types.ENTRY_ACTIVE).
			Preload("User").
			Find(&entries).
			Error
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			res := tx.
				Model(&models.Raffle{}).
				Where("id = ? AND status = ?", raffle.ID, types.RAFFLE_COMPLETED).
				Updates(map[string]any{
					"status":               types.RAFFLE_EXPIRED,
					"has_winner_announced": true,
				})
			if res.Error != nil {
				return res.Error
			}
			log.Printf("Raffle %d closed with no entrants, marked expired\n", raffle.ID)
			return nil
		}
		picked := entries[rand.IntN(len(entries))]

		rewardType := types.REWARD_DIGITAL
		status := types.FULFILLMENT_GRANTED
		var rewardID *uint
		if len(raffle.Rewards) > 0 {
			reward := raffle.Rewards[0]
			rewardID = &reward.ID
			rewardType = reward.Type
			rewardName = reward.Name
		}
		if rewardType == types.REWARD_PHYSICAL {
			status = types.FULFILLMENT_PENDING
		}
		winner := models.RaffleWinner{
			RaffleID:   raffle.ID,
			UserID:     picked.UserID,
			EntryID:    picked.ID,
			RewardID:   rewardID,
			RewardType: rewardType,
			Status:     status,
			AwardedAt:  time.Now(),
		}
		res := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&winner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.
			Model(&models.Entry{}).
			Where("id = ?", picked.ID).
			Update("result", types.RESULT_WIN).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Entry{}).
			Where("raffle_id = ? AND id <> ? AND result = ?", raffle.ID, picked.ID, types.RESULT_TBD).
			Update("result", types.RESULT_LOSS).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Raffle{}).
			Where("id = ?", raffle.ID).
			Updates(map[string]any{
				"has_winner_announced": true,
				"winner_user_id":       picked.UserID,
			}).
			Error; err != nil {
			return err
		}
		// Consolation points for everyone who did not win.
		for _, entry := range entries {
			if entry.ID == picked.ID {
				continue
			}
			points := consolationPoints(raffle)
			if points > 0 {
				if err := CreditPoints(tx, entry.UserID, points); err != nil {
					return err
				}
			}
			if entry.User.Email != "" {
				announce = append(announce, entry.User.Email)
			}
		}
		winnerEmail = picked.User.Email
		return nil
	})
	if err != nil {
		return err
	}
	go func() {
		if winnerEmail != "" {
			if err := s.notifier.NotifyWinner(winnerEmail, raffle.Title, rewardName); err != nil {
				log.Printf("Error notifying winner for raffle %d: %s\n", raffle.ID, err.Error())
			}
		}
		if len(announce) > 0 {
			if err := s.notifier.AnnounceResults(announce, raffle.Title); err != nil {
				log.Printf("Error announcing results for raffle %d: %s\n", raffle.ID, err.Error())
			}
		}
	}()
	return nil
}

// repairDraw finishes a draw whose winner row committed without the
// surrounding bookkeeping. Every update is stated absolutely so the
// repair is safe to run more than once.
func (s *Sweeps) repairDraw(tx *gorm.DB, raffleID uint, winner *models.RaffleWinner) error {
	if err := tx.
		Model(&models.Entry{}).
		Where("id = ?", winner.EntryID).
		Update("result", types.RESULT_WIN).
		Error; err != nil {
		return err
	}
	if err := tx.
		Model(&models.Entry{}).
		Where("raffle_id = ? AND id <> ? AND result = ?", raffleID, winner.EntryID, types.RESULT_TBD).
		Update("result", types.RESULT_LOSS).
		Error; err != nil {
		return err
	}
	return tx.
		Model(&models.Raffle{}).
		Where("id = ?", raffleID).
		Updates(map[string]any{
			"has_winner_announced": true,
			"winner_user_id":       winner.UserID,
		}).
		Error
}

func consolationPoints(raffle *models.Raffle) int64 {
	for _, reward := range raffle.Rewards {
		if reward.ConsolationPoints > 0 {
			return reward.ConsolationPoints
		}
	}
	return 0
}
