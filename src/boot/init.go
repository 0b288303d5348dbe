package boot

import (
	"log"
	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/lib"
	"rbs/src/models"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Raffle{},
		&models.Reward{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.Entry{},
		&models.Transaction{},
		&models.RaffleWinner{},
		&models.PromoCode{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

type cronjob struct {
	name     string
	duration time.Duration
	handler  func()
}

// sweepJobs lists the periodic sweeps. The raffle lifecycle and cart
// expiry jobs all run on a one minute cadence so abandoned slots come
// back promptly.
func sweepJobs(sweeps *common.Sweeps, carts *common.CartService) []cronjob {
	return []cronjob{
		{"raffles-activate", 1 * time.Minute, sweeps.ActivateRaffles},
		{"raffles-complete", 1 * time.Minute, sweeps.CompleteRaffles},
		{"raffles-draw", 1 * time.Minute, sweeps.DrawWinners},
		{"carts-expire", 1 * time.Minute, carts.ExpireCarts},
		{"promos-expire", 24 * time.Hour, common.ExpirePromos},
	}
}

// InitScheduler registers the periodic sweeps: raffle activation and
// completion, winner draws, cart expiry and promo expiry.
func InitScheduler(sweeps *common.Sweeps, carts *common.CartService) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	for _, job := range sweepJobs(sweeps, carts) {
		if _, err := lib.CreateCronJob(job.name, job.duration, job.handler); err != nil {
			log.Printf("Error registering job %s: %s\n", job.name, err.Error())
		}
	}
	log.Printf("Jobs in queue: %d\n", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
