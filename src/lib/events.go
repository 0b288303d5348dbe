package lib

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RealtimePublisher pushes slot counter updates to the "raffles"
// channel and keeps a short-lived snapshot in redis for list endpoints.
type RealtimePublisher struct{}

func NewRealtimePublisher() *RealtimePublisher {
	return &RealtimePublisher{}
}

func (p *RealtimePublisher) PublishSlotUpdate(raffleID, bookedSlots, totalSlots uint) {
	payload := map[string]any{
		"raffle_id":    raffleID,
		"booked_slots": bookedSlots,
		"total_slots":  totalSlots,
	}
	pc := GetPusherClient()
	if err := pc.Trigger("raffles", "raffle:slots", payload); err != nil {
		log.Printf("Error publishing slot update for raffle %d: %s\n", raffleID, err.Error())
	}
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	key := fmt.Sprintf("raffle:%d:slots", raffleID)
	if err := rd.HSet(context.Background(), key, "booked", bookedSlots, "total", totalSlots).Err(); err != nil {
		log.Printf("Error caching slot snapshot for raffle %d: %s\n", raffleID, err.Error())
		return
	}
	rd.Expire(context.Background(), key, 30*time.Minute)
}
