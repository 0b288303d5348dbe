package common

// EventPublisher fans slot counter changes out to connected clients.
// The production implementation pushes over Pusher channels; tests
// swap in a recorder.
type EventPublisher interface {
	PublishSlotUpdate(raffleID, bookedSlots, totalSlots uint)
}

// Notifier delivers lifecycle emails. Implemented over SMTP in
// lib/mailer.
type Notifier interface {
	AnnounceResults(to []string, raffleTitle string) error
	NotifyWinner(to string, raffleTitle string, rewardName string) error
	NotifyRewardStatus(to string, raffleTitle string, status string, trackingLink string) error
}

type noopPublisher struct{}

func (noopPublisher) PublishSlotUpdate(raffleID, bookedSlots, totalSlots uint) {}

// NoopPublisher is used where realtime updates are not wired, such as
// one-off maintenance commands.
func NoopPublisher() EventPublisher {
	return noopPublisher{}
}

type noopNotifier struct{}

func (noopNotifier) AnnounceResults(to []string, raffleTitle string) error { return nil }
func (noopNotifier) NotifyWinner(to string, raffleTitle string, rewardName string) error {
	return nil
}
func (noopNotifier) NotifyRewardStatus(to string, raffleTitle string, status string, trackingLink string) error {
	return nil
}

func NoopNotifier() Notifier {
	return noopNotifier{}
}
