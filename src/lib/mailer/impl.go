package mailer

import (
	"fmt"
	"os"
	"rbs/src/lib"
)

// SMTPNotifier sends lifecycle emails through the configured SMTP
// relay.
type SMTPNotifier struct{}

func NewSMTPNotifier() *SMTPNotifier {
	return &SMTPNotifier{}
}

func sender() (string, string) {
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "noreply@example.com"
	}
	name := os.Getenv("EMAIL_FROM_NAME")
	if name == "" {
		name = "Raffles"
	}
	return from, name
}

func (n *SMTPNotifier) AnnounceResults(to []string, raffleTitle string) error {
	from, fromName := sender()
	body := fmt.Sprintf(`<p>Hi,</p>
<p>The raffle <b>%s</b> has closed and the winner has been drawn. Sign in to see your result.</p>
<p>Good luck next time if it wasn't you!</p>`, raffleTitle)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		Bcc:      to,
		To:       []string{from},
		Subject:  fmt.Sprintf("Results are in for %s", raffleTitle),
		Body:     body,
		Html:     true,
	})
}

func (n *SMTPNotifier) NotifyWinner(to string, raffleTitle string, rewardName string) error {
	from, fromName := sender()
	body := fmt.Sprintf(`<p>Congratulations!</p>
<p>You won <b>%s</b> in the raffle <b>%s</b>.</p>
<p>Check your account for reward details.</p>`, rewardName, raffleTitle)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("You won %s!", raffleTitle),
		Body:     body,
		Html:     true,
	})
}

func (n *SMTPNotifier) NotifyRewardStatus(to string, raffleTitle string, status string, trackingLink string) error {
	from, fromName := sender()
	tracking := ""
	if trackingLink != "" {
		tracking = fmt.Sprintf(`<p>Track your shipment here: <a href="%s">%s</a></p>`, trackingLink, trackingLink)
	}
	body := fmt.Sprintf(`<p>Hi,</p>
<p>Your reward from <b>%s</b> is now <b>%s</b>.</p>
%s`, raffleTitle, status, tracking)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("Reward update for %s", raffleTitle),
		Body:     body,
		Html:     true,
	})
}
