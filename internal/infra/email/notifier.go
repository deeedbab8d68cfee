package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"coop_shift_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender is the SMTP transport; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig holds the SMTP settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewDialer builds the gomail dialer; STARTTLS is negotiated automatically.
func NewDialer(cfg SMTPConfig) *gomail.Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

// Notifier delivers subscriber matches and monitor alerts by email.
type Notifier struct {
	sender     Sender
	from       string
	alertEmail string
	logger     *logrus.Entry
}

func NewNotifier(sender Sender, from, alertEmail string, logger *logrus.Entry) *Notifier {
	return &Notifier{sender: sender, from: from, alertEmail: alertEmail, logger: logger}
}

func (n *Notifier) Channel() string { return "email" }

type matchesView struct {
	Name    string
	Count   int
	Matches []matchView
}

type matchView struct {
	Day         string
	Date        string
	Time        string
	Description string
	Link        string
	ShiftType   string
	Days        string
}

func newMatchesView(to notification.Recipient, matches []notification.Match) matchesView {
	v := matchesView{Name: to.Name, Count: len(matches)}
	if v.Name == "" {
		v.Name = "there"
	}
	for _, m := range matches {
		mv := matchView{
			Day:         m.Day,
			Date:        m.Date,
			Time:        m.Shift.TimeText,
			Description: m.Shift.Description,
			Link:        m.Shift.Link,
		}
		if m.Preference != nil {
			mv.ShiftType = m.Preference.ShiftType
			mv.Days = strings.Join(m.Preference.Days, ", ")
		}
		v.Matches = append(v.Matches, mv)
	}
	return v
}

// MatchesSubject is the subject line of a subscriber notification.
func MatchesSubject(count int) string {
	return fmt.Sprintf("Food Coop Shifts Available - %d matches found!", count)
}

// DeliverMatches sends one message listing every match to the recipient.
func (n *Notifier) DeliverMatches(ctx context.Context, to notification.Recipient, matches []notification.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	view := newMatchesView(to, matches)
	var text, html bytes.Buffer
	if err := matchesTextTemplate.Execute(&text, view); err != nil {
		return fmt.Errorf("failed to render text email: %w", err)
	}
	if err := matchesHTMLTemplate.Execute(&html, view); err != nil {
		return fmt.Errorf("failed to render html email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetAddressHeader("To", to.Address, to.Name)
	m.SetHeader("Subject", MatchesSubject(len(matches)))
	m.SetBody("text/plain", text.String())
	m.AddAlternative("text/html", html.String())

	if err := n.sender.DialAndSend(m); err != nil {
		return &notification.DeliveryError{Channel: n.Channel(), Address: to.Address, Err: err}
	}
	n.logger.WithFields(logrus.Fields{"owner_id": to.OwnerID, "matches": len(matches)}).Info("Email sent")
	return nil
}

// SendAlert emails a monitor alert to the configured alert address.
func (n *Notifier) SendAlert(ctx context.Context, alert notification.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.alertEmail)
	m.SetHeader("Subject", alert.Subject)
	m.SetBody("text/plain", alert.Body)

	if err := n.sender.DialAndSend(m); err != nil {
		return &notification.DeliveryError{Channel: n.Channel(), Address: n.alertEmail, Err: err}
	}
	n.logger.WithField("subject", alert.Subject).Info("Alert email sent")
	return nil
}
