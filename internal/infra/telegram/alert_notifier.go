package telegram

import (
	"context"
	"strconv"

	"coop_shift_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Telegram rejects messages over 4096 characters.
const maxMessageRunes = 4000

// AlertNotifier sends monitor alerts to one operator chat.
type AlertNotifier struct {
	client Client
	chatID int64
	logger *logrus.Entry
}

func NewAlertNotifier(client Client, chatID int64, logger *logrus.Entry) *AlertNotifier {
	return &AlertNotifier{client: client, chatID: chatID, logger: logger}
}

func (n *AlertNotifier) Channel() string { return "telegram" }

func (n *AlertNotifier) SendAlert(ctx context.Context, alert notification.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := truncate(alert.Subject+"\n\n"+alert.Summary, maxMessageRunes)
	err := n.client.SendMessage(n.chatID, text, &telebot.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return &notification.DeliveryError{Channel: n.Channel(), Address: strconv.FormatInt(n.chatID, 10), Err: err}
	}
	n.logger.WithField("chat_id", n.chatID).Info("Alert sent to Telegram")
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
