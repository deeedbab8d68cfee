// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coop_shift_notifier/internal/domain/shift"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// SnapshotFunc fetches the current catalog for the monitored shift type.
type SnapshotFunc func(ctx context.Context) (shift.Catalog, error)

const snapshotTimeout = 2 * time.Minute

// RegisterBotCommands registers the operator commands. Only operatorChatID is
// answered; everyone else gets a refusal.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	operatorChatID int64,
	shiftName string,
	snapshot SnapshotFunc,
	baseLogger *logrus.Entry,
) {
	authorized := func(c telebot.Context, command string) (*logrus.Entry, bool) {
		logCtx := baseLogger.WithFields(logrus.Fields{"command": command, "chat_id": c.Chat().ID})
		logCtx.Info("Command received")
		if c.Chat().ID != operatorChatID {
			logCtx.Warn("Unauthorized access attempt")
			return logCtx, false
		}
		return logCtx, true
	}

	b.Handle("/start", func(c telebot.Context) error {
		if _, ok := authorized(c, "/start"); !ok {
			return c.Send("This bot only answers its operator.")
		}
		return c.Send(fmt.Sprintf("Watching for %s shifts. I will message you when one opens up. Use /help for commands.", shiftName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		if _, ok := authorized(c, "/help"); !ok {
			return c.Send("This bot only answers its operator.")
		}
		return c.Send(helpText(shiftName))
	})

	b.Handle("/shifts", func(c telebot.Context) error {
		logCtx, ok := authorized(c, "/shifts")
		if !ok {
			return c.Send("This bot only answers its operator.")
		}
		snapCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
		defer cancel()

		catalog, err := snapshot(snapCtx)
		if err != nil {
			logCtx.WithError(err).Error("Snapshot for /shifts failed")
			return c.Send("Could not reach the coop site right now. Please try again later.")
		}
		return c.Send(renderSnapshot(shiftName, catalog), &telebot.SendOptions{DisableWebPagePreview: true})
	})
}

func helpText(shiftName string) string {
	var sb strings.Builder
	sb.WriteString("Available commands:\n\n")
	fmt.Fprintf(&sb, "/shifts - list the %s shifts open right now\n", shiftName)
	sb.WriteString("/help - show this message")
	return sb.String()
}

// renderSnapshot formats the open shifts, one line per shift, capped to fit
// in a single message.
func renderSnapshot(shiftName string, catalog shift.Catalog) string {
	if !catalog.HasShifts() {
		return fmt.Sprintf("No %s shifts open right now.", shiftName)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %s shift(s) open:\n", catalog.ShiftCount(), shiftName)
	for _, day := range catalog.Days {
		for _, rec := range day.Shifts {
			fmt.Fprintf(&sb, "\n%s %s  %s  %s\n%s\n", day.Day, day.Date, rec.TimeText, rec.Description, rec.Link)
		}
	}
	return truncate(sb.String(), maxMessageRunes)
}
