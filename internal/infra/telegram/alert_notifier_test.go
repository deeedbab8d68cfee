package telegram

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/domain/shift"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestAlertNotifier_SendsSubjectAndSummary(t *testing.T) {
	client := &fakeClient{}
	n := NewAlertNotifier(client, -100200, testLogger())

	err := n.SendAlert(context.Background(), notification.Alert{
		Subject: "Alert: Found Checkout shift!",
		Summary: "Mon 3/17/2025  5:00 PM - 10:00 PM  Checkout",
		Body:    `{"ignored": true}`,
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	assert.Equal(t, int64(-100200), client.sent[0].chatID)
	assert.Equal(t, "Alert: Found Checkout shift!\n\nMon 3/17/2025  5:00 PM - 10:00 PM  Checkout", client.sent[0].text)
	assert.Equal(t, "telegram", notification.ChannelName(n))
}

func TestAlertNotifier_WrapsFailures(t *testing.T) {
	n := NewAlertNotifier(&fakeClient{err: errors.New("chat not found")}, 42, testLogger())

	err := n.SendAlert(context.Background(), notification.Alert{Subject: "s"})

	var de *notification.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "telegram", de.Channel)
	assert.Equal(t, "42", de.Address)
}

func TestAlertNotifier_TruncatesLongMessages(t *testing.T) {
	client := &fakeClient{}
	n := NewAlertNotifier(client, 1, testLogger())

	require.NoError(t, n.SendAlert(context.Background(), notification.Alert{
		Subject: "Alert",
		Summary: strings.Repeat("é", 10000),
	}))
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(client.sent[0].text))
}

func TestRenderSnapshot(t *testing.T) {
	assert.Equal(t, "No Checkout shifts open right now.", renderSnapshot("Checkout", shift.Catalog{}))

	catalog := shift.Catalog{Days: []shift.DayBlock{{
		Day:  "Mon",
		Date: "3/17/2025",
		Shifts: []shift.Record{{
			TimeText:    "5:00 PM - 10:00 PM",
			Description: "Checkout",
			Link:        "https://members.foodcoop.com/services/shift_claim/1001/",
		}},
	}}}
	out := renderSnapshot("Checkout", catalog)
	assert.True(t, strings.HasPrefix(out, "1 Checkout shift(s) open:"))
	assert.Contains(t, out, "Mon 3/17/2025  5:00 PM - 10:00 PM  Checkout")
	assert.Contains(t, out, "/services/shift_claim/1001/")
}

func TestHelpText(t *testing.T) {
	assert.Contains(t, helpText("Checkout"), "/shifts - list the Checkout shifts open right now")
}
