package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/domain/preference"
	"coop_shift_notifier/internal/domain/shift"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func rendered(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func checkoutMatch() notification.Match {
	return notification.Match{
		OwnerID: 3,
		Day:     "Mon",
		Date:    "3/17/2025",
		Shift: shift.Record{
			TimeText:    "5:00 PM - 10:00 PM",
			Description: "Checkout <b>",
			Link:        "https://members.foodcoop.com/services/shift_claim/1001/",
		},
		Preference: &preference.Preference{ID: 7, ShiftType: "Checkout", Days: []string{"Monday", "Wed"}},
	}
}

func TestNotifier_DeliverMatches(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "bot@coop.test", "ops@coop.test", testLogger())

	err := n.DeliverMatches(context.Background(),
		notification.Recipient{OwnerID: 3, Name: "Rosa", Address: "rosa@example.com"},
		[]notification.Match{checkoutMatch()})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, []string{"bot@coop.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{`"Rosa" <rosa@example.com>`}, m.GetHeader("To"))
	assert.Equal(t, []string{"Food Coop Shifts Available - 1 matches found!"}, m.GetHeader("Subject"))

	out := rendered(t, m)
	assert.Contains(t, out, "Hi Rosa!")
	assert.Contains(t, out, "Time: 5:00 PM - 10:00 PM")
	assert.Contains(t, out, "Matched preference: Checkout on Monday, Wed")
	assert.Contains(t, out, "Checkout &lt;b&gt;", "html part escapes shift text")
}

func TestNotifier_DeliverMatches_Failure(t *testing.T) {
	n := NewNotifier(&fakeSender{err: errors.New("535 auth failed")}, "bot@coop.test", "", testLogger())

	err := n.DeliverMatches(context.Background(),
		notification.Recipient{Address: "rosa@example.com"},
		[]notification.Match{checkoutMatch()})

	var de *notification.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "email", de.Channel)
	assert.Equal(t, "rosa@example.com", de.Address)
}

func TestNotifier_DeliverMatches_NothingToSend(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "bot@coop.test", "", testLogger())

	require.NoError(t, n.DeliverMatches(context.Background(), notification.Recipient{Address: "x@example.com"}, nil))
	assert.Empty(t, sender.sent)
}

func TestNotifier_SendAlert(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "bot@coop.test", "ops@coop.test", testLogger())

	err := n.SendAlert(context.Background(), notification.Alert{
		Subject: "Alert: Found Checkout shift!",
		Summary: "ignored",
		Body:    `[{"day": "Mon"}]`,
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ops@coop.test"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Alert: Found Checkout shift!"}, sender.sent[0].GetHeader("Subject"))
	assert.Equal(t, "email", notification.ChannelName(n))
}

func TestNotifier_CancelledContext(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, "bot@coop.test", "ops@coop.test", testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.SendAlert(ctx, notification.Alert{Subject: "s"}), context.Canceled)
	assert.Empty(t, sender.sent)
}
