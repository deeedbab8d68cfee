package app

import (
	"context"
	"io"
	"sync"

	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/domain/preference"
	"coop_shift_notifier/internal/domain/shift"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeCatalogs returns queued catalogs (or errors) one per call.
type fakeCatalogs struct {
	catalogs []shift.Catalog
	errs     []error
	calls    int
}

func (f *fakeCatalogs) FetchCatalog(_ context.Context, _ int) (shift.Catalog, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return shift.Catalog{}, f.errs[i]
	}
	if i < len(f.catalogs) {
		return f.catalogs[i], nil
	}
	return f.catalogs[len(f.catalogs)-1], nil
}

type fakeAlertSink struct {
	alerts []notification.Alert
	err    error
}

func (f *fakeAlertSink) SendAlert(_ context.Context, a notification.Alert) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeAlertSink) Channel() string { return "fake" }

type delivery struct {
	to      notification.Recipient
	matches []notification.Match
}

type fakeMatchSink struct {
	deliveries []delivery
	failFor    map[string]error
}

func (f *fakeMatchSink) DeliverMatches(_ context.Context, to notification.Recipient, matches []notification.Match) error {
	if err := f.failFor[to.Address]; err != nil {
		return err
	}
	f.deliveries = append(f.deliveries, delivery{to: to, matches: matches})
	return nil
}

// fakePreferenceSource keeps preferences in memory and applies SetNotified to
// them, like the real store would between cycles.
type fakePreferenceSource struct {
	mu      sync.Mutex
	prefs   []*preference.Preference
	listErr error
}

func (f *fakePreferenceSource) ListActive(_ context.Context) ([]*preference.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*preference.Preference, 0, len(f.prefs))
	for _, p := range f.prefs {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePreferenceSource) SetNotified(_ context.Context, ids []int64, notified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		for _, p := range f.prefs {
			if p.ID == id {
				p.AlreadyNotified = notified
			}
		}
	}
	return nil
}

func (f *fakePreferenceSource) notified(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prefs {
		if p.ID == id {
			return p.AlreadyNotified
		}
	}
	return false
}

func mondayCheckoutCatalog() shift.Catalog {
	return shift.Catalog{Days: []shift.DayBlock{{
		Day:          "Mon",
		Date:         "3/17/2025",
		Availability: shift.AvailabilityListed,
		Shifts: []shift.Record{{
			TimeText:    "5:00 PM - 10:00 PM",
			Start:       1020,
			End:         1320,
			Description: "Checkout duty",
			Link:        "https://members.foodcoop.com/services/shift_claim/1/",
		}},
	}}}
}

func emptyCatalog() shift.Catalog {
	return shift.Catalog{Days: []shift.DayBlock{{
		Day:          "Mon",
		Date:         "3/17/2025",
		Availability: shift.AvailabilityNone,
		Shifts:       []shift.Record{},
	}}}
}
