package preference

import (
	"strings"
	"time"

	"coop_shift_notifier/internal/domain/shift"
)

// Preference is a subscriber-defined filter over the shift catalog.
// Corresponds to a row of 'shift_preferences' joined with its owner in 'users'.
type Preference struct {
	ID              int64           `json:"id"`
	OwnerID         int64           `json:"owner_id"`
	OwnerName       string          `json:"owner_name"`
	ShiftType       string          `json:"shift_type"` // Keyword matched case-insensitively against shift descriptions
	Days            []string        `json:"days"`       // e.g. ["Monday", "Wed"]
	Start           shift.TimeOfDay `json:"start_minute"`
	End             shift.TimeOfDay `json:"end_minute"`
	DeliveryAddress string          `json:"delivery_address"`
	Active          bool            `json:"active"`
	AlreadyNotified bool            `json:"already_notified"` // Mirrors shift_preferences.already_emailed
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

// IncludesDay reports whether dayLabel ("Mon", "monday", "MON") is one of the
// preference's days. Labels are compared on their first three letters.
func (p *Preference) IncludesDay(dayLabel string) bool {
	want := weekdayKey(dayLabel)
	if want == "" {
		return false
	}
	for _, d := range p.Days {
		if weekdayKey(d) == want {
			return true
		}
	}
	return false
}

// MatchesDescription reports whether the shift description contains the
// preference keyword, ignoring case.
func (p *Preference) MatchesDescription(description string) bool {
	return strings.Contains(strings.ToLower(description), strings.ToLower(p.ShiftType))
}

func weekdayKey(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if len(l) < 3 {
		return ""
	}
	return l[:3]
}
