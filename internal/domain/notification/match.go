// internal/domain/notification/match.go
package notification

import (
	"coop_shift_notifier/internal/domain/preference"
	"coop_shift_notifier/internal/domain/shift"
)

// Match pairs a discovered shift with the preference that selected it.
// The same shift appears once per preference it satisfies.
type Match struct {
	OwnerID    int64                  `json:"owner_id"`
	Day        string                 `json:"day"`
	Date       string                 `json:"date"`
	Shift      shift.Record           `json:"shift"`
	Preference *preference.Preference `json:"matched_preference"`
}

// Recipient identifies who a batch of matches is delivered to.
type Recipient struct {
	OwnerID int64
	Name    string
	Address string
}

// Alert is a single-condition notification raised by the monitor mode.
type Alert struct {
	Subject string
	Summary string // Short human-readable text for chat channels
	Body    string // Full detail for email
}
