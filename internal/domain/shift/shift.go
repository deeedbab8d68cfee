// internal/domain/shift/shift.go
package shift

import "time"

// Availability says how sure we are about a day's shift list.
type Availability string

const (
	AvailabilityListed  Availability = "LISTED"  // At least one shift entry was parsed
	AvailabilityNone    Availability = "NONE"    // The site explicitly said there are no shifts
	AvailabilityUnknown Availability = "UNKNOWN" // Neither entries nor the "no shifts" marker were found
)

// Record is a single bookable slot as it appeared on the grid.
type Record struct {
	TimeText    string    `json:"time"`
	Start       TimeOfDay `json:"start_minute"`
	End         TimeOfDay `json:"end_minute"`
	Description string    `json:"description"`
	Link        string    `json:"href"`
}

// DayBlock is one grid column: a calendar day and its shifts in page order.
type DayBlock struct {
	Day          string       `json:"day"`  // e.g. "Mon"
	Date         string       `json:"date"` // e.g. "3/17/2025"
	Availability Availability `json:"availability"`
	Shifts       []Record     `json:"shifts"`
}

// HasShifts reports whether the block lists at least one shift.
func (d DayBlock) HasShifts() bool {
	return len(d.Shifts) > 0
}

// Catalog is everything discovered in one fetch cycle. It is never merged
// with a previous cycle's catalog.
type Catalog struct {
	FetchedAt   time.Time  `json:"fetched_at"`
	CommitteeID int        `json:"committee_id"`
	Days        []DayBlock `json:"days"`
}

// HasShifts reports whether any day in the catalog lists a shift.
func (c Catalog) HasShifts() bool {
	for _, d := range c.Days {
		if d.HasShifts() {
			return true
		}
	}
	return false
}

// ShiftCount returns the total number of shift records across all days.
func (c Catalog) ShiftCount() int {
	n := 0
	for _, d := range c.Days {
		n += len(d.Shifts)
	}
	return n
}

// UnknownDays returns the number of days whose content could not be classified.
func (c Catalog) UnknownDays() int {
	n := 0
	for _, d := range c.Days {
		if d.Availability == AvailabilityUnknown {
			n++
		}
	}
	return n
}
