package shift

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound of a TimeOfDay.
const MinutesPerDay = 24 * 60

// TimeOfDay is a number of minutes since midnight.
type TimeOfDay int

// String renders the value as 24-hour HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseTimeOfDay converts "5:00 PM", "12:30 am" or "17:00" into minutes since
// midnight. Malformed input yields 0 together with a *NormalizationError so
// the caller can log it and carry on.
func ParseTimeOfDay(text string) (TimeOfDay, error) {
	s := strings.ToUpper(strings.TrimSpace(text))

	var meridiem string
	switch {
	case strings.HasSuffix(s, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(s, "PM"):
		meridiem = "PM"
	}
	if meridiem != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))
	}

	hourText, minuteText, ok := strings.Cut(s, ":")
	if !ok {
		return 0, &NormalizationError{Input: text, Reason: "missing ':' separator"}
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourText))
	if err != nil {
		return 0, &NormalizationError{Input: text, Reason: "hour is not a number"}
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteText))
	if err != nil {
		return 0, &NormalizationError{Input: text, Reason: "minute is not a number"}
	}

	switch {
	case meridiem == "PM" && hour != 12:
		hour += 12
	case meridiem == "AM" && hour == 12:
		hour = 0
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &NormalizationError{Input: text, Reason: "value out of range"}
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeRange splits a grid time label such as "5:00 PM - 10:00 PM" on
// its first '-' and normalizes both ends. Each end falls back to 0 on its
// own; the first normalization problem encountered is returned.
func ParseTimeRange(text string) (start, end TimeOfDay, err error) {
	startText, endText, ok := strings.Cut(text, "-")
	if !ok {
		return 0, 0, &NormalizationError{Input: text, Reason: "missing '-' between start and end"}
	}
	start, startErr := ParseTimeOfDay(startText)
	end, endErr := ParseTimeOfDay(endText)
	if startErr != nil {
		return start, end, startErr
	}
	return start, end, endErr
}
