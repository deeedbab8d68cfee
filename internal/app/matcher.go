package app

import (
	"coop_shift_notifier/internal/domain/notification"
	"coop_shift_notifier/internal/domain/preference"
	"coop_shift_notifier/internal/domain/shift"
)

// MatchPreferences cross-references every active preference with the
// catalog. A shift matches when its day is one of the preference's days, its
// description contains the preference keyword and its time range overlaps
// the preference window. Results are grouped by owner in catalog order; an
// owner without matches has no entry at all.
func MatchPreferences(catalog shift.Catalog, prefs []*preference.Preference) map[int64][]notification.Match {
	result := make(map[int64][]notification.Match)
	for _, p := range prefs {
		if p == nil || !p.Active {
			continue
		}
		for _, day := range catalog.Days {
			if !p.IncludesDay(day.Day) {
				continue
			}
			for _, rec := range day.Shifts {
				if !p.MatchesDescription(rec.Description) {
					continue
				}
				if !shift.Overlaps(rec.Start, rec.End, p.Start, p.End) {
					continue
				}
				result[p.OwnerID] = append(result[p.OwnerID], notification.Match{
					OwnerID:    p.OwnerID,
					Day:        day.Day,
					Date:       day.Date,
					Shift:      rec,
					Preference: p,
				})
			}
		}
	}
	return result
}
