package preference

import "context"

// Source is the read side of the preference store plus the already-notified
// flag the multi-user cycle maintains.
type Source interface {
	// ListActive returns every active preference of every active, non-deleted
	// owner, with Start and End already normalized.
	ListActive(ctx context.Context) ([]*Preference, error)
	// SetNotified sets the already-notified flag on the given preferences.
	SetNotified(ctx context.Context, preferenceIDs []int64, notified bool) error
}
