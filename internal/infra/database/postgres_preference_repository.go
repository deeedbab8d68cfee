package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coop_shift_notifier/internal/domain/preference"
	"coop_shift_notifier/internal/domain/shift"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ErrPreferenceNotFound is returned when none of the given preference IDs exist.
var ErrPreferenceNotFound = fmt.Errorf("shift preference not found")

// PostgresPreferenceRepository reads subscriber preferences from the
// 'users' and 'shift_preferences' tables. It never creates or deletes rows;
// the only write is the already_emailed flag.
type PostgresPreferenceRepository struct {
	db     *sql.DB
	logger *logrus.Entry
}

func NewPostgresPreferenceRepository(db *sql.DB, logger *logrus.Entry) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db, logger: logger}
}

// The delivery address falls back from the preference's notification email
// to the owner's notification email and then the login email.
const listActivePreferencesQuery = `
SELECT sp.id, u.id, u.name, sp.shift_type, sp.days,
       sp.time_range_start, sp.time_range_end,
       COALESCE(NULLIF(sp.notification_email, ''), NULLIF(u.notification_email, ''), u.email, ''),
       COALESCE(sp.already_emailed, FALSE),
       sp.created_at, sp.updated_at
FROM shift_preferences sp
JOIN users u ON u.id = sp.user_id
WHERE sp.is_active = TRUE
  AND COALESCE(u.is_active, TRUE) = TRUE
  AND u.deleted_at IS NULL
ORDER BY u.id, sp.id`

// preferenceRow is the raw shape of one listActivePreferencesQuery row.
type preferenceRow struct {
	ID              int64
	OwnerID         int64
	OwnerName       string
	ShiftType       string
	Days            []string
	StartText       string
	EndText         string
	Address         string
	AlreadyNotified bool
	CreatedAt       sql.NullTime
	UpdatedAt       sql.NullTime
}

// toDomain normalizes the stored time strings. A malformed time is logged and
// becomes midnight rather than dropping the preference.
func (r preferenceRow) toDomain(logger *logrus.Entry) *preference.Preference {
	p := &preference.Preference{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		OwnerName:       r.OwnerName,
		ShiftType:       r.ShiftType,
		Days:            r.Days,
		DeliveryAddress: r.Address,
		Active:          true,
		AlreadyNotified: r.AlreadyNotified,
		CreatedAt:       nullTime(r.CreatedAt),
		UpdatedAt:       nullTime(r.UpdatedAt),
	}

	var err error
	if p.Start, err = shift.ParseTimeOfDay(r.StartText); err != nil {
		logger.WithError(err).WithField("preference_id", r.ID).Warn("Invalid preference start time, using 00:00")
	}
	if p.End, err = shift.ParseTimeOfDay(r.EndText); err != nil {
		logger.WithError(err).WithField("preference_id", r.ID).Warn("Invalid preference end time, using 00:00")
	}
	return p
}

func nullTime(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

func (r *PostgresPreferenceRepository) ListActive(ctx context.Context) ([]*preference.Preference, error) {
	rows, err := r.db.QueryContext(ctx, listActivePreferencesQuery)
	if err != nil {
		return nil, fmt.Errorf("error listing active preferences: %w", err)
	}
	defer rows.Close()

	prefs := make([]*preference.Preference, 0)
	for rows.Next() {
		var row preferenceRow
		if err := rows.Scan(
			&row.ID, &row.OwnerID, &row.OwnerName, &row.ShiftType, pq.Array(&row.Days),
			&row.StartText, &row.EndText, &row.Address, &row.AlreadyNotified,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning active preference: %w", err)
		}
		prefs = append(prefs, row.toDomain(r.logger))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active preferences: %w", err)
	}
	return prefs, nil
}

func (r *PostgresPreferenceRepository) SetNotified(ctx context.Context, ids []int64, notified bool) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE shift_preferences
               SET already_emailed = $1, updated_at = NOW()
               WHERE id = ANY($2)`

	res, err := r.db.ExecContext(ctx, query, notified, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating already_emailed for preferences %v: %w", ids, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting affected rows for preference update: %w", err)
	}
	if affected == 0 {
		return ErrPreferenceNotFound
	}
	return nil
}
