package repository

import (
	"context"
	"fmt"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type ScheduleRepository struct {
	DB *db.Postgres
}

type ScheduleShiftInput struct {
	UserID   int64
	UserName string
	Date     time.Time
	Label    string
	Start    int // minutes from midnight
	End      int
}

// PublishWeek replaces the published schedule for [weekStart, weekStart+7)
// atomically: existing rows in the window are dropped and the new rows
// inserted in one transaction.
func (r ScheduleRepository) PublishWeek(ctx context.Context, weekStart time.Time, shifts []ScheduleShiftInput) error {
	weekEnd := weekStart.AddDate(0, 0, 7)
	return pgx.BeginFunc(ctx, r.DB.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM schedule_shifts
			WHERE shift_date >= $1 AND shift_date < $2
		`, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02")); err != nil {
			return fmt.Errorf("clear week: %w", err)
		}
		for _, s := range shifts {
			if _, err := tx.Exec(ctx, `
				INSERT INTO schedule_shifts (user_id, user_name, shift_date, label, start_minute, end_minute, created_at)
				VALUES ($1,$2,$3,$4,$5,$6, now())
			`, s.UserID, s.UserName, s.Date.Format("2006-01-02"), s.Label, s.Start, s.End); err != nil {
				return fmt.Errorf("insert shift: %w", err)
			}
		}
		return nil
	})
}

// ListRange returns published shifts with shift_date in [from, to].
func (r ScheduleRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.ScheduleShift, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, user_name, shift_date, label, start_minute, end_minute
		FROM schedule_shifts
		WHERE shift_date >= $1 AND shift_date <= $2
		ORDER BY shift_date ASC, start_minute ASC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.ScheduleShift
	for rows.Next() {
		var s domain.ScheduleShift
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserName, &s.Date, &s.Label, &s.Start, &s.End); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ListByDate returns the published shifts for one date.
func (r ScheduleRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.ScheduleShift, error) {
	return r.ListRange(ctx, date, date)
}
