package repository

import (
	"context"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"
)

type EventRepository struct {
	DB *db.Postgres
}

// BallotEventWithCount augments an event with its participant count.
type BallotEventWithCount struct {
	domain.BallotEvent
	Participants int
}

func (r EventRepository) Create(ctx context.Context, title string, opensAt, closesAt time.Time) (*domain.BallotEvent, error) {
	ev := domain.BallotEvent{Title: title, OpensAt: opensAt, ClosesAt: closesAt}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO ballot_events (title, opens_at, closes_at, created_at)
		VALUES ($1,$2,$3, now())
		RETURNING id, created_at
	`, title, opensAt, closesAt).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Join enters a user once; a second attempt hits the primary key.
func (r EventRepository) Join(ctx context.Context, eventID, userID int64, userName string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO ballot_entries (event_id, user_id, user_name, joined_at)
		VALUES ($1,$2,$3, now())
	`, eventID, userID, userName)
	return err
}

func (r EventRepository) List(ctx context.Context) ([]BallotEventWithCount, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT e.id, e.title, e.opens_at, e.closes_at, e.winner_user_id, e.created_at,
		       COUNT(be.user_id) AS participants
		FROM ballot_events e
		LEFT JOIN ballot_entries be ON be.event_id = e.id
		GROUP BY e.id
		ORDER BY e.opens_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BallotEventWithCount
	for rows.Next() {
		var ev BallotEventWithCount
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.OpensAt, &ev.ClosesAt, &ev.WinnerUserID, &ev.CreatedAt, &ev.Participants); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	return items, rows.Err()
}

func (r EventRepository) Entries(ctx context.Context, eventID int64) ([]domain.BallotEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT event_id, user_id, user_name, joined_at
		FROM ballot_entries
		WHERE event_id=$1
		ORDER BY joined_at ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.BallotEntry
	for rows.Next() {
		var e domain.BallotEntry
		if err := rows.Scan(&e.EventID, &e.UserID, &e.UserName, &e.JoinedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// SetWinner persists the drawn winner, once.
func (r EventRepository) SetWinner(ctx context.Context, eventID, userID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE ballot_events SET winner_user_id=$2 WHERE id=$1 AND winner_user_id IS NULL
	`, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
