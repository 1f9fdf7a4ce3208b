package repository

import (
	"context"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationRepository struct {
	DB *db.Postgres
}

type CreateNotificationInput struct {
	UserID  *int64
	Title   string
	Message string
}

func (r NotificationRepository) Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	var n domain.Notification
	var userID pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, created_at)
		VALUES ($1,$2,$3, now())
		RETURNING id, user_id, title, message, created_at, read_at
	`, in.UserID, in.Title, in.Message).Scan(
		&n.ID, &userID, &n.Title, &n.Message, &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		n.UserID = &userID.Int64
	}
	return &n, nil
}

// List returns the user's own notifications plus broadcasts, which are
// stored with a NULL user_id.
func (r NotificationRepository) List(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, title, message, created_at, read_at
		FROM notifications
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var uid pgtype.Int8
		if err := rows.Scan(&n.ID, &uid, &n.Title, &n.Message, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			n.UserID = &uid.Int64
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// MarkRead covers both addressed rows and broadcasts; a broadcast keeps a
// single shared read state.
func (r NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET read_at=now()
		WHERE id=$1 AND (user_id=$2 OR user_id IS NULL) AND read_at IS NULL
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
