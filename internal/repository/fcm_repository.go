package repository

import (
	"context"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"
)

type FCMRepository struct {
	DB *db.Postgres
}

type RegisterTokenInput struct {
	UserID   *int64
	Token    string
	Platform string
}

func (r FCMRepository) Register(ctx context.Context, in RegisterTokenInput) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO fcm_tokens (user_id, token, platform, created_at)
		VALUES ($1,$2,$3, now())
		ON CONFLICT (token) DO UPDATE SET user_id=EXCLUDED.user_id, platform=EXCLUDED.platform
	`, in.UserID, in.Token, in.Platform)
	return err
}

func (r FCMRepository) LastUpdated(ctx context.Context, token string) (time.Time, error) {
	var ts time.Time
	err := r.DB.Pool.QueryRow(ctx, `SELECT created_at FROM fcm_tokens WHERE token=$1`, token).Scan(&ts)
	return ts, err
}

// TokensForRole returns the device tokens of every active user with a role;
// shift-report submissions push to the manager tokens.
func (r FCMRepository) TokensForRole(ctx context.Context, role domain.UserRole) ([]string, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT t.token
		FROM fcm_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE u.role=$1 AND u.active AND u.deleted_at IS NULL
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
