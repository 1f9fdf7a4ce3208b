package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ViolationRepository struct {
	DB *db.Postgres
}

type CreateViolationInput struct {
	Title     string
	Date      time.Time
	UserCosts map[int64]int64
	Photos    []string
}

func (r ViolationRepository) Create(ctx context.Context, in CreateViolationInput) (*domain.ViolationRecord, error) {
	costs, err := json.Marshal(in.UserCosts)
	if err != nil {
		return nil, fmt.Errorf("encode user costs: %w", err)
	}
	photos, err := json.Marshal(in.Photos)
	if err != nil {
		return nil, fmt.Errorf("encode photos: %w", err)
	}
	v := domain.ViolationRecord{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Date:          in.Date,
		UserCosts:     in.UserCosts,
		PenaltyPhotos: in.Photos,
	}
	err = r.DB.Pool.QueryRow(ctx, `
		INSERT INTO violations (id, title, violation_date, user_costs, is_waived, submissions, photos, created_at)
		VALUES ($1,$2,$3,$4,false,'[]',$5, now())
		RETURNING created_at
	`, v.ID, v.Title, v.Date.Format("2006-01-02"), costs, photos).Scan(&v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Waive marks the whole violation's penalties as settled.
func (r ViolationRepository) Waive(ctx context.Context, id string) error {
	tag, err := r.DB.Pool.Exec(ctx, `UPDATE violations SET is_waived=true WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSubmission appends one user's penalty submission to the document.
func (r ViolationRepository) AddSubmission(ctx context.Context, id string, sub domain.PenaltySubmission) error {
	entry, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE violations SET submissions = submissions || $2::jsonb WHERE id=$1
	`, id, entry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMonth returns the violations dated inside a "YYYY-MM" month; payroll
// folds their user costs into each salary record.
func (r ViolationRepository) ListMonth(ctx context.Context, month string) ([]domain.ViolationRecord, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid month: %w", err)
	}
	end := start.AddDate(0, 1, 0)
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, title, violation_date, user_costs, is_waived, submissions, photos, created_at
		FROM violations
		WHERE violation_date >= $1 AND violation_date < $2
		ORDER BY violation_date ASC, created_at ASC
	`, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanViolations(rows)
}

func scanViolations(rows pgx.Rows) ([]domain.ViolationRecord, error) {
	var items []domain.ViolationRecord
	for rows.Next() {
		var (
			v           domain.ViolationRecord
			costs       []byte
			submissions []byte
			photos      []byte
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.Date, &costs, &v.IsPenaltyWaived, &submissions, &photos, &v.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(costs, &v.UserCosts); err != nil {
			return nil, fmt.Errorf("decode user costs: %w", err)
		}
		if len(submissions) > 0 {
			if err := json.Unmarshal(submissions, &v.PenaltySubmissions); err != nil {
				return nil, fmt.Errorf("decode submissions: %w", err)
			}
		}
		if len(photos) > 0 {
			if err := json.Unmarshal(photos, &v.PenaltyPhotos); err != nil {
				return nil, fmt.Errorf("decode photos: %w", err)
			}
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
