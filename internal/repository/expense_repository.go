package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/google/uuid"
)

type ExpenseRepository struct {
	DB *db.Postgres
}

type CreateExpenseInput struct {
	Date          time.Time
	Items         []domain.ExpenseItem
	PaymentMethod domain.PaymentMethod
	CreatedBy     string
}

// Create inserts an expense slip; the slip total is the sum of its items.
func (r ExpenseRepository) Create(ctx context.Context, in CreateExpenseInput) (*domain.ExpenseSlip, error) {
	items, err := json.Marshal(in.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	slip := domain.ExpenseSlip{
		ID:            uuid.NewString(),
		Date:          in.Date,
		Items:         in.Items,
		PaymentMethod: in.PaymentMethod,
		CreatedBy:     in.CreatedBy,
	}
	for _, it := range in.Items {
		slip.TotalAmount += it.Amount
	}
	err = r.DB.Pool.QueryRow(ctx, `
		INSERT INTO expense_slips (id, slip_date, items, total_amount, payment_method, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6, now())
		RETURNING created_at
	`, slip.ID, slip.Date.Format("2006-01-02"), items, slip.TotalAmount, string(slip.PaymentMethod), slip.CreatedBy).Scan(&slip.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &slip, nil
}

// ListRange returns non-deleted slips with slip_date in [from, to].
func (r ExpenseRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.ExpenseSlip, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, slip_date, items, total_amount, payment_method, created_by, created_at
		FROM expense_slips
		WHERE slip_date >= $1 AND slip_date <= $2 AND deleted_at IS NULL
		ORDER BY slip_date ASC, created_at ASC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.ExpenseSlip
	for rows.Next() {
		var (
			s      domain.ExpenseSlip
			method string
			lines  []byte
		)
		if err := rows.Scan(&s.ID, &s.Date, &lines, &s.TotalAmount, &method, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.PaymentMethod = domain.PaymentMethod(method)
		if len(lines) > 0 {
			if err := json.Unmarshal(lines, &s.Items); err != nil {
				return nil, fmt.Errorf("decode items: %w", err)
			}
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r ExpenseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE expense_slips SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
