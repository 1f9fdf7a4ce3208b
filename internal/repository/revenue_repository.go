package repository

import (
	"context"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"
)

type RevenueRepository struct {
	DB *db.Postgres
}

type CreateRevenueInput struct {
	Date      time.Time
	ByMethod  domain.RevenueByMethod
	CreatedBy string
}

// Create appends a revenue snapshot. Re-submissions for the same date are
// kept; readers deduplicate by latest created_at.
func (r RevenueRepository) Create(ctx context.Context, in CreateRevenueInput) (*domain.RevenueStats, error) {
	stats := domain.RevenueStats{
		Date:            in.Date,
		NetRevenue:      in.ByMethod.Total(),
		RevenueByMethod: in.ByMethod,
		CreatedBy:       in.CreatedBy,
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO revenue_stats (stat_date, net_revenue, cash, shopee_food, grab_food, bank_transfer, vietqr, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now())
		RETURNING id, created_at
	`, in.Date.Format("2006-01-02"), stats.NetRevenue,
		in.ByMethod.Cash, in.ByMethod.ShopeeFood, in.ByMethod.GrabFood, in.ByMethod.BankTransfer, in.ByMethod.VietQR,
		in.CreatedBy).Scan(&stats.ID, &stats.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListRange returns every snapshot with stat_date in [from, to], including
// superseded re-submissions.
func (r RevenueRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.RevenueStats, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, stat_date, net_revenue, cash, shopee_food, grab_food, bank_transfer, vietqr, created_by, created_at
		FROM revenue_stats
		WHERE stat_date >= $1 AND stat_date <= $2
		ORDER BY stat_date ASC, created_at ASC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.RevenueStats
	for rows.Next() {
		var s domain.RevenueStats
		if err := rows.Scan(&s.ID, &s.Date, &s.NetRevenue,
			&s.RevenueByMethod.Cash, &s.RevenueByMethod.ShopeeFood, &s.RevenueByMethod.GrabFood,
			&s.RevenueByMethod.BankTransfer, &s.RevenueByMethod.VietQR,
			&s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
