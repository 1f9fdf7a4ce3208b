package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type SalaryRepository struct {
	DB *db.Postgres
}

// UpsertMonth writes the base payroll line for a user-month. Attendance and
// absent sub-records travel as documents inside the row, matching the shape
// the payroll screen consumes.
func (r SalaryRepository) UpsertMonth(ctx context.Context, rec domain.SalaryRecord) error {
	attendance, err := json.Marshal(rec.AttendanceRecords)
	if err != nil {
		return fmt.Errorf("encode attendance: %w", err)
	}
	absent, err := json.Marshal(rec.AbsentShifts)
	if err != nil {
		return fmt.Errorf("encode absences: %w", err)
	}
	_, err = r.DB.Pool.Exec(ctx, `
		INSERT INTO salary_records (user_id, user_name, user_role, month, total_salary,
			total_expected_hours, total_working_hours, average_hourly_rate,
			salary_advance, bonus, payment_status, attendance, absent_shifts, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,0,'unpaid',$9,$10, now())
		ON CONFLICT (user_id, month) DO UPDATE SET
			user_name=EXCLUDED.user_name,
			user_role=EXCLUDED.user_role,
			total_salary=EXCLUDED.total_salary,
			total_expected_hours=EXCLUDED.total_expected_hours,
			total_working_hours=EXCLUDED.total_working_hours,
			average_hourly_rate=EXCLUDED.average_hourly_rate,
			attendance=EXCLUDED.attendance,
			absent_shifts=EXCLUDED.absent_shifts,
			updated_at=now()
	`, rec.UserID, rec.UserName, string(rec.UserRole), rec.Month, rec.TotalSalary,
		rec.TotalExpectedHours, rec.TotalWorkingHours, rec.AverageHourlyRate, attendance, absent)
	return err
}

// ListMonth returns every payroll line for a "YYYY-MM" month.
func (r SalaryRepository) ListMonth(ctx context.Context, month string) ([]domain.SalaryRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, user_name, user_role, month, total_salary,
		       total_expected_hours, total_working_hours, average_hourly_rate,
		       salary_advance, bonus, payment_status, actual_paid_amount, paid_at,
		       attendance, absent_shifts, updated_at
		FROM salary_records
		WHERE month=$1
		ORDER BY user_name ASC
	`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.SalaryRecord
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func (r SalaryRepository) GetMonth(ctx context.Context, userID int64, month string) (*domain.SalaryRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, user_id, user_name, user_role, month, total_salary,
		       total_expected_hours, total_working_hours, average_hourly_rate,
		       salary_advance, bonus, payment_status, actual_paid_amount, paid_at,
		       attendance, absent_shifts, updated_at
		FROM salary_records
		WHERE user_id=$1 AND month=$2
	`, userID, month)
	rec, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// UpdateAdjustments persists an advance/bonus edit. Validation happens in
// the payroll service before this is called.
func (r SalaryRepository) UpdateAdjustments(ctx context.Context, userID int64, month string, advance, bonus int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE salary_records SET salary_advance=$3, bonus=$4, updated_at=now()
		WHERE user_id=$1 AND month=$2
	`, userID, month, advance, bonus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaid records the confirmed payout with a server-assigned timestamp.
func (r SalaryRepository) SetPaid(ctx context.Context, userID int64, month string, amount int64, paidAt time.Time) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE salary_records
		SET payment_status='paid', actual_paid_amount=$3, paid_at=$4, updated_at=now()
		WHERE user_id=$1 AND month=$2 AND payment_status='unpaid'
	`, userID, month, amount, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUnpaid reverts a payout, clearing amount and timestamp.
func (r SalaryRepository) SetUnpaid(ctx context.Context, userID int64, month string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE salary_records
		SET payment_status='unpaid', actual_paid_amount=NULL, paid_at=NULL, updated_at=now()
		WHERE user_id=$1 AND month=$2 AND payment_status='paid'
	`, userID, month)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSalary(row interface {
	Scan(dest ...any) error
}) (*domain.SalaryRecord, error) {
	var (
		rec        domain.SalaryRecord
		role       string
		status     string
		attendance []byte
		absent     []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.UserName, &role, &rec.Month, &rec.TotalSalary,
		&rec.TotalExpectedHours, &rec.TotalWorkingHours, &rec.AverageHourlyRate,
		&rec.SalaryAdvance, &rec.Bonus, &status, &rec.ActualPaidAmount, &rec.PaidAt,
		&attendance, &absent, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.UserRole = domain.UserRole(role)
	rec.PaymentStatus = domain.PaymentStatus(status)
	if len(attendance) > 0 {
		if err := json.Unmarshal(attendance, &rec.AttendanceRecords); err != nil {
			return nil, fmt.Errorf("decode attendance: %w", err)
		}
	}
	if len(absent) > 0 {
		if err := json.Unmarshal(absent, &rec.AbsentShifts); err != nil {
			return nil, fmt.Errorf("decode absences: %w", err)
		}
	}
	return &rec, nil
}
