package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"katrina-one-backend/internal/db"
	"katrina-one-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotOwner is returned when a staff member tries to delete a report they
// did not submit.
var ErrNotOwner = errors.New("report belongs to another user")

type ReportRepository struct {
	DB *db.Postgres
}

type CreateReportInput struct {
	UserID         int64
	StaffName      string
	ShiftKey       domain.ShiftKey
	Date           time.Time
	CompletedTasks map[string][]domain.CompletionRecord
	Issues         string
}

// Create inserts a new shift report. Reports are append-only; re-submission
// for the same user/date/shift produces an additional document.
func (r ReportRepository) Create(ctx context.Context, in CreateReportInput) (*domain.ShiftReport, error) {
	tasks, err := json.Marshal(in.CompletedTasks)
	if err != nil {
		return nil, fmt.Errorf("encode completed tasks: %w", err)
	}
	rep := domain.ShiftReport{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		StaffName:      in.StaffName,
		ShiftKey:       in.ShiftKey,
		Date:           in.Date,
		CompletedTasks: in.CompletedTasks,
		Issues:         in.Issues,
	}
	err = r.DB.Pool.QueryRow(ctx, `
		INSERT INTO shift_reports (id, user_id, staff_name, shift_key, report_date, completed_tasks, issues, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now())
		RETURNING submitted_at
	`, rep.ID, rep.UserID, rep.StaffName, string(rep.ShiftKey), rep.Date.Format("2006-01-02"), tasks, rep.Issues).Scan(&rep.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListByDateShift returns every report for one date+shift in submission
// order; this is the shift summary's input.
func (r ReportRepository) ListByDateShift(ctx context.Context, date time.Time, shift domain.ShiftKey) ([]domain.ShiftReport, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, staff_name, shift_key, report_date, completed_tasks, issues, submitted_at
		FROM shift_reports
		WHERE report_date=$1 AND shift_key=$2 AND deleted_at IS NULL
		ORDER BY submitted_at ASC, id ASC
	`, date.Format("2006-01-02"), string(shift))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListRange returns every report in an inclusive date interval; payroll
// recalculation walks these to tell worked shifts from absences.
func (r ReportRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.ShiftReport, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, staff_name, shift_key, report_date, completed_tasks, issues, submitted_at
		FROM shift_reports
		WHERE report_date >= $1 AND report_date <= $2 AND deleted_at IS NULL
		ORDER BY report_date ASC, submitted_at ASC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListByUser returns a staff member's own reports, newest first.
func (r ReportRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.ShiftReport, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, staff_name, shift_key, report_date, completed_tasks, issues, submitted_at
		FROM shift_reports
		WHERE user_id=$1 AND deleted_at IS NULL
		ORDER BY submitted_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r ReportRepository) GetByID(ctx context.Context, id string) (*domain.ShiftReport, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, user_id, staff_name, shift_key, report_date, completed_tasks, issues, submitted_at
		FROM shift_reports
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

// DeleteOwned soft-deletes a report, but only for its submitter.
func (r ReportRepository) DeleteOwned(ctx context.Context, id string, userID int64) error {
	rep, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rep.UserID != userID {
		return ErrNotOwner
	}
	_, err = r.DB.Pool.Exec(ctx, `UPDATE shift_reports SET deleted_at=now() WHERE id=$1`, id)
	return err
}

func scanReports(rows pgx.Rows) ([]domain.ShiftReport, error) {
	var items []domain.ShiftReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	return items, rows.Err()
}

func scanReport(row interface {
	Scan(dest ...any) error
}) (*domain.ShiftReport, error) {
	var (
		rep   domain.ShiftReport
		shift string
		tasks []byte
	)
	if err := row.Scan(&rep.ID, &rep.UserID, &rep.StaffName, &shift, &rep.Date, &tasks, &rep.Issues, &rep.SubmittedAt); err != nil {
		return nil, err
	}
	rep.ShiftKey = domain.ShiftKey(shift)
	if len(tasks) > 0 {
		if err := json.Unmarshal(tasks, &rep.CompletedTasks); err != nil {
			return nil, fmt.Errorf("decode completed tasks: %w", err)
		}
	}
	if rep.CompletedTasks == nil {
		rep.CompletedTasks = map[string][]domain.CompletionRecord{}
	}
	return &rep, nil
}
