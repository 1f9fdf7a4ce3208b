// Package payroll computes the derived figures of a monthly salary record
// and validates the mutations a manager can apply to it.
package payroll

import (
	"errors"
	"fmt"
	"math"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/locale"
)

var (
	ErrNegativeAmount    = errors.New("amount must be a non-negative number")
	ErrAlreadyPaid       = errors.New("salary already marked as paid")
	ErrNotPaid           = errors.New("salary is not marked as paid")
	ErrInvalidPaidAmount = errors.New("invalid paid amount")
)

// TakeHomePay derives the figure actually paid out. It is recomputed from
// the record on every read and never stored, so it cannot drift from the
// latest advance/bonus edits.
func TakeHomePay(rec domain.SalaryRecord) int64 {
	return rec.TotalSalary - rec.SalaryAdvance + rec.Bonus
}

// SuggestedPayment pre-fills the pay-confirmation step.
func SuggestedPayment(rec domain.SalaryRecord) int64 {
	if v := TakeHomePay(rec); v > 0 {
		return v
	}
	return 0
}

// SuggestedPaymentDisplay is the thousands-grouped form shown to the manager.
func SuggestedPaymentDisplay(rec domain.SalaryRecord) string {
	return locale.FormatVND(SuggestedPayment(rec))
}

// ValidateAdjustment guards advance/bonus edits before any write. JSON
// numbers arrive as float64; NaN, infinities and negatives are rejected.
func ValidateAdjustment(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, ErrNegativeAmount
	}
	return int64(math.Round(amount)), nil
}

// ParseConfirmedAmount parses the manager-entered payment figure, which may
// be vi-VN grouped ("1.234.567").
func ParseConfirmedAmount(input string) (int64, error) {
	v, err := locale.ParseAmount(input)
	if err != nil {
		return 0, ErrInvalidPaidAmount
	}
	return v, nil
}

// ConfirmPayment transitions unpaid -> paid, capturing the confirmed amount
// and a server-assigned timestamp. Any other transition is rejected.
func ConfirmPayment(rec *domain.SalaryRecord, amount int64, now time.Time) error {
	if rec.PaymentStatus == domain.PaymentPaid {
		return ErrAlreadyPaid
	}
	if amount < 0 {
		return ErrInvalidPaidAmount
	}
	rec.PaymentStatus = domain.PaymentPaid
	rec.ActualPaidAmount = &amount
	rec.PaidAt = &now
	return nil
}

// RevertPayment transitions paid -> unpaid, clearing the captured amount and
// timestamp. There is no partial-payment state.
func RevertPayment(rec *domain.SalaryRecord) error {
	if rec.PaymentStatus != domain.PaymentPaid {
		return ErrNotPaid
	}
	rec.PaymentStatus = domain.PaymentUnpaid
	rec.ActualPaidAmount = nil
	rec.PaidAt = nil
	return nil
}

// PenaltyTotals splits one user's violation costs into settled and
// outstanding buckets.
type PenaltyTotals struct {
	Paid   int64
	Unpaid int64
	Total  int64
}

// PenaltyTotalsFor attributes each violation's userCost for the given user
// to exactly one bucket: settled when the violation is waived, the user has
// a penalty submission, or penalty photos exist; outstanding otherwise.
func PenaltyTotalsFor(userID int64, violations []domain.ViolationRecord) PenaltyTotals {
	var t PenaltyTotals
	for _, v := range violations {
		cost, ok := v.UserCosts[userID]
		if !ok {
			continue
		}
		if penaltySettled(userID, v) {
			t.Paid += cost
		} else {
			t.Unpaid += cost
		}
	}
	t.Total = t.Paid + t.Unpaid
	return t
}

// MonthInputs carries everything a payroll recalculation reads: the staff
// roster, the month's published schedule, the month's submitted reports,
// and hourly rates (per user, falling back to DefaultRate).
type MonthInputs struct {
	Month       string
	Users       []domain.User
	Schedule    []domain.ScheduleShift
	Reports     []domain.ShiftReport
	Rates       map[int64]int64
	DefaultRate int64
}

// BuildMonth recomputes each user's base payroll line from the schedule. A
// scheduled shift counts as worked when the user submitted any report on
// that date; otherwise it lands in the absent list and earns nothing.
// Advance, bonus and payment state are not touched here; the upsert layer
// preserves them.
func BuildMonth(in MonthInputs) []domain.SalaryRecord {
	reported := make(map[string]struct{}, len(in.Reports))
	for _, r := range in.Reports {
		reported[reportKey(r.UserID, r.Date)] = struct{}{}
	}

	records := make([]domain.SalaryRecord, 0, len(in.Users))
	for _, u := range in.Users {
		rate := in.DefaultRate
		if v, ok := in.Rates[u.ID]; ok {
			rate = v
		}
		rec := domain.SalaryRecord{
			UserID:            u.ID,
			UserName:          u.Name,
			UserRole:          u.Role,
			Month:             in.Month,
			AverageHourlyRate: rate,
			PaymentStatus:     domain.PaymentUnpaid,
			AttendanceRecords: []domain.AttendanceRecord{},
			AbsentShifts:      []domain.AbsentShift{},
		}
		for _, sh := range in.Schedule {
			if sh.UserID != u.ID {
				continue
			}
			hours := float64(sh.End-sh.Start) / 60
			if hours <= 0 {
				continue
			}
			rec.TotalExpectedHours += hours
			if _, ok := reported[reportKey(u.ID, sh.Date)]; ok {
				rec.TotalWorkingHours += hours
				rec.TotalSalary += int64(math.Round(hours * float64(rate)))
				rec.AttendanceRecords = append(rec.AttendanceRecords, domain.AttendanceRecord{
					Date:          sh.Date,
					ShiftLabel:    sh.Label,
					ExpectedHours: hours,
					WorkedHours:   hours,
					HourlyRate:    rate,
				})
			} else {
				rec.AbsentShifts = append(rec.AbsentShifts, domain.AbsentShift{
					Date:       sh.Date,
					ShiftLabel: sh.Label,
				})
			}
		}
		records = append(records, rec)
	}
	return records
}

func reportKey(userID int64, date time.Time) string {
	return fmt.Sprintf("%d/%s", userID, date.Format("2006-01-02"))
}

func penaltySettled(userID int64, v domain.ViolationRecord) bool {
	if v.IsPenaltyWaived || len(v.PenaltyPhotos) > 0 {
		return true
	}
	for _, s := range v.PenaltySubmissions {
		if s.UserID == userID {
			return true
		}
	}
	return false
}
