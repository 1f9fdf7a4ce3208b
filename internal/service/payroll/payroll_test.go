package payroll

import (
	"math"
	"testing"
	"time"

	"katrina-one-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(total, advance, bonus int64) domain.SalaryRecord {
	return domain.SalaryRecord{
		UserID:        7,
		Month:         "2025-05",
		TotalSalary:   total,
		SalaryAdvance: advance,
		Bonus:         bonus,
		PaymentStatus: domain.PaymentUnpaid,
	}
}

func TestTakeHomePay(t *testing.T) {
	assert.Equal(t, int64(4_700_000), TakeHomePay(record(5_000_000, 500_000, 200_000)))
	// Advance larger than the salary goes negative; display clamps, the
	// figure itself does not.
	assert.Equal(t, int64(-100_000), TakeHomePay(record(400_000, 500_000, 0)))
	assert.Equal(t, int64(0), SuggestedPayment(record(400_000, 500_000, 0)))
	assert.Equal(t, "0", SuggestedPaymentDisplay(record(400_000, 500_000, 0)))
	assert.Equal(t, "4.700.000", SuggestedPaymentDisplay(record(5_000_000, 500_000, 200_000)))
}

func TestTakeHomePayRecomputedAfterEdit(t *testing.T) {
	rec := record(5_000_000, 0, 0)
	before := TakeHomePay(rec)
	rec.SalaryAdvance = 1_000_000
	rec.Bonus = 300_000
	assert.Equal(t, before-700_000, TakeHomePay(rec))
}

func TestValidateAdjustment(t *testing.T) {
	v, err := ValidateAdjustment(250_000)
	require.NoError(t, err)
	assert.Equal(t, int64(250_000), v)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ValidateAdjustment(bad)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	}
}

func TestParseConfirmedAmount(t *testing.T) {
	v, err := ParseConfirmedAmount("1.234.567")
	require.NoError(t, err)
	assert.Equal(t, int64(1_234_567), v)

	v, err = ParseConfirmedAmount("1234567 đ")
	require.NoError(t, err)
	assert.Equal(t, int64(1_234_567), v)

	_, err = ParseConfirmedAmount("")
	assert.ErrorIs(t, err, ErrInvalidPaidAmount)
	_, err = ParseConfirmedAmount("abc")
	assert.ErrorIs(t, err, ErrInvalidPaidAmount)
}

func TestConfirmAndRevertPayment(t *testing.T) {
	rec := record(5_000_000, 0, 0)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, ConfirmPayment(&rec, 5_000_000, now))
	assert.Equal(t, domain.PaymentPaid, rec.PaymentStatus)
	require.NotNil(t, rec.ActualPaidAmount)
	assert.Equal(t, int64(5_000_000), *rec.ActualPaidAmount)
	require.NotNil(t, rec.PaidAt)
	assert.Equal(t, now, *rec.PaidAt)

	// Double confirmation is rejected and leaves the record untouched.
	assert.ErrorIs(t, ConfirmPayment(&rec, 1, now), ErrAlreadyPaid)
	assert.Equal(t, int64(5_000_000), *rec.ActualPaidAmount)

	require.NoError(t, RevertPayment(&rec))
	assert.Equal(t, domain.PaymentUnpaid, rec.PaymentStatus)
	assert.Nil(t, rec.ActualPaidAmount)
	assert.Nil(t, rec.PaidAt)

	assert.ErrorIs(t, RevertPayment(&rec), ErrNotPaid)
}

func TestConfirmPaymentRejectsNegative(t *testing.T) {
	rec := record(5_000_000, 0, 0)
	assert.ErrorIs(t, ConfirmPayment(&rec, -1, time.Now()), ErrInvalidPaidAmount)
	assert.Equal(t, domain.PaymentUnpaid, rec.PaymentStatus)
}

func TestBuildMonth(t *testing.T) {
	may10 := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	may11 := time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)

	records := BuildMonth(MonthInputs{
		Month: "2025-05",
		Users: []domain.User{
			{ID: 1, Name: "Lan", Role: domain.RoleServer},
			{ID: 2, Name: "Minh", Role: domain.RoleServer},
		},
		Schedule: []domain.ScheduleShift{
			{UserID: 1, Date: may10, Label: "Ca sáng", Start: 360, End: 720},
			{UserID: 1, Date: may11, Label: "Ca sáng", Start: 360, End: 720},
			{UserID: 2, Date: may10, Label: "Ca tối", Start: 1020, End: 1380},
		},
		Reports: []domain.ShiftReport{
			{UserID: 1, Date: may10},
		},
		Rates:       map[int64]int64{1: 30_000},
		DefaultRate: 25_000,
	})
	require.Len(t, records, 2)

	lan := records[0]
	assert.Equal(t, "2025-05", lan.Month)
	assert.Equal(t, 12.0, lan.TotalExpectedHours)
	assert.Equal(t, 6.0, lan.TotalWorkingHours)
	assert.Equal(t, int64(180_000), lan.TotalSalary)
	require.Len(t, lan.AttendanceRecords, 1)
	require.Len(t, lan.AbsentShifts, 1)
	assert.Equal(t, may11, lan.AbsentShifts[0].Date)

	// No report at all: everything absent, nothing earned, default rate.
	minh := records[1]
	assert.Zero(t, minh.TotalSalary)
	assert.Equal(t, int64(25_000), minh.AverageHourlyRate)
	assert.Empty(t, minh.AttendanceRecords)
	require.Len(t, minh.AbsentShifts, 1)
}

func TestPenaltyTotalsPartition(t *testing.T) {
	const userID = int64(7)
	violations := []domain.ViolationRecord{
		// Outstanding: no waiver, no photos, no submission.
		{ID: "v1", UserCosts: map[int64]int64{userID: 100_000}},
		// Settled by waiver.
		{ID: "v2", UserCosts: map[int64]int64{userID: 50_000}, IsPenaltyWaived: true},
		// Settled by penalty photos.
		{ID: "v3", UserCosts: map[int64]int64{userID: 30_000}, PenaltyPhotos: []string{"p.jpg"}},
		// Settled by this user's own submission.
		{ID: "v4", UserCosts: map[int64]int64{userID: 20_000}, PenaltySubmissions: []domain.PenaltySubmission{{UserID: userID}}},
		// Someone else's submission does not settle user 7's cost.
		{ID: "v5", UserCosts: map[int64]int64{userID: 40_000}, PenaltySubmissions: []domain.PenaltySubmission{{UserID: 99}}},
		// Not involved at all.
		{ID: "v6", UserCosts: map[int64]int64{99: 999_000}},
	}

	totals := PenaltyTotalsFor(userID, violations)
	assert.Equal(t, int64(100_000), totals.Paid)
	assert.Equal(t, int64(140_000), totals.Unpaid)
	assert.Equal(t, totals.Paid+totals.Unpaid, totals.Total)
}
