package finance

import (
	"testing"
	"time"

	"katrina-one-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stat(date time.Time, net int64, createdAt time.Time) domain.RevenueStats {
	return domain.RevenueStats{
		Date:            date,
		NetRevenue:      net,
		RevenueByMethod: domain.RevenueByMethod{Cash: net},
		CreatedAt:       createdAt,
	}
}

func TestComparisonRangePrevious(t *testing.T) {
	main := Range{From: day(2024, 5, 8), To: day(2024, 5, 14)}
	cmp, ok := ComparisonRange(main, ComparePrevious)
	require.True(t, ok)
	assert.Equal(t, day(2024, 5, 1), cmp.From)
	assert.Equal(t, day(2024, 5, 7), cmp.To)
	assert.Equal(t, main.Days(), cmp.Days())
}

func TestComparisonRangeCalendarShift(t *testing.T) {
	main := Range{From: day(2024, 5, 8), To: day(2024, 5, 14)}

	cmp, ok := ComparisonRange(main, CompareLastMonth)
	require.True(t, ok)
	assert.Equal(t, day(2024, 4, 8), cmp.From)
	assert.Equal(t, day(2024, 4, 14), cmp.To)

	cmp, ok = ComparisonRange(main, CompareLastYear)
	require.True(t, ok)
	assert.Equal(t, day(2023, 5, 8), cmp.From)
	assert.Equal(t, day(2023, 5, 14), cmp.To)

	_, ok = ComparisonRange(main, CompareNone)
	assert.False(t, ok)
}

func TestDedupLatestKeepsNewestPerDate(t *testing.T) {
	d := day(2025, 3, 10)
	stats := []domain.RevenueStats{
		stat(d, 100, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)),
		stat(d, 150, time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)),
		stat(day(2025, 3, 11), 80, time.Date(2025, 3, 11, 21, 0, 0, 0, time.UTC)),
	}

	out := DedupLatest(stats)
	require.Len(t, out, 2)
	assert.Equal(t, int64(150), out[0].NetRevenue)
	assert.Equal(t, int64(80), out[1].NetRevenue)
}

func TestBuildReportSumsDedupedRevenue(t *testing.T) {
	r := Range{From: day(2025, 3, 10), To: day(2025, 3, 11)}
	stats := []domain.RevenueStats{
		stat(day(2025, 3, 10), 100, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)),
		stat(day(2025, 3, 10), 150, time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)),
		stat(day(2025, 3, 11), 80, time.Date(2025, 3, 11, 21, 0, 0, 0, time.UTC)),
		// Outside the range.
		stat(day(2025, 3, 12), 999, time.Date(2025, 3, 12, 21, 0, 0, 0, time.UTC)),
	}
	slips := []domain.ExpenseSlip{
		{
			Date: day(2025, 3, 10),
			Items: []domain.ExpenseItem{
				{Category: "raw_material", Name: "Cà phê", Amount: 40},
				{Category: "other_cost", Name: "Điện", Amount: 25},
			},
		},
	}

	rep := BuildReport(r, stats, slips)
	assert.Equal(t, int64(230), rep.TotalRevenue)
	assert.Equal(t, int64(65), rep.TotalExpense)
	assert.Equal(t, int64(165), rep.TotalProfit)
	assert.Equal(t, int64(230), rep.RevenueByMethod.Cash)
}

func TestBucketExpensesNamingAndOrder(t *testing.T) {
	slips := []domain.ExpenseSlip{
		{
			Date: day(2025, 3, 10),
			Items: []domain.ExpenseItem{
				{Category: "other_cost", Name: "Điện", Amount: 10},
				{Category: "raw_material", Name: "Sữa", Amount: 30},
				{Category: "other_cost", Name: "Khác", Description: "Sửa máy lạnh", Amount: 5},
				{Category: "other_cost", Name: "", Description: "", Amount: 7},
				{Category: "packaging", Name: "Ly nhựa", Amount: 20},
				{Category: "other_cost", Name: "Điện", Amount: 15},
			},
		},
	}

	rep := BuildReport(Range{From: day(2025, 3, 10), To: day(2025, 3, 10)}, nil, slips)
	require.Len(t, rep.ExpenseBuckets, 4)

	// Materials first, then other_cost buckets in first-appearance order.
	assert.Equal(t, "Nguyên vật liệu", rep.ExpenseBuckets[0].Name)
	assert.Equal(t, int64(50), rep.ExpenseBuckets[0].Amount)
	assert.Equal(t, "Điện", rep.ExpenseBuckets[1].Name)
	assert.Equal(t, int64(25), rep.ExpenseBuckets[1].Amount)
	assert.Equal(t, "Sửa máy lạnh", rep.ExpenseBuckets[2].Name)
	assert.Equal(t, "Khác", rep.ExpenseBuckets[3].Name)
}

func TestBuildReportSkipsDeletedSlips(t *testing.T) {
	deleted := time.Now()
	slips := []domain.ExpenseSlip{
		{Date: day(2025, 3, 10), DeletedAt: &deleted, Items: []domain.ExpenseItem{{Category: "raw_material", Amount: 100}}},
	}
	rep := BuildReport(Range{From: day(2025, 3, 10), To: day(2025, 3, 10)}, nil, slips)
	assert.Zero(t, rep.TotalExpense)
}

func TestPercentChange(t *testing.T) {
	pct, show := PercentChange(150, 100)
	require.True(t, show)
	assert.InDelta(t, 50.0, pct, 1e-9)

	pct, show = PercentChange(50, 100)
	require.True(t, show)
	assert.InDelta(t, -50.0, pct, 1e-9)

	// Growth from zero reads as a flat +100.
	pct, show = PercentChange(500, 0)
	require.True(t, show)
	assert.Equal(t, 100.0, pct)

	// No indicator for no change or degenerate ratios.
	_, show = PercentChange(100, 100)
	assert.False(t, show)
	_, show = PercentChange(0, 0)
	assert.False(t, show)
	_, show = PercentChange(0, 100)
	require.True(t, show)
}

func TestBuildSeriesWeeklyLabels(t *testing.T) {
	// Mon 2025-05-05 .. Sun 2025-05-11: seven days, weekday labels.
	r := Range{From: day(2025, 5, 5), To: day(2025, 5, 11)}
	stats := []domain.RevenueStats{
		stat(day(2025, 5, 5), 100, time.Date(2025, 5, 5, 21, 0, 0, 0, time.UTC)),
		stat(day(2025, 5, 11), 70, time.Date(2025, 5, 11, 21, 0, 0, 0, time.UTC)),
	}
	slips := []domain.ExpenseSlip{
		{Date: day(2025, 5, 6), Items: []domain.ExpenseItem{{Category: "raw_material", Amount: 30}}, TotalAmount: 30},
	}

	s := BuildSeries(r, stats, slips)
	require.Equal(t, []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7", "Chủ nhật"}, s.Labels)
	assert.Equal(t, int64(100), s.Revenue[0])
	assert.Equal(t, int64(70), s.Revenue[6])
	assert.Equal(t, int64(30), s.Expense[1])
}

func TestBuildSeriesCrossMonthBucketsAreUnique(t *testing.T) {
	// 2025-04-01..2025-05-05 repeats day numbers 1..5; each day number must
	// own exactly one bucket, and an April record must land on it.
	r := Range{From: day(2025, 4, 1), To: day(2025, 5, 5)}
	stats := []domain.RevenueStats{
		stat(day(2025, 4, 3), 100, time.Date(2025, 4, 3, 21, 0, 0, 0, time.UTC)),
	}

	s := BuildSeries(r, stats, nil)
	require.Len(t, s.Labels, 30)
	seen := map[string]bool{}
	for _, l := range s.Labels {
		assert.False(t, seen[l], "duplicate label %q", l)
		seen[l] = true
	}
	assert.Equal(t, "3", s.Labels[2])
	assert.Equal(t, int64(100), s.Revenue[2])
	var total int64
	for _, v := range s.Revenue {
		total += v
	}
	assert.Equal(t, int64(100), total)
}

func TestBuildSeriesMonthlyLabelsAndOverlay(t *testing.T) {
	r := Range{From: day(2025, 5, 1), To: day(2025, 5, 31)}
	s := BuildSeries(r, nil, nil)
	require.Len(t, s.Labels, 31)
	assert.Equal(t, "1", s.Labels[0])
	assert.Equal(t, "31", s.Labels[30])

	// Comparison overlay: an April record lands on the matching
	// day-of-month label of the main axis; day 31 of a shorter month
	// simply never occurs.
	cmpStats := []domain.RevenueStats{
		stat(day(2025, 4, 15), 90, time.Date(2025, 4, 15, 21, 0, 0, 0, time.UTC)),
	}
	s = BuildSeries(r, cmpStats, nil)
	assert.Equal(t, int64(90), s.Revenue[14])
}
