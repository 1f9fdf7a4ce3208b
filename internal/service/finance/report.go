// Package finance reduces revenue snapshots and expense slips over a date
// range into headline totals, breakdowns, chart series and an optional
// period-over-period comparison.
package finance

import (
	"math"
	"sort"
	"strconv"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/locale"
)

const materialsBucket = "Nguyên vật liệu"

// ComparisonMode selects how the comparison window is derived.
type ComparisonMode string

const (
	CompareNone      ComparisonMode = ""
	ComparePrevious  ComparisonMode = "previous"
	CompareLastMonth ComparisonMode = "last_month"
	CompareLastYear  ComparisonMode = "last_year"
)

// Range is an inclusive [From, To] date interval. Both bounds are
// calendar dates (time component ignored).
type Range struct {
	From time.Time
	To   time.Time
}

// Days counts the calendar days covered, inclusive.
func (r Range) Days() int {
	from := truncateDay(r.From)
	to := truncateDay(r.To)
	return int(to.Sub(from).Hours()/24) + 1
}

// Contains reports whether a date falls inside the range.
func (r Range) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(r.From)) && !d.After(truncateDay(r.To))
}

// ComparisonRange derives the comparison window for a mode:
// previous is the same-length window immediately preceding the main range
// with no gap; last_month and last_year shift both endpoints by one
// calendar month/year, leaving month-length differences to the date
// arithmetic rather than normalizing them.
func ComparisonRange(r Range, mode ComparisonMode) (Range, bool) {
	switch mode {
	case ComparePrevious:
		to := truncateDay(r.From).AddDate(0, 0, -1)
		from := to.AddDate(0, 0, -(r.Days() - 1))
		return Range{From: from, To: to}, true
	case CompareLastMonth:
		return Range{From: r.From.AddDate(0, -1, 0), To: r.To.AddDate(0, -1, 0)}, true
	case CompareLastYear:
		return Range{From: r.From.AddDate(-1, 0, 0), To: r.To.AddDate(-1, 0, 0)}, true
	default:
		return Range{}, false
	}
}

// DedupLatest keeps, per calendar date, only the snapshot with the latest
// CreatedAt. Earlier re-submissions for the same date are discarded before
// any summation. Output is ordered by date ascending.
func DedupLatest(stats []domain.RevenueStats) []domain.RevenueStats {
	latest := make(map[string]domain.RevenueStats, len(stats))
	for _, s := range stats {
		key := truncateDay(s.Date).Format("2006-01-02")
		if cur, ok := latest[key]; !ok || s.CreatedAt.After(cur.CreatedAt) {
			latest[key] = s
		}
	}
	out := make([]domain.RevenueStats, 0, len(latest))
	for _, s := range latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type ExpenseBucket struct {
	Name   string
	Amount int64
}

// Report is the aggregate over one date range.
type Report struct {
	Range           Range
	TotalRevenue    int64
	TotalExpense    int64
	TotalProfit     int64
	RevenueByMethod domain.RevenueByMethod
	ExpenseBuckets  []ExpenseBucket
}

// BuildReport filters both collections to the range, deduplicates revenue
// snapshots, and reduces them into totals and breakdowns.
func BuildReport(r Range, stats []domain.RevenueStats, slips []domain.ExpenseSlip) Report {
	rep := Report{Range: r}

	for _, s := range DedupLatest(filterStats(r, stats)) {
		rep.TotalRevenue += s.NetRevenue
		rep.RevenueByMethod.Cash += s.RevenueByMethod.Cash
		rep.RevenueByMethod.ShopeeFood += s.RevenueByMethod.ShopeeFood
		rep.RevenueByMethod.GrabFood += s.RevenueByMethod.GrabFood
		rep.RevenueByMethod.BankTransfer += s.RevenueByMethod.BankTransfer
		rep.RevenueByMethod.VietQR += s.RevenueByMethod.VietQR
	}

	rep.ExpenseBuckets = bucketExpenses(filterSlips(r, slips), &rep.TotalExpense)
	rep.TotalProfit = rep.TotalRevenue - rep.TotalExpense
	return rep
}

// bucketExpenses collapses non-"other_cost" line items into the materials
// bucket; "other_cost" items keep their own name, falling back to the
// description when the name is the generic "Khác". Buckets keep
// first-appearance order, materials first when present.
func bucketExpenses(slips []domain.ExpenseSlip, total *int64) []ExpenseBucket {
	amounts := map[string]int64{}
	order := []string{}
	add := func(name string, amount int64) {
		if _, ok := amounts[name]; !ok {
			order = append(order, name)
		}
		amounts[name] += amount
	}
	for _, slip := range slips {
		for _, item := range slip.Items {
			*total += item.Amount
			if item.Category != "other_cost" {
				add(materialsBucket, item.Amount)
				continue
			}
			name := item.Name
			if name == "" || name == "Khác" || name == "Other" {
				if item.Description != "" {
					name = item.Description
				} else {
					name = "Khác"
				}
			}
			add(name, item.Amount)
		}
	}
	buckets := make([]ExpenseBucket, 0, len(order))
	for _, name := range order {
		buckets = append(buckets, ExpenseBucket{Name: name, Amount: amounts[name]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Name == materialsBucket && buckets[j].Name != materialsBucket
	})
	return buckets
}

// PercentChange computes (current-previous)/previous*100. When the previous
// figure is zero and the current is positive it reports a flat +100. The
// second result is false when no indicator should be shown: a zero, NaN or
// infinite change.
func PercentChange(current, previous int64) (float64, bool) {
	if previous == 0 && current > 0 {
		return 100, true
	}
	pct := (float64(current) - float64(previous)) / float64(previous) * 100
	if pct == 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, false
	}
	return pct, true
}

// Series is a chart-ready bucketed view. Ranges spanning at most seven days
// bucket by weekday name; longer ranges bucket by day-of-month. Comparison
// records are overlaid into the main range's labels by their own date under
// the same rule, regardless of literal calendar alignment.
type Series struct {
	Labels  []string
	Revenue []int64
	Expense []int64
}

// BuildSeries buckets deduplicated revenue and expense records. The label
// axis always comes from the main range; records whose label does not occur
// there are dropped. A label appears at most once: ranges spanning a month
// boundary fold repeated day numbers into the first occurrence, so every
// record sums into one well-defined bucket.
func BuildSeries(main Range, stats []domain.RevenueStats, slips []domain.ExpenseSlip) Series {
	weekly := main.Days() <= 7
	labels := []string{}
	index := map[string]int{}
	for d := truncateDay(main.From); !d.After(truncateDay(main.To)); d = d.AddDate(0, 0, 1) {
		l := bucketLabel(d, weekly)
		if _, ok := index[l]; ok {
			continue
		}
		index[l] = len(labels)
		labels = append(labels, l)
	}

	s := Series{
		Labels:  labels,
		Revenue: make([]int64, len(labels)),
		Expense: make([]int64, len(labels)),
	}
	for _, st := range DedupLatest(stats) {
		if i, ok := index[bucketLabel(st.Date, weekly)]; ok {
			s.Revenue[i] += st.NetRevenue
		}
	}
	for _, slip := range slips {
		if i, ok := index[bucketLabel(slip.Date, weekly)]; ok {
			s.Expense[i] += slip.TotalAmount
		}
	}
	return s
}

func bucketLabel(t time.Time, weekly bool) string {
	if weekly {
		return locale.WeekdayLabel(t)
	}
	return strconv.Itoa(t.Day())
}

func filterStats(r Range, stats []domain.RevenueStats) []domain.RevenueStats {
	out := make([]domain.RevenueStats, 0, len(stats))
	for _, s := range stats {
		if r.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

func filterSlips(r Range, slips []domain.ExpenseSlip) []domain.ExpenseSlip {
	out := make([]domain.ExpenseSlip, 0, len(slips))
	for _, s := range slips {
		if s.DeletedAt == nil && r.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
