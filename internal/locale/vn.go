// Package locale holds the vi-VN presentation helpers used by payroll and
// financial reporting: thousands-grouped currency strings, lenient amount
// parsing, and Vietnamese weekday/date labels.
package locale

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Weekday labels as rendered by the vi-VN locale, Monday first.
var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Thứ 2",
	time.Tuesday:   "Thứ 3",
	time.Wednesday: "Thứ 4",
	time.Thursday:  "Thứ 5",
	time.Friday:    "Thứ 6",
	time.Saturday:  "Thứ 7",
	time.Sunday:    "Chủ nhật",
}

// FormatVND groups a non-negative amount with dots, vi-VN style:
// 1234567 -> "1.234.567".
func FormatVND(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ParseAmount accepts locale-formatted input ("1.234.567", "1,234,567 đ")
// by stripping every non-digit rune before parsing. Empty or negative
// results are rejected; the digits of a well-formed grouped string always
// reproduce the original integer.
func ParseAmount(input string) (int64, error) {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// WeekdayLabel returns the vi-VN weekday name for a date.
func WeekdayLabel(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// FormatDate renders dd/MM/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatDayMonth renders dd/MM.
func FormatDayMonth(t time.Time) string {
	return t.Format("02/01")
}
