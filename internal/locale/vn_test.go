package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVND(t *testing.T) {
	cases := map[int64]string{
		0:           "0",
		7:           "7",
		999:         "999",
		1000:        "1.000",
		45500:       "45.500",
		1234567:     "1.234.567",
		987654321:   "987.654.321",
		-1234567:    "-1.234.567",
		10000000000: "10.000.000.000",
	}
	for amount, want := range cases {
		assert.Equal(t, want, FormatVND(amount))
	}
}

func TestParseAmountRoundTrip(t *testing.T) {
	for _, amount := range []int64{0, 1, 999, 1000, 45500, 1234567, 999999999} {
		v, err := ParseAmount(FormatVND(amount))
		require.NoError(t, err)
		assert.Equal(t, amount, v)
	}
}

func TestParseAmountLenientInput(t *testing.T) {
	v, err := ParseAmount("1,234,567 đ")
	require.NoError(t, err)
	assert.Equal(t, int64(1_234_567), v)

	v, err = ParseAmount("  45.500đ ")
	require.NoError(t, err)
	assert.Equal(t, int64(45_500), v)

	_, err = ParseAmount("")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("không có số")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWeekdayLabel(t *testing.T) {
	// 2025-05-05 is a Monday.
	monday := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	labels := []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7", "Chủ nhật"}
	for i, want := range labels {
		assert.Equal(t, want, WeekdayLabel(monday.AddDate(0, 0, i)))
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "07/05/2025", FormatDate(d))
	assert.Equal(t, "07/05", FormatDayMonth(d))
}
