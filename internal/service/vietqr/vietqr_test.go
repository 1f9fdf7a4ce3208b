package vietqr

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = Account{BankBin: "970407", Number: "19036812345678", Name: "KATRINA ONE"}

func TestPayloadStructure(t *testing.T) {
	p, err := Payload(testAccount, 45500, "thanh toan ca toi")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p, "000201"), "payload format indicator")
	assert.Contains(t, p, "970407")
	assert.Contains(t, p, "19036812345678")
	assert.Contains(t, p, "A000000727")
	assert.Contains(t, p, "QRIBFTTA")
	assert.Contains(t, p, "5303704") // VND currency code
	assert.Contains(t, p, "45500")
	assert.Contains(t, p, "thanh toan ca toi")

	// CRC tag, two-digit length, four uppercase hex digits.
	require.Greater(t, len(p), 8)
	crcField := p[len(p)-8:]
	assert.Equal(t, "6304", crcField[:4])
	assert.Equal(t, crcField[4:], strings.ToUpper(crcField[4:]))

	// The suffix must actually be the CRC of everything before it.
	want := crc16(p[:len(p)-4])
	got := crcField[4:]
	assert.Equal(t, want, parseHex16(t, got))
}

func TestPayloadStaticWhenAmountZero(t *testing.T) {
	p, err := Payload(testAccount, 0, "")
	require.NoError(t, err)
	assert.Contains(t, p, "010211") // static point-of-initiation
	// With no amount, the country code follows the currency immediately.
	assert.Contains(t, p, "53037045802VN")
}

func TestPayloadDynamicWhenAmountSet(t *testing.T) {
	p, err := Payload(testAccount, 120000, "")
	require.NoError(t, err)
	assert.Contains(t, p, "010212")
	assert.Contains(t, p, "5406120000")
}

func TestPayloadErrors(t *testing.T) {
	_, err := Payload(Account{BankBin: "970407"}, 1000, "")
	assert.ErrorIs(t, err, ErrMissingAccount)

	_, err = Payload(testAccount, -1, "")
	assert.Error(t, err)
}

func TestPayloadTruncatesLongNote(t *testing.T) {
	long := strings.Repeat("a", 60)
	p, err := Payload(testAccount, 1000, long)
	require.NoError(t, err)
	assert.NotContains(t, p, long)
	assert.Contains(t, p, strings.Repeat("a", 25))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	note := "thanh toán ca tối thứ bảy tuần này"
	got := truncate(note, 25)
	assert.LessOrEqual(t, len(got), 25)
	assert.True(t, utf8.ValidString(got), "truncation split a rune: %q", got)
	assert.True(t, strings.HasPrefix(note, got))

	p, err := Payload(testAccount, 1000, note)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(p))
}

func TestTruncateShortStringUntouched(t *testing.T) {
	assert.Equal(t, "ca tối", truncate("ca tối", 25))
}

func parseHex16(t *testing.T, s string) uint16 {
	t.Helper()
	var v uint16
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			t.Fatalf("non-hex CRC digit %q", c)
		}
		v = v<<4 | uint16(d)
	}
	return v
}
