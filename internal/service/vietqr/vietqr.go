// Package vietqr builds NAPAS VietQR transfer payloads in the EMVCo
// merchant-presented QR format.
package vietqr

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingAccount = errors.New("vietqr: account number is not configured")

// Account identifies the receiving bank account.
type Account struct {
	BankBin string // NAPAS BIN, e.g. "970407" for Techcombank
	Number  string
	Name    string
}

// Payload renders the EMVCo payload for a transfer of amount VND with an
// optional free-text note. Amount 0 produces a static QR where the payer
// enters the figure themselves.
func Payload(acc Account, amount int64, note string) (string, error) {
	if acc.Number == "" {
		return "", ErrMissingAccount
	}
	if amount < 0 {
		return "", fmt.Errorf("vietqr: negative amount %d", amount)
	}

	var b strings.Builder
	writeTLV(&b, "00", "01") // payload format indicator
	if amount > 0 {
		writeTLV(&b, "01", "12") // dynamic QR
	} else {
		writeTLV(&b, "01", "11") // static QR
	}

	// Merchant account information, NAPAS AID with nested bank/account.
	var acct strings.Builder
	writeTLV(&acct, "00", acc.BankBin)
	writeTLV(&acct, "01", acc.Number)
	var mai strings.Builder
	writeTLV(&mai, "00", "A000000727")
	writeTLV(&mai, "01", acct.String())
	writeTLV(&mai, "02", "QRIBFTTA") // transfer to account
	writeTLV(&b, "38", mai.String())

	writeTLV(&b, "53", "704") // VND
	if amount > 0 {
		writeTLV(&b, "54", fmt.Sprintf("%d", amount))
	}
	writeTLV(&b, "58", "VN")
	if note != "" {
		var add strings.Builder
		writeTLV(&add, "08", truncate(note, 25))
		writeTLV(&b, "62", add.String())
	}

	// CRC covers everything including its own tag and length.
	body := b.String() + "6304"
	return body + fmt.Sprintf("%04X", crc16(body)), nil
}

func writeTLV(b *strings.Builder, tag, value string) {
	fmt.Fprintf(b, "%s%02d%s", tag, len(value), value)
}

// truncate keeps at most n bytes of s without cutting a rune in half, so
// Vietnamese notes survive the tag-62 length cap intact.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}

// crc16 is CRC-16/CCITT-FALSE as required by EMVCo (poly 0x1021, init 0xFFFF).
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
