// Package phone normalizes phone numbers to E.164 and redacts them for
// logging. Every log or audit site must go through Mask; raw numbers are
// PII and never leave the store layer unredacted.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultCountryCode is applied to national numbers written with a
// leading zero (the platform's home market).
const DefaultCountryCode = "90"

var (
	// ErrInvalidNumber indicates the input cannot be normalized to E.164
	ErrInvalidNumber = errors.New("invalid phone number")

	e164Pattern      = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
	separatorPattern = regexp.MustCompile(`[\s\.\-\(\)]`)
)

// Normalize converts a raw phone number to E.164.
//
// Accepted inputs: already-normalized E.164 ("+905551234567"),
// international prefix form ("00905551234567"), bare country-coded
// digits ("905551234567"), and national form with a leading zero
// ("05551234567") which gets DefaultCountryCode.
func Normalize(raw string) (string, error) {
	s := separatorPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return "", ErrInvalidNumber
	}

	switch {
	case strings.HasPrefix(s, "+"):
		// keep as is
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "0"):
		s = "+" + DefaultCountryCode + s[1:]
	default:
		s = "+" + s
	}

	if !e164Pattern.MatchString(s) {
		return "", ErrInvalidNumber
	}
	return s, nil
}

// Mask redacts a phone number for audit entries and logs.
//
// Policy: the leading "+" and country prefix (first 3 characters) and
// the last 3 digits are kept, everything between is starred:
// "+905551234567" -> "+90********567". Inputs too short to split that
// way are fully starred.
func Mask(number string) string {
	const keepHead, keepTail = 3, 3
	if len(number) <= keepHead+keepTail {
		return strings.Repeat("*", len(number))
	}
	return number[:keepHead] + strings.Repeat("*", len(number)-keepHead-keepTail) + number[len(number)-keepTail:]
}
