package httpx

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	apperrors "github.com/onepos/storefront/internal/errors"
)

// AssembleOTP reconstructs a one-time code from the per-digit form inputs
// otp1..otpN. Mobile and desktop browsers often paste a full code into
// the first box; when the first field holds the entire code and the rest
// are empty the paste is split instead of rejected. Anything that does
// not assemble to exactly length digits is a validation error.
func AssembleOTP(form url.Values, length int) (string, error) {
	fields := make([]string, length)
	for i := range fields {
		fields[i] = strings.TrimSpace(form.Get(fmt.Sprintf("otp%d", i+1)))
	}

	// Full-code paste in the first field, rest empty.
	if len(fields[0]) == length && restEmpty(fields[1:]) {
		if !allDigits(fields[0]) {
			return "", apperrors.ValidationField("otp", "The verification code must be digits only")
		}
		return fields[0], nil
	}

	var b strings.Builder
	for _, f := range fields {
		if len(f) != 1 {
			return "", apperrors.ValidationField("otp", "Enter the complete verification code")
		}
		if !allDigits(f) {
			return "", apperrors.ValidationField("otp", "The verification code must be digits only")
		}
		b.WriteString(f)
	}
	return b.String(), nil
}

func restEmpty(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
