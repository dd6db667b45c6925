package form

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeRUT strips dots, dashes and spaces and upper-cases the check digit.
func NormalizeRUT(s string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(s)))
}

// RUTCheckDigit computes the modulo 11 check digit for a RUN/RUT body.
func RUTCheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("empty RUT body")
	}
	sum, mul := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid RUT digit %q", c)
		}
		sum += int(c-'0') * mul
		mul++
		if mul > 7 {
			mul = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + dv), nil
	}
}

// ValidRUT reports whether s is a well formed RUN/RUT with a matching check digit.
func ValidRUT(s string) bool {
	n := NormalizeRUT(s)
	if len(n) < 2 || len(n) > 9 {
		return false
	}
	dv, err := RUTCheckDigit(n[:len(n)-1])
	if err != nil {
		return false
	}
	return dv == n[len(n)-1]
}

// FormatRUT renders a RUT as 12.345.678-5. Invalid input is returned as is.
func FormatRUT(s string) string {
	n := NormalizeRUT(s)
	if len(n) < 2 {
		return s
	}
	body, dv := n[:len(n)-1], n[len(n)-1:]
	if _, err := strconv.Atoi(body); err != nil {
		return s
	}

	var sb strings.Builder
	for i, c := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(c)
	}
	return sb.String() + "-" + dv
}
