package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor units (cents). Keeping integers avoids
// floating point drift; conversion to and from decimals happens at the edges.
type Money int64

// maxWhole is the largest whole-unit part that still fits in int64 cents
// after adding up to 99 cents plus a rounding carry.
const maxWhole = (math.MaxInt64 - 100) / 100

// ParseMoney parses a non-negative decimal amount such as "89", "89.5" or
// "89.005". Digits beyond the second decimal place are rounded half-up.
// Both sides of a decimal point need at least one digit.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" || (hasPoint && frac == "") {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	if w > maxWhole {
		return 0, fmt.Errorf("%w: amount %q is too large", ErrValidation, s)
	}
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
		}
	}

	frac += "000"
	cents, _ := strconv.ParseInt(frac[:2], 10, 64)
	// half-up on the third decimal digit
	if frac[2] >= '5' {
		cents++
	}
	return Money(w*100 + cents), nil
}

// Mul multiplies the amount by a whole quantity (e.g. nights).
func (m Money) Mul(n int) Money {
	return m * Money(n)
}

// Cents returns the raw minor-unit amount.
func (m Money) Cents() int64 {
	return int64(m)
}

// String formats the amount with exactly two decimals, e.g. "267.00".
func (m Money) String() string {
	sign := ""
	v := uint64(m)
	if m < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		s = n.String()
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
