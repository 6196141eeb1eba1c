// Package core holds the domain model and the pure derived-state
// engines: totals, budget alerts, caixinha math and monthly reports.
// Everything here operates on in-memory snapshots and performs no I/O.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents. All arithmetic happens on cents; the
// float form exists only at the JSON boundary, where the persisted
// records carry plain decimal numbers.
type Money struct {
	Cents int64
}

// MoneyFromFloat converts a decimal amount to cents with half-up rounding.
func MoneyFromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Float64 returns the decimal value for serialization and display.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// DivRound divides the amount by n, rounding to the nearest cent.
func (m Money) DivRound(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{Cents: int64(math.Round(float64(m.Cents) / float64(n)))}
}

// MarshalJSON writes the amount as a plain decimal number (12.34),
// the shape the original records use for every "valor" field.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float64(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts either a number or a quoted decimal string,
// so hand-edited backups with "12,34" still import.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		m.Cents = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("valor inválido: %s", s)
		}
		parsed, err := ParseDecimal(unquoted)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("valor inválido: %s", s)
	}
	*m = MoneyFromFloat(v)
	return nil
}

// ParseDecimal converts a decimal string to Money with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Negative amounts are rejected; zero is not.
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}

// FormatBRL renders the amount the way the original UI did:
// "R$ 1.234,56". Used in alert and notification messages.
func FormatBRL(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	out := "R$ " + b.String() + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + out
	}
	return out
}
