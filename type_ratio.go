package capgains

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Ratio is a positive fraction written "num:den", as found in corporate
// action announcements ("1:1" bonus, "10:2" split from face value 10 to 2).
type Ratio struct {
	num, den decimal.Decimal
}

// NewRatio returns the ratio num:den. It panics if either part is not positive.
func NewRatio(num, den int64) Ratio {
	r := Ratio{num: decimal.NewFromInt(num), den: decimal.NewFromInt(den)}
	if !r.num.IsPositive() || !r.den.IsPositive() {
		panic(fmt.Sprintf("invalid ratio %d:%d", num, den))
	}
	return r
}

// ParseRatio parses "num:den". "num/den" is also accepted.
func ParseRatio(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '/' })
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("invalid ratio %q want format \"num:den\"", s)
	}
	num, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio numerator in %q: %w", s, err)
	}
	den, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio denominator in %q: %w", s, err)
	}
	if !num.IsPositive() || !den.IsPositive() {
		return Ratio{}, fmt.Errorf("invalid ratio %q: both parts must be positive", s)
	}
	return Ratio{num: num, den: den}, nil
}

// Inverse returns den:num.
func (r Ratio) Inverse() Ratio { return Ratio{num: r.den, den: r.num} }

// IsZero reports whether r is the zero value (not a valid ratio).
func (r Ratio) IsZero() bool { return r.den.IsZero() }

func (r Ratio) Equal(o Ratio) bool { return r.num.Mul(o.den).Equal(o.num.Mul(r.den)) }

func (r Ratio) String() string { return r.num.String() + ":" + r.den.String() }

// MarshalText implements encoding.TextMarshaler.
func (r Ratio) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Ratio) UnmarshalText(text []byte) error {
	v, err := ParseRatio(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
