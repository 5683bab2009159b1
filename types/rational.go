package types

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Rational is a frame rate (or any other ratio) kept as an exact fraction.
type Rational struct {
	Num int
	Den int
}

func newNTSCRationalFromFloat64(f float64) *big.Rat {
	den := 1001 // common denominator for NTSC frame rates
	num := math.Ceil(f) * 1000
	r := big.NewRat(int64(num), int64(den))
	confirmValue, _ := r.Float64()
	if math.Abs(f-confirmValue) < 1e-2 {
		return r
	}
	return nil
}

// RationalFromApproxFloat64 snaps values like 29.97 to the NTSC fraction 30000/1001.
func RationalFromApproxFloat64(fps float64) (r Rational) {
	if float64(int(fps)) == fps {
		r.Num = int(fps)
		r.Den = 1
		return
	}

	rat := newNTSCRationalFromFloat64(fps)
	if rat != nil {
		r.Num = int(rat.Num().Int64())
		r.Den = int(rat.Denom().Int64())
		return
	}

	return rationalFromDecimalString(strconv.FormatFloat(fps, 'f', 6, 64))
}

func rationalFromDecimalString(s string) (r Rational) {
	rat, ok := new(big.Rat).SetString(s)
	if !ok || !rat.Num().IsInt64() || !rat.Denom().IsInt64() {
		return Rational{}
	}
	r.Num = int(rat.Num().Int64())
	r.Den = int(rat.Denom().Int64())
	return
}

// RationalFromString parses "30000/1001", "29.97" (exact) or "~29.97" (NTSC-snapped).
func RationalFromString(s string) (*Rational, error) {
	var r Rational
	switch {
	case len(s) == 0:
		return nil, fmt.Errorf("unable to parse Rational from empty string")
	case strings.Contains(s, "/"):
		if _, err := fmt.Sscanf(s, "%d/%d", &r.Num, &r.Den); err != nil {
			return nil, fmt.Errorf("unable to parse Rational from %q: %w", s, err)
		}
	case s[0] == '~':
		fps, err := strconv.ParseFloat(s[1:], 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse Rational from %q: %w", s, err)
		}
		r = RationalFromApproxFloat64(fps)
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("unable to parse Rational from %q: %w", s, err)
		}
		r = rationalFromDecimalString(s)
	}
	if r.Den == 0 {
		return nil, fmt.Errorf("denominator cannot be zero")
	}
	return &r, nil
}

func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r Rational) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rational) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unable to unmarshal Rational from JSON '%s': %w", b, err)
	}
	v, err := RationalFromString(s)
	if err != nil {
		return fmt.Errorf("unable to unmarshal Rational from string %q: %w", s, err)
	}
	*r = *v
	return nil
}

// UnmarshalText makes Rational usable both in YAML documents and as a pflag value.
func (r *Rational) UnmarshalText(b []byte) error {
	v, err := RationalFromString(string(b))
	if err != nil {
		return err
	}
	*r = *v
	return nil
}

func (r Rational) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Set implements pflag.Value.
func (r *Rational) Set(s string) error {
	return r.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (r *Rational) Type() string {
	return "rational"
}
