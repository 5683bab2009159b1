package types

import (
	"testing"
)

func TestRationalFromString(t *testing.T) {
	tests := []struct {
		input          string
		expectedNum    int
		expectedDen    int
		expectingError bool
	}{
		{"30", 30, 1, false},
		{"30/1", 30, 1, false},
		{"30000/1001", 30000, 1001, false}, // NTSC
		{"~29.97", 30000, 1001, false},     // NTSC
		{"~23.976", 24000, 1001, false},    // NTSC
		{"~25", 25, 1, false},
		{"29.97", 2997, 100, false},
		{"12.5", 25, 2, false},
		{"0.25", 1, 4, false},
		{"1/0", 0, 0, true},
		{"", 0, 0, true},
		{"invalid", 0, 0, true},
		{"10/invalid", 0, 0, true},
	}

	for _, test := range tests {
		rational, err := RationalFromString(test.input)
		if test.expectingError {
			if err == nil {
				t.Errorf("Expected error for input %q, but got none", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for input %q: %v", test.input, err)
			continue
		}
		if rational.Num != test.expectedNum || rational.Den != test.expectedDen {
			t.Errorf("For input %q, expected (%d/%d), but got (%d/%d)", test.input, test.expectedNum, test.expectedDen, rational.Num, rational.Den)
		}
	}
}

func TestRationalSet(t *testing.T) {
	var r Rational
	if err := r.Set("25/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Float64() != 25 {
		t.Errorf("expected 25, got %v", r.Float64())
	}
	if r.IsZero() {
		t.Errorf("25/1 must not be zero")
	}
}
