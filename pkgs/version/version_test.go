package version

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		// Numeric per component, not lexicographic
		{"1.2", "1.2.1", -1},
		{"1.10", "1.2", 1},
		{"1.2", "1.10", -1},
		{"10", "9", 1},

		// Missing components are zero
		{"2", "2.0.0", 0},
		{"2.0.0", "2", 0},
		{"1.0", "1", 0},
		{"", "0", 0},
		{"", "0.1", -1},

		// Leading zeros and prefixes
		{"1.01", "1.1", 0},
		{"v1.2.3", "1.2.3", 0},
		{" 1.4 ", "1.4", 0},

		// Basic ordering
		{"1.0.0", "1.0.1", -1},
		{"1.2.10", "1.2.9", 1},
		{"1.35.0", "1.34.1", 1},

		// Tails follow version-sort rules once numbers tie
		{"1.0a", "1.0b", -1},
		{"1.0a", "1.0", 1},
		{"1.0~rc1", "1.0", -1},
		{"1.0rc1", "1.0rc2", -1},
		{"1.0rc10", "1.0rc9", 1},

		// Components wider than 64 bits
		{"18446744073709551616", "1", 1},
		{"1.18446744073709551617", "1.18446744073709551616", 1},
		{"2.99999999999999999999999", "3", -1},
		{"1.0018446744073709551616", "1.18446744073709551616", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		have, want string
		ok         bool
	}{
		{"1.16.4", "1.14", true},
		{"1.14", "1.14.0", true},
		{"1.13.9", "1.14", false},
		{"0.1", "", true},
		{"", "1", false},
	}
	for _, tt := range tests {
		if got := AtLeast(tt.have, tt.want); got != tt.ok {
			t.Errorf("AtLeast(%q, %q) = %v, want %v", tt.have, tt.want, got, tt.ok)
		}
	}
}

func TestParts(t *testing.T) {
	tests := []struct {
		v    string
		want []int
	}{
		{"1.35", []int{1, 35, 0}},
		{"1.34.1", []int{1, 34, 1}},
		{"2", []int{2, 0, 0}},
		{"1.2.3.4", []int{1, 2, 3}},
		{"x.y", []int{0, 0, 0}},
		{"1.99999999999999999999", []int{1, math.MaxInt, 0}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Parts(tt.v, 3)); diff != "" {
			t.Errorf("Parts(%q) (-want +got):\n%s", tt.v, diff)
		}
	}
}
