// Package version compares dotted version strings such as "1.2.10".
//
// Components are compared left to right by their numeric value, so
// "1.10" is newer than "1.2", and missing components count as zero, so
// "2" equals "2.0.0". A component may carry a non-numeric tail ("0rc1");
// tails are ordered with the GNU version-sort rules after the numbers tie.
package version

import (
	"math"
	"strconv"
	"strings"
)

// Compare returns -1 if a < b, 0 if a == b and 1 if a > b.
func Compare(a, b string) int {
	as := split(a)
	bs := split(b)
	n := max(len(as), len(bs))
	for i := 0; i < n; i++ {
		ac := componentAt(as, i)
		bc := componentAt(bs, i)
		if c := ac.compare(bc); c != 0 {
			return c
		}
	}
	return 0
}

// AtLeast reports whether have satisfies the minimum version want.
// An empty want is always satisfied.
func AtLeast(have, want string) bool {
	if strings.TrimSpace(want) == "" {
		return true
	}
	return Compare(have, want) >= 0
}

// Parts returns the numeric value of the first n components of v, padding
// missing ones with zero.
func Parts(v string, n int) []int {
	cs := split(v)
	out := make([]int, n)
	for i := range out {
		out[i] = componentAt(cs, i).int()
	}
	return out
}

// component is one dotted part. num holds its digits without leading
// zeros, so numbers of any length compare exactly.
type component struct {
	num  string
	tail string
}

func (c component) compare(o component) int {
	switch {
	case len(c.num) != len(o.num):
		return sign(len(c.num) - len(o.num))
	case c.num != o.num:
		return strings.Compare(c.num, o.num)
	}
	return sign(compareTail(c.tail, o.tail))
}

// int returns the numeric value, saturated at math.MaxInt.
func (c component) int() int {
	if c.num == "" {
		return 0
	}
	n, err := strconv.ParseUint(c.num, 10, 64)
	if err != nil || n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

func componentAt(cs []component, i int) component {
	if i < len(cs) {
		return cs[i]
	}
	return component{}
}

func split(v string) []component {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ".")
	cs := make([]component, len(parts))
	for i, p := range parts {
		j := 0
		for j < len(p) && isDigit(p[j]) {
			j++
		}
		cs[i] = component{num: strings.TrimLeft(p[:j], "0"), tail: p[j:]}
	}
	return cs
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
