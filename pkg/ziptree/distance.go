package ziptree

import (
	"math"
	"strconv"
)

// Distance is a path length in bases. The maximum value is reserved for
// [Unreachable].
type Distance uint64

// Unreachable marks the absence of a path. It also serves as the saturated
// "definitely over any bound" value of accumulated sums.
const Unreachable Distance = math.MaxUint64

// Reachable reports whether d is a finite distance.
func (d Distance) Reachable() bool { return d != Unreachable }

// String returns the decimal value, or "inf" for [Unreachable].
func (d Distance) String() string {
	if d == Unreachable {
		return "inf"
	}
	return strconv.FormatUint(uint64(d), 10)
}

// Sum adds two distances. The result saturates at [Unreachable], so an
// unreachable operand or an overflowing sum both yield Unreachable.
func Sum(a, b Distance) Distance {
	if a == Unreachable || b == Unreachable {
		return Unreachable
	}
	s := a + b
	if s < a || s == Unreachable {
		return Unreachable
	}
	return s
}

// Minus subtracts b from a. Unreachable operands yield Unreachable, and a
// negative result is clamped to zero; callers that must treat a negative
// result as an error check the operands first.
func Minus(a, b Distance) Distance {
	if a == Unreachable || b == Unreachable {
		return Unreachable
	}
	if b > a {
		return 0
	}
	return a - b
}

// within reports whether an accumulated distance respects limit.
func within(d, limit Distance) bool {
	return d != Unreachable && d <= limit
}
