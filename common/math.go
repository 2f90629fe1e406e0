package common

import (
	"cmp"
	"math"
)

// / Returns the square of the value.
// / @param[in]		a	The value.
// / @return The square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

// / Returns the absolute value.
// / @param[in]		a	The value.
// / @return The absolute value of the specified value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// CeilDiv converts a world distance into a whole number of cells, rounding up.
func CeilDiv(value, cellSize float64) int {
	return int(math.Ceil(value / cellSize))
}

// Last time I checked the if version got compiled using cmov, which was a lot faster than module (with idiv).
func Prev[T IT](i, n T) T {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func Next[T IT](i, n T) T {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// / Gets the standard width (x-axis) offset for the specified direction.
// / @param[in]		direction		The direction. [Limits: 0 <= value < 4]
// / @return The width offset to apply to the current cell position to move in the direction.
func GetDirOffsetWidth(direction int) int {
	offset := [4]int{-1, 0, 1, 0}
	return offset[direction&0x03]
}

// / Gets the standard depth (z-axis) offset for the specified direction.
// / @param[in]		direction		The direction. [Limits: 0 <= value < 4]
// / @return The depth offset to apply to the current cell position to move in the direction.
func GetDirOffsetDepth(direction int) int {
	offset := [4]int{0, 1, 0, -1}
	return offset[direction&0x03]
}

// / Gets the direction for the specified offset. One of x and z should be 0.
// / @return The direction that represents the offset, or -1 for a non axis offset.
func GetDirForOffset(offsetWidth, offsetDepth int) int {
	switch {
	case offsetWidth == -1 && offsetDepth == 0:
		return 0
	case offsetWidth == 0 && offsetDepth == 1:
		return 1
	case offsetWidth == 1 && offsetDepth == 0:
		return 2
	case offsetWidth == 0 && offsetDepth == -1:
		return 3
	}
	return -1
}

func ClockwiseDir(dir int) int {
	return (dir + 1) & 0x3
}

func CounterClockwiseDir(dir int) int {
	return (dir + 3) & 0x3
}

// AntiDir returns the opposite direction.
func AntiDir(dir int) int {
	return (dir + 2) & 0x3
}
