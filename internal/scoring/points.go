package scoring

import (
	"math"

	"github.com/lazypower/habits/internal/store"
)

// addPoints returns points+delta saturated to int16 and floored at zero.
func addPoints(points, delta int16) int16 {
	return floorZero(store.SaturateInt16(int64(points) + int64(delta)))
}

// decayPoints subtracts ticks*penalty from points with saturating
// arithmetic and floors the result at zero.
func decayPoints(points int16, ticks int64, penalty int16) int16 {
	loss := saturatingMul(ticks, int64(penalty))
	return floorZero(store.SaturateInt16(int64(points) - loss))
}

func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > 0 && b > 0 && a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func floorZero(v int16) int16 {
	if v < 0 {
		return 0
	}
	return v
}
