package laundry

import "math"

// StockLevel is the badge shown next to a stock entry.
type StockLevel string

const (
	StockLow    StockLevel = "Low"
	StockMedium StockLevel = "Medium"
	StockGood   StockLevel = "Good"
)

// Adjust applies delta to current, clamping the result at zero. A sum past
// the int range saturates at math.MaxInt.
func Adjust(current, delta int) int {
	if delta > 0 && current > math.MaxInt-delta {
		return math.MaxInt
	}
	if next := current + delta; next > 0 {
		return next
	}
	return 0
}

// Classify maps a stock quantity to its level. Both boundaries are inclusive:
// current == min is Low and current == 1.5*min is Medium.
func Classify(current, minThreshold int) StockLevel {
	switch {
	case current <= minThreshold:
		return StockLow
	case current-minThreshold <= minThreshold/2:
		return StockMedium
	default:
		return StockGood
	}
}

// Percentage is the fill level against a nominal capacity of three times the
// threshold, capped at 100.
func Percentage(current, minThreshold int) float64 {
	capacity := 3 * minThreshold
	if capacity <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := float64(current) / float64(capacity) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
