package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MaxExp is the largest argument StabilizeExp passes to math.Exp.
const MaxExp = 700.0

// StabilizeExp computes exp with protection against overflow.
// Clips the input to [-MaxExp, MaxExp] so the result stays finite.
func StabilizeExp(value float64) float64 {
	return math.Exp(ClipValue(value, -MaxExp, MaxExp))
}
