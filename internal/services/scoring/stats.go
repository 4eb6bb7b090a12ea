package scoring

import "math"

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation (dividing by n), 0 for an
// empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// ZScore standardizes value against the window. A zero-deviation or empty
// window yields 0 rather than a division error.
func ZScore(value float64, window []float64) float64 {
	sd := StdDev(window)
	if sd == 0 {
		return 0
	}
	return (value - Mean(window)) / sd
}
