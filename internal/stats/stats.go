// Package stats holds the descriptive statistics shared by the feature and
// analytics engines. Results are rounded half away from zero with
// shopspring/decimal so that stored values are reproducible.
package stats

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// FeaturePlaces is the precision of rolling means and standard deviations.
	FeaturePlaces = 4
	// RatePlaces is the precision of win percentages and height aggregates.
	RatePlaces = 5
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundPtr rounds a nullable value.
func RoundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// Mean returns the arithmetic mean of values, or nil when empty.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// SampleStdDev returns the n-1 standard deviation, or nil with fewer than two values.
func SampleStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	mean := *Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(values)-1))
	return &sd
}

// SafeRatio returns num/den, or nil when den is zero.
func SafeRatio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}

// Percentage returns part*100/whole, or nil when whole is zero. Multiplying
// before dividing keeps exact results such as 6 of 10 at exactly 60.
func Percentage(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	p := float64(part*100) / float64(whole)
	return &p
}

// SumPtrs adds the non-nil values. The result is nil when every value is nil.
func SumPtrs(values []*float64) *float64 {
	var sum float64
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		seen = true
	}
	if !seen {
		return nil
	}
	return &sum
}
