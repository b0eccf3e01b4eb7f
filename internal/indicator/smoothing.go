package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = series.Undefined()
	}

	return out
}

// firstDefined returns the index of the first defined entry, or len(values)
// if every entry is undefined.
func firstDefined(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}

	return len(values)
}

// wilder applies Wilder's smoothing: the value at the seed index is the
// arithmetic mean of the first period defined entries, after which
// s[i] = (s[i-1]*(period-1) + v[i]) / period. Leading undefined entries in
// the input shift the seed accordingly and stay undefined in the output.
func wilder(values []float64, period int) []float64 {
	n := len(values)
	out := undefined(n)

	start := firstDefined(values)
	if start+period > n {
		return out
	}

	seed := 0.0
	for i := start; i < start+period; i++ {
		seed += values[i]
	}

	p := float64(period)
	out[start+period-1] = seed / p

	for i := start + period; i < n; i++ {
		out[i] = (out[i-1]*(p-1) + values[i]) / p
	}

	return out
}

// emaOf computes an exponential moving average seeded with the simple mean of
// the first period defined entries, then smoothed with alpha = 2/(period+1).
// The SMA seed gives the series a finite warm-up instead of an infinite tail.
func emaOf(values []float64, period int) []float64 {
	n := len(values)
	out := undefined(n)

	start := firstDefined(values)
	if start+period > n {
		return out
	}

	seed := 0.0
	for i := start; i < start+period; i++ {
		seed += values[i]
	}

	alpha := 2.0 / float64(period+1)
	out[start+period-1] = seed / float64(period)

	for i := start + period; i < n; i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}

	return out
}

// sub returns a-b elementwise; undefined entries propagate.
func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}

	return out
}
