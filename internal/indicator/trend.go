package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Slope returns the rolling ordinary-least-squares slope of the column over
// windows of the given period, with x = 0..period-1 inside each window. It
// uses the closed form
//
//	slope = (p*sumXY - sumX*sumY) / (p*sumXX - sumX*sumX)
//
// where sumX and sumXX are constants of the window length, sumY comes from
// the shared rolling mean, and sumXY is maintained with an O(n) recurrence
// instead of refitting each window.
func Slope(c *rolling.Cache, column string, period int) ([]float64, error) {
	if period < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"slope period must be at least 2, got %d", period)
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, err
	}

	mean, err := c.Get(column, rolling.StatMean, period)
	if err != nil {
		return nil, err
	}

	n := len(values)
	out := undefined(n)

	if period > n {
		return out, nil
	}

	p := float64(period)
	sumX := p * (p - 1) / 2
	sumXX := (p - 1) * p * (2*p - 1) / 6
	denom := p*sumXX - sumX*sumX

	// sumXY over the first window
	var sumXY float64
	for j := 0; j < period; j++ {
		sumXY += float64(j) * values[j]
	}

	sumY := mean[period-1] * p
	out[period-1] = (p*sumXY - sumX*sumY) / denom

	for t := period; t < n; t++ {
		sumY = mean[t] * p
		// shifting the window left-shifts every x weight by one
		sumXY += p*values[t] - sumY
		out[t] = (p*sumXY - sumX*sumY) / denom
	}

	return out, nil
}
