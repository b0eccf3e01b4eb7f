package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// SMA returns the simple moving average of the column. The result is the
// cache's rolling mean array itself, so every consumer of the same
// (column, period) shares one computation.
func SMA(c *rolling.Cache, column string, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", period)
	}

	return c.Get(column, rolling.StatMean, period)
}

// EMA returns the exponential moving average of the column, seeded with the
// simple mean of the first period values.
func EMA(c *rolling.Cache, column string, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "ema period must be positive, got %d", period)
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, err
	}

	return emaOf(values, period), nil
}

// WMA returns the linearly weighted moving average of the column: within each
// window the most recent sample carries weight period, the oldest weight 1,
// normalized by the triangular sum period*(period+1)/2. The weighted sum is
// maintained with the O(n) recurrence W(t+1) = W(t) + period*y(t+1) - S(t),
// where S is the plain window sum.
func WMA(c *rolling.Cache, column string, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "wma period must be positive, got %d", period)
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, err
	}

	n := len(values)
	out := undefined(n)

	if period > n {
		return out, nil
	}

	var weighted, plain float64

	for j := 0; j < period; j++ {
		weighted += float64(j+1) * values[j]
		plain += values[j]
	}

	denom := float64(period) * float64(period+1) / 2
	out[period-1] = weighted / denom

	for t := period; t < n; t++ {
		weighted += float64(period)*values[t] - plain
		plain += values[t] - values[t-period]
		out[t] = weighted / denom
	}

	return out, nil
}
