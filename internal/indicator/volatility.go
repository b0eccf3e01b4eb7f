package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Derived columns registered on the cache so indicators can share them.
const (
	colTrueRange = "true_range"
	colTypical   = "typical"
)

// TrueRange returns the true range: the largest of high-low,
// |high-prev close| and |low-prev close|, computed as pairwise maxima. The
// first entry has no previous close and stays undefined. The result is
// registered on the cache and shared by ATR and ADX.
func TrueRange(c *rolling.Cache) ([]float64, error) {
	high, err := c.Column(series.ColHigh)
	if err != nil {
		return nil, err
	}

	low, err := c.Column(series.ColLow)
	if err != nil {
		return nil, err
	}

	closes, err := c.Column(series.ColClose)
	if err != nil {
		return nil, err
	}

	return c.Ensure(colTrueRange, func() []float64 {
		n := len(closes)
		out := undefined(n)

		for i := 1; i < n; i++ {
			hl := high[i] - low[i]
			hc := math.Abs(high[i] - closes[i-1])
			lc := math.Abs(low[i] - closes[i-1])

			out[i] = math.Max(hl, math.Max(hc, lc))
		}

		return out
	})
}

// smoothedTrueRange is the Wilder-smoothed true range for the period, shared
// between ATR and the DI denominators of ADX through the cache.
func smoothedTrueRange(c *rolling.Cache, period int) ([]float64, error) {
	tr, err := TrueRange(c)
	if err != nil {
		return nil, err
	}

	return c.Ensure(fmt.Sprintf("smoothed_tr_%d", period), func() []float64 {
		return wilder(tr, period)
	})
}

// ATR returns the average true range: Wilder's smoothing of the true range.
func ATR(c *rolling.Cache, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "atr period must be positive, got %d", period)
	}

	return smoothedTrueRange(c, period)
}

// Bollinger returns the Bollinger bands of the column: the rolling mean plus
// and minus multiplier rolling standard deviations. The middle band is the
// cache's rolling mean array itself, shared with any SMA of the same period.
func Bollinger(c *rolling.Cache, column string, period int, multiplier float64) (upper, middle, lower []float64, err error) {
	if period < 1 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod, "bollinger period must be positive, got %d", period)
	}

	if multiplier <= 0 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidMultiplier,
			"bollinger multiplier must be positive, got %v", multiplier)
	}

	mean, err := c.Get(column, rolling.StatMean, period)
	if err != nil {
		return nil, nil, nil, err
	}

	std, err := c.Get(column, rolling.StatStd, period)
	if err != nil {
		return nil, nil, nil, err
	}

	n := len(mean)
	upper = make([]float64, n)
	lower = make([]float64, n)

	for i := 0; i < n; i++ {
		upper[i] = mean[i] + multiplier*std[i]
		lower[i] = mean[i] - multiplier*std[i]
	}

	return upper, mean, lower, nil
}
