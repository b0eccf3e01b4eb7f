package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// stochasticK computes %K from the shared rolling extremes and registers it
// on the cache, so %D smoothing and repeated requests reuse it.
func stochasticK(c *rolling.Cache, period int) ([]float64, error) {
	lowest, err := c.Get(series.ColLow, rolling.StatMin, period)
	if err != nil {
		return nil, err
	}

	highest, err := c.Get(series.ColHigh, rolling.StatMax, period)
	if err != nil {
		return nil, err
	}

	closes, err := c.Column(series.ColClose)
	if err != nil {
		return nil, err
	}

	return c.Ensure(fmt.Sprintf("stoch_k_%d", period), func() []float64 {
		n := len(closes)
		out := undefined(n)

		for i := period - 1; i < n; i++ {
			span := highest[i] - lowest[i]
			if span == 0 || math.IsNaN(span) {
				continue
			}

			out[i] = 100 * (closes[i] - lowest[i]) / span
		}

		return out
	})
}

// Stochastic returns the stochastic oscillator: %K from the rolling low/high
// extremes over period bars and %D, a simple moving average of %K over
// smoothPeriod bars. Flat windows (highest equals lowest) stay undefined.
func Stochastic(c *rolling.Cache, period, smoothPeriod int) (k, d []float64, err error) {
	if period < 1 || smoothPeriod < 1 {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"stochastic periods must be positive, got period=%d smooth=%d", period, smoothPeriod)
	}

	k, err = stochasticK(c, period)
	if err != nil {
		return nil, nil, err
	}

	d, err = c.Get(fmt.Sprintf("stoch_k_%d", period), rolling.StatMean, smoothPeriod)
	if err != nil {
		return nil, nil, err
	}

	return k, d, nil
}

// WilliamsR returns Williams %R from the same rolling extremes as the
// stochastic oscillator, scaled to [-100, 0].
func WilliamsR(c *rolling.Cache, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "williams %%r period must be positive, got %d", period)
	}

	lowest, err := c.Get(series.ColLow, rolling.StatMin, period)
	if err != nil {
		return nil, err
	}

	highest, err := c.Get(series.ColHigh, rolling.StatMax, period)
	if err != nil {
		return nil, err
	}

	closes, err := c.Column(series.ColClose)
	if err != nil {
		return nil, err
	}

	n := len(closes)
	out := undefined(n)

	for i := period - 1; i < n; i++ {
		span := highest[i] - lowest[i]
		if span == 0 || math.IsNaN(span) {
			continue
		}

		out[i] = -100 * (highest[i] - closes[i]) / span
	}

	return out, nil
}

// typicalPrice registers (high+low+close)/3 on the cache.
func typicalPrice(c *rolling.Cache) ([]float64, error) {
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

	return c.Ensure(colTypical, func() []float64 {
		out := make([]float64, len(closes))
		for i := range out {
			out[i] = (high[i] + low[i] + closes[i]) / 3
		}

		return out
	})
}

// CCI returns the commodity channel index: the typical price's distance from
// its rolling mean, scaled by 0.015 times the mean absolute deviation. The
// deviation pass reuses the cached rolling mean instead of recomputing it.
func CCI(c *rolling.Cache, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "cci period must be positive, got %d", period)
	}

	typical, err := typicalPrice(c)
	if err != nil {
		return nil, err
	}

	mean, err := c.Get(colTypical, rolling.StatMean, period)
	if err != nil {
		return nil, err
	}

	n := len(typical)
	out := undefined(n)

	for i := period - 1; i < n; i++ {
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(typical[j] - mean[i])
		}

		mad /= float64(period)
		if mad == 0 {
			continue
		}

		out[i] = (typical[i] - mean[i]) / (0.015 * mad)
	}

	return out, nil
}
