package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// RSI returns the relative strength index of the column: Wilder-smoothed
// average gains over average losses, scaled to [0, 100]. When the average
// loss is zero the index saturates at 100.
func RSI(c *rolling.Cache, column string, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "rsi period must be positive, got %d", period)
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, err
	}

	n := len(values)
	gains := undefined(n)
	losses := undefined(n)

	for i := 1; i < n; i++ {
		d := values[i] - values[i-1]

		if d > 0 {
			gains[i], losses[i] = d, 0
		} else {
			gains[i], losses[i] = 0, -d
		}
	}

	avgGain := wilder(gains, period)
	avgLoss := wilder(losses, period)

	out := undefined(n)

	for i := period; i < n; i++ {
		if avgLoss[i] == 0 {
			out[i] = 100

			continue
		}

		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}

	return out, nil
}

// ROC returns the rate of change of the column: the percentage change over
// period lags, computed against the shifted series. Entries whose reference
// value is zero stay undefined.
func ROC(c *rolling.Cache, column string, period int) ([]float64, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "roc period must be positive, got %d", period)
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, err
	}

	n := len(values)
	out := undefined(n)

	for i := period; i < n; i++ {
		base := values[i-period]
		if base == 0 {
			continue
		}

		out[i] = (values[i] - base) / base * 100
	}

	return out, nil
}
