package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// ADX returns the average directional index along with the +DI and -DI lines.
// Directional movement is derived from bar-to-bar high/low shifts, smoothed
// like the true range, normalized into the DI lines, and the resulting DX is
// Wilder-smoothed once more into ADX. The smoothed true range denominator is
// shared with ATR through the cache.
func ADX(c *rolling.Cache, period int) (adx, plusDI, minusDI []float64, err error) {
	if period < 1 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod, "adx period must be positive, got %d", period)
	}

	high, err := c.Column(series.ColHigh)
	if err != nil {
		return nil, nil, nil, err
	}

	low, err := c.Column(series.ColLow)
	if err != nil {
		return nil, nil, nil, err
	}

	smTR, err := smoothedTrueRange(c, period)
	if err != nil {
		return nil, nil, nil, err
	}

	n := len(high)
	plusDM := undefined(n)
	minusDM := undefined(n)

	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]

		plusDM[i], minusDM[i] = 0, 0

		if up > down && up > 0 {
			plusDM[i] = up
		}

		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	smPlus := wilder(plusDM, period)
	smMinus := wilder(minusDM, period)

	plusDI = undefined(n)
	minusDI = undefined(n)
	dx := undefined(n)

	for i := period; i < n; i++ {
		if smTR[i] == 0 || math.IsNaN(smTR[i]) {
			continue
		}

		plusDI[i] = 100 * smPlus[i] / smTR[i]
		minusDI[i] = 100 * smMinus[i] / smTR[i]

		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			continue
		}

		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
	}

	adx = wilder(dx, period)

	return adx, plusDI, minusDI, nil
}
