package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// MACD returns the moving average convergence divergence of the column: the
// fast EMA minus the slow EMA, its signal line (an EMA of the difference) and
// the histogram (difference minus signal).
func MACD(c *rolling.Cache, column string, fastPeriod, slowPeriod, signalPeriod int) (line, signal, histogram []float64, err error) {
	if fastPeriod < 1 || slowPeriod < 1 || signalPeriod < 1 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd periods must be positive, got fast=%d slow=%d signal=%d", fastPeriod, slowPeriod, signalPeriod)
	}

	if fastPeriod >= slowPeriod {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd fast period %d must be smaller than slow period %d", fastPeriod, slowPeriod)
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, nil, nil, err
	}

	fast := emaOf(values, fastPeriod)
	slow := emaOf(values, slowPeriod)

	line = sub(fast, slow)
	signal = emaOf(line, signalPeriod)
	histogram = sub(line, signal)

	return line, signal, histogram, nil
}
