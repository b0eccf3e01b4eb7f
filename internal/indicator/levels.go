package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

// PivotPoints returns the classic floor-trader pivot levels derived from the
// previous bar: the pivot itself plus the first and second resistance and
// support levels. Pure elementwise arithmetic; only the first bar, which has
// no predecessor, is undefined.
func PivotPoints(c *rolling.Cache) (pivot, r1, s1, r2, s2 []float64, err error) {
	high, err := c.Column(series.ColHigh)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	low, err := c.Column(series.ColLow)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	closes, err := c.Column(series.ColClose)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	n := len(closes)
	pivot = undefined(n)
	r1 = undefined(n)
	s1 = undefined(n)
	r2 = undefined(n)
	s2 = undefined(n)

	for i := 1; i < n; i++ {
		ph, pl, pc := high[i-1], low[i-1], closes[i-1]

		p := (ph + pl + pc) / 3
		pivot[i] = p
		r1[i] = 2*p - pl
		s1[i] = 2*p - ph
		r2[i] = p + (ph - pl)
		s2[i] = p - (ph - pl)
	}

	return pivot, r1, s1, r2, s2, nil
}
