package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

// OBV returns on-balance volume: a running sum of volume signed by the
// direction of the close-to-close move, starting at zero.
func OBV(c *rolling.Cache) ([]float64, error) {
	closes, err := c.Column(series.ColClose)
	if err != nil {
		return nil, err
	}

	volume, err := c.Column(series.ColVolume)
	if err != nil {
		return nil, err
	}

	n := len(closes)
	out := make([]float64, n)

	if n == 0 {
		return out, nil
	}

	out[0] = 0

	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volume[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}

	return out, nil
}

// VPT returns the volume-price trend: a running sum of volume scaled by the
// fractional close-to-close change, starting at zero. A zero previous close
// contributes nothing to the sum.
func VPT(c *rolling.Cache) ([]float64, error) {
	closes, err := c.Column(series.ColClose)
	if err != nil {
		return nil, err
	}

	volume, err := c.Column(series.ColVolume)
	if err != nil {
		return nil, err
	}

	n := len(closes)
	out := make([]float64, n)

	if n == 0 {
		return out, nil
	}

	out[0] = 0

	for i := 1; i < n; i++ {
		out[i] = out[i-1]

		if closes[i-1] == 0 {
			continue
		}

		out[i] += volume[i] * (closes[i] - closes[i-1]) / closes[i-1]
	}

	return out, nil
}
