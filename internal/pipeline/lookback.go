package pipeline

import (
	"github.com/rxtech-lab/argo-pipeline/internal/indicator"
)

// RequiredLookback returns the longest warm-up across the specs: how many
// bars must precede a bar before every requested indicator is defined at it.
// The value is derived from the indicator parameters, never measured by
// probing.
func RequiredLookback(specs []indicator.Spec) (int, error) {
	lookback := 0

	for _, spec := range specs {
		normalized, err := spec.Normalized()
		if err != nil {
			return 0, err
		}

		if warmup := normalized.Warmup(); warmup > lookback {
			lookback = warmup
		}
	}

	return lookback, nil
}
