package pipeline

import (
	"github.com/rxtech-lab/argo-pipeline/internal/indicator"
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Augment validates the series, computes every indicator against one shared
// rolling cache and returns the frame: the five OHLCV columns first, then
// indicator outputs in request order. Column collisions, including renames
// that shadow a base column, are rejected before anything is computed.
func Augment(s *series.Series, specs []indicator.Spec) (*series.Frame, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	normalized := make([]indicator.Spec, len(specs))
	seen := make(map[string]struct{}, len(series.BaseColumns())+len(specs))

	for _, name := range series.BaseColumns() {
		seen[name] = struct{}{}
	}

	for i, spec := range specs {
		n, err := spec.Normalized()
		if err != nil {
			return nil, err
		}

		normalized[i] = n

		for _, name := range n.OutputNames() {
			if _, ok := seen[name]; ok {
				return nil, errors.Newf(errors.ErrCodeDuplicateColumn,
					"output column %q requested more than once", name)
			}

			seen[name] = struct{}{}
		}
	}

	cache := rolling.FromSeries(s)
	frame := series.NewFrame(s)

	for _, spec := range normalized {
		outputs, err := indicator.Compute(cache, spec)
		if err != nil {
			return nil, err
		}

		for j, name := range spec.OutputNames() {
			if err := frame.AddColumn(name, outputs[j]); err != nil {
				return nil, err
			}
		}
	}

	return frame, nil
}
