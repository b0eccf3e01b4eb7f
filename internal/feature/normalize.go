package feature

import (
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Normalization selects the per-window scaling applied to every channel.
type Normalization string

const (
	// NormalizationNone leaves raw values untouched.
	NormalizationNone Normalization = "none"
	// NormalizationMinMax scales each window's values into [0, 1] using the
	// window's own extremes.
	NormalizationMinMax Normalization = "minmax"
	// NormalizationZScore centers each window on its own mean and scales by
	// its population standard deviation.
	NormalizationZScore Normalization = "zscore"
)

// Normalizations returns every supported normalization mode.
func Normalizations() []Normalization {
	return []Normalization{NormalizationNone, NormalizationMinMax, NormalizationZScore}
}

// ParseNormalization resolves a mode name; the empty string means none.
func ParseNormalization(name string) (Normalization, error) {
	if name == "" {
		return NormalizationNone, nil
	}

	for _, n := range Normalizations() {
		if string(n) == name {
			return n, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidNormalization, "unknown normalization %q", name)
}
