// Package rolling computes windowed aggregates (min, max, mean, std) over
// registered columns and caches them per (column, statistic, window) key.
//
// A Cache lives for exactly one orchestration call. Two indicators asking for
// the same key within that call observe the identical backing array, computed
// once. All kernels run in O(n) per key regardless of window size.
package rolling

import (
	"math"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Stat identifies a rolling statistic.
type Stat string

const (
	StatMin  Stat = "min"
	StatMax  Stat = "max"
	StatMean Stat = "mean"
	StatStd  Stat = "std"
)

// Key identifies one cached aggregate: a source column, a statistic and a
// window size.
type Key struct {
	Column string
	Stat   Stat
	Window int
}

// Cache computes and shares rolling aggregates over its registered columns.
// Results are cached by Key; the same key always returns the same slice.
// Returned slices are shared and must be treated as read-only.
//
// A Cache is not safe for concurrent use. Each orchestration call builds its
// own; caches are never shared across calls.
type Cache struct {
	length   int
	columns  map[string][]float64
	results  map[Key][]float64
	computed int
}

// New creates an empty cache for columns of the given length.
func New(length int) *Cache {
	return &Cache{
		length:  length,
		columns: make(map[string][]float64),
		results: make(map[Key][]float64),
	}
}

// FromSeries creates a cache with the five raw OHLCV columns registered.
func FromSeries(s *series.Series) *Cache {
	c := New(s.Len())

	// Registering raw columns cannot collide or mismatch.
	_ = c.Register(series.ColOpen, s.Open)
	_ = c.Register(series.ColHigh, s.High)
	_ = c.Register(series.ColLow, s.Low)
	_ = c.Register(series.ColClose, s.Close)
	_ = c.Register(series.ColVolume, s.Volume)

	return c
}

// Len returns the column length.
func (c *Cache) Len() int {
	return c.length
}

// Register adds a named source column.
func (c *Cache) Register(name string, values []float64) error {
	if _, ok := c.columns[name]; ok {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "column %q already registered", name)
	}

	if len(values) != c.length {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"column %q has %d values, cache expects %d", name, len(values), c.length)
	}

	c.columns[name] = values

	return nil
}

// Ensure returns the named column, invoking compute and registering the
// result the first time it is asked for. Derived columns (typical price,
// true range) are shared between indicators this way.
func (c *Cache) Ensure(name string, compute func() []float64) ([]float64, error) {
	if col, ok := c.columns[name]; ok {
		return col, nil
	}

	values := compute()
	if err := c.Register(name, values); err != nil {
		return nil, err
	}

	return values, nil
}

// Column returns a registered column.
func (c *Cache) Column(name string) ([]float64, error) {
	col, ok := c.columns[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownColumn, "column %q not registered", name)
	}

	return col, nil
}

// Computations returns how many aggregate arrays have been computed so far.
// Cache hits do not increment it.
func (c *Cache) Computations() int {
	return c.computed
}

// Get returns the rolling aggregate for the key, computing it on first use.
// The first window-1 entries are undefined. A window larger than the column
// yields an entirely undefined result rather than an error. Entries whose
// window covers an undefined source value are undefined.
func (c *Cache) Get(column string, stat Stat, window int) ([]float64, error) {
	if window < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "window must be positive, got %d", window)
	}

	key := Key{Column: column, Stat: stat, Window: window}
	if out, ok := c.results[key]; ok {
		return out, nil
	}

	values, err := c.Column(column)
	if err != nil {
		return nil, err
	}

	var out []float64

	switch stat {
	case StatMean:
		out = rollingMean(values, window)
	case StatStd:
		out = rollingStd(values, window)
	case StatMin:
		out = rollingExtremum(values, window, false)
	case StatMax:
		out = rollingExtremum(values, window, true)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown rolling statistic %q", stat)
	}

	c.results[key] = out
	c.computed++

	return out, nil
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = series.Undefined()
	}

	return out
}

// prefixes returns running sums of values and squared values, with NaN entries
// counted separately and excluded from the sums, so that a single undefined
// source value only poisons the windows that actually contain it.
func prefixes(values []float64) (sum, sumSq []float64, nan []int) {
	n := len(values)
	sum = make([]float64, n+1)
	sumSq = make([]float64, n+1)
	nan = make([]int, n+1)

	for i, v := range values {
		sum[i+1] = sum[i]
		sumSq[i+1] = sumSq[i]
		nan[i+1] = nan[i]

		if math.IsNaN(v) {
			nan[i+1]++

			continue
		}

		sum[i+1] += v
		sumSq[i+1] += v * v
	}

	return sum, sumSq, nan
}

func rollingMean(values []float64, window int) []float64 {
	n := len(values)
	out := undefined(n)

	if window > n {
		return out
	}

	sum, _, nan := prefixes(values)
	w := float64(window)

	for i := window - 1; i < n; i++ {
		if nan[i+1]-nan[i+1-window] > 0 {
			continue
		}

		out[i] = (sum[i+1] - sum[i+1-window]) / w
	}

	return out
}

// rollingStd is the population standard deviation, computed from the running
// sums as E[x^2] - E[x]^2. The difference is clamped at zero before the square
// root to absorb floating-point cancellation on near-constant windows.
func rollingStd(values []float64, window int) []float64 {
	n := len(values)
	out := undefined(n)

	if window > n {
		return out
	}

	sum, sumSq, nan := prefixes(values)
	w := float64(window)

	for i := window - 1; i < n; i++ {
		if nan[i+1]-nan[i+1-window] > 0 {
			continue
		}

		mean := (sum[i+1] - sum[i+1-window]) / w
		variance := (sumSq[i+1]-sumSq[i+1-window])/w - mean*mean

		if variance < 0 {
			variance = 0
		}

		out[i] = math.Sqrt(variance)
	}

	return out
}

// rollingExtremum keeps a monotonic deque of candidate indices. Undefined
// source values never enter the deque; windows containing one are undefined.
func rollingExtremum(values []float64, window int, max bool) []float64 {
	n := len(values)
	out := undefined(n)

	if window > n {
		return out
	}

	_, _, nan := prefixes(values)

	deque := make([]int, 0, window)

	for i := 0; i < n; i++ {
		if !math.IsNaN(values[i]) {
			for len(deque) > 0 {
				last := values[deque[len(deque)-1]]
				if (max && last <= values[i]) || (!max && last >= values[i]) {
					deque = deque[:len(deque)-1]
				} else {
					break
				}
			}

			deque = append(deque, i)
		}

		for len(deque) > 0 && deque[0] <= i-window {
			deque = deque[1:]
		}

		if i < window-1 || nan[i+1]-nan[i+1-window] > 0 || len(deque) == 0 {
			continue
		}

		out[i] = values[deque[0]]
	}

	return out
}
