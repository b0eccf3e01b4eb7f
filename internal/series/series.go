// Package series holds the columnar OHLCV data model shared by the whole
// pipeline: the raw input series, the augmented frame produced by indicator
// computation, and the undefined-value sentinel used for warm-up gaps.
//
// Hot paths operate on plain []float64 with index alignment guaranteed by
// construction; validation happens once at the boundary, never per access.
package series

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Column names of the raw OHLCV series. Indicator outputs are appended to a
// Frame under their own names and must not collide with these.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// BaseColumns returns the ordered raw column names of every series.
func BaseColumns() []string {
	return []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}
}

// Undefined returns the sentinel value marking entries an indicator cannot
// produce yet (warm-up gaps). It is NaN, so it propagates through arithmetic
// instead of fabricating numbers.
func Undefined() float64 {
	return math.NaN()
}

// IsUndefined reports whether v is the undefined sentinel.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Series is an immutable, time-ordered OHLCV series in columnar form.
// All columns have equal length and strictly increasing timestamps. The
// pipeline borrows it read-only; ownership stays with the caller.
type Series struct {
	Symbol string
	Time   []time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Len returns the number of bars.
func (s *Series) Len() int {
	return len(s.Time)
}

// Column returns the named raw column.
func (s *Series) Column(name string) ([]float64, error) {
	switch name {
	case ColOpen:
		return s.Open, nil
	case ColHigh:
		return s.High, nil
	case ColLow:
		return s.Low, nil
	case ColClose:
		return s.Close, nil
	case ColVolume:
		return s.Volume, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownColumn, "unknown series column %q", name)
	}
}

// Validate checks the structural invariants of the series: equal column
// lengths, strictly increasing timestamps and no NaN or infinite values in
// any price or volume field. A zero-length series is structurally valid.
func (s *Series) Validate() error {
	n := len(s.Time)
	if len(s.Open) != n || len(s.High) != n || len(s.Low) != n || len(s.Close) != n || len(s.Volume) != n {
		return errors.Newf(errors.ErrCodeMalformedInput,
			"column lengths mismatch: time=%d open=%d high=%d low=%d close=%d volume=%d",
			n, len(s.Open), len(s.High), len(s.Low), len(s.Close), len(s.Volume))
	}

	for i := 1; i < n; i++ {
		if !s.Time[i].After(s.Time[i-1]) {
			return errors.Newf(errors.ErrCodeMalformedInput,
				"timestamps not strictly increasing at index %d (%s then %s)",
				i, s.Time[i-1].Format(time.RFC3339), s.Time[i].Format(time.RFC3339))
		}
	}

	for name, col := range map[string][]float64{
		ColOpen:   s.Open,
		ColHigh:   s.High,
		ColLow:    s.Low,
		ColClose:  s.Close,
		ColVolume: s.Volume,
	} {
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeMalformedInput,
					"column %q contains a non-finite value at index %d", name, i)
			}
		}
	}

	return nil
}

// Tail returns a view of the last n bars. The returned series shares the
// backing arrays; no data is copied.
func (s *Series) Tail(n int) (*Series, error) {
	if n < 0 || n > s.Len() {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"tail length %d out of range for series of %d bars", n, s.Len())
	}

	start := s.Len() - n

	return &Series{
		Symbol: s.Symbol,
		Time:   s.Time[start:],
		Open:   s.Open[start:],
		High:   s.High[start:],
		Low:    s.Low[start:],
		Close:  s.Close[start:],
		Volume: s.Volume[start:],
	}, nil
}
