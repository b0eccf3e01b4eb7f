package series

import (
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Frame is the augmented series: the raw OHLCV columns plus one column per
// indicator output, in a stable order (raw columns first, then indicator
// columns in the order they were added). Every column has the same length as
// the underlying series.
type Frame struct {
	series  *Series
	names   []string
	columns map[string][]float64
}

// NewFrame creates a frame over the given series with only the raw OHLCV
// columns present.
func NewFrame(s *Series) *Frame {
	f := &Frame{
		series: s,
		names:  BaseColumns(),
		columns: map[string][]float64{
			ColOpen:   s.Open,
			ColHigh:   s.High,
			ColLow:    s.Low,
			ColClose:  s.Close,
			ColVolume: s.Volume,
		},
	}

	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.series.Len()
}

// Series returns the underlying OHLCV series.
func (f *Frame) Series() *Series {
	return f.series
}

// ColumnNames returns the ordered column names.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.names))
	copy(names, f.names)

	return names
}

// HasColumn reports whether the frame contains the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.columns[name]

	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.columns[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownColumn, "unknown frame column %q", name)
	}

	return col, nil
}

// AddColumn appends a column under the given name. The name must be new and
// the values must align with the frame's rows.
func (f *Frame) AddColumn(name string, values []float64) error {
	if _, ok := f.columns[name]; ok {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "column %q already exists", name)
	}

	if len(values) != f.Len() {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"column %q has %d values, frame has %d rows", name, len(values), f.Len())
	}

	f.names = append(f.names, name)
	f.columns[name] = values

	return nil
}

// TrimWarmup returns a frame view that starts at the first row where every
// listed channel is defined, dropping leading warm-up rows. Only leading rows
// are removed, so the last row (and therefore the most recent window) is
// unchanged. If no row has all channels defined the result is empty.
func (f *Frame) TrimWarmup(channels []string) (*Frame, error) {
	cols := make([][]float64, len(channels))

	for i, name := range channels {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}

		cols[i] = col
	}

	start := f.Len()

	for i := 0; i < f.Len(); i++ {
		defined := true

		for _, col := range cols {
			if IsUndefined(col[i]) {
				defined = false

				break
			}
		}

		if defined {
			start = i

			break
		}
	}

	trimmed := &Frame{
		series: &Series{
			Symbol: f.series.Symbol,
			Time:   f.series.Time[start:],
			Open:   f.series.Open[start:],
			High:   f.series.High[start:],
			Low:    f.series.Low[start:],
			Close:  f.series.Close[start:],
			Volume: f.series.Volume[start:],
		},
		names:   f.ColumnNames(),
		columns: make(map[string][]float64, len(f.columns)),
	}

	for name, col := range f.columns {
		trimmed.columns[name] = col[start:]
	}

	return trimmed, nil
}
