package feature

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Params controls a tensor build.
type Params struct {
	// Length is the number of rows per window.
	Length int

	// Channels selects frame columns for the channel axis, in order. Empty
	// means every frame column.
	Channels []string

	// Normalization is applied per window and per channel.
	Normalization Normalization
}

// Build produces the batch tensor: one window per frame position, oldest
// first, [n-length+1, length, channels]. Windows overlapping undefined values
// come out undefined rather than silently dropped; trim the frame first if
// that is not wanted.
func Build(frame *series.Frame, params Params) (*Tensor, error) {
	windows := frame.Len() - params.Length + 1

	return build(frame, params, 0, windows)
}

// BuildLast produces the inference tensor: exactly the trailing window,
// [1, length, channels]. It runs the same extraction and normalization as
// Build over the same frame, so its single window is elementwise identical
// to the last window Build returns.
func BuildLast(frame *series.Frame, params Params) (*Tensor, error) {
	return build(frame, params, frame.Len()-params.Length, 1)
}

func build(frame *series.Frame, params Params, firstWindow, windows int) (*Tensor, error) {
	if params.Length < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidWindowLength,
			"window length must be positive, got %d", params.Length)
	}

	if windows < 1 {
		return nil, errors.NewInsufficientHistoryErrorf(params.Length, frame.Len(), frame.Series().Symbol,
			"frame has %d rows, the window needs %d", frame.Len(), params.Length)
	}

	channels := params.Channels
	if len(channels) == 0 {
		channels = frame.ColumnNames()
	}

	columns := make([][]float64, len(channels))

	for i, name := range channels {
		col, err := frame.Column(name)
		if err != nil {
			return nil, err
		}

		columns[i] = col
	}

	length := params.Length
	tensor := &Tensor{
		Data:          make([]float64, windows*length*len(channels)),
		Windows:       windows,
		Length:        length,
		Channels:      len(channels),
		ChannelNames:  channels,
		Symbol:        frame.Series().Symbol,
		BuildID:       uuid.New(),
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
	}

	// Window statistics come from the shared rolling kernels over the full
	// columns, one O(n) pass per channel instead of one pass per window.
	stats := rolling.New(frame.Len())

	for c, name := range channels {
		if err := stats.Register(name, columns[c]); err != nil {
			return nil, err
		}
	}

	for c, name := range channels {
		values := columns[c]

		// scale returns the window's offset and span. Division by the span
		// keeps the bounds exact: the window minimum lands on 0 and the
		// maximum on 1, never 1+ulp. A zero span marks a constant window,
		// which maps to zero everywhere.
		var scale func(w int) (offset, span float64, defined bool)

		switch params.Normalization {
		case NormalizationNone, "":
			scale = nil
		case NormalizationMinMax:
			mins, err := stats.Get(name, rolling.StatMin, length)
			if err != nil {
				return nil, err
			}

			maxs, err := stats.Get(name, rolling.StatMax, length)
			if err != nil {
				return nil, err
			}

			scale = func(w int) (float64, float64, bool) {
				end := firstWindow + w + length - 1
				lo, hi := mins[end], maxs[end]

				if math.IsNaN(lo) || math.IsNaN(hi) {
					return 0, 0, false
				}

				return lo, hi - lo, true
			}
		case NormalizationZScore:
			means, err := stats.Get(name, rolling.StatMean, length)
			if err != nil {
				return nil, err
			}

			stds, err := stats.Get(name, rolling.StatStd, length)
			if err != nil {
				return nil, err
			}

			scale = func(w int) (float64, float64, bool) {
				end := firstWindow + w + length - 1
				mean, std := means[end], stds[end]

				if math.IsNaN(mean) || math.IsNaN(std) {
					return 0, 0, false
				}

				return mean, std, true
			}
		default:
			return nil, errors.Newf(errors.ErrCodeInvalidNormalization,
				"unknown normalization %q", params.Normalization)
		}

		for w := 0; w < windows; w++ {
			start := firstWindow + w

			if scale == nil {
				for i := 0; i < length; i++ {
					tensor.Data[(w*length+i)*len(channels)+c] = values[start+i]
				}

				continue
			}

			offset, span, defined := scale(w)

			for i := 0; i < length; i++ {
				idx := (w*length+i)*len(channels) + c

				switch {
				case !defined:
					tensor.Data[idx] = series.Undefined()
				case span == 0:
					tensor.Data[idx] = 0
				default:
					tensor.Data[idx] = (values[start+i] - offset) / span
				}
			}
		}
	}

	return tensor, nil
}
