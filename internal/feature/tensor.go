// Package feature turns augmented frames into fixed-shape tensors for model
// training and inference. A batch build enumerates every window the frame can
// supply; an inference build produces exactly the trailing window. Both paths
// share the same window extraction and normalization code, so the inference
// tensor is elementwise identical to the last window of a batch built from
// the same frame.
package feature

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is stamped on every tensor this package builds. Consumers
// compare it with version.CheckSchemaCompatibility before training on or
// serving from persisted tensors.
const SchemaVersion = "1.2.0"

// Tensor is a dense [Windows, Length, Channels] block in row-major order.
type Tensor struct {
	Data []float64

	Windows  int
	Length   int
	Channels int

	// ChannelNames maps the channel axis back to frame columns.
	ChannelNames []string

	// Symbol is carried from the source series.
	Symbol string

	// BuildID uniquely identifies one build for dataset lineage.
	BuildID uuid.UUID

	// SchemaVersion records the layout this tensor was built with.
	SchemaVersion string

	CreatedAt time.Time
}

// Shape returns [windows, length, channels].
func (t *Tensor) Shape() [3]int {
	return [3]int{t.Windows, t.Length, t.Channels}
}

// At returns the value for window w, row i, channel c. Indices are not
// bounds-checked beyond the slice itself.
func (t *Tensor) At(w, i, c int) float64 {
	return t.Data[(w*t.Length+i)*t.Channels+c]
}

// Window returns the [Length, Channels] slice of window w, sharing the
// tensor's backing array.
func (t *Tensor) Window(w int) []float64 {
	size := t.Length * t.Channels
	return t.Data[w*size : (w+1)*size]
}
