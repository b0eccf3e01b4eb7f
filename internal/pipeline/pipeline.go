// Package pipeline orchestrates the transformation from raw OHLCV series to
// model-ready feature tensors: indicator augmentation over a shared rolling
// cache, warm-up accounting, and batch or inference window building.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-pipeline/internal/feature"
	"github.com/rxtech-lab/argo-pipeline/internal/indicator"
	"github.com/rxtech-lab/argo-pipeline/internal/logger"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Pipeline applies one validated config to any number of series. It holds the
// normalized indicator specs and the derived lookback so every call shares
// the same accounting.
type Pipeline struct {
	config   Config
	specs    []indicator.Spec
	lookback int
	log      *logger.Logger
}

// New validates the config and builds a pipeline. A nil logger falls back to
// a no-op logger.
func New(config Config, log *logger.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	specs := make([]indicator.Spec, len(config.Indicators))

	for i, spec := range config.Indicators {
		normalized, err := spec.Normalized()
		if err != nil {
			return nil, err
		}

		specs[i] = normalized
	}

	lookback, err := RequiredLookback(specs)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:   config,
		specs:    specs,
		lookback: lookback,
		log:      log,
	}, nil
}

// Config returns the pipeline's config.
func (p *Pipeline) Config() Config {
	return p.config
}

// RequiredLookback returns the longest indicator warm-up of this pipeline.
func (p *Pipeline) RequiredLookback() int {
	return p.lookback
}

// RequiredHistory returns the minimal number of bars BuildLast accepts:
// warm-up, one feature window, and the configured headroom.
func (p *Pipeline) RequiredHistory() int {
	return p.lookback + p.config.WindowLength + p.config.Headroom
}

// Augment computes the configured indicators and returns the augmented
// frame. Unless the config allows partial results, a series too short for
// even one defined row of the slowest indicator is rejected.
func (p *Pipeline) Augment(s *series.Series) (*series.Frame, error) {
	if !p.config.AllowPartial && len(p.specs) > 0 && s.Len() <= p.lookback {
		return nil, errors.NewInsufficientHistoryErrorf(p.lookback+1, s.Len(), s.Symbol,
			"series has %d bars, the longest indicator warm-up needs %d",
			s.Len(), p.lookback+1)
	}

	frame, err := Augment(s, p.specs)
	if err != nil {
		return nil, err
	}

	p.log.Debug("augmented series",
		zap.String("symbol", s.Symbol),
		zap.Int("rows", frame.Len()),
		zap.Int("columns", len(frame.ColumnNames())),
	)

	return frame, nil
}

// BuildBatch augments the series and cuts every overlapping window into a
// training tensor. The full series is always used; windows overlapping the
// indicator warm-up come out undefined unless drop_warmup removes those rows
// first.
func (p *Pipeline) BuildBatch(s *series.Series) (*feature.Tensor, error) {
	frame, err := p.Augment(s)
	if err != nil {
		return nil, err
	}

	if p.config.DropWarmup {
		frame, err = frame.TrimWarmup(p.channels(frame))
		if err != nil {
			return nil, err
		}
	}

	tensor, err := feature.Build(frame, p.featureParams())
	if err != nil {
		return nil, err
	}

	p.log.Info("built batch tensor",
		zap.String("symbol", s.Symbol),
		zap.Int("windows", tensor.Windows),
		zap.Int("length", tensor.Length),
		zap.Int("channels", tensor.Channels),
		zap.String("build_id", tensor.BuildID.String()),
	)

	return tensor, nil
}

// BuildLast slices the minimal trailing history, augments it and returns the
// single most recent window for inference. A series shorter than
// RequiredHistory is rejected rather than padded.
func (p *Pipeline) BuildLast(s *series.Series) (*feature.Tensor, error) {
	required := p.RequiredHistory()
	if s.Len() < required {
		return nil, errors.NewInsufficientHistoryErrorf(required, s.Len(), s.Symbol,
			"inference needs %d bars (%d warm-up + %d window + %d headroom), got %d",
			required, p.lookback, p.config.WindowLength, p.config.Headroom, s.Len())
	}

	tail, err := s.Tail(required)
	if err != nil {
		return nil, err
	}

	// the guard above already guarantees at least one defined row
	frame, err := Augment(tail, p.specs)
	if err != nil {
		return nil, err
	}

	tensor, err := feature.BuildLast(frame, p.featureParams())
	if err != nil {
		return nil, err
	}

	p.log.Info("built inference tensor",
		zap.String("symbol", s.Symbol),
		zap.Int("length", tensor.Length),
		zap.Int("channels", tensor.Channels),
		zap.String("build_id", tensor.BuildID.String()),
	)

	return tensor, nil
}

func (p *Pipeline) channels(frame *series.Frame) []string {
	if len(p.config.Channels) > 0 {
		return p.config.Channels
	}

	return frame.ColumnNames()
}

func (p *Pipeline) featureParams() feature.Params {
	return feature.Params{
		Length:        p.config.WindowLength,
		Channels:      p.config.Channels,
		Normalization: p.config.Normalization,
	}
}
