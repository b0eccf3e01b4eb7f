// Package indicator implements the technical indicator library as pure,
// vectorized functions over columnar arrays. Indicators pull their inputs and
// shared rolling aggregates from a rolling.Cache and return aligned output
// series, marking warm-up entries with the undefined sentinel.
//
// The supported indicators form a closed set: Kind enumerates them, Spec
// carries their parameters, and Compute dispatches over the set. There is no
// runtime registry.
package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Kind identifies a supported indicator.
type Kind string

const (
	KindSMA         Kind = "sma"
	KindEMA         Kind = "ema"
	KindWMA         Kind = "wma"
	KindMACD        Kind = "macd"
	KindRSI         Kind = "rsi"
	KindROC         Kind = "roc"
	KindATR         Kind = "atr"
	KindBollinger   Kind = "bollinger"
	KindStochastic  Kind = "stochastic"
	KindWilliamsR   Kind = "williams_r"
	KindCCI         Kind = "cci"
	KindSlope       Kind = "slope"
	KindADX         Kind = "adx"
	KindOBV         Kind = "obv"
	KindVPT         Kind = "vpt"
	KindPivotPoints Kind = "pivot_points"
)

// Kinds returns every supported indicator kind.
func Kinds() []Kind {
	return []Kind{
		KindSMA, KindEMA, KindWMA, KindMACD,
		KindRSI, KindROC,
		KindATR, KindBollinger,
		KindStochastic, KindWilliamsR, KindCCI,
		KindSlope, KindADX,
		KindOBV, KindVPT,
		KindPivotPoints,
	}
}

// ParseKind resolves an indicator name to its Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeUnknownIndicator, "unknown indicator %q", name)
}

// Spec requests one indicator computation. Zero-valued parameters take the
// kind's defaults; As overrides the derived output column names and must then
// match the kind's output count.
type Spec struct {
	Kind Kind `json:"kind" yaml:"kind" validate:"required"`

	// Period is the main lookback period. Unused by macd, obv, vpt and
	// pivot_points.
	Period int `json:"period,omitempty" yaml:"period,omitempty" validate:"gte=0"`

	// FastPeriod, SlowPeriod and SignalPeriod parameterize macd.
	FastPeriod   int `json:"fast_period,omitempty" yaml:"fast_period,omitempty" validate:"gte=0"`
	SlowPeriod   int `json:"slow_period,omitempty" yaml:"slow_period,omitempty" validate:"gte=0"`
	SignalPeriod int `json:"signal_period,omitempty" yaml:"signal_period,omitempty" validate:"gte=0"`

	// SmoothPeriod is the %D smoothing window of stochastic.
	SmoothPeriod int `json:"smooth_period,omitempty" yaml:"smooth_period,omitempty" validate:"gte=0"`

	// Multiplier is the band width factor of bollinger.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty" validate:"gte=0"`

	// As renames the output columns.
	As []string `json:"as,omitempty" yaml:"as,omitempty"`
}

// defaults per kind; a zero parameter in a Spec means "use the default".
const (
	defaultMAPeriod     = 20
	defaultRSIPeriod    = 14
	defaultROCPeriod    = 10
	defaultATRPeriod    = 14
	defaultBollPeriod   = 20
	defaultBollMult     = 2.0
	defaultStochPeriod  = 14
	defaultStochSmooth  = 3
	defaultWilliamsR    = 14
	defaultCCIPeriod    = 20
	defaultSlopePeriod  = 14
	defaultADXPeriod    = 14
	defaultMACDFast     = 12
	defaultMACDSlow     = 26
	defaultMACDSignal   = 9
	minimumSlopePeriod  = 2
	minimumWindowPeriod = 1
)

// Normalized validates the spec and returns a copy with defaults applied.
// The returned spec is what Compute, Warmup and OutputNames operate on.
func (s Spec) Normalized() (Spec, error) {
	if _, err := ParseKind(string(s.Kind)); err != nil {
		return Spec{}, err
	}

	out := s

	switch s.Kind {
	case KindSMA, KindEMA, KindWMA:
		out.Period = defaultPeriod(s.Period, defaultMAPeriod)
	case KindRSI:
		out.Period = defaultPeriod(s.Period, defaultRSIPeriod)
	case KindROC:
		out.Period = defaultPeriod(s.Period, defaultROCPeriod)
	case KindATR:
		out.Period = defaultPeriod(s.Period, defaultATRPeriod)
	case KindBollinger:
		out.Period = defaultPeriod(s.Period, defaultBollPeriod)

		if out.Multiplier == 0 {
			out.Multiplier = defaultBollMult
		}

		if out.Multiplier < 0 {
			return Spec{}, errors.Newf(errors.ErrCodeInvalidMultiplier,
				"bollinger multiplier must be positive, got %v", out.Multiplier)
		}
	case KindStochastic:
		out.Period = defaultPeriod(s.Period, defaultStochPeriod)
		out.SmoothPeriod = defaultPeriod(s.SmoothPeriod, defaultStochSmooth)
	case KindWilliamsR:
		out.Period = defaultPeriod(s.Period, defaultWilliamsR)
	case KindCCI:
		out.Period = defaultPeriod(s.Period, defaultCCIPeriod)
	case KindSlope:
		out.Period = defaultPeriod(s.Period, defaultSlopePeriod)

		if out.Period < minimumSlopePeriod {
			return Spec{}, errors.Newf(errors.ErrCodeInvalidPeriod,
				"slope period must be at least %d, got %d", minimumSlopePeriod, out.Period)
		}
	case KindADX:
		out.Period = defaultPeriod(s.Period, defaultADXPeriod)
	case KindMACD:
		out.FastPeriod = defaultPeriod(s.FastPeriod, defaultMACDFast)
		out.SlowPeriod = defaultPeriod(s.SlowPeriod, defaultMACDSlow)
		out.SignalPeriod = defaultPeriod(s.SignalPeriod, defaultMACDSignal)

		if out.FastPeriod >= out.SlowPeriod {
			return Spec{}, errors.Newf(errors.ErrCodeInvalidPeriod,
				"macd fast period %d must be smaller than slow period %d", out.FastPeriod, out.SlowPeriod)
		}
	case KindOBV, KindVPT, KindPivotPoints:
		if s.Period != 0 {
			return Spec{}, errors.Newf(errors.ErrCodeInvalidParameter,
				"indicator %q takes no period", s.Kind)
		}
	}

	if out.Period < 0 || (out.Period < minimumWindowPeriod && requiresPeriod(out.Kind)) {
		return Spec{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"indicator %q requires a positive period, got %d", s.Kind, s.Period)
	}

	if len(out.As) > 0 && len(out.As) != out.Outputs() {
		return Spec{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"indicator %q produces %d outputs, %d names given", s.Kind, out.Outputs(), len(out.As))
	}

	return out, nil
}

func defaultPeriod(value, fallback int) int {
	if value == 0 {
		return fallback
	}

	return value
}

func requiresPeriod(k Kind) bool {
	switch k {
	case KindOBV, KindVPT, KindPivotPoints, KindMACD:
		return false
	default:
		return true
	}
}

// Outputs returns how many series the kind produces.
func (s Spec) Outputs() int {
	switch s.Kind {
	case KindBollinger, KindMACD, KindADX:
		return 3
	case KindStochastic:
		return 2
	case KindPivotPoints:
		return 5
	default:
		return 1
	}
}

// OutputNames returns the ordered output column names, honoring As overrides.
// Call on a normalized spec.
func (s Spec) OutputNames() []string {
	if len(s.As) > 0 {
		names := make([]string, len(s.As))
		copy(names, s.As)

		return names
	}

	switch s.Kind {
	case KindSMA, KindEMA, KindWMA, KindRSI, KindROC, KindATR, KindCCI, KindSlope:
		return []string{fmt.Sprintf("%s_%d", s.Kind, s.Period)}
	case KindWilliamsR:
		return []string{fmt.Sprintf("williams_r_%d", s.Period)}
	case KindBollinger:
		return []string{
			fmt.Sprintf("bb_upper_%d", s.Period),
			fmt.Sprintf("bb_middle_%d", s.Period),
			fmt.Sprintf("bb_lower_%d", s.Period),
		}
	case KindStochastic:
		return []string{
			fmt.Sprintf("stoch_k_%d", s.Period),
			fmt.Sprintf("stoch_d_%d_%d", s.Period, s.SmoothPeriod),
		}
	case KindADX:
		return []string{
			fmt.Sprintf("adx_%d", s.Period),
			fmt.Sprintf("plus_di_%d", s.Period),
			fmt.Sprintf("minus_di_%d", s.Period),
		}
	case KindMACD:
		return []string{
			fmt.Sprintf("macd_%d_%d_%d", s.FastPeriod, s.SlowPeriod, s.SignalPeriod),
			fmt.Sprintf("macd_signal_%d_%d_%d", s.FastPeriod, s.SlowPeriod, s.SignalPeriod),
			fmt.Sprintf("macd_hist_%d_%d_%d", s.FastPeriod, s.SlowPeriod, s.SignalPeriod),
		}
	case KindOBV:
		return []string{"obv"}
	case KindVPT:
		return []string{"vpt"}
	case KindPivotPoints:
		return []string{"pivot", "pivot_r1", "pivot_s1", "pivot_r2", "pivot_s2"}
	default:
		return nil
	}
}

// Warmup returns the number of leading entries the kind leaves undefined,
// derived from its own smoothing stages. Call on a normalized spec.
func (s Spec) Warmup() int {
	switch s.Kind {
	case KindSMA, KindEMA, KindWMA, KindBollinger, KindWilliamsR, KindCCI, KindSlope:
		return s.Period - 1
	case KindRSI, KindROC, KindATR:
		return s.Period
	case KindStochastic:
		return s.Period + s.SmoothPeriod - 2
	case KindADX:
		// one bar of directional movement, then two Wilder stages
		return 2*s.Period - 1
	case KindMACD:
		return s.SlowPeriod + s.SignalPeriod - 2
	case KindOBV, KindVPT:
		return 0
	case KindPivotPoints:
		return 1
	default:
		return 0
	}
}
