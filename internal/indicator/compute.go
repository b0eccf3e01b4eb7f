package indicator

import (
	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Compute evaluates a normalized spec against the cache and returns its
// output series, ordered exactly like Spec.OutputNames. Multi-output kinds
// are computed in one call and unpacked here. Price-based indicators read the
// close column; range-based ones read high/low/close as they need.
func Compute(c *rolling.Cache, spec Spec) ([][]float64, error) {
	switch spec.Kind {
	case KindSMA:
		out, err := SMA(c, series.ColClose, spec.Period)

		return wrap1(out, err)
	case KindEMA:
		out, err := EMA(c, series.ColClose, spec.Period)

		return wrap1(out, err)
	case KindWMA:
		out, err := WMA(c, series.ColClose, spec.Period)

		return wrap1(out, err)
	case KindMACD:
		line, signal, hist, err := MACD(c, series.ColClose, spec.FastPeriod, spec.SlowPeriod, spec.SignalPeriod)
		if err != nil {
			return nil, err
		}

		return [][]float64{line, signal, hist}, nil
	case KindRSI:
		out, err := RSI(c, series.ColClose, spec.Period)

		return wrap1(out, err)
	case KindROC:
		out, err := ROC(c, series.ColClose, spec.Period)

		return wrap1(out, err)
	case KindATR:
		out, err := ATR(c, spec.Period)

		return wrap1(out, err)
	case KindBollinger:
		upper, middle, lower, err := Bollinger(c, series.ColClose, spec.Period, spec.Multiplier)
		if err != nil {
			return nil, err
		}

		return [][]float64{upper, middle, lower}, nil
	case KindStochastic:
		k, d, err := Stochastic(c, spec.Period, spec.SmoothPeriod)
		if err != nil {
			return nil, err
		}

		return [][]float64{k, d}, nil
	case KindWilliamsR:
		out, err := WilliamsR(c, spec.Period)

		return wrap1(out, err)
	case KindCCI:
		out, err := CCI(c, spec.Period)

		return wrap1(out, err)
	case KindSlope:
		out, err := Slope(c, series.ColClose, spec.Period)

		return wrap1(out, err)
	case KindADX:
		adx, plusDI, minusDI, err := ADX(c, spec.Period)
		if err != nil {
			return nil, err
		}

		return [][]float64{adx, plusDI, minusDI}, nil
	case KindOBV:
		out, err := OBV(c)

		return wrap1(out, err)
	case KindVPT:
		out, err := VPT(c)

		return wrap1(out, err)
	case KindPivotPoints:
		pivot, r1, s1, r2, s2, err := PivotPoints(c)
		if err != nil {
			return nil, err
		}

		return [][]float64{pivot, r1, s1, r2, s2}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownIndicator, "unknown indicator %q", spec.Kind)
	}
}

func wrap1(out []float64, err error) ([][]float64, error) {
	if err != nil {
		return nil, err
	}

	return [][]float64{out}, nil
}
