package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

type KindTestSuite struct {
	suite.Suite
}

func (suite *KindTestSuite) TestParseKind() {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(string(kind))
		suite.Require().NoError(err)
		suite.Equal(kind, parsed)
	}

	_, err := ParseKind("hull_ma")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownIndicator))
}

func (suite *KindTestSuite) TestNormalizedDefaults() {
	tests := []struct {
		name   string
		spec   Spec
		period int
		smooth int
	}{
		{name: "sma default", spec: Spec{Kind: KindSMA}, period: 20},
		{name: "rsi default", spec: Spec{Kind: KindRSI}, period: 14},
		{name: "roc default", spec: Spec{Kind: KindROC}, period: 10},
		{name: "atr default", spec: Spec{Kind: KindATR}, period: 14},
		{name: "stochastic default", spec: Spec{Kind: KindStochastic}, period: 14, smooth: 3},
		{name: "cci default", spec: Spec{Kind: KindCCI}, period: 20},
		{name: "slope default", spec: Spec{Kind: KindSlope}, period: 14},
		{name: "explicit period kept", spec: Spec{Kind: KindSMA, Period: 5}, period: 5},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			normalized, err := tc.spec.Normalized()
			suite.Require().NoError(err)
			suite.Equal(tc.period, normalized.Period)
			if tc.smooth > 0 {
				suite.Equal(tc.smooth, normalized.SmoothPeriod)
			}
		})
	}
}

func (suite *KindTestSuite) TestNormalizedBollinger() {
	normalized, err := Spec{Kind: KindBollinger}.Normalized()
	suite.Require().NoError(err)
	suite.Equal(20, normalized.Period)
	suite.InDelta(2.0, normalized.Multiplier, 1e-12)

	normalized, err = Spec{Kind: KindBollinger, Period: 10, Multiplier: 1.5}.Normalized()
	suite.Require().NoError(err)
	suite.Equal(10, normalized.Period)
	suite.InDelta(1.5, normalized.Multiplier, 1e-12)
}

func (suite *KindTestSuite) TestNormalizedMACD() {
	normalized, err := Spec{Kind: KindMACD}.Normalized()
	suite.Require().NoError(err)
	suite.Equal(12, normalized.FastPeriod)
	suite.Equal(26, normalized.SlowPeriod)
	suite.Equal(9, normalized.SignalPeriod)

	_, err = Spec{Kind: KindMACD, FastPeriod: 26, SlowPeriod: 12}.Normalized()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *KindTestSuite) TestNormalizedRejects() {
	tests := []struct {
		name string
		spec Spec
		code errors.ErrorCode
	}{
		{name: "negative period", spec: Spec{Kind: KindSMA, Period: -3}, code: errors.ErrCodeInvalidPeriod},
		{name: "slope period one", spec: Spec{Kind: KindSlope, Period: 1}, code: errors.ErrCodeInvalidPeriod},
		{name: "negative multiplier", spec: Spec{Kind: KindBollinger, Multiplier: -1}, code: errors.ErrCodeInvalidMultiplier},
		{name: "obv takes no period", spec: Spec{Kind: KindOBV, Period: 5}, code: errors.ErrCodeInvalidParameter},
		{name: "pivots take no period", spec: Spec{Kind: KindPivotPoints, Period: 3}, code: errors.ErrCodeInvalidParameter},
		{name: "unknown kind", spec: Spec{Kind: Kind("vwap")}, code: errors.ErrCodeUnknownIndicator},
		{name: "as arity mismatch", spec: Spec{Kind: KindBollinger, As: []string{"only_one"}}, code: errors.ErrCodeInvalidParameter},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := tc.spec.Normalized()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *KindTestSuite) TestOutputNames() {
	tests := []struct {
		name  string
		spec  Spec
		names []string
	}{
		{name: "sma", spec: Spec{Kind: KindSMA, Period: 20}, names: []string{"sma_20"}},
		{name: "bollinger", spec: Spec{Kind: KindBollinger, Period: 20, Multiplier: 2},
			names: []string{"bb_upper_20", "bb_middle_20", "bb_lower_20"}},
		{name: "stochastic", spec: Spec{Kind: KindStochastic, Period: 14, SmoothPeriod: 3},
			names: []string{"stoch_k_14", "stoch_d_14_3"}},
		{name: "adx", spec: Spec{Kind: KindADX, Period: 14},
			names: []string{"adx_14", "plus_di_14", "minus_di_14"}},
		{name: "macd", spec: Spec{Kind: KindMACD, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
			names: []string{"macd_12_26_9", "macd_signal_12_26_9", "macd_hist_12_26_9"}},
		{name: "obv", spec: Spec{Kind: KindOBV}, names: []string{"obv"}},
		{name: "pivots", spec: Spec{Kind: KindPivotPoints},
			names: []string{"pivot", "pivot_r1", "pivot_s1", "pivot_r2", "pivot_s2"}},
		{name: "renamed", spec: Spec{Kind: KindSMA, Period: 5, As: []string{"fast_ma"}},
			names: []string{"fast_ma"}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			normalized, err := tc.spec.Normalized()
			suite.Require().NoError(err)
			suite.Equal(tc.names, normalized.OutputNames())
			suite.Equal(len(tc.names), normalized.Outputs())
		})
	}
}

func (suite *KindTestSuite) TestWarmup() {
	tests := []struct {
		name   string
		spec   Spec
		warmup int
	}{
		{name: "sma", spec: Spec{Kind: KindSMA, Period: 20}, warmup: 19},
		{name: "ema", spec: Spec{Kind: KindEMA, Period: 12}, warmup: 11},
		{name: "rsi", spec: Spec{Kind: KindRSI, Period: 14}, warmup: 14},
		{name: "roc", spec: Spec{Kind: KindROC, Period: 10}, warmup: 10},
		{name: "atr", spec: Spec{Kind: KindATR, Period: 14}, warmup: 14},
		{name: "bollinger", spec: Spec{Kind: KindBollinger, Period: 20, Multiplier: 2}, warmup: 19},
		{name: "stochastic", spec: Spec{Kind: KindStochastic, Period: 14, SmoothPeriod: 3}, warmup: 15},
		{name: "williams", spec: Spec{Kind: KindWilliamsR, Period: 14}, warmup: 13},
		{name: "adx", spec: Spec{Kind: KindADX, Period: 14}, warmup: 27},
		{name: "macd", spec: Spec{Kind: KindMACD, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}, warmup: 33},
		{name: "obv", spec: Spec{Kind: KindOBV}, warmup: 0},
		{name: "vpt", spec: Spec{Kind: KindVPT}, warmup: 0},
		{name: "pivots", spec: Spec{Kind: KindPivotPoints}, warmup: 1},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			normalized, err := tc.spec.Normalized()
			suite.Require().NoError(err)
			suite.Equal(tc.warmup, normalized.Warmup())
		})
	}
}

func TestKindTestSuite(t *testing.T) {
	suite.Run(t, new(KindTestSuite))
}
