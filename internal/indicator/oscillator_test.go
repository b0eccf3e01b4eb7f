package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

type OscillatorTestSuite struct {
	suite.Suite
}

func (suite *OscillatorTestSuite) TestStochasticHandComputed() {
	c := testCacheOHLCV(
		[]float64{10, 12, 11},
		[]float64{8, 9, 9},
		[]float64{9, 11, 10},
		[]float64{100, 100, 100},
	)

	k, d, err := Stochastic(c, 2, 2)
	suite.Require().NoError(err)

	suite.True(series.IsUndefined(k[0]))
	suite.InDelta(75.0, k[1], 1e-12)
	suite.InDelta(100.0/3.0, k[2], 1e-9)

	suite.True(series.IsUndefined(d[0]))
	suite.True(series.IsUndefined(d[1]))
	suite.InDelta((75.0+100.0/3.0)/2, d[2], 1e-9)
}

func (suite *OscillatorTestSuite) TestStochasticBounded() {
	c := testCache(noisy(300, 21))

	k, d, err := Stochastic(c, 14, 3)
	suite.Require().NoError(err)

	for i := 13; i < 300; i++ {
		suite.GreaterOrEqual(k[i], 0.0, "index %d", i)
		suite.LessOrEqual(k[i], 100.0, "index %d", i)
	}

	for i := 15; i < 300; i++ {
		suite.GreaterOrEqual(d[i], 0.0, "index %d", i)
		suite.LessOrEqual(d[i], 100.0, "index %d", i)
	}
}

func (suite *OscillatorTestSuite) TestWilliamsRIsShiftedStochastic() {
	c := testCache(noisy(200, 17))

	k, _, err := Stochastic(c, 14, 3)
	suite.Require().NoError(err)

	w, err := WilliamsR(c, 14)
	suite.Require().NoError(err)

	for i := 13; i < 200; i++ {
		suite.InDelta(k[i]-100, w[i], 1e-9, "index %d", i)
	}
}

func (suite *OscillatorTestSuite) TestExtremesSharedAcrossOscillators() {
	c := testCache(noisy(200, 17))

	_, _, err := Stochastic(c, 14, 3)
	suite.Require().NoError(err)

	// lowest low, highest high, %D smoothing
	suite.Equal(3, c.Computations())

	_, err = WilliamsR(c, 14)
	suite.Require().NoError(err)

	// Williams %R reuses both extremes
	suite.Equal(3, c.Computations())
}

func (suite *OscillatorTestSuite) TestFlatWindowUndefined() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}

	s := testSeries(closes)
	for i := range s.High {
		s.High[i] = 50
		s.Low[i] = 50
	}

	c := testCacheOHLCV(s.High, s.Low, s.Close, s.Volume)

	k, _, err := Stochastic(c, 14, 3)
	suite.Require().NoError(err)

	w, err := WilliamsR(c, 14)
	suite.Require().NoError(err)

	for i := range closes {
		suite.True(series.IsUndefined(k[i]), "index %d", i)
		suite.True(series.IsUndefined(w[i]), "index %d", i)
	}
}

func (suite *OscillatorTestSuite) TestCCIHandComputed() {
	c := testCacheOHLCV(
		[]float64{2, 4, 6},
		[]float64{0, 2, 4},
		[]float64{1, 3, 5},
		[]float64{100, 100, 100},
	)

	got, err := CCI(c, 3)
	suite.Require().NoError(err)

	suite.True(series.IsUndefined(got[0]))
	suite.True(series.IsUndefined(got[1]))
	// typical prices 1, 3, 5: mean 3, mean absolute deviation 4/3
	suite.InDelta(100.0, got[2], 1e-9)
}

func (suite *OscillatorTestSuite) TestCCIFlatUndefined() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}

	s := testSeries(closes)
	for i := range s.High {
		s.High[i] = 50
		s.Low[i] = 50
	}

	c := testCacheOHLCV(s.High, s.Low, s.Close, s.Volume)

	got, err := CCI(c, 20)
	suite.Require().NoError(err)

	for i := range closes {
		suite.True(series.IsUndefined(got[i]), "index %d", i)
	}
}

func TestOscillatorTestSuite(t *testing.T) {
	suite.Run(t, new(OscillatorTestSuite))
}
