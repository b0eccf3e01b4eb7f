package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

type DirectionTestSuite struct {
	suite.Suite
}

func (suite *DirectionTestSuite) TestADXOnSteadyUptrend() {
	// every bar moves up by 1, so all directional movement is positive
	c := testCache(increasing(60))

	adx, plusDI, minusDI, err := ADX(c, 14)
	suite.Require().NoError(err)

	for i := 0; i < 27; i++ {
		suite.True(series.IsUndefined(adx[i]), "index %d", i)
	}

	for i := 14; i < 60; i++ {
		suite.InDelta(50.0, plusDI[i], 1e-9, "index %d", i)
		suite.InDelta(0.0, minusDI[i], 1e-9, "index %d", i)
	}

	for i := 27; i < 60; i++ {
		suite.InDelta(100.0, adx[i], 1e-9, "index %d", i)
	}
}

func (suite *DirectionTestSuite) TestADXBounded() {
	c := testCache(noisy(300, 29))

	adx, plusDI, minusDI, err := ADX(c, 14)
	suite.Require().NoError(err)

	for i := 27; i < 300; i++ {
		suite.GreaterOrEqual(adx[i], 0.0, "index %d", i)
		suite.LessOrEqual(adx[i], 100.0, "index %d", i)
		suite.GreaterOrEqual(plusDI[i], 0.0, "index %d", i)
		suite.GreaterOrEqual(minusDI[i], 0.0, "index %d", i)
	}
}

func (suite *DirectionTestSuite) TestSmoothedTrueRangeSharedWithATR() {
	c := testCache(noisy(100, 31))

	_, _, _, err := ADX(c, 14)
	suite.Require().NoError(err)

	atr, err := ATR(c, 14)
	suite.Require().NoError(err)

	shared, err := c.Column("smoothed_tr_14")
	suite.Require().NoError(err)
	suite.Same(&atr[0], &shared[0])
}

func TestDirectionTestSuite(t *testing.T) {
	suite.Run(t, new(DirectionTestSuite))
}
