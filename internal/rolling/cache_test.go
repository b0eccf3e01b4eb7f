package rolling

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func randomValues(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)

	for i := range values {
		values[i] = 100 + rng.Float64()*10
	}

	return values
}

func naiveWindow(values []float64, window, end int, reduce func([]float64) float64) float64 {
	return reduce(values[end-window+1 : end+1])
}

func naiveMean(w []float64) float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}

	return sum / float64(len(w))
}

func naiveStd(w []float64) float64 {
	mean := naiveMean(w)
	sum := 0.0

	for _, v := range w {
		d := v - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(w)))
}

func naiveMin(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v < m {
			m = v
		}
	}

	return m
}

func naiveMax(w []float64) float64 {
	m := w[0]
	for _, v := range w[1:] {
		if v > m {
			m = v
		}
	}

	return m
}

func (suite *CacheTestSuite) newCache(values []float64) *Cache {
	c := New(len(values))
	suite.Require().NoError(c.Register("x", values))

	return c
}

func (suite *CacheTestSuite) TestMeanMatchesNaive() {
	values := randomValues(500, 1)
	c := suite.newCache(values)

	for _, window := range []int{1, 2, 5, 20, 137} {
		out, err := c.Get("x", StatMean, window)
		suite.Require().NoError(err)
		suite.Len(out, len(values))

		for i := 0; i < window-1; i++ {
			suite.True(series.IsUndefined(out[i]), "window %d index %d should be undefined", window, i)
		}

		for i := window - 1; i < len(values); i++ {
			want := naiveWindow(values, window, i, naiveMean)
			suite.InDelta(want, out[i], math.Abs(want)*1e-9)
		}
	}
}

func (suite *CacheTestSuite) TestStdMatchesNaive() {
	values := randomValues(400, 2)
	c := suite.newCache(values)

	for _, window := range []int{2, 5, 20} {
		out, err := c.Get("x", StatStd, window)
		suite.Require().NoError(err)

		for i := window - 1; i < len(values); i++ {
			want := naiveWindow(values, window, i, naiveStd)
			suite.InDelta(want, out[i], 1e-7)
		}
	}
}

func (suite *CacheTestSuite) TestStdConstantWindowIsZero() {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 42.5
	}

	c := suite.newCache(values)

	out, err := c.Get("x", StatStd, 10)
	suite.Require().NoError(err)

	for i := 9; i < len(values); i++ {
		suite.Equal(0.0, out[i])
	}
}

func (suite *CacheTestSuite) TestMinMaxMatchNaive() {
	values := randomValues(600, 3)
	c := suite.newCache(values)

	for _, window := range []int{1, 3, 14, 50} {
		minOut, err := c.Get("x", StatMin, window)
		suite.Require().NoError(err)

		maxOut, err := c.Get("x", StatMax, window)
		suite.Require().NoError(err)

		for i := window - 1; i < len(values); i++ {
			suite.Equal(naiveWindow(values, window, i, naiveMin), minOut[i], "min window %d index %d", window, i)
			suite.Equal(naiveWindow(values, window, i, naiveMax), maxOut[i], "max window %d index %d", window, i)
		}
	}
}

func (suite *CacheTestSuite) TestSameKeyReturnsSameArray() {
	values := randomValues(100, 4)
	c := suite.newCache(values)

	first, err := c.Get("x", StatMean, 20)
	suite.Require().NoError(err)

	second, err := c.Get("x", StatMean, 20)
	suite.Require().NoError(err)

	// Identical backing array, not merely equal values
	suite.Same(&first[0], &second[0])
	suite.Equal(1, c.Computations())
}

func (suite *CacheTestSuite) TestDistinctKeysComputedSeparately() {
	values := randomValues(100, 5)
	c := suite.newCache(values)

	_, err := c.Get("x", StatMean, 20)
	suite.Require().NoError(err)

	_, err = c.Get("x", StatStd, 20)
	suite.Require().NoError(err)

	_, err = c.Get("x", StatMean, 14)
	suite.Require().NoError(err)

	suite.Equal(3, c.Computations())
}

func (suite *CacheTestSuite) TestWindowLargerThanColumn() {
	values := randomValues(10, 6)
	c := suite.newCache(values)

	out, err := c.Get("x", StatMean, 11)
	suite.Require().NoError(err)

	for _, v := range out {
		suite.True(series.IsUndefined(v))
	}
}

func (suite *CacheTestSuite) TestUndefinedSourceEntries() {
	values := randomValues(30, 7)
	values[10] = series.Undefined()

	c := suite.newCache(values)

	for _, stat := range []Stat{StatMean, StatStd, StatMin, StatMax} {
		out, err := c.Get("x", stat, 5)
		suite.Require().NoError(err)

		// Windows covering index 10 are undefined
		for i := 10; i <= 14; i++ {
			suite.True(series.IsUndefined(out[i]), "stat %s index %d", stat, i)
		}

		// Windows before and after are not
		suite.False(series.IsUndefined(out[9]), "stat %s index 9", stat)
		suite.False(series.IsUndefined(out[15]), "stat %s index 15", stat)
	}
}

func (suite *CacheTestSuite) TestInvalidWindow() {
	c := suite.newCache(randomValues(10, 8))

	_, err := c.Get("x", StatMean, 0)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *CacheTestSuite) TestUnknownColumn() {
	c := suite.newCache(randomValues(10, 9))

	_, err := c.Get("y", StatMean, 5)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownColumn))
}

func (suite *CacheTestSuite) TestRegisterDuplicate() {
	c := suite.newCache(randomValues(10, 10))

	err := c.Register("x", randomValues(10, 11))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDuplicateColumn))
}

func (suite *CacheTestSuite) TestRegisterLengthMismatch() {
	c := New(10)

	err := c.Register("x", make([]float64, 9))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *CacheTestSuite) TestEnsureComputesOnce() {
	c := suite.newCache(randomValues(10, 12))

	calls := 0
	compute := func() []float64 {
		calls++

		return make([]float64, 10)
	}

	first, err := c.Ensure("derived", compute)
	suite.Require().NoError(err)

	second, err := c.Ensure("derived", compute)
	suite.Require().NoError(err)

	suite.Equal(1, calls)
	suite.Same(&first[0], &second[0])
}

func (suite *CacheTestSuite) TestFromSeries() {
	s := &series.Series{
		Symbol: "TEST",
		Time:   []time.Time{time.Unix(0, 0), time.Unix(60, 0), time.Unix(120, 0)},
		Open:   []float64{1, 2, 3},
		High:   []float64{2, 3, 4},
		Low:    []float64{0.5, 1.5, 2.5},
		Close:  []float64{1.5, 2.5, 3.5},
		Volume: []float64{10, 20, 30},
	}

	c := FromSeries(s)
	suite.Equal(3, c.Len())

	for _, name := range series.BaseColumns() {
		col, err := c.Column(name)
		suite.NoError(err)
		suite.Len(col, 3)
	}

	mean, err := c.Get(series.ColClose, StatMean, 2)
	suite.Require().NoError(err)
	suite.True(series.IsUndefined(mean[0]))
	suite.InDelta(2.0, mean[1], 1e-12)
	suite.InDelta(3.0, mean[2], 1e-12)
}
