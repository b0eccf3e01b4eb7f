package indicator

import (
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-pipeline/internal/rolling"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

// testSeries builds a series from explicit closes; highs and lows are offset
// so range-based indicators have something to chew on.
func testSeries(closes []float64) *series.Series {
	n := len(closes)
	s := &series.Series{
		Symbol: "TEST",
		Time:   make([]time.Time, n),
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  closes,
		Volume: make([]float64, n),
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Time[i] = start.Add(time.Duration(i) * 24 * time.Hour)
		s.Open[i] = closes[i]
		s.High[i] = closes[i] + 1
		s.Low[i] = closes[i] - 1
		s.Volume[i] = 1000
	}

	return s
}

func testCache(closes []float64) *rolling.Cache {
	return rolling.FromSeries(testSeries(closes))
}

func testCacheFromSeries(s *series.Series) *rolling.Cache {
	return rolling.FromSeries(s)
}

// testCacheOHLCV builds a cache from explicit bars for hand-computed cases.
func testCacheOHLCV(high, low, closes, volume []float64) *rolling.Cache {
	n := len(closes)
	s := testSeries(closes)

	for i := 0; i < n; i++ {
		s.High[i] = high[i]
		s.Low[i] = low[i]
		s.Volume[i] = volume[i]
	}

	return rolling.FromSeries(s)
}

func increasing(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}

	return out
}

func noisy(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 100.0

	for i := range out {
		price += rng.Float64()*2 - 1
		out[i] = price
	}

	return out
}
