package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
)

// DataGenerator produces synthetic OHLCV series for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// Symbol is the instrument symbol (e.g., "AAPL", "BTCUSDT")
	Symbol string
	// StartTime is the timestamp of the first bar
	StartTime time.Time
	// Interval is the duration between bars
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the open of the first bar
	InitialPrice float64
	// Volatility controls price movement (0.002 = 0.2% per bar)
	Volatility float64
	// Trend is the total drift distributed across all bars
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the relative variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          10000,
		InitialPrice:   100.0,
		Volatility:     0.002, // 0.2% per bar
		Trend:          0.0,   // neutral
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// GenerateSeries creates a series based on the configuration. Closes follow
// a geometric Brownian motion model so indicators see realistic movement.
func (g *DataGenerator) GenerateSeries(config GeneratorConfig) *series.Series {
	s := &series.Series{
		Symbol: config.Symbol,
		Time:   make([]time.Time, config.Count),
		Open:   make([]float64, config.Count),
		High:   make([]float64, config.Count),
		Low:    make([]float64, config.Count),
		Close:  make([]float64, config.Count),
		Volume: make([]float64, config.Count),
	}

	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for normally distributed price moves.
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		close := open * (1 + priceChange + drift)
		if close <= 0 {
			close = open * 0.99 // Prevent negative prices
		}

		// High and low extend a little beyond the open-close range.
		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		s.Time[i] = currentTime
		s.Open[i] = roundToDecimals(open, 4)
		s.High[i] = roundToDecimals(high, 4)
		s.Low[i] = roundToDecimals(low, 4)
		s.Close[i] = roundToDecimals(close, 4)
		s.Volume[i] = roundToDecimals(volume, 2)

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return s
}

// GenerateLinearTrend creates a deterministic series whose close ramps by
// step per bar. High and low sit one unit around the close so range-based
// indicators stay predictable.
func GenerateLinearTrend(symbol string, count int, start, step float64) *series.Series {
	s := &series.Series{
		Symbol: symbol,
		Time:   make([]time.Time, count),
		Open:   make([]float64, count),
		High:   make([]float64, count),
		Low:    make([]float64, count),
		Close:  make([]float64, count),
		Volume: make([]float64, count),
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		price := start + step*float64(i)
		s.Time[i] = base.Add(time.Duration(i) * time.Minute)
		s.Open[i] = price
		s.High[i] = price + 1
		s.Low[i] = price - 1
		s.Close[i] = price
		s.Volume[i] = 1000
	}

	return s
}

// Generate10K is a convenience function to generate 10,000 bars
// with default settings for benchmarking.
func Generate10K(symbol string) *series.Series {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol
	config.Count = 10000

	return gen.GenerateSeries(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
