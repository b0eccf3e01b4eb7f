package indicator

import (
	"fmt"
	"testing"
)

// battery is a realistic multi-indicator request where several indicators
// want the same rolling aggregates.
var battery = []Spec{
	{Kind: KindSMA, Period: 20},
	{Kind: KindBollinger, Period: 20, Multiplier: 2},
	{Kind: KindStochastic, Period: 14, SmoothPeriod: 3},
	{Kind: KindWilliamsR, Period: 14},
	{Kind: KindATR, Period: 14},
	{Kind: KindADX, Period: 14},
	{Kind: KindRSI, Period: 14},
	{Kind: KindSlope, Period: 14},
}

// BenchmarkBatterySharedCache computes the battery against one cache per
// iteration, the way the orchestrator does: overlapping aggregates are
// computed once and shared.
func BenchmarkBatterySharedCache(b *testing.B) {
	closes := noisy(10_000, 61)
	s := testSeries(closes)

	specs := make([]Spec, len(battery))
	for i, raw := range battery {
		normalized, err := raw.Normalized()
		if err != nil {
			b.Fatal(err)
		}
		specs[i] = normalized
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := testCacheFromSeries(s)
		for _, spec := range specs {
			if _, err := Compute(c, spec); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// BenchmarkBatteryFreshCaches computes the same battery with a fresh cache
// per indicator, so nothing is shared. The gap against the shared run is the
// point of the cache.
func BenchmarkBatteryFreshCaches(b *testing.B) {
	closes := noisy(10_000, 61)
	s := testSeries(closes)

	specs := make([]Spec, len(battery))
	for i, raw := range battery {
		normalized, err := raw.Normalized()
		if err != nil {
			b.Fatal(err)
		}
		specs[i] = normalized
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, spec := range specs {
			c := testCacheFromSeries(s)
			if _, err := Compute(c, spec); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// BenchmarkRollingMeanWindowSizes verifies the kernels stay O(n) as the
// window grows.
func BenchmarkRollingMeanWindowSizes(b *testing.B) {
	closes := noisy(10_000, 67)
	s := testSeries(closes)

	for _, window := range []int{5, 50, 500} {
		b.Run(fmt.Sprintf("window_%d", window), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				c := testCacheFromSeries(s)
				if _, err := SMA(c, "close", window); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
