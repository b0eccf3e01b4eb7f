package provider

import (
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// Interval is the bar duration requested from a provider, in exchange
// notation. Binance accepts these strings directly; Polygon splits them into
// a multiplier and a timespan unit.
type Interval string

const (
	IntervalOneSecond      Interval = "1s"
	IntervalOneMinute      Interval = "1m"
	IntervalThreeMinutes   Interval = "3m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
	IntervalTwoHours       Interval = "2h"
	IntervalFourHours      Interval = "4h"
	IntervalSixHours       Interval = "6h"
	IntervalEightHours     Interval = "8h"
	IntervalTwelveHours    Interval = "12h"
	IntervalOneDay         Interval = "1d"
	IntervalThreeDays      Interval = "3d"
	IntervalOneWeek        Interval = "1w"
	IntervalOneMonth       Interval = "1M"
)

// Intervals returns every supported interval.
func Intervals() []Interval {
	return []Interval{
		IntervalOneSecond,
		IntervalOneMinute,
		IntervalThreeMinutes,
		IntervalFiveMinutes,
		IntervalFifteenMinutes,
		IntervalThirtyMinutes,
		IntervalOneHour,
		IntervalTwoHours,
		IntervalFourHours,
		IntervalSixHours,
		IntervalEightHours,
		IntervalTwelveHours,
		IntervalOneDay,
		IntervalThreeDays,
		IntervalOneWeek,
		IntervalOneMonth,
	}
}

// ParseInterval resolves an interval string.
func ParseInterval(s string) (Interval, error) {
	for _, interval := range Intervals() {
		if s == string(interval) {
			return interval, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval %q", s)
}

// Multiplier returns the count part of the interval ("15m" is 15 minutes).
func (i Interval) Multiplier() int {
	switch i {
	case IntervalThreeMinutes, IntervalThreeDays:
		return 3
	case IntervalFiveMinutes:
		return 5
	case IntervalFifteenMinutes:
		return 15
	case IntervalThirtyMinutes:
		return 30
	case IntervalTwoHours:
		return 2
	case IntervalFourHours:
		return 4
	case IntervalSixHours:
		return 6
	case IntervalEightHours:
		return 8
	case IntervalTwelveHours:
		return 12
	default:
		return 1
	}
}

// PolygonTimespan returns the polygon.io unit part of the interval.
func (i Interval) PolygonTimespan() models.Timespan {
	switch i {
	case IntervalOneSecond:
		return models.Second
	case IntervalOneMinute, IntervalThreeMinutes, IntervalFiveMinutes, IntervalFifteenMinutes, IntervalThirtyMinutes:
		return models.Minute
	case IntervalOneHour, IntervalTwoHours, IntervalFourHours, IntervalSixHours, IntervalEightHours, IntervalTwelveHours:
		return models.Hour
	case IntervalOneDay, IntervalThreeDays:
		return models.Day
	case IntervalOneWeek:
		return models.Week
	case IntervalOneMonth:
		return models.Month
	default:
		return models.Day
	}
}
