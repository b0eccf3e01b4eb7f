package series

import "time"

// Bar is a single OHLCV row. Downloads and file writers stream bars one at a
// time; bulk computation uses the columnar Series instead.
type Bar struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
