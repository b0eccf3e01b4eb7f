package provider

import (
	"context"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata/writer"
)

// binancePageSize is the kline count Binance returns per request. A shorter
// page marks the end of the range.
const binancePageSize = 500

// binanceKlines is the one Binance endpoint the provider needs, split out so
// tests can fake pagination without the network.
type binanceKlines interface {
	Fetch(ctx context.Context, symbol string, interval string, startMillis int64, endMillis int64) ([]*binance.Kline, error)
}

type liveBinanceKlines struct {
	client *binance.Client
}

func (l *liveBinanceKlines) Fetch(ctx context.Context, symbol string, interval string, startMillis int64, endMillis int64) ([]*binance.Kline, error) {
	return l.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startMillis).
		EndTime(endMillis).
		Do(ctx)
}

// BinanceProvider downloads klines from the Binance public API. Market data
// endpoints need no authentication.
type BinanceProvider struct {
	klines binanceKlines
	writer writer.BarWriter
}

// NewBinanceProvider creates a Binance-backed provider.
func NewBinanceProvider() Provider {
	return &BinanceProvider{
		klines: &liveBinanceKlines{client: binance.NewClient("", "")},
		writer: nil,
	}
}

// ConfigWriter implements Provider.
func (p *BinanceProvider) ConfigWriter(w writer.BarWriter) {
	p.writer = w
}

// Download pages through the klines endpoint from start to end and streams
// every bar into the configured writer. Binance timestamps are milliseconds.
func (p *BinanceProvider) Download(ctx context.Context, symbol string, start time.Time, end time.Time, interval Interval, onProgress OnDownloadProgress) (string, error) {
	if p.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured, call ConfigWriter first")
	}

	if err := p.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()
	currentStart := startMillis

	for {
		klines, err := p.klines.Fetch(ctx, symbol, string(interval), currentStart, endMillis)
		if err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines from binance", symbol)
		}

		if onProgress != nil {
			onProgress(float64(currentStart-startMillis), float64(endMillis-startMillis),
				fmt.Sprintf("Downloading %s klines from Binance", symbol))
		}

		if err := p.writeKlines(symbol, klines); err != nil {
			return "", err
		}

		// A short page is the last page.
		if len(klines) < binancePageSize {
			break
		}

		// Resume from the close time of the last kline plus 1ms to avoid
		// duplicate bars across pages.
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	path, err := p.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return path, nil
}

func (p *BinanceProvider) writeKlines(symbol string, klines []*binance.Kline) error {
	for _, k := range klines {
		bar, err := parseKline(symbol, k)
		if err != nil {
			return err
		}

		if err := p.writer.Write(bar); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write bar", err)
		}
	}

	return nil
}

// parseKline converts one Binance kline to a bar. Binance serves prices as
// strings; they go through decimal so a malformed payload fails loudly
// instead of silently becoming zero.
func parseKline(symbol string, k *binance.Kline) (series.Bar, error) {
	fields := [...]struct {
		name  string
		value string
	}{
		{"open", k.Open},
		{"high", k.High},
		{"low", k.Low},
		{"close", k.Close},
		{"volume", k.Volume},
	}

	var parsed [5]float64

	for i, field := range fields {
		d, err := decimal.NewFromString(field.value)
		if err != nil {
			return series.Bar{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to parse kline %s %q", field.name, field.value)
		}

		parsed[i] = d.InexactFloat64()
	}

	// OpenTime is the bar timestamp.
	return series.Bar{
		Symbol: symbol,
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   parsed[0],
		High:   parsed[1],
		Low:    parsed[2],
		Close:  parsed[3],
		Volume: parsed[4],
	}, nil
}
