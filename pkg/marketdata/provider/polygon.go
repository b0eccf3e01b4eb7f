package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"

	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata/writer"
)

// aggsIterator is the slice of the polygon iterator API the provider walks.
type aggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// polygonAggs splits the ListAggs call out so tests can fake the iterator
// without the network.
type polygonAggs interface {
	List(ctx context.Context, params *models.ListAggsParams) aggsIterator
}

type livePolygonAggs struct {
	client *polygon.Client
}

func (l *livePolygonAggs) List(ctx context.Context, params *models.ListAggsParams) aggsIterator {
	return l.client.ListAggs(ctx, params)
}

// PolygonProvider downloads aggregate bars from polygon.io.
type PolygonProvider struct {
	aggs   polygonAggs
	writer writer.BarWriter
}

// NewPolygonProvider creates a polygon.io-backed provider. The API key is
// required for every polygon endpoint.
func NewPolygonProvider(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon requires an API key")
	}

	return &PolygonProvider{
		aggs:   &livePolygonAggs{client: polygon.New(apiKey)},
		writer: nil,
	}, nil
}

// ConfigWriter implements Provider.
func (p *PolygonProvider) ConfigWriter(w writer.BarWriter) {
	p.writer = w
}

// Download walks the aggregates iterator for the symbol and date range and
// streams every bar into the configured writer.
func (p *PolygonProvider) Download(ctx context.Context, symbol string, start time.Time, end time.Time, interval Interval, onProgress OnDownloadProgress) (string, error) {
	if p.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured, call ConfigWriter first")
	}

	if err := p.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	progress := progressbar.NewOptions(totalDays, progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", symbol)), progressbar.OptionShowCount())

	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: interval.Multiplier(),
		Timespan:   interval.PolygonTimespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	it := p.aggs.List(ctx, params)

	processed := 0

	for it.Next() {
		agg := it.Item()

		bar := series.Bar{
			Symbol: symbol,
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		}

		if err := p.writer.Write(bar); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write bar", err)
		}

		processed++
		if processed%1000 == 0 {
			daysElapsed := int(time.Time(agg.Timestamp).Sub(start).Hours() / 24)
			progress.Set(daysElapsed)

			if onProgress != nil {
				onProgress(float64(daysElapsed), float64(totalDays), fmt.Sprintf("Downloading %s", symbol))
			}
		}
	}

	if err := it.Err(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list %s aggregates from polygon", symbol)
	}

	progress.Finish()

	path, err := p.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return path, nil
}
