package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata/writer"
)

// Type identifies a market data provider.
type Type string

const (
	TypeBinance Type = "binance"
	TypePolygon Type = "polygon"
)

// SupportedProviders returns the provider names accepted by NewProvider.
func SupportedProviders() []string {
	return []string{string(TypeBinance), string(TypePolygon)}
}

// OnDownloadProgress reports download progress. current and total are in
// provider-specific units (bars or time), message describes the phase.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads historical OHLCV bars and streams them into a writer.
type Provider interface {
	// ConfigWriter configures the writer the downloaded bars are streamed to.
	ConfigWriter(w writer.BarWriter)
	// Download fetches bars for the symbol and date range at the given
	// interval, writes them through the configured writer and returns the
	// finalized output path. Cancel the context to stop the download.
	Download(ctx context.Context, symbol string, start time.Time, end time.Time, interval Interval, onProgress OnDownloadProgress) (path string, err error)
}

// NewProvider creates a provider by name. Binance needs no credentials;
// Polygon requires an API key.
func NewProvider(providerType Type, apiKey string) (Provider, error) {
	switch providerType {
	case TypeBinance:
		return NewBinanceProvider(), nil
	case TypePolygon:
		return NewPolygonProvider(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerType)
	}
}
