// Package marketdata downloads OHLCV history from public providers into the
// Parquet dataset files the pipeline loads.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-pipeline/internal/logger"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata/writer"
)

// defaultLookbackDays sizes the range when no start date is given.
const defaultLookbackDays = 30

// Config holds the provider selection and output location for downloads.
type Config struct {
	Provider  provider.Type `validate:"required,oneof=binance polygon"`
	APIKey    string        `validate:"required_if=Provider polygon"`
	OutputDir string        `validate:"required"`
}

// DownloadParams describes one download request. Start and End are optional;
// an absent End means now and an absent Start means 30 days before End.
type DownloadParams struct {
	Symbol   string            `validate:"required"`
	Interval provider.Interval `validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Start    optional.Option[time.Time]
	End      optional.Option[time.Time]
}

// Client downloads OHLCV history from a provider and stores it as a Parquet
// dataset file named SYMBOL_START_END_INTERVAL.parquet.
type Client struct {
	provider   provider.Provider
	config     Config
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a market data client with the given configuration.
// onProgress and log may be nil.
func NewClient(config Config, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewProvider(config.Provider, config.APIKey)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		log:        log,
	}, nil
}

// Download fetches the requested range and returns the dataset file path.
// The context cancels an in-flight download.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	end := params.End.TakeOr(time.Now().UTC())
	start := params.Start.TakeOr(end.AddDate(0, 0, -defaultLookbackDays))

	if !start.Before(end) {
		return "", errors.Newf(errors.ErrCodeInvalidTimeRange, "start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create output directory %s", c.config.OutputDir)
	}

	outputName := fmt.Sprintf("%s_%s_%s_%s.parquet",
		params.Symbol,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		params.Interval)
	outputPath := filepath.Join(c.config.OutputDir, outputName)

	barWriter := writer.NewDuckDBWriter(outputPath, c.log)

	defer func() {
		if err := barWriter.Close(); err != nil {
			c.log.Warn("Failed to close writer", zap.Error(err))
		}
	}()

	c.provider.ConfigWriter(barWriter)

	path, err := c.provider.Download(ctx, params.Symbol, start, end, params.Interval, c.onProgress)
	if err != nil {
		return "", err
	}

	c.log.Info("Download finished",
		zap.String("symbol", params.Symbol),
		zap.String("interval", string(params.Interval)),
		zap.String("path", path),
	)

	return path, nil
}
