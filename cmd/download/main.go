package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pipeline/internal/logger"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata"
	"github.com/rxtech-lab/argo-pipeline/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
)

// optionalTimestamp converts an unset timestamp flag into None.
func optionalTimestamp(cmd *cli.Command, name string) optional.Option[time.Time] {
	t := cmd.Timestamp(name)
	if t.IsZero() {
		return optional.None[time.Time]()
	}

	return optional.Some(t.UTC())
}

// downloadAction parses arguments, sets up the market data client, and
// starts the download.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	providerFlag := cmd.String("provider")

	interval, err := provider.ParseInterval(cmd.String("interval"))
	if err != nil {
		return err
	}

	apiKey := cmd.String("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("POLYGON_API_KEY")
	}

	zapLog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLog.Sync()

	clientConfig := marketdata.Config{
		Provider:  provider.Type(providerFlag),
		APIKey:    apiKey,
		OutputDir: cmd.String("output-dir"),
	}

	onProgress := func(current, total float64, message string) {
		if total <= 0 {
			return
		}

		log.Printf("%s: %.0f%%", message, current/total*100)
	}

	client, err := marketdata.NewClient(clientConfig, onProgress, zapLog)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	downloadParams := marketdata.DownloadParams{
		Symbol:   symbol,
		Interval: interval,
		Start:    optionalTimestamp(cmd, "start"),
		End:      optionalTimestamp(cmd, "end"),
	}

	log.Printf("Starting %s download for %s at %s bars...", providerFlag, symbol, interval)

	path, err := client.Download(ctx, downloadParams)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	log.Printf("Download completed: %s", path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical OHLCV data into a Parquet dataset file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Instrument symbol (e.g. BTCUSDT for binance, AAPL for polygon)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (one of %v)", provider.SupportedProviders()),
				Value:   string(provider.TypeBinance),
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval (e.g. 1m, 15m, 1h, 1d)",
				Value:   string(provider.IntervalOneMinute),
			},
			&cli.TimestampFlag{
				Name:  "start",
				Usage: "Start date in `YYYY-MM-DD` format; defaults to 30 days before end",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format; defaults to now",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory the dataset file is written to",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Provider API key; falls back to the POLYGON_API_KEY environment variable",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
