package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-pipeline/internal/dataset"
	"github.com/rxtech-lab/argo-pipeline/internal/logger"
	"github.com/rxtech-lab/argo-pipeline/internal/pipeline"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/utils"
	"github.com/urfave/cli/v3"
)

// lastOutput is the JSON document the last command prints to stdout. Channel
// order is carried in ChannelNames because JSON objects do not preserve it.
type lastOutput struct {
	Symbol        string               `json:"symbol"`
	BuildID       string               `json:"build_id"`
	SchemaVersion string               `json:"schema_version"`
	Length        int                  `json:"length"`
	ChannelNames  []string             `json:"channel_names"`
	Channels      map[string][]float64 `json:"channels"`
}

// optionalTimestamp converts an unset timestamp flag into None.
func optionalTimestamp(cmd *cli.Command, name string) optional.Option[time.Time] {
	t := cmd.Timestamp(name)
	if t.IsZero() {
		return optional.None[time.Time]()
	}

	return optional.Some(t.UTC())
}

// newPipeline reads the config flag and builds a pipeline from it.
func newPipeline(cmd *cli.Command, zapLog *logger.Logger) (*pipeline.Pipeline, error) {
	configPath := cmd.String("config")

	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	config, err := pipeline.ParseConfig(string(configBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return pipeline.New(config, zapLog)
}

// loadSeries loads the data flag's file and selects one symbol's series.
func loadSeries(ctx context.Context, cmd *cli.Command, zapLog *logger.Logger) (*series.Series, error) {
	loader, err := dataset.NewLoader(":memory:", zapLog)
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	if err := loader.LoadFile(ctx, cmd.String("data")); err != nil {
		return nil, err
	}

	return loader.Series(ctx, cmd.String("symbol"),
		optionalTimestamp(cmd, "start"), optionalTimestamp(cmd, "end"))
}

// buildAction augments the input series and writes the frame and batch
// tensor artifacts to the output directory.
func buildAction(ctx context.Context, cmd *cli.Command) error {
	zapLog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLog.Sync()

	p, err := newPipeline(cmd, zapLog)
	if err != nil {
		return err
	}

	s, err := loadSeries(ctx, cmd, zapLog)
	if err != nil {
		return fmt.Errorf("failed to load series: %w", err)
	}

	frame, err := p.Augment(s)
	if err != nil {
		return fmt.Errorf("failed to augment series: %w", err)
	}

	tensor, err := p.BuildBatch(s)
	if err != nil {
		return fmt.Errorf("failed to build tensor: %w", err)
	}

	outputDir := cmd.String("output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	framePath := filepath.Join(outputDir, fmt.Sprintf("%s_frame.parquet", s.Symbol))
	if err := dataset.NewFrameWriter(zapLog).Write(ctx, frame, framePath); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	tensorPath := filepath.Join(outputDir, fmt.Sprintf("%s_tensor.parquet", s.Symbol))
	if err := dataset.NewTensorWriter(zapLog).Write(ctx, tensor, tensorPath); err != nil {
		return fmt.Errorf("failed to write tensor: %w", err)
	}

	log.Printf("Frame written to %s", framePath)
	log.Printf("Tensor written to %s (build %s, shape %v)", tensorPath, tensor.BuildID, tensor.Shape())

	return nil
}

// lastAction builds the single most recent inference window and prints it as
// channel-named JSON to stdout.
func lastAction(ctx context.Context, cmd *cli.Command) error {
	zapLog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLog.Sync()

	p, err := newPipeline(cmd, zapLog)
	if err != nil {
		return err
	}

	s, err := loadSeries(ctx, cmd, zapLog)
	if err != nil {
		return fmt.Errorf("failed to load series: %w", err)
	}

	tensor, err := p.BuildLast(s)
	if err != nil {
		return fmt.Errorf("failed to build inference window: %w", err)
	}

	out := lastOutput{
		Symbol:        tensor.Symbol,
		BuildID:       tensor.BuildID.String(),
		SchemaVersion: tensor.SchemaVersion,
		Length:        tensor.Length,
		ChannelNames:  tensor.ChannelNames,
		Channels:      make(map[string][]float64, tensor.Channels),
	}

	for c, name := range tensor.ChannelNames {
		values := make([]float64, tensor.Length)
		for i := 0; i < tensor.Length; i++ {
			values[i] = tensor.At(0, i, c)
		}

		out.Channels[name] = values
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal window: %w", err)
	}

	fmt.Println(string(data))

	return nil
}

// schemaAction writes the config JSON schema and, on first run, a sample
// config YAML that references it.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := pipeline.EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	outputDir := cmd.String("output")
	schemaName := "pipeline-config.json"
	schemaPath := filepath.Join(outputDir, schemaName)
	sampleConfigPath := filepath.Join(outputDir, "pipeline-config.yaml")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	// An existing sample config is kept; it is only generated the first time.
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		yamlBytes, err := utils.MarshalSampleConfig(config, schemaName)
		if err != nil {
			return fmt.Errorf("failed to marshal sample config: %w", err)
		}

		if err := os.WriteFile(sampleConfigPath, yamlBytes, 0644); err != nil {
			return fmt.Errorf("failed to write sample config: %w", err)
		}

		log.Printf("Sample config generated at %s", sampleConfigPath)
	}

	log.Printf("Schema generated at %s", schemaPath)

	return nil
}

func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    "Path to the pipeline config YAML",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Path to the input dataset (.parquet or .csv)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "symbol",
			Usage: "Symbol to select; may be omitted for single-symbol files",
		},
		&cli.TimestampFlag{
			Name:    "start",
			Aliases: []string{"s"},
			Usage:   "Only use bars at or after this date in `YYYY-MM-DD` format",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.TimestampFlag{
			Name:    "end",
			Aliases: []string{"e"},
			Usage:   "Only use bars at or before this date in `YYYY-MM-DD` format",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "pipeline",
		Usage: "Transform OHLCV datasets into model-ready feature tensors",
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build the batch tensor and augmented frame from a dataset",
				Flags: append(dataFlags(), &cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Directory the frame and tensor Parquet files are written to",
					Value:   "output",
				}),
				Action: buildAction,
			},
			{
				Name:   "last",
				Usage:  "Build the most recent inference window and print it as JSON",
				Flags:  dataFlags(),
				Action: lastAction,
			},
			{
				Name:  "schema",
				Usage: "Generate the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the schema files are written to",
						Value:   "config",
					},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
