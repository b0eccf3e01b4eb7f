package pipeline

import (
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-pipeline/internal/feature"
	"github.com/rxtech-lab/argo-pipeline/internal/indicator"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// DefaultWindowLength is used when a config does not set window_length.
const DefaultWindowLength = 32

// Config describes one transformation pipeline: which indicators to compute,
// how to cut windows and how to scale them.
type Config struct {
	// WindowLength is the number of rows per feature window.
	WindowLength int `yaml:"window_length" json:"window_length" jsonschema:"title=Window Length,description=Number of rows in every feature window,minimum=1" validate:"omitempty,gte=1"`

	// Channels selects the frame columns that become tensor channels, in
	// order. Empty means OHLCV plus every indicator output.
	Channels []string `yaml:"channels,omitempty" json:"channels,omitempty" jsonschema:"title=Channels,description=Frame columns used as tensor channels; empty means all columns"`

	// Normalization is the per-window scaling mode.
	Normalization feature.Normalization `yaml:"normalization,omitempty" json:"normalization,omitempty" jsonschema:"title=Normalization,description=Per-window scaling applied to every channel"`

	// DropWarmup removes the leading rows whose channels are still undefined
	// before batch windows are cut, instead of emitting undefined windows.
	DropWarmup bool `yaml:"drop_warmup,omitempty" json:"drop_warmup,omitempty" jsonschema:"title=Drop Warmup,description=Drop leading rows that are undefined because of indicator warm-up"`

	// AllowPartial permits series shorter than the longest indicator
	// warm-up; the affected columns come out entirely undefined.
	AllowPartial bool `yaml:"allow_partial,omitempty" json:"allow_partial,omitempty" jsonschema:"title=Allow Partial,description=Accept series shorter than the longest indicator warm-up"`

	// Headroom adds extra trailing bars to the inference slice so recursive
	// indicators can settle beyond their analytic minimum.
	Headroom int `yaml:"headroom,omitempty" json:"headroom,omitempty" jsonschema:"title=Headroom,description=Extra bars added to the inference lookback slice,minimum=0" validate:"gte=0"`

	// Indicators are computed in order; their outputs become frame columns.
	Indicators []indicator.Spec `yaml:"indicators,omitempty" json:"indicators,omitempty" jsonschema:"title=Indicators,description=Indicator computations applied to the series"`
}

// EmptyConfig returns a config with defaults: a bare OHLCV window of
// DefaultWindowLength rows, no indicators, no normalization.
func EmptyConfig() Config {
	return Config{
		WindowLength:  DefaultWindowLength,
		Channels:      nil,
		Normalization: feature.NormalizationNone,
		DropWarmup:    false,
		AllowPartial:  false,
		Headroom:      0,
		Indicators:    nil,
	}
}

// ParseConfig parses and validates a YAML pipeline config. Omitted fields
// take the EmptyConfig defaults.
func ParseConfig(yamlConfig string) (Config, error) {
	config := EmptyConfig()

	if err := yaml.Unmarshal([]byte(yamlConfig), &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse pipeline config", err)
	}

	if config.WindowLength == 0 {
		config.WindowLength = DefaultWindowLength
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the config's fields and every indicator spec.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid pipeline config", err)
	}

	if c.WindowLength < 1 {
		return errors.Newf(errors.ErrCodeInvalidWindowLength,
			"window_length must be positive, got %d", c.WindowLength)
	}

	if _, err := feature.ParseNormalization(string(c.Normalization)); err != nil {
		return err
	}

	for _, spec := range c.Indicators {
		if _, err := spec.Normalized(); err != nil {
			return err
		}
	}

	return nil
}

// GenerateSchema generates the JSON schema for pipeline configs.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(indicator.Kind("")) {
				kinds := make([]any, 0, len(indicator.Kinds()))
				for _, kind := range indicator.Kinds() {
					kinds = append(kinds, string(kind))
				}

				return &jsonschema.Schema{
					Type: "string",
					Enum: kinds,
				}
			}

			if t == reflect.TypeOf(feature.Normalization("")) {
				modes := make([]any, 0, len(feature.Normalizations()))
				for _, mode := range feature.Normalizations() {
					modes = append(modes, string(mode))
				}

				return &jsonschema.Schema{
					Type: "string",
					Enum: modes,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "pipeline-config"
	schema.Description = "Configuration schema for the market data transformation pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates the JSON schema as an indented string.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
