package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/argo-pipeline/internal/feature"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/internal/version"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// TensorMeta describes a tensor Parquet file without loading its cells.
type TensorMeta struct {
	BuildID       uuid.UUID
	SchemaVersion string
	Symbol        string
	CreatedAt     time.Time
	Windows       int
	Length        int
	ChannelNames  []string
}

// ReadTensorMeta reads the identity and shape of a tensor Parquet file and
// checks its schema version against the version this library produces.
// Files written by an incompatible library version fail here, before any
// cell is read.
func ReadTensorMeta(ctx context.Context, path string) (*TensorMeta, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}
	defer db.Close()

	return readTensorMeta(ctx, db, path)
}

func readTensorMeta(ctx context.Context, db *sql.DB, path string) (*TensorMeta, error) {
	source := fmt.Sprintf("read_parquet('%s')", path)

	var builds int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT build_id) FROM "+source).Scan(&builds); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read tensor file %s", path)
	}

	switch {
	case builds == 0:
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "tensor file %s holds no cells", path)
	case builds > 1:
		return nil, errors.Newf(errors.ErrCodeMalformedInput, "tensor file %s mixes %d builds", path, builds)
	}

	var (
		buildID       string
		schemaVersion string
		symbol        string
		createdAt     time.Time
	)

	row := db.QueryRowContext(ctx, "SELECT build_id, schema_version, symbol, created_at FROM "+source+" LIMIT 1")
	if err := row.Scan(&buildID, &schemaVersion, &symbol, &createdAt); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read tensor metadata from %s", path)
	}

	if err := version.CheckSchemaCompatibility(schemaVersion, feature.SchemaVersion); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSchemaIncompatible, err,
			"tensor file %s was built with schema %s", path, schemaVersion)
	}

	id, err := uuid.Parse(buildID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMalformedInput, err, "tensor file %s carries an invalid build id %q", path, buildID)
	}

	var windows, length int
	if err := db.QueryRowContext(ctx, `SELECT MAX(window) + 1, MAX("row") + 1 FROM `+source).Scan(&windows, &length); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read tensor shape from %s", path)
	}

	rows, err := db.QueryContext(ctx, "SELECT DISTINCT channel_index, channel FROM "+source+" ORDER BY channel_index")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read tensor channels from %s", path)
	}
	defer rows.Close()

	var channels []string

	for rows.Next() {
		var (
			index int
			name  string
		)

		if err := rows.Scan(&index, &name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan channel", err)
		}

		if index != len(channels) {
			return nil, errors.Newf(errors.ErrCodeMalformedInput,
				"tensor file %s has a gap in channel indexes at %d", path, index)
		}

		channels = append(channels, name)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating channels", err)
	}

	return &TensorMeta{
		BuildID:       id,
		SchemaVersion: schemaVersion,
		Symbol:        symbol,
		CreatedAt:     createdAt,
		Windows:       windows,
		Length:        length,
		ChannelNames:  channels,
	}, nil
}

// LoadTensor rebuilds a feature tensor from a Parquet file written by
// TensorWriter. NULL cells come back as the undefined sentinel, so a loaded
// tensor compares cell for cell with the one that was exported.
func LoadTensor(ctx context.Context, path string) (*feature.Tensor, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}
	defer db.Close()

	meta, err := readTensorMeta(ctx, db, path)
	if err != nil {
		return nil, err
	}

	source := fmt.Sprintf("read_parquet('%s')", path)
	channels := len(meta.ChannelNames)
	expected := meta.Windows * meta.Length * channels
	data := make([]float64, expected)

	rows, err := db.QueryContext(ctx, `SELECT window, "row", channel_index, value FROM `+source)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read tensor cells from %s", path)
	}
	defer rows.Close()

	count := 0

	for rows.Next() {
		var (
			window, row, channel int
			value                sql.NullFloat64
		)

		if err := rows.Scan(&window, &row, &channel, &value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan tensor cell", err)
		}

		if window < 0 || window >= meta.Windows || row < 0 || row >= meta.Length || channel < 0 || channel >= channels {
			return nil, errors.Newf(errors.ErrCodeMalformedInput,
				"tensor file %s holds an out of range cell (%d,%d,%d)", path, window, row, channel)
		}

		cell := series.Undefined()
		if value.Valid {
			cell = value.Float64
		}

		data[(window*meta.Length+row)*channels+channel] = cell
		count++
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating tensor cells", err)
	}

	if count != expected {
		return nil, errors.Newf(errors.ErrCodeMalformedInput,
			"tensor file %s holds %d cells, want %d", path, count, expected)
	}

	return &feature.Tensor{
		Data:          data,
		Windows:       meta.Windows,
		Length:        meta.Length,
		Channels:      channels,
		ChannelNames:  meta.ChannelNames,
		Symbol:        meta.Symbol,
		BuildID:       meta.BuildID,
		SchemaVersion: meta.SchemaVersion,
		CreatedAt:     meta.CreatedAt,
	}, nil
}
