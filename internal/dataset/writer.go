package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-pipeline/internal/feature"
	"github.com/rxtech-lab/argo-pipeline/internal/logger"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// FrameWriter exports an augmented frame to a Parquet or CSV file. Each call
// stages the rows in an in-memory DuckDB table and hands the file format to
// DuckDB's COPY writer.
type FrameWriter struct {
	log *logger.Logger
}

// NewFrameWriter creates a frame writer. A nil logger disables logging.
func NewFrameWriter(log *logger.Logger) *FrameWriter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &FrameWriter{log: log}
}

// Write exports the frame to path. The output format follows the extension:
// ".csv" writes CSV with a header row, anything else writes Parquet.
// Undefined cells are exported as NULL rather than NaN so downstream readers
// see missing values instead of a float sentinel.
func (w *FrameWriter) Write(ctx context.Context, frame *series.Frame, path string) (err error) {
	if frame == nil || frame.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "cannot export an empty frame")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeDatasetWriteFailed, err, "failed to create output directory for %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to close duckdb", cerr)
		}
	}()

	names := frame.ColumnNames()

	ddl := make([]string, 0, len(names)+2)
	ddl = append(ddl, "time TIMESTAMP", "symbol TEXT")

	for _, name := range names {
		ddl = append(ddl, fmt.Sprintf("%q DOUBLE", name))
	}

	create := fmt.Sprintf("CREATE TABLE frame_data (%s);", strings.Join(ddl, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to create staging table", err)
	}

	columns := make([][]float64, len(names))

	for i, name := range names {
		column, err := frame.Column(name)
		if err != nil {
			return err
		}

		columns[i] = column
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to begin transaction", err)
	}

	insert := fmt.Sprintf("INSERT INTO frame_data VALUES (%s)", placeholders(len(names)+2))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to prepare insert statement", err)
	}
	defer stmt.Close()

	s := frame.Series()
	bar := progressbar.NewOptions(frame.Len(), progressbar.OptionSetDescription(fmt.Sprintf("Exporting %s", s.Symbol)), progressbar.OptionShowCount())

	args := make([]interface{}, len(names)+2)

	for i := 0; i < frame.Len(); i++ {
		args[0] = s.Time[i]
		args[1] = s.Symbol

		for c, column := range columns {
			if series.IsUndefined(column[i]) {
				args[c+2] = nil
			} else {
				args[c+2] = column[i]
			}
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeDatasetWriteFailed, err, "failed to insert row %d", i)
		}

		if (i+1)%1000 == 0 {
			bar.Set(i + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to commit staged rows", err)
	}

	bar.Finish()

	if err := copyTo(ctx, db, "frame_data", path); err != nil {
		return err
	}

	w.log.Info("Exported frame",
		zap.String("path", path),
		zap.String("symbol", s.Symbol),
		zap.Int("rows", frame.Len()),
		zap.Int("columns", len(names)),
	)

	return nil
}

// TensorWriter exports a feature tensor to Parquet in long format. Every cell
// becomes one row carrying the build id and schema version, so files are
// self-describing and a reader can rebuild the exact [windows, length,
// channels] block.
type TensorWriter struct {
	log *logger.Logger
}

// NewTensorWriter creates a tensor writer. A nil logger disables logging.
func NewTensorWriter(log *logger.Logger) *TensorWriter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &TensorWriter{log: log}
}

// Write exports the tensor to a Parquet file at path. Undefined cells are
// exported as NULL and restored as the undefined sentinel by LoadTensor.
func (w *TensorWriter) Write(ctx context.Context, t *feature.Tensor, path string) (err error) {
	if t == nil || len(t.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "cannot export an empty tensor")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeDatasetWriteFailed, err, "failed to create output directory for %s", path)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to close duckdb", cerr)
		}
	}()

	create := `
		CREATE TABLE tensor_data (
			build_id TEXT,
			schema_version TEXT,
			symbol TEXT,
			created_at TIMESTAMP,
			window INTEGER,
			"row" INTEGER,
			channel_index INTEGER,
			channel TEXT,
			value DOUBLE
		);
	`
	if _, err := db.ExecContext(ctx, create); err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to create staging table", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO tensor_data VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to prepare insert statement", err)
	}
	defer stmt.Close()

	buildID := t.BuildID.String()
	bar := progressbar.NewOptions(t.Windows, progressbar.OptionSetDescription(fmt.Sprintf("Exporting tensor %s", t.Symbol)), progressbar.OptionShowCount())

	for window := 0; window < t.Windows; window++ {
		for row := 0; row < t.Length; row++ {
			for c := 0; c < t.Channels; c++ {
				var value interface{}
				if v := t.At(window, row, c); !series.IsUndefined(v) {
					value = v
				}

				_, err := stmt.ExecContext(ctx, buildID, t.SchemaVersion, t.Symbol, t.CreatedAt,
					window, row, c, t.ChannelNames[c], value)
				if err != nil {
					return errors.Wrapf(errors.ErrCodeDatasetWriteFailed, err, "failed to insert cell (%d,%d,%d)", window, row, c)
				}
			}
		}

		if (window+1)%100 == 0 {
			bar.Set(window + 1)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeDatasetWriteFailed, "failed to commit staged rows", err)
	}

	bar.Finish()

	if err := copyTo(ctx, db, "tensor_data", path); err != nil {
		return err
	}

	w.log.Info("Exported tensor",
		zap.String("path", path),
		zap.String("build_id", buildID),
		zap.String("symbol", t.Symbol),
		zap.Int("windows", t.Windows),
	)

	return nil
}

// copyTo hands the staged table to DuckDB's file writer. Format follows the
// output extension.
func copyTo(ctx context.Context, db *sql.DB, table, path string) error {
	format := "FORMAT PARQUET"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		format = "FORMAT CSV, HEADER"
	}

	query := fmt.Sprintf("COPY %s TO '%s' (%s);", table, path, format)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeDatasetWriteFailed, err, "failed to copy %s to %s", table, path)
	}

	return nil
}

func placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}

	return strings.Join(marks, ", ")
}
