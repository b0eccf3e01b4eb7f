// Package dataset moves bar history and pipeline artifacts between files and
// memory. All file IO goes through an embedded DuckDB instance, so Parquet and
// CSV inputs are handled by the same SQL surface and exports reuse DuckDB's
// COPY TO writer.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-pipeline/internal/logger"
	"github.com/rxtech-lab/argo-pipeline/internal/series"
	"github.com/rxtech-lab/argo-pipeline/pkg/errors"
)

// viewBars is the view every loader query reads from. LoadParquet and LoadCSV
// re-point it at the current input file.
const viewBars = "bars"

// Loader reads OHLCV bars from Parquet or CSV files into a series.Series.
type Loader struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewLoader opens a DuckDB instance at the given path. Pass ":memory:" unless
// the loaded view should survive the process.
func NewLoader(path string, log *logger.Logger) (*Loader, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	_, err = db.Exec(`
		SET memory_limit='4GB';
		SET threads=4;
	`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to set duckdb options", err)
	}

	return &Loader{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// LoadParquet points the bars view at a Parquet file.
func (l *Loader) LoadParquet(ctx context.Context, path string) error {
	return l.createView(ctx, path, fmt.Sprintf("read_parquet('%s')", path))
}

// LoadCSV points the bars view at a CSV file. Column names and types are
// sniffed by DuckDB, so the file needs a header row.
func (l *Loader) LoadCSV(ctx context.Context, path string) error {
	return l.createView(ctx, path, fmt.Sprintf("read_csv_auto('%s')", path))
}

// LoadFile dispatches to LoadParquet or LoadCSV based on the file extension.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return l.LoadParquet(ctx, path)
	case ".csv":
		return l.LoadCSV(ctx, path)
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported dataset extension %q, want .parquet or .csv", filepath.Ext(path))
	}
}

func (l *Loader) createView(ctx context.Context, path, source string) error {
	l.log.Debug("Creating bars view", zap.String("path", path))

	// Squirrel does not support CREATE VIEW, so this stays raw SQL.
	if _, err := l.db.ExecContext(ctx, fmt.Sprintf(`DROP VIEW IF EXISTS %s;`, viewBars)); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing bars view", err)
	}

	query := fmt.Sprintf(`
		CREATE VIEW %s AS
		SELECT * FROM %s;
	`, viewBars, source)

	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create bars view over %s", path)
	}

	return nil
}

// Count returns the number of bars in the loaded file, restricted to the
// optional time range. Useful for sizing progress reporting before a load.
func (l *Loader) Count(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query := "SELECT COUNT(*) FROM " + viewBars

	var params []interface{}

	paramCount := 0

	if start.IsSome() {
		paramCount++
		query += fmt.Sprintf(" WHERE time >= $%d", paramCount)
		params = append(params, start.Unwrap())
	}

	if end.IsSome() {
		paramCount++
		if paramCount == 1 {
			query += " WHERE"
		} else {
			query += " AND"
		}

		query += fmt.Sprintf(" time <= $%d", paramCount)
		params = append(params, end.Unwrap())
	}

	var count int
	if err := l.db.QueryRowContext(ctx, query, params...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// Symbols returns the distinct symbols present in the loaded file.
func (l *Loader) Symbols(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT DISTINCT symbol FROM "+viewBars+" ORDER BY symbol")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query distinct symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// Series loads bars for one symbol, ordered by time, into a validated
// series.Series. An empty symbol takes every row, which only works for
// single-symbol files. The optional bounds are inclusive.
func (l *Loader) Series(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (*series.Series, error) {
	builder := l.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From(viewBars).
		OrderBy("time ASC")

	if symbol != "" {
		builder = builder.Where(squirrel.Eq{"symbol": symbol})
	}

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bars query", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	s := &series.Series{}

	for rows.Next() {
		var (
			timestamp                      time.Time
			rowSymbol                      string
			open, high, low, close, volume float64
		)

		if err := rows.Scan(&timestamp, &rowSymbol, &open, &high, &low, &close, &volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		if s.Symbol == "" {
			s.Symbol = rowSymbol
		} else if rowSymbol != s.Symbol {
			return nil, errors.Newf(errors.ErrCodeMalformedInput,
				"dataset mixes symbols %q and %q, pass a symbol filter", s.Symbol, rowSymbol)
		}

		s.Time = append(s.Time, timestamp)
		s.Open = append(s.Open, open)
		s.High = append(s.High, high)
		s.Low = append(s.Low, low)
		s.Close = append(s.Close, close)
		s.Volume = append(s.Volume, volume)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err)
	}

	if s.Len() == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars matched symbol %q", symbol)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	l.log.Debug("Loaded series",
		zap.String("symbol", s.Symbol),
		zap.Int("rows", s.Len()),
	)

	return s, nil
}

// Close releases the underlying DuckDB handle.
func (l *Loader) Close() error {
	if err := l.db.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to close duckdb", err)
	}

	return nil
}
