package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"

	"estadistica/internal/dataprocessing"
	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// DefaultTable is the statistics table name.
const DefaultTable = "Estadistica"

// SQLOptions configures a SQLSource.
type SQLOptions struct {
	Table          string
	UnitAreaColumn string
	// Placeholder selects bind variables for the driver. Defaults to
	// squirrel.Dollar.
	Placeholder squirrel.PlaceholderFormat
	Logger      *slog.Logger
}

// SQLSource reads the statistics table through database/sql.
type SQLSource struct {
	db      *sql.DB
	table   string
	builder squirrel.StatementBuilderType
	opts    SQLOptions
	logger  *slog.Logger
}

// OpenSQL opens and pings a database. Any failure is a connection error.
func OpenSQL(ctx context.Context, driver, dsn string, opts SQLOptions) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to open database", err).WithContext("driver", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewConnectionError("database is unreachable", err).WithContext("driver", driver)
	}
	return NewSQLSource(db, opts), nil
}

// NewSQLSource wraps an open database handle.
func NewSQLSource(db *sql.DB, opts SQLOptions) *SQLSource {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.Placeholder == nil {
		opts.Placeholder = squirrel.Dollar
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SQLSource{
		db:      db,
		table:   opts.Table,
		builder: squirrel.StatementBuilder.PlaceholderFormat(opts.Placeholder),
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Columns reads the column names from a single-row probe.
func (s *SQLSource) Columns(ctx context.Context) ([]string, error) {
	query, args, err := s.builder.Select("*").From(quoteIdent(s.table)).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build column query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to query table columns", err).WithContext("table", s.table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to read table columns", err).WithContext("table", s.table)
	}
	return cols, nil
}

// Records reads the whole table.
func (s *SQLSource) Records(ctx context.Context) ([]domain.TransactionRecord, DecodeReport, error) {
	query, args, err := s.builder.Select("*").From(quoteIdent(s.table)).ToSql()
	if err != nil {
		return nil, DecodeReport{}, fmt.Errorf("build table query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, DecodeReport{}, apperrors.NewConnectionError("failed to query table", err).WithContext("table", s.table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, DecodeReport{}, apperrors.NewConnectionError("failed to read table columns", err).WithContext("table", s.table)
	}
	dec, err := NewDecoder(cols, DecodeOptions{
		UnitAreaColumn: s.opts.UnitAreaColumn,
		Source:         "table " + s.table,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, DecodeReport{}, err
	}

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	var records []domain.TransactionRecord
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, dec.Report(), apperrors.NewConnectionError("failed to scan row", err).WithContext("table", s.table)
		}
		records = append(records, dec.Decode(values))
	}
	if err := rows.Err(); err != nil {
		return nil, dec.Report(), apperrors.NewConnectionError("failed to read table", err).WithContext("table", s.table)
	}

	report := dec.Report()
	s.logger.InfoContext(ctx, "statistics table read",
		slog.String("table", s.table),
		slog.Int("rows", report.Rows),
		slog.Int("coercion_warnings", report.WarningCount))
	return records, report, nil
}

// DistinctValues lists the values of column. Unknown columns are not found
// errors, so the identifier never reaches the query unchecked.
func (s *SQLSource) DistinctValues(ctx context.Context, column string) ([]string, error) {
	cols, err := s.Columns(ctx)
	if err != nil {
		return nil, err
	}
	if !containsColumn(cols, column) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("column %q", column))
	}

	query, args, err := s.builder.Select(quoteIdent(column)).Distinct().From(quoteIdent(s.table)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build distinct query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to query distinct values", err).WithContext("column", column)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, apperrors.NewConnectionError("failed to scan value", err).WithContext("column", column)
		}
		if s, ok := toString(v); ok {
			out = append(out, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewConnectionError("failed to read distinct values", err).WithContext("column", column)
	}
	return sortValues(out), nil
}

// Close closes the database handle.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func containsColumn(cols []string, column string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) == column {
			return true
		}
	}
	return false
}

// sortValues deduplicates and orders values numerically where possible.
func sortValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dataprocessing.CompareValues(out[i], out[j]) < 0
	})
	return out
}
