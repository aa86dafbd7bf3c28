// Package stock loads the stock snapshot workbook joined into the report.
package stock

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// DefaultSheet is the sheet holding the flattened stock table.
const DefaultSheet = "Reformateado"

// Loader reads stock snapshots.
type Loader struct {
	logger *slog.Logger
}

// LoadResult is a deduplicated snapshot.
type LoadResult struct {
	Records []domain.StockRecord
	// Duplicates counts rows dropped because their product/warehouse pair
	// was already seen.
	Duplicates int
	// Skipped counts rows without a readable product or warehouse.
	Skipped int
	// MissingQuantity counts first occurrences whose quantity is blank or
	// unreadable. They are kept with zero stock and still shadow later
	// rows of the same pair.
	MissingQuantity int
}

// NewLoader creates a stock loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the snapshot sheet of the workbook at path. Rows repeating a
// product/warehouse pair are dropped, keeping the first, whatever its
// quantity.
func (l *Loader) Load(ctx context.Context, path, sheet string) (*LoadResult, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to open stock workbook", err).WithContext("path", path)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("stock workbook has no sheet %q", sheet)).WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("stock sheet %q is empty", sheet)).WithContext("path", path)
	}

	header := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := header[h]; !dup {
			header[h] = i
		}
	}
	var idx [3]int
	for i, col := range []string{domain.StockColumnProduct, domain.StockColumnWarehouse, domain.StockColumnQuantity} {
		pos, ok := header[col]
		if !ok {
			return nil, apperrors.NewMissingColumnError("stock sheet "+sheet, col)
		}
		idx[i] = pos
	}

	result := &LoadResult{}
	seen := make(map[domain.StockKey]bool)
	for n, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key, ok := parseKey(row, idx)
		if !ok {
			if !blank(row) {
				result.Skipped++
				l.logger.Warn("stock row skipped",
					slog.String("path", path),
					slog.Int("row", n+2))
			}
			continue
		}
		if seen[key] {
			result.Duplicates++
			continue
		}
		seen[key] = true

		qty, ok := parseQuantity(cellAt(row, idx[2]))
		if !ok {
			result.MissingQuantity++
			l.logger.Warn("stock quantity missing, using zero",
				slog.String("path", path),
				slog.Int("row", n+2),
				slog.String("product", key.ProductCode))
		}
		result.Records = append(result.Records, domain.StockRecord{
			ProductCode: key.ProductCode,
			WarehouseID: key.WarehouseID,
			Quantity:    qty,
		})
	}

	l.logger.InfoContext(ctx, "stock snapshot loaded",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("records", len(result.Records)),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("skipped", result.Skipped),
		slog.Int("missing_quantity", result.MissingQuantity))
	return result, nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseKey(row []string, idx [3]int) (domain.StockKey, bool) {
	product := normalizeCode(cellAt(row, idx[0]))
	if product == "" {
		return domain.StockKey{}, false
	}
	warehouse, err := strconv.ParseFloat(cellAt(row, idx[1]), 64)
	if err != nil || warehouse != math.Trunc(warehouse) {
		return domain.StockKey{}, false
	}
	return domain.StockKey{ProductCode: product, WarehouseID: int64(warehouse)}, true
}

// parseQuantity reads a quantity cell; decimal commas are accepted.
func parseQuantity(s string) (float64, bool) {
	qty, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, false
	}
	return qty, true
}

// normalizeCode drops the ".0" spreadsheet tools append to numeric codes so
// they join with the table's codes.
func normalizeCode(s string) string {
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || whole == "" || strings.Trim(frac, "0") != "" {
		return s
	}
	if _, err := strconv.ParseUint(whole, 10, 64); err != nil {
		return s
	}
	return whole
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
