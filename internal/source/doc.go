// Package source reads the yearly statistics table from a relational
// database or from a workbook sheet and decodes its rows into
// TransactionRecords.
//
// Cell values are coerced leniently: values that cannot be read as numbers
// become nulls and are reported as coercion warnings instead of failing the
// whole read. Missing required columns are validation errors.
package source
