// Package dataprocessing turns filtered movement records into the grouped
// statistics rows written by the exporter.
//
// # Pipeline
//
// The StatisticsProcessor runs three stages in order:
//
// 1. TrailingWindow: computes the twelve-month trailing quantity per record,
// pulling the tail of the prior year row with the same product and warehouse
// 2. StockJoiner: attaches stock, the monthly average (prom) and the duration
// in months for current-year rows
// 3. Aggregator: sums the metrics per group key and sorts the groups
//
// # Usage
//
//	dims, err := dataprocessing.ResolveDimensions([]string{"LINEA", "BODEGA"})
//	if err != nil {
//	    return err
//	}
//	proc := dataprocessing.NewStatisticsProcessor(dims, dataprocessing.DefaultOptions())
//	rows, stats := proc.Process(records, stock)
//
// # Rounding
//
// Derived values are rounded half to even with Round. Duration returns
// zero when the average is zero.
package dataprocessing
