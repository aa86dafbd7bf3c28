// Package report expands aggregated statistics rows into the final report
// sequence: one block per group with a bracketed header, the group's data
// rows, optional subtotal and extra-metric rows and a blank separator.
//
// Four modes are supported:
//
//	Plain     header, data rows, separator
//	Subtotal  adds "SUBTOTAL: <name>" rows per common name and year, and
//	          "TOTALES SUB GENERAL" rows per year
//	Extra     adds unit-area scaled "TOTALES EXTRA: <name>" rows and
//	          "TOTALES EXTRA GENERAL" rows per year
//	Combined  both, in one pass
//
// A common name is the family part of a product description, obtained by
// stripping a size code such as "200X300":
//
//	CommonName("CLASICA BLANCA 200X300") == "CLASICA BLANCA"
//
// Rows of one common name are expected to be contiguous, which the
// aggregator's key ordering guarantees when the label column is grouped.
package report
