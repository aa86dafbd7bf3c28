package dataprocessing

import (
	"database/sql"
	"time"

	"estadistica/pkg/contracts/domain"
)

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 10, 0, 0, 0, time.UTC)
	}
}

// record builds a yearly record; months maps calendar month (1-12) to quantity.
func record(product string, warehouse int64, year int, months map[int]int64) domain.TransactionRecord {
	r := domain.TransactionRecord{
		ProductCode: product,
		WarehouseID: warehouse,
		Year:        year,
		Attributes:  map[string]string{},
	}
	for m, q := range months {
		r.Months[m-1] = sql.NullInt64{Int64: q, Valid: true}
	}
	return r
}
