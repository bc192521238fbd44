package types

import (
	"database/sql/driver"
)

// RowError is one failed CSV line recorded on an upload batch.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// RowErrorList is the jsonb-backed error list persisted with each upload.
type RowErrorList []RowError

func (l RowErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = RowErrorList{}
	}
	return jsonbValue(l)
}

func (l *RowErrorList) Scan(src any) error {
	if src == nil {
		*l = RowErrorList{}
		return nil
	}
	return jsonbScan(src, l)
}
