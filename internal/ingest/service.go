package ingest

import (
	"strings"

	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/types"
)

// ValidRow is a fully parsed and validated row ready for persistence.
type ValidRow struct {
	Line     int
	Record   *Record
	Computed map[string]float64
}

// Summary totals one batch. An individual bad row lands in Errors and never
// aborts the rows around it.
type Summary struct {
	TotalRows    int
	SuccessCount int
	FailureCount int
	Errors       types.RowErrorList
}

// Result pairs a batch summary with the rows that survived it.
type Result struct {
	Summary   Summary
	ValidRows []ValidRow
}

// AppendRowError records a post-pipeline failure for a row that had already
// validated, keeping the summary's counts consistent.
func (r *Result) AppendRowError(line int, message string) {
	r.Summary.SuccessCount--
	r.Summary.FailureCount++
	r.Summary.Errors = append(r.Summary.Errors, types.RowError{Line: line, Message: message})
}

// Process runs the pipeline over an already-read file: map headers once,
// then parse and validate each row in order. Error lines are 1-based data
// row numbers; the header row carries no number. The only fatal outcome is
// a header mapping failure; everything after that is per-row.
func Process(headers []string, rows [][]string, tier enums.Tier) (*Result, error) {
	headerMap, err := MapHeaders(headers, tier)
	if err != nil {
		return nil, err
	}

	result := &Result{Summary: Summary{TotalRows: len(rows)}}
	for i, cells := range rows {
		line := i + 1
		rec, parseErrs := ParseRow(line, cells, headerMap, tier)
		if len(parseErrs) > 0 {
			result.fail(line, parseErrs)
			continue
		}
		computed, validationErrs := Validate(rec)
		if len(validationErrs) > 0 {
			result.fail(line, validationErrs)
			continue
		}
		result.Summary.SuccessCount++
		result.ValidRows = append(result.ValidRows, ValidRow{Line: line, Record: rec, Computed: computed})
	}
	return result, nil
}

func (r *Result) fail(line int, errs []FieldError) {
	r.Summary.FailureCount++
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		msgs[i] = fe.Error()
	}
	r.Summary.Errors = append(r.Summary.Errors, types.RowError{Line: line, Message: strings.Join(msgs, "; ")})
}
