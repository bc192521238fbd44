package ingest

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

func TestProcessPartialFailure(t *testing.T) {
	headers := []string{"peptide_name", "price_usd", "size_mg"}
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("Peptide-%d", i), "49.99", "10"}
	}
	rows[4][1] = "abc" // data row 5

	result, err := Process(headers, rows, enums.TierResearch)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Summary.TotalRows != 10 {
		t.Errorf("TotalRows = %d, want 10", result.Summary.TotalRows)
	}
	if result.Summary.SuccessCount != 9 {
		t.Errorf("SuccessCount = %d, want 9", result.Summary.SuccessCount)
	}
	if result.Summary.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", result.Summary.FailureCount)
	}
	if len(result.Summary.Errors) != 1 {
		t.Fatalf("Errors = %v, want one", result.Summary.Errors)
	}
	if result.Summary.Errors[0].Line != 5 {
		t.Errorf("error line = %d, want 5", result.Summary.Errors[0].Line)
	}
	if !strings.Contains(result.Summary.Errors[0].Message, `not a number "abc"`) {
		t.Errorf("error message = %q", result.Summary.Errors[0].Message)
	}
	if len(result.ValidRows) != 9 {
		t.Fatalf("ValidRows = %d, want 9", len(result.ValidRows))
	}
	for _, row := range result.ValidRows {
		if row.Line == 5 {
			t.Error("failed row leaked into ValidRows")
		}
	}
}

func TestProcessHeaderFailureRejectsWholeBatch(t *testing.T) {
	headers := []string{"peptide_name", "size_mg"} // no price column
	rows := [][]string{{"BPC-157", "10"}, {"TB-500", "5"}}

	result, err := Process(headers, rows, enums.TierResearch)
	if result != nil {
		t.Fatal("no result expected on header failure")
	}
	var hmErr *HeaderMappingError
	if !errors.As(err, &hmErr) {
		t.Fatalf("expected HeaderMappingError, got %v", err)
	}
}

func TestProcessLineNumbersAreDataRows(t *testing.T) {
	headers := []string{"peptide_name", "price_usd", "size_mg"}
	rows := [][]string{
		{"BPC-157", "49.99", "10"},
		{"", "49.99", "10"},
		{"TB-500", "80", "0"},
	}

	result, err := Process(headers, rows, enums.TierResearch)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Summary.Errors) != 2 {
		t.Fatalf("Errors = %v, want two", result.Summary.Errors)
	}
	if result.Summary.Errors[0].Line != 2 || result.Summary.Errors[1].Line != 3 {
		t.Errorf("error lines = %d,%d, want 2,3", result.Summary.Errors[0].Line, result.Summary.Errors[1].Line)
	}
	if !strings.Contains(result.Summary.Errors[1].Message, "size_mg must be > 0") {
		t.Errorf("message = %q", result.Summary.Errors[1].Message)
	}
	if len(result.ValidRows) != 1 || result.ValidRows[0].Line != 1 {
		t.Errorf("ValidRows = %+v, want single line-1 row", result.ValidRows)
	}
}

func TestProcessEmptyFile(t *testing.T) {
	result, err := Process([]string{"peptide_name", "price_usd", "size_mg"}, nil, enums.TierResearch)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Summary.TotalRows != 0 || result.Summary.SuccessCount != 0 || result.Summary.FailureCount != 0 {
		t.Errorf("summary = %+v, want zeroes", result.Summary)
	}
}

func TestAppendRowErrorAdjustsCounts(t *testing.T) {
	headers := []string{"peptide_name", "price_usd", "size_mg"}
	rows := [][]string{{"BPC-157", "49.99", "10"}}

	result, err := Process(headers, rows, enums.TierResearch)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	result.AppendRowError(2, "vendor does not support tier research")

	if result.Summary.SuccessCount != 0 || result.Summary.FailureCount != 1 {
		t.Errorf("summary = %+v, want 0 success 1 failure", result.Summary)
	}
	if len(result.Summary.Errors) != 1 || result.Summary.Errors[0].Line != 2 {
		t.Errorf("Errors = %v", result.Summary.Errors)
	}
}
