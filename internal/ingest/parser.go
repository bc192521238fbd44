package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// FieldError is a single field-level problem on one row. Message is the
// complete human-readable sentence and already names the field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Record holds one row's cells coerced to their declared types. Absent
// optional values are simply missing from the backing maps.
type Record struct {
	Line int
	Tier enums.Tier

	strings map[string]string
	numbers map[string]float64
	bools   map[string]bool
}

// String returns the field's value, or "" when absent.
func (r *Record) String(field string) string { return r.strings[field] }

// Number returns the field's value, or nil when absent.
func (r *Record) Number(field string) *float64 {
	if v, ok := r.numbers[field]; ok {
		return &v
	}
	return nil
}

// Bool returns the field's value, defaulting to false when absent.
func (r *Record) Bool(field string) bool { return r.bools[field] }

// Has reports whether the field carried a value on this row.
func (r *Record) Has(field string) bool {
	if _, ok := r.strings[field]; ok {
		return true
	}
	if _, ok := r.numbers[field]; ok {
		return true
	}
	_, ok := r.bools[field]
	return ok
}

var truthyCells = map[string]bool{
	"true": true, "yes": true, "y": true, "1": true,
	"false": false, "no": false, "n": false, "0": false,
}

// ParseRow coerces one data row against the tier's rule table. A blank cell
// counts as absent; required-but-absent is reported here so every problem a
// row has surfaces in a single pass. Bound checks belong to Validate, not
// here.
func ParseRow(line int, cells []string, headers HeaderMap, tier enums.Tier) (*Record, []FieldError) {
	rec := &Record{
		Line:    line,
		Tier:    tier,
		strings: make(map[string]string),
		numbers: make(map[string]float64),
		bools:   make(map[string]bool),
	}

	var errs []FieldError
	for _, rule := range ruleSets[tier] {
		idx, mapped := headers[rule.Field]
		raw := ""
		if mapped && idx < len(cells) {
			raw = strings.TrimSpace(cells[idx])
		}
		if raw == "" {
			if rule.Required {
				errs = append(errs, FieldError{Field: rule.Field, Message: fmt.Sprintf("%s is required", rule.Field)})
			}
			continue
		}

		switch rule.Type {
		case FieldTypeNumber:
			v, err := parseNumberCell(raw)
			if err != nil {
				// Optional numbers degrade to absent on garbage input;
				// only required ones fail the row.
				if rule.Required {
					errs = append(errs, FieldError{Field: rule.Field, Message: fmt.Sprintf("%s is not a number %q", rule.Field, raw)})
				}
				continue
			}
			rec.numbers[rule.Field] = v
		case FieldTypeBoolean:
			v, ok := truthyCells[strings.ToLower(raw)]
			if !ok {
				errs = append(errs, FieldError{Field: rule.Field, Message: fmt.Sprintf("%s is not a boolean %q", rule.Field, raw)})
				continue
			}
			rec.bools[rule.Field] = v
		default:
			rec.strings[rule.Field] = raw
		}
	}
	return rec, errs
}

// parseNumberCell accepts the spellings vendors export: currency symbols,
// thousands separators, surrounding whitespace.
func parseNumberCell(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}
