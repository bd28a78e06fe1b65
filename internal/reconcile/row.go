package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"sheetloader/internal/schema"
	"sheetloader/internal/sheet"
)

// Coercion carries the cell-cleaning rules applied while building reconciled
// rows. The defaults mirror the upstream lab exports, where a handful of
// literals stand in for "no value" and free-text cells occasionally balloon.
type Coercion struct {
	// NullMarkers are trimmed cell values treated as NULL (matched
	// case-sensitively, the way the exports actually spell them).
	NullMarkers []string

	// MaxTextLen clamps text cells, in runes. Zero means no clamp.
	MaxTextLen int
}

// DefaultCoercion returns the reference cleaning rules.
func DefaultCoercion() Coercion {
	return Coercion{
		NullMarkers: []string{"N/A", "nan", "NULL", "None", "Notreported"},
		MaxTextLen:  2000,
	}
}

// CellError reports a single cell that could not be coerced to its field's
// semantic type. It rejects the row it occurred in, never the run.
type CellError struct {
	Field string
	Value string
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("field %s: cannot coerce %q: %v", e.Field, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// BuildRow projects one raw source row through the mapping into a value
// sequence aligned 1:1 with the target field list. Source columns outside the
// mapping are dropped, including columns the delivery added beyond the known
// core. NULLs are represented as untyped nil so database drivers bind them
// directly.
func BuildRow(m *Mapping, target *schema.Target, raw []string, c Coercion) ([]any, error) {
	out := make([]any, target.Len())
	for i, f := range target.Fields {
		src := m.TargetToSource[i]
		var cell string
		if src != Absent {
			cell = sheet.Cell(raw, src)
		}

		v, err := coerceCell(cell, f, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func coerceCell(cell string, f schema.FieldSpec, c Coercion) (any, error) {
	s := strings.TrimSpace(cell)
	if s == "" || isNullMarker(s, c.NullMarkers) {
		if !f.Nullable {
			return nil, &CellError{Field: f.Name, Value: cell, Err: fmt.Errorf("null value in non-nullable field")}
		}
		return nil, nil
	}

	switch f.Type {
	case schema.TypeInteger:
		n, err := parseInteger(s)
		if err != nil {
			return nil, &CellError{Field: f.Name, Value: s, Err: err}
		}
		return n, nil

	case schema.TypeNumeric:
		// Percent columns arrive as "85%" in some deliveries.
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return nil, &CellError{Field: f.Name, Value: s, Err: err}
		}
		return v, nil

	case schema.TypeYear:
		n, err := parseInteger(s)
		if err != nil {
			return nil, &CellError{Field: f.Name, Value: s, Err: err}
		}
		if n < 1000 || n > 2500 {
			return nil, &CellError{Field: f.Name, Value: s, Err: fmt.Errorf("year out of range")}
		}
		return n, nil

	default: // text
		if c.MaxTextLen > 0 {
			if r := []rune(s); len(r) > c.MaxTextLen {
				s = string(r[:c.MaxTextLen])
			}
		}
		return s, nil
	}
}

// parseInteger accepts plain integers and integral floats ("2015.0"), which
// spreadsheet tools emit for numeric cells.
func parseInteger(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	n := int64(f)
	if float64(n) != f {
		return 0, fmt.Errorf("not an integer")
	}
	return n, nil
}

func isNullMarker(s string, markers []string) bool {
	for _, m := range markers {
		if s == m {
			return true
		}
	}
	return false
}
