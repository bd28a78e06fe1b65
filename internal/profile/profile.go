// Package profile inspects a loaded spreadsheet and produces a structural
// fingerprint of it: column count, name→position map, per-column null
// density, and row count. Profiling is read-only and allocates a fresh
// SourceProfile per run; nothing is retained between runs.
package profile

import (
	"fmt"
	"strings"

	"sheetloader/internal/schema"
	"sheetloader/internal/sheet"
)

// SourceProfile is the structural fingerprint of one delivery.
type SourceProfile struct {
	// ColumnCount is the width of the header row.
	ColumnCount int `json:"column_count"`

	// ColumnPositions maps normalized non-blank header names to their
	// 0-based position. Blank headers are position-only columns and do not
	// appear here.
	ColumnPositions map[string]int `json:"column_positions"`

	// NullDensity maps column position to the fraction of data rows whose
	// cell is blank at that position. Rows shorter than the header count as
	// blank for the missing positions.
	NullDensity map[int]float64 `json:"null_density"`

	// RowCount is the number of data rows (header excluded).
	RowCount int `json:"row_count"`
}

// MalformedSourceError reports a delivery whose header is structurally
// unusable: missing entirely, or carrying duplicate non-blank names that
// cannot be disambiguated.
type MalformedSourceError struct {
	Path   string
	Reason string
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("malformed source %s: %s", e.Path, e.Reason)
}

// Profile fingerprints s. It fails with MalformedSourceError when the header
// row is absent or two non-blank headers normalize to the same name.
func Profile(s *sheet.Sheet) (*SourceProfile, error) {
	if len(s.Headers) == 0 {
		return nil, &MalformedSourceError{Path: s.Path, Reason: "header row missing"}
	}

	positions := make(map[string]int, len(s.Headers))
	for i, h := range s.Headers {
		n := schema.Normalize(h)
		if n == "" {
			continue
		}
		if prev, dup := positions[n]; dup {
			return nil, &MalformedSourceError{
				Path:   s.Path,
				Reason: fmt.Sprintf("duplicate header %q at columns %d and %d", n, prev, i),
			}
		}
		positions[n] = i
	}

	density := make(map[int]float64, len(s.Headers))
	if len(s.Rows) > 0 {
		blanks := make([]int, len(s.Headers))
		for _, row := range s.Rows {
			for i := range s.Headers {
				if strings.TrimSpace(sheet.Cell(row, i)) == "" {
					blanks[i]++
				}
			}
		}
		for i, n := range blanks {
			density[i] = float64(n) / float64(len(s.Rows))
		}
	}

	return &SourceProfile{
		ColumnCount:     len(s.Headers),
		ColumnPositions: positions,
		NullDensity:     density,
		RowCount:        len(s.Rows),
	}, nil
}
