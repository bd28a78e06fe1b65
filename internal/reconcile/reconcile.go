// Package reconcile maps a profiled source schema onto the fixed target
// schema. It is the single authority translating positional drift into the
// stable target field order: downstream stages only ever see the resulting
// Mapping, never raw source positions.
//
// The matching strategy is two-phase, in line with the drift actually
// observed across deliveries ("extra columns appended after the known core,
// and occasional in-place renames"):
//
//  1. Exact name match against the normalized source header.
//  2. Positional fallback: a target field with no name match is assumed to
//     still sit at its canonical position inside the stable leading prefix.
//
// The stable-prefix assumption is checked defensively rather than trusted: a
// name match landing anywhere other than the field's canonical position means
// a column was inserted or reordered mid-sequence, which is unsupported and
// escalates as DriftConflictError instead of silently preferring one signal.
package reconcile

import (
	"fmt"

	"sheetloader/internal/profile"
	"sheetloader/internal/schema"
)

// Absent marks a target field with no source counterpart in a Mapping.
const Absent = -1

// Mapping is the reconciliation result: for every target field, the source
// column it reads from (or Absent), plus the located anchor columns.
type Mapping struct {
	// TargetToSource is indexed by target field position; values are source
	// column positions, or Absent for nullable fields with no counterpart.
	TargetToSource []int

	// Anchors maps anchor names to the source column where the anchor was
	// located. Optional anchors that were not found are not present.
	Anchors map[string]int
}

// AnchorNotFoundError reports a required anchor column with no matching
// source header.
type AnchorNotFoundError struct {
	Anchor string
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("anchor column %q not found in source header", e.Anchor)
}

// SchemaTooNarrowError reports a source delivery that cannot cover the
// target's non-nullable fields. Reconciliation never invents data.
type SchemaTooNarrowError struct {
	Columns int    // source column count
	Need    int    // canonical position (1-based) that could not be covered
	Field   string // first uncoverable non-nullable field
}

func (e *SchemaTooNarrowError) Error() string {
	return fmt.Sprintf("source too narrow: %d columns cannot cover required field %q at position %d",
		e.Columns, e.Field, e.Need)
}

// DriftConflictError reports a name-matched column found at a position
// inconsistent with the stable-prefix assumption. This is the unsupported
// "column inserted or moved mid-sequence" case; the pipeline fails loudly
// rather than guessing which signal to trust.
type DriftConflictError struct {
	Field   string
	FoundAt int // source position where the name matched
	WantAt  int // canonical position under the positional fallback
}

func (e *DriftConflictError) Error() string {
	return fmt.Sprintf("schema drift conflict: field %q name-matched at source column %d but its canonical position is %d",
		e.Field, e.FoundAt, e.WantAt)
}

// Reconcile maps p onto target and locates the declared anchors.
//
// A target field absent from the source is permitted only when the field is
// nullable; otherwise the source is too narrow and the run aborts before any
// load attempt.
func Reconcile(p *profile.SourceProfile, target *schema.Target, anchors []schema.AnchorSpec) (*Mapping, error) {
	m := &Mapping{
		TargetToSource: make([]int, target.Len()),
		Anchors:        make(map[string]int, len(anchors)),
	}

	// Phase 0: locate anchors by name/alias, never by position.
	for _, a := range anchors {
		pos, ok := locateAnchor(p, a)
		if !ok {
			if a.Required {
				return nil, &AnchorNotFoundError{Anchor: a.Name}
			}
			continue
		}
		m.Anchors[a.Name] = pos
	}

	// Cheap pre-check: a source narrower than the required field count can
	// never be reconciled, whatever the header says.
	if req := target.RequiredCount(); p.ColumnCount < req {
		first := firstRequired(target)
		return nil, &SchemaTooNarrowError{Columns: p.ColumnCount, Need: req, Field: first}
	}

	for i, f := range target.Fields {
		// Phase 1: exact name match on the normalized header.
		if j, ok := p.ColumnPositions[schema.Normalize(f.Name)]; ok {
			if j != i {
				return nil, &DriftConflictError{Field: f.Name, FoundAt: j, WantAt: i}
			}
			m.TargetToSource[i] = j
			continue
		}

		// Phase 2: positional fallback into the stable leading prefix.
		if i < p.ColumnCount {
			m.TargetToSource[i] = i
			continue
		}

		if !f.Nullable {
			return nil, &SchemaTooNarrowError{Columns: p.ColumnCount, Need: i + 1, Field: f.Name}
		}
		m.TargetToSource[i] = Absent
	}

	return m, nil
}

// Identity reports whether the mapping is the identity over the leading
// target fields, i.e. every mapped field reads its own canonical position.
func (m *Mapping) Identity() bool {
	for i, j := range m.TargetToSource {
		if j != Absent && j != i {
			return false
		}
	}
	return true
}

func locateAnchor(p *profile.SourceProfile, a schema.AnchorSpec) (int, bool) {
	if pos, ok := p.ColumnPositions[schema.Normalize(a.Name)]; ok {
		return pos, true
	}
	for _, al := range a.Aliases {
		if pos, ok := p.ColumnPositions[schema.Normalize(al)]; ok {
			return pos, true
		}
	}
	return 0, false
}

func firstRequired(target *schema.Target) string {
	for _, f := range target.Fields {
		if !f.Nullable {
			return f.Name
		}
	}
	return ""
}
