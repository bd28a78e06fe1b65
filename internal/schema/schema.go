// Package schema defines the fixed target schema the ingestion pipeline loads
// into, plus the anchor-column declarations used for reconciliation and
// filtering. The target schema is process-wide static configuration: it is
// built (or loaded) once at startup and never mutated afterwards.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldType is the semantic type of a target field. It drives per-cell
// coercion during row building; it is intentionally coarser than any one
// backend's column types.
type FieldType string

const (
	TypeText    FieldType = "text"
	TypeInteger FieldType = "integer"
	TypeNumeric FieldType = "numeric"
	TypeYear    FieldType = "year"
)

// FieldSpec describes a single target field.
type FieldSpec struct {
	// Name is the destination column name, exactly as it appears in the
	// backing table.
	Name string `json:"name"`

	// Type selects the coercion applied to source cells mapped onto this
	// field. Empty means text.
	Type FieldType `json:"type,omitempty"`

	// Nullable marks fields that may legitimately be absent from a source
	// delivery. Reconciliation refuses to leave a non-nullable field unmapped.
	Nullable bool `json:"nullable"`
}

// Target is the ordered field list that forms the contract with the storage
// backend. The field order is authoritative: reconciled rows align with it
// 1:1 regardless of how many columns the source spreadsheet carries.
type Target struct {
	Fields []FieldSpec

	// byName indexes normalized field names → position. Built once in New.
	byName map[string]int
}

// New builds a Target from an ordered field list. Field names must be
// non-blank and unique after normalization.
func New(fields []FieldSpec) (*Target, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("target schema: empty field list")
	}
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		n := Normalize(f.Name)
		if n == "" {
			return nil, fmt.Errorf("target schema: field %d has a blank name", i)
		}
		if prev, dup := byName[n]; dup {
			return nil, fmt.Errorf("target schema: fields %d and %d collide on name %q", prev, i, n)
		}
		byName[n] = i
	}
	return &Target{Fields: fields, byName: byName}, nil
}

// Load reads a Target from a JSON file containing an array of FieldSpec.
func Load(path string) (*Target, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read target schema: %w", err)
	}
	var fields []FieldSpec
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("decode target schema: %w", err)
	}
	return New(fields)
}

// Len returns the number of target fields.
func (t *Target) Len() int { return len(t.Fields) }

// Index returns the position of the field whose normalized name matches name,
// or -1 when no field matches.
func (t *Target) Index(name string) int {
	if i, ok := t.byName[Normalize(name)]; ok {
		return i
	}
	return -1
}

// Columns returns the destination column names in field order.
func (t *Target) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Name
	}
	return cols
}

// RequiredCount returns the number of non-nullable fields.
func (t *Target) RequiredCount() int {
	n := 0
	for _, f := range t.Fields {
		if !f.Nullable {
			n++
		}
	}
	return n
}

// AnchorSpec declares a semantically identified source column. Anchors are
// located by scanning the source header against the alias set, never by
// position, because position drifts across deliveries.
type AnchorSpec struct {
	// Name is the logical anchor name referenced by filter predicates.
	Name string `json:"name"`

	// Aliases lists header spellings that identify this anchor. Matching is
	// case-insensitive and diacritic/punctuation-insensitive (see Normalize);
	// the anchor's own Name is always an implicit alias.
	Aliases []string `json:"aliases,omitempty"`

	// Required anchors abort reconciliation when no header matches.
	Required bool `json:"required"`
}

// Matches reports whether header identifies this anchor.
func (a AnchorSpec) Matches(header string) bool {
	h := Normalize(header)
	if h == "" {
		return false
	}
	if h == Normalize(a.Name) {
		return true
	}
	for _, al := range a.Aliases {
		if h == Normalize(al) {
			return true
		}
	}
	return false
}

// Normalize converts arbitrary header text into a lowercase ASCII identifier:
// diacritics are stripped, runs of separators collapse to a single underscore,
// and anything else is dropped. Blank input normalizes to "".
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	return strings.Trim(b.String(), "_")
}
