// Package rowfilter applies a declarative predicate chain to source rows.
// Predicates are data, not code: each is a tagged variant (equals, not-null,
// in-set) over a named anchor column, evaluated by a small interpreter so new
// kinds can be added without touching the control flow.
//
// Evaluation is pure: the same rows, mapping, and chain always yield the same
// eligible set. A missing anchor value never raises; the row is ineligible
// with reason "missing-anchor-value".
package rowfilter

import (
	"fmt"
	"strings"
)

// Op tags a predicate variant.
type Op string

const (
	OpEquals  Op = "equals"
	OpNotNull Op = "not-null"
	OpInSet   Op = "in-set"
)

// ReasonMissingAnchor marks rows whose anchor cell is blank (or whose anchor
// column is absent from the delivery altogether).
const ReasonMissingAnchor = "missing-anchor-value"

// Predicate is one declarative filter condition over an anchor column.
type Predicate struct {
	Anchor string `json:"anchor"`
	Op     Op     `json:"op"`

	// Value is the operand for "equals".
	Value string `json:"value,omitempty"`

	// Set is the operand for "in-set".
	Set []string `json:"set,omitempty"`
}

// Chain is an AND-combined predicate list; a row is eligible only when every
// predicate holds.
type Chain []Predicate

// Validate rejects structurally broken predicates (unknown op, missing
// anchor name, missing operand) before any row is touched.
func (c Chain) Validate() error {
	for i, p := range c {
		if strings.TrimSpace(p.Anchor) == "" {
			return fmt.Errorf("predicate %d: anchor name is empty", i)
		}
		switch p.Op {
		case OpEquals:
			if p.Value == "" {
				return fmt.Errorf("predicate %d: equals requires a value", i)
			}
		case OpInSet:
			if len(p.Set) == 0 {
				return fmt.Errorf("predicate %d: in-set requires a non-empty set", i)
			}
		case OpNotNull:
			// no operand
		default:
			return fmt.Errorf("predicate %d: unknown op %q", i, p.Op)
		}
	}
	return nil
}

// Verdict is the filter's judgement on one source row. Index is the 0-based
// data-row position in the delivery, preserved for audit.
type Verdict struct {
	Index    int
	Row      []string
	Eligible bool
	Reason   string
}

// Stream evaluates the chain lazily over rows, preserving source order. It is
// single-pass and not restartable: once Next returns false the stream is
// exhausted.
type Stream struct {
	rows    [][]string
	anchors map[string]int
	chain   Chain
	pos     int
}

// New builds a verdict stream over rows. anchors maps anchor names to source
// column positions (the reconciler's Mapping.Anchors).
func New(rows [][]string, anchors map[string]int, chain Chain) *Stream {
	return &Stream{rows: rows, anchors: anchors, chain: chain}
}

// Next yields the verdict for the next row. The second return is false once
// the source is exhausted.
func (s *Stream) Next() (Verdict, bool) {
	if s.pos >= len(s.rows) {
		return Verdict{}, false
	}
	row := s.rows[s.pos]
	v := Verdict{Index: s.pos, Row: row, Eligible: true}
	s.pos++

	for _, p := range s.chain {
		if ok, reason := s.eval(p, row); !ok {
			v.Eligible = false
			v.Reason = reason
			break
		}
	}
	return v, true
}

func (s *Stream) eval(p Predicate, row []string) (bool, string) {
	idx, located := s.anchors[p.Anchor]
	var cell string
	if located && idx < len(row) {
		cell = strings.TrimSpace(row[idx])
	}
	if cell == "" {
		return false, ReasonMissingAnchor
	}

	switch p.Op {
	case OpNotNull:
		return true, ""

	case OpEquals:
		if cell == p.Value {
			return true, ""
		}
		return false, fmt.Sprintf("equals-mismatch:%s", p.Anchor)

	case OpInSet:
		for _, want := range p.Set {
			if cell == want {
				return true, ""
			}
		}
		return false, fmt.Sprintf("not-in-set:%s", p.Anchor)

	default:
		// Unknown ops are caught by Validate; evaluation stays total anyway.
		return false, fmt.Sprintf("unknown-op:%s", p.Op)
	}
}
