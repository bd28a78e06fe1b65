package ingest

import (
	"github.com/google/uuid"

	"sheetloader/internal/profile"
)

// Reports are the structured results of the four pipeline operations. The
// hosting CLI is responsible for formatting them; nothing here prints.

// ProfileReport describes the structural fingerprint of one delivery.
type ProfileReport struct {
	Path    string                 `json:"path"`
	Profile *profile.SourceProfile `json:"profile"`
}

// ReconcileReport describes how a delivery maps onto the target schema.
type ReconcileReport struct {
	Path string `json:"path"`

	// TargetFields is the size of the fixed target field list.
	TargetFields int `json:"target_fields"`

	// SourceColumns is the delivery's column count.
	SourceColumns int `json:"source_columns"`

	// Mapping is target field position → source column position (-1 absent).
	Mapping []int `json:"mapping"`

	// Absent lists target fields with no source counterpart (all nullable,
	// or reconciliation would have failed).
	Absent []string `json:"absent,omitempty"`

	// Anchors maps located anchor names to source positions.
	Anchors map[string]int `json:"anchors"`

	// Identity reports whether every mapped field reads its canonical
	// position, the expected shape for well-behaved deliveries.
	Identity bool `json:"identity"`
}

// FilterReport summarizes a dry run of the predicate chain.
type FilterReport struct {
	Path           string         `json:"path"`
	RowsRead       int            `json:"rows_read"`
	Eligible       int            `json:"eligible"`
	FilteredOut    int            `json:"filtered_out"`
	ReasonCounts   map[string]int `json:"reason_counts,omitempty"`
	PredicateCount int            `json:"predicate_count"`
}

// RowRejection records one row excluded during row building, attributable to
// a specific location in the source file.
type RowRejection struct {
	// Index is the 0-based data-row position (header excluded).
	Index  int    `json:"row_index"`
	Reason string `json:"reason"`
}

// LoadReport is the authoritative audit record of a load run. It is returned
// to the caller; the core writes it nowhere.
type LoadReport struct {
	RunID uuid.UUID `json:"run_id"`
	Path  string    `json:"path"`

	Backend string `json:"backend"`
	Table   string `json:"table"`

	RowsRead        int   `json:"rows_read"`
	RowsFilteredOut int   `json:"rows_filtered_out"`
	RowsLoaded      int64 `json:"rows_loaded"`
	Batches         int   `json:"batches_committed"`

	RejectedRows []RowRejection `json:"rejected_rows,omitempty"`

	// Warnings carry verification discrepancies. They are telemetry, not
	// correctness gates: the backend may be concurrently written by others.
	Warnings []string `json:"warnings,omitempty"`
}
