package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sheetloader/internal/rowfilter"
	"sheetloader/internal/schema"
)

// Config is the per-deployment pipeline configuration, decodable from a JSON
// file. Everything about a run except the backend connection lives here; the
// backend is resolved separately (dbenv) and passed in by parameter.
type Config struct {
	// Table is the destination table, optionally schema-qualified.
	Table string `json:"table"`

	// SchemaPath points at a JSON target-schema file. Empty selects the
	// embedded reference schema.
	SchemaPath string `json:"schema_path,omitempty"`

	// HeaderRow is the 1-based header row in the delivery. Zero means row 1.
	HeaderRow int `json:"header_row,omitempty"`

	// SheetName selects an XLSX worksheet; empty means the first one.
	SheetName string `json:"sheet_name,omitempty"`

	// Anchors declares the semantically identified columns predicates may
	// reference.
	Anchors []schema.AnchorSpec `json:"anchors"`

	// Filters is the declarative predicate chain applied to every row.
	Filters rowfilter.Chain `json:"filters,omitempty"`

	// BatchSize bounds rows per load transaction. Zero means the loader
	// default.
	BatchSize int `json:"batch_size,omitempty"`

	// NullMarkers overrides the literals treated as NULL during coercion.
	NullMarkers []string `json:"null_markers,omitempty"`
}

// DefaultConfig returns the reference deployment: the 132-field measurement
// table, header on workbook row 4, partitioned by business-unit code.
func DefaultConfig() Config {
	return Config{
		Table:     "data",
		HeaderRow: 4,
		Anchors: []schema.AnchorSpec{
			{
				Name:     "business_unit_code",
				Aliases:  []string{"business-unit-code", "unit_code", "feature_name"},
				Required: true,
			},
			{
				Name:    "comments_indicator",
				Aliases: []string{"comments", "important_note"},
			},
		},
		Filters: rowfilter.Chain{
			{Anchor: "business_unit_code", Op: rowfilter.OpEquals, Value: "SMD"},
		},
	}
}

// LoadConfig decodes a Config from a JSON file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read pipeline config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("decode pipeline config: %w", err)
	}
	return c, nil
}

// IssueSeverity grades a configuration finding.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one validation finding. Path is a dotted path into the config.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks over the config without touching the
// filesystem or any backend. Callers decide whether warnings block.
func (c Config) Validate() []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Table) == "" {
		issues = append(issues, Issue{SeverityError, "table", "destination table must not be empty"})
	}
	if c.HeaderRow < 0 {
		issues = append(issues, Issue{SeverityError, "header_row", "must be >= 0"})
	}
	if c.BatchSize < 0 {
		issues = append(issues, Issue{SeverityError, "batch_size", "must be >= 0"})
	}
	if c.BatchSize > 10000 {
		issues = append(issues, Issue{SeverityWarning, "batch_size",
			"very large batches widen the blast radius of a failed batch"})
	}

	declared := make(map[string]bool, len(c.Anchors))
	for i, a := range c.Anchors {
		path := fmt.Sprintf("anchors[%d]", i)
		if strings.TrimSpace(a.Name) == "" {
			issues = append(issues, Issue{SeverityError, path, "anchor name must not be empty"})
			continue
		}
		if declared[a.Name] {
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("duplicate anchor %q", a.Name)})
		}
		declared[a.Name] = true
	}

	if err := c.Filters.Validate(); err != nil {
		issues = append(issues, Issue{SeverityError, "filters", err.Error()})
	}
	for i, p := range c.Filters {
		if p.Anchor != "" && !declared[p.Anchor] {
			issues = append(issues, Issue{
				SeverityError,
				fmt.Sprintf("filters[%d].anchor", i),
				fmt.Sprintf("predicate references undeclared anchor %q", p.Anchor),
			})
		}
	}

	return issues
}
