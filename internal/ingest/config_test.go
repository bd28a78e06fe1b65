package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"sheetloader/internal/rowfilter"
	"sheetloader/internal/schema"
)

func errorCount(issues []Issue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

func TestDefaultConfigIsValid(t *testing.T) {
	if issues := DefaultConfig().Validate(); len(issues) != 0 {
		t.Fatalf("default config has issues: %v", issues)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(*Config)
		wantErrors int
	}{
		{
			"empty table",
			func(c *Config) { c.Table = " " },
			1,
		},
		{
			"negative header row",
			func(c *Config) { c.HeaderRow = -1 },
			1,
		},
		{
			"negative batch size",
			func(c *Config) { c.BatchSize = -5 },
			1,
		},
		{
			"duplicate anchors",
			func(c *Config) {
				c.Anchors = append(c.Anchors, schema.AnchorSpec{Name: "business_unit_code"})
			},
			1,
		},
		{
			"blank anchor name",
			func(c *Config) {
				c.Anchors = append(c.Anchors, schema.AnchorSpec{Name: "  "})
			},
			1,
		},
		{
			"predicate over undeclared anchor",
			func(c *Config) {
				c.Filters = append(c.Filters, rowfilter.Predicate{
					Anchor: "phantom", Op: rowfilter.OpNotNull,
				})
			},
			1,
		},
		{
			"structurally broken predicate",
			func(c *Config) {
				c.Filters = append(c.Filters, rowfilter.Predicate{
					Anchor: "business_unit_code", Op: rowfilter.OpEquals,
				})
			},
			1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if got := errorCount(cfg.Validate()); got != tc.wantErrors {
				t.Fatalf("errors = %d (%v); want %d", got, cfg.Validate(), tc.wantErrors)
			}
		})
	}
}

func TestValidateLargeBatchWarns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 50000
	issues := cfg.Validate()
	if errorCount(issues) != 0 {
		t.Fatalf("large batch must warn, not error: %v", issues)
	}
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Fatalf("issues = %v; want exactly one warning", issues)
	}
}

func TestLoadConfig(t *testing.T) {
	const js = `{
	  "table": "lab.data",
	  "header_row": 4,
	  "sheet_name": "Deliveries",
	  "batch_size": 250,
	  "anchors": [
	    {"name": "business_unit_code", "aliases": ["unit_code"], "required": true}
	  ],
	  "filters": [
	    {"anchor": "business_unit_code", "op": "in-set", "set": ["SMD", "DMS"]}
	  ]
	}`
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(js), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Table != "lab.data" || cfg.HeaderRow != 4 || cfg.BatchSize != 250 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.Anchors) != 1 || !cfg.Anchors[0].Required {
		t.Fatalf("anchors = %+v", cfg.Anchors)
	}
	if len(cfg.Filters) != 1 || cfg.Filters[0].Op != rowfilter.OpInSet {
		t.Fatalf("filters = %+v", cfg.Filters)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Fatalf("decoded config has issues: %v", issues)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
