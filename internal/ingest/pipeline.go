// Package ingest wires the pipeline stages together: open, profile,
// reconcile, filter, load, verify. It owns no policy of its own; behavior is
// driven entirely by the Config and the resolved backend.
//
// Invocations are independent processes with no mutual exclusion between
// them. Two concurrent loads of the same delivery will both commit their
// rows; serialization, when needed, belongs to the operator.
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"sheetloader/internal/dbenv"
	"sheetloader/internal/profile"
	"sheetloader/internal/reconcile"
	"sheetloader/internal/rowfilter"
	"sheetloader/internal/schema"
	"sheetloader/internal/sheet"
	"sheetloader/internal/storage"
)

// Test seam.
var newRepository = storage.New

// Pipeline executes the ingestion operations for one configured deployment.
type Pipeline struct {
	cfg     Config
	backend dbenv.BackendConfig
	target  *schema.Target
}

// New builds a Pipeline. The target schema comes from cfg.SchemaPath when
// set, otherwise the embedded reference schema.
func New(cfg Config, backend dbenv.BackendConfig) (*Pipeline, error) {
	if issues := cfg.Validate(); len(issues) > 0 {
		for _, i := range issues {
			if i.Severity == SeverityError {
				return nil, fmt.Errorf("invalid pipeline config: %w", i)
			}
		}
	}

	target := schema.Reference()
	if cfg.SchemaPath != "" {
		var err error
		target, err = schema.Load(cfg.SchemaPath)
		if err != nil {
			return nil, err
		}
	}
	return &Pipeline{cfg: cfg, backend: backend, target: target}, nil
}

func (p *Pipeline) open(path string) (*sheet.Sheet, error) {
	return sheet.Open(path, sheet.Options{
		HeaderRow: p.cfg.HeaderRow,
		SheetName: p.cfg.SheetName,
	})
}

// Profile reads a delivery and reports its structural fingerprint. It never
// touches any backend.
func (p *Pipeline) Profile(path string) (*ProfileReport, error) {
	s, err := p.open(path)
	if err != nil {
		return nil, err
	}
	prof, err := profile.Profile(s)
	if err != nil {
		return nil, err
	}
	return &ProfileReport{Path: path, Profile: prof}, nil
}

// Reconcile maps a delivery onto the target schema and reports the result
// without loading anything.
func (p *Pipeline) Reconcile(path string) (*ReconcileReport, error) {
	s, err := p.open(path)
	if err != nil {
		return nil, err
	}
	prof, err := profile.Profile(s)
	if err != nil {
		return nil, err
	}
	m, err := reconcile.Reconcile(prof, p.target, p.cfg.Anchors)
	if err != nil {
		return nil, err
	}

	var absent []string
	for i, src := range m.TargetToSource {
		if src == reconcile.Absent {
			absent = append(absent, p.target.Fields[i].Name)
		}
	}
	return &ReconcileReport{
		Path:          path,
		TargetFields:  p.target.Len(),
		SourceColumns: prof.ColumnCount,
		Mapping:       m.TargetToSource,
		Absent:        absent,
		Anchors:       m.Anchors,
		Identity:      m.Identity(),
	}, nil
}

// FilterPreview runs the predicate chain over a delivery and tallies the
// outcome, without building rows or touching any backend.
func (p *Pipeline) FilterPreview(path string) (*FilterReport, error) {
	s, err := p.open(path)
	if err != nil {
		return nil, err
	}
	prof, err := profile.Profile(s)
	if err != nil {
		return nil, err
	}
	m, err := reconcile.Reconcile(prof, p.target, p.cfg.Anchors)
	if err != nil {
		return nil, err
	}

	rep := &FilterReport{
		Path:           path,
		ReasonCounts:   map[string]int{},
		PredicateCount: len(p.cfg.Filters),
	}
	stream := rowfilter.New(s.Rows, m.Anchors, p.cfg.Filters)
	for {
		v, ok := stream.Next()
		if !ok {
			break
		}
		rep.RowsRead++
		if v.Eligible {
			rep.Eligible++
			continue
		}
		rep.FilteredOut++
		rep.ReasonCounts[v.Reason]++
	}
	return rep, nil
}

// Load runs the full pipeline against the resolved backend and returns the
// audit report. When the failure happens after rows have committed, the
// report is returned alongside the error so the caller still sees how far
// the run got.
func (p *Pipeline) Load(ctx context.Context, path string) (*LoadReport, error) {
	rep := &LoadReport{
		RunID:   uuid.New(),
		Path:    path,
		Backend: p.backend.Driver,
		Table:   p.cfg.Table,
	}

	s, err := p.open(path)
	if err != nil {
		return nil, err
	}
	prof, err := profile.Profile(s)
	if err != nil {
		return nil, err
	}
	m, err := reconcile.Reconcile(prof, p.target, p.cfg.Anchors)
	if err != nil {
		return nil, err
	}
	log.Printf("reconciled %s: %d source columns onto %d fields (identity=%v)",
		path, prof.ColumnCount, p.target.Len(), m.Identity())

	repo, err := newRepository(ctx, storage.Config{
		Driver: p.backend.Driver,
		DSN:    p.backend.DSN,
	})
	if err != nil {
		return nil, &storage.ConnectionError{Err: err}
	}
	defer repo.Close()

	coercion := reconcile.DefaultCoercion()
	if len(p.cfg.NullMarkers) > 0 {
		coercion.NullMarkers = p.cfg.NullMarkers
	}

	countBefore, countBeforeErr := repo.CountRows(ctx, p.cfg.Table)
	if countBeforeErr != nil {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("pre-load count unavailable, verification skipped: %v", countBeforeErr))
	}

	stream := rowfilter.New(s.Rows, m.Anchors, p.cfg.Filters)
	next := func() ([]any, bool) {
		for {
			v, ok := stream.Next()
			if !ok {
				return nil, false
			}
			rep.RowsRead++
			if !v.Eligible {
				rep.RowsFilteredOut++
				continue
			}
			row, err := reconcile.BuildRow(m, p.target, v.Row, coercion)
			if err != nil {
				rep.RejectedRows = append(rep.RejectedRows, RowRejection{
					Index:  v.Index,
					Reason: err.Error(),
				})
				continue
			}
			return row, true
		}
	}

	loader := &storage.Loader{
		Repo:      repo,
		Table:     p.cfg.Table,
		Columns:   p.target.Columns(),
		BatchSize: p.cfg.BatchSize,
	}
	stats, loadErr := loader.Load(ctx, next)
	rep.RowsLoaded = stats.RowsLoaded
	rep.Batches = stats.Batches
	if loadErr != nil {
		if stats.RowsLoaded > 0 {
			return rep, loadErr
		}
		return nil, loadErr
	}

	if countBeforeErr == nil {
		rep.Warnings = append(rep.Warnings,
			p.verify(ctx, repo, countBefore, stats.RowsLoaded, m, coercion, s)...)
	}

	log.Printf("load %s complete: run=%s rows=%d batches=%d filtered=%d rejected=%d warnings=%d",
		path, rep.RunID, rep.RowsLoaded, rep.Batches, rep.RowsFilteredOut,
		len(rep.RejectedRows), len(rep.Warnings))
	return rep, nil
}
