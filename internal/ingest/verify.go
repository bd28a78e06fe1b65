package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"sheetloader/internal/reconcile"
	"sheetloader/internal/rowfilter"
	"sheetloader/internal/sheet"
	"sheetloader/internal/storage"
)

// sampleLimit bounds the post-load sample comparison.
const sampleLimit = 5

// verify runs the post-load checks and returns them as warnings. Every
// discrepancy is advisory: the table may receive concurrent writes this
// process knows nothing about.
func (p *Pipeline) verify(ctx context.Context, repo storage.Repository, countBefore, rowsLoaded int64, m *reconcile.Mapping, c reconcile.Coercion, s *sheet.Sheet) []string {
	var warnings []string

	countAfter, err := repo.CountRows(ctx, p.cfg.Table)
	if err != nil {
		return append(warnings, fmt.Sprintf("post-load count unavailable: %v", err))
	}
	if delta := countAfter - countBefore; delta != rowsLoaded {
		warnings = append(warnings, fmt.Sprintf(
			"row count delta %d does not match rows loaded %d (before=%d after=%d)",
			delta, rowsLoaded, countBefore, countAfter))
	}

	// Sample comparison only makes sense when this run is the table's sole
	// content; otherwise pre-existing rows dominate the sample.
	if countBefore != 0 || rowsLoaded == 0 {
		return warnings
	}

	// The sample queries carry no ORDER BY, so the backend may return any of
	// the loaded rows in any order. Each sampled row is therefore checked
	// for membership in the multiset of rows this run sent, not compared
	// positionally.
	want := p.sourceFingerprints(m, c, s)
	if len(want) == 0 {
		return append(warnings, "sample verification skipped: no source-derived rows to compare")
	}

	got, err := repo.SampleRows(ctx, p.cfg.Table, p.target.Columns(), sampleLimit)
	if err != nil {
		return append(warnings, fmt.Sprintf("sample fetch failed: %v", err))
	}
	if len(got) == 0 {
		return append(warnings, "backend returned no sample rows after a non-empty load")
	}
	for i, rec := range got {
		f := fingerprint(rec)
		if want[f] > 0 {
			want[f]--
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"sampled row %d does not match any source-derived row", i))
	}
	return warnings
}

// sourceFingerprints rebuilds every row the loader sent, rendered as strings
// comparable with Repository.SampleRows output, and returns their
// fingerprints as a multiset.
func (p *Pipeline) sourceFingerprints(m *reconcile.Mapping, c reconcile.Coercion, s *sheet.Sheet) map[uint64]int {
	want := make(map[uint64]int)
	stream := rowfilter.New(s.Rows, m.Anchors, p.cfg.Filters)
	for {
		v, ok := stream.Next()
		if !ok {
			break
		}
		if !v.Eligible {
			continue
		}
		row, err := reconcile.BuildRow(m, p.target, v.Row, c)
		if err != nil {
			continue
		}
		rec := make([]string, len(row))
		for i, cell := range row {
			rec[i] = renderValue(cell)
		}
		want[fingerprint(rec)]++
	}
	return want
}

// fingerprint hashes one rendered row. Cells are joined with a unit
// separator so adjacent cells cannot collide by concatenation.
func fingerprint(row []string) uint64 {
	return xxh3.HashString(strings.Join(row, "\x1f"))
}

func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
