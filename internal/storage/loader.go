// Batched transactional loader.
//
// The loader owns the pipeline's only write path. It drains reconciled rows
// from a lazy source, groups them into fixed-size batches, and commits one
// transaction per batch, so a mid-run failure loses at most one batch. It
// never retries and never continues past a failed batch.
//
// Logging: one concise progress line per committed batch with running totals,
// in the style of the rest of the pipeline.
package storage

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultBatchSize is the reference batch size. It is a tunable on Loader,
// not a constant of the design: operators trade failure granularity against
// throughput.
const DefaultBatchSize = 500

// ConnectionError reports a backend that could not be reached. It is fatal
// and not retried: misconfiguration is not transient.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("backend connection failed: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaMismatchError reports a live table missing required target columns.
// The pipeline never alters destination structure; provisioning is external.
type SchemaMismatchError struct {
	Table   string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table %s is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// PartialLoadError reports a failed batch. Batches before it are committed
// and stay committed; nothing after it was attempted.
type PartialLoadError struct {
	// Batch is the 0-based index of the first failing batch.
	Batch int

	// RowsCommitted counts rows persisted by the batches before the failure.
	RowsCommitted int64

	Err error
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("load aborted at batch %d after %d committed rows: %v", e.Batch, e.RowsCommitted, e.Err)
}

func (e *PartialLoadError) Unwrap() error { return e.Err }

// Loader performs the verified batch load into one table.
type Loader struct {
	Repo    Repository
	Table   string
	Columns []string

	// BatchSize bounds rows per transaction. Zero means DefaultBatchSize.
	BatchSize int
}

// LoadStats is the loader's own tally of a run.
type LoadStats struct {
	RowsLoaded int64 `json:"rows_loaded"`
	Batches    int   `json:"batches_committed"`
}

// Preflight verifies connectivity and that the live table's column set is a
// superset of the target field list. It sends no rows.
func (l *Loader) Preflight(ctx context.Context) error {
	if err := l.Repo.Ping(ctx); err != nil {
		return &ConnectionError{Err: err}
	}

	live, err := l.Repo.TableColumns(ctx, l.Table)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	have := make(map[string]bool, len(live))
	for _, c := range live {
		have[strings.ToLower(c)] = true
	}

	var missing []string
	for _, c := range l.Columns {
		if !have[strings.ToLower(c)] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaMismatchError{Table: l.Table, Missing: missing}
	}
	return nil
}

// Load drains rows from next until it reports exhaustion, inserting them in
// batch-sized transactions. On a batch failure it aborts immediately with a
// PartialLoadError naming the failing batch and the rows already committed.
func (l *Loader) Load(ctx context.Context, next func() ([]any, bool)) (LoadStats, error) {
	if err := l.Preflight(ctx); err != nil {
		return LoadStats{}, err
	}

	size := l.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var (
		stats LoadStats
		batch = make([][]any, 0, size)
		start = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := l.Repo.InsertBatch(ctx, l.Table, l.Columns, batch)
		if err != nil {
			return &PartialLoadError{Batch: stats.Batches, RowsCommitted: stats.RowsLoaded, Err: err}
		}
		stats.RowsLoaded += n
		stats.Batches++
		log.Printf("loader: batch #%d inserted=%d total=%d elapsed=%s",
			stats.Batches, n, stats.RowsLoaded, time.Since(start).Truncate(time.Millisecond))
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		row, ok := next()
		if !ok {
			if err := flush(); err != nil {
				return stats, err
			}
			return stats, nil
		}
		batch = append(batch, row)
		if len(batch) >= size {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
}
