package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeRepo is an in-memory Repository for loader tests. failAt triggers a
// batch failure on the n-th InsertBatch call (1-based); zero never fails.
type fakeRepo struct {
	columns []string
	batches [][][]any
	failAt  int
	pingErr error
}

func (f *fakeRepo) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeRepo) TableColumns(ctx context.Context, table string) ([]string, error) {
	return f.columns, nil
}

func (f *fakeRepo) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if f.failAt > 0 && len(f.batches)+1 == f.failAt {
		return 0, errors.New("deadlock detected")
	}
	cp := make([][]any, len(rows))
	copy(cp, rows)
	f.batches = append(f.batches, cp)
	return int64(len(rows)), nil
}

func (f *fakeRepo) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	for _, b := range f.batches {
		n += int64(len(b))
	}
	return n, nil
}

func (f *fakeRepo) SampleRows(ctx context.Context, table string, columns []string, limit int) ([][]string, error) {
	return nil, nil
}

func (f *fakeRepo) Close() error { return nil }

func rowSource(n int) func() ([]any, bool) {
	i := 0
	return func() ([]any, bool) {
		if i >= n {
			return nil, false
		}
		i++
		return []any{fmt.Sprintf("row-%d", i), "x"}, true
	}
}

func TestLoaderBatchBoundaries(t *testing.T) {
	repo := &fakeRepo{columns: []string{"a", "b"}}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a", "b"}, BatchSize: 4}

	stats, err := l.Load(context.Background(), rowSource(10))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.RowsLoaded != 10 || stats.Batches != 3 {
		t.Fatalf("stats = %+v; want 10 rows in 3 batches", stats)
	}
	sizes := []int{len(repo.batches[0]), len(repo.batches[1]), len(repo.batches[2])}
	if sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Fatalf("batch sizes = %v; want [4 4 2]", sizes)
	}
}

func TestLoaderExactMultiple(t *testing.T) {
	repo := &fakeRepo{columns: []string{"a", "b"}}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a", "b"}, BatchSize: 5}

	stats, err := l.Load(context.Background(), rowSource(10))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.Batches != 2 {
		t.Fatalf("Batches = %d; want 2, no trailing empty batch", stats.Batches)
	}
}

func TestLoaderEmptySource(t *testing.T) {
	repo := &fakeRepo{columns: []string{"a", "b"}}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a", "b"}}

	stats, err := l.Load(context.Background(), rowSource(0))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.RowsLoaded != 0 || stats.Batches != 0 || len(repo.batches) != 0 {
		t.Fatalf("stats = %+v batches = %d; want nothing written", stats, len(repo.batches))
	}
}

func TestLoaderPreflightSchemaMismatch(t *testing.T) {
	repo := &fakeRepo{columns: []string{"a"}} // live table lacks column b
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a", "b"}}

	stats, err := l.Load(context.Background(), rowSource(3))
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v; want SchemaMismatchError", err)
	}
	if mismatch.Table != "data" || len(mismatch.Missing) != 1 || mismatch.Missing[0] != "b" {
		t.Fatalf("mismatch = %+v; want table data missing [b]", mismatch)
	}
	if stats.RowsLoaded != 0 || len(repo.batches) != 0 {
		t.Fatalf("rows written despite failed preflight: %+v", stats)
	}
}

func TestLoaderPreflightColumnCaseInsensitive(t *testing.T) {
	repo := &fakeRepo{columns: []string{"FEATURE_NAME", "title"}}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"feature_name", "Title"}}

	if err := l.Preflight(context.Background()); err != nil {
		t.Fatalf("Preflight: %v", err)
	}
}

func TestLoaderPreflightConnection(t *testing.T) {
	repo := &fakeRepo{pingErr: errors.New("connection refused")}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a"}}

	_, err := l.Load(context.Background(), rowSource(1))
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v; want ConnectionError", err)
	}
}

func TestLoaderPartialFailure(t *testing.T) {
	repo := &fakeRepo{columns: []string{"a", "b"}, failAt: 3}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a", "b"}, BatchSize: 4}

	stats, err := l.Load(context.Background(), rowSource(10))
	var partial *PartialLoadError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v; want PartialLoadError", err)
	}
	if partial.Batch != 2 {
		t.Fatalf("failing batch = %d; want 0-based index 2", partial.Batch)
	}
	if partial.RowsCommitted != 8 || stats.RowsLoaded != 8 || stats.Batches != 2 {
		t.Fatalf("committed = %d stats = %+v; want the first two batches kept", partial.RowsCommitted, stats)
	}
}

func TestLoaderContextCancellation(t *testing.T) {
	repo := &fakeRepo{columns: []string{"a", "b"}}
	l := &Loader{Repo: repo, Table: "data", Columns: []string{"a", "b"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, rowSource(10)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
}
