// Package storage contains the storage-agnostic contracts of the loader: the
// Repository interface, a registry that backend packages hook into at init
// time, and the batched transactional loader itself.
//
// The CLI and orchestrator depend only on this package; database drivers are
// imported solely by the backend subpackages (mysql, postgres, mssql, sqlite)
// and pulled in together via storage/all.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config is the backend-independent connection configuration.
type Config struct {
	// Driver selects the registered backend kind.
	Driver string

	// DSN is the driver-ready connection string (see dbenv).
	DSN string
}

// Repository is the minimal backend surface the pipeline needs. The loader
// owns the only write path; verification uses the read-only methods.
type Repository interface {
	// Ping verifies connectivity without side effects.
	Ping(ctx context.Context) error

	// TableColumns lists the live column names of table, in table order.
	TableColumns(ctx context.Context, table string) ([]string, error)

	// InsertBatch inserts rows (aligned with columns) inside one transaction
	// and returns the number of rows inserted. The batch either commits fully
	// or not at all.
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// CountRows returns the current row count of table.
	CountRows(ctx context.Context, table string) (int64, error)

	// SampleRows returns up to limit rows of the named columns, as strings.
	SampleRows(ctx context.Context, table string, columns []string, limit int) ([][]string, error)

	Close() error
}

// Factory opens a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Backend packages call this
// from init(); re-registering a kind replaces the previous factory.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository using the factory registered for cfg.Driver.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Driver]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for driver %q", cfg.Driver)
	}
	return fn(ctx, cfg)
}
