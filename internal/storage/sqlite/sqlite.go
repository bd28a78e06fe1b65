// Package sqlite wires a file-backed SQLite backend into the storage
// registry. It exists for local scratch loads and hermetic end-to-end tests;
// nothing about the loader changes between it and the server backends.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"sheetloader/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		return storage.NewSQLRepo(db, Dialect()), nil
	})
}

// Dialect returns the SQLite dialect.
func Dialect() storage.Dialect {
	return storage.Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		QuoteIdent: func(id string) string {
			return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
		},
		ColumnsQuery: func(table string) (string, []any) {
			return "SELECT name FROM pragma_table_info(?)", []any{table}
		},
		SampleQuery: func(table string, cols []string, limit int) string {
			return fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(cols, ", "), table, limit)
		},
		MaxParams: 32000,
	}
}
