// Package postgres wires the Postgres backend into the storage registry,
// using lib/pq over database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"sheetloader/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres open: %w", err)
		}
		return storage.NewSQLRepo(db, Dialect()), nil
	})
}

// Dialect returns the Postgres SQL dialect.
func Dialect() storage.Dialect {
	return storage.Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		QuoteIdent: func(id string) string {
			return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
		},
		ColumnsQuery: func(table string) (string, []any) {
			return "SELECT column_name FROM information_schema.columns " +
				"WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position", []any{table}
		},
		SampleQuery: func(table string, cols []string, limit int) string {
			return fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(cols, ", "), table, limit)
		},
		MaxParams: 65535,
	}
}
