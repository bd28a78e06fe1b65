// Package mysql wires the MySQL backend into the storage registry. The
// reference deployment (local MySQL and its managed-cloud twin) lives here.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"sheetloader/internal/storage"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		db, err := sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("mysql open: %w", err)
		}
		return storage.NewSQLRepo(db, Dialect()), nil
	})
}

// Dialect returns the MySQL SQL dialect.
func Dialect() storage.Dialect {
	return storage.Dialect{
		Name:        "mysql",
		Placeholder: func(int) string { return "?" },
		QuoteIdent: func(id string) string {
			return "`" + strings.ReplaceAll(id, "`", "``") + "`"
		},
		ColumnsQuery: func(table string) (string, []any) {
			return "SELECT column_name FROM information_schema.columns " +
				"WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position", []any{table}
		},
		SampleQuery: func(table string, cols []string, limit int) string {
			return fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(cols, ", "), table, limit)
		},
		// Prepared statements cap at 65535 placeholders.
		MaxParams: 65535,
	}
}
