// Package mssql wires the SQL Server backend into the storage registry.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"sheetloader/internal/storage"
)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		db, err := sql.Open("sqlserver", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("mssql open: %w", err)
		}
		return storage.NewSQLRepo(db, Dialect()), nil
	})
}

// Dialect returns the SQL Server dialect.
func Dialect() storage.Dialect {
	return storage.Dialect{
		Name:        "mssql",
		Placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		QuoteIdent: func(id string) string {
			return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
		},
		ColumnsQuery: func(table string) (string, []any) {
			return "SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS " +
				"WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION", []any{table}
		},
		SampleQuery: func(table string, cols []string, limit int) string {
			return fmt.Sprintf("SELECT TOP %d %s FROM %s", limit, strings.Join(cols, ", "), table)
		},
		// SQL Server rejects statements beyond 2100 parameters, which forces
		// much smaller per-statement chunks than the other backends.
		MaxParams: 2100,
	}
}
