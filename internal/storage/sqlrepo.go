package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect captures the per-backend SQL differences the generic repository
// needs: placeholder style, identifier quoting, column introspection, and the
// statement parameter budget.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// QuoteIdent quotes a single identifier segment.
	QuoteIdent func(string) string

	// ColumnsQuery returns the introspection query listing the columns of
	// table (unqualified name), with its bind arguments.
	ColumnsQuery func(table string) (string, []any)

	// SampleQuery returns a query selecting up to limit rows of cols.
	SampleQuery func(table string, cols []string, limit int) string

	// MaxParams bounds bind parameters per statement. InsertBatch splits a
	// batch into multiple statements inside the same transaction when the
	// row set would exceed it (MySQL caps at 65535, MSSQL at 2100).
	MaxParams int
}

// SQLRepo implements Repository over database/sql with a Dialect. All four
// backends share it; only the driver import and the Dialect differ.
type SQLRepo struct {
	db *sql.DB
	d  Dialect
}

// NewSQLRepo wraps an opened database handle.
func NewSQLRepo(db *sql.DB, d Dialect) *SQLRepo {
	return &SQLRepo{db: db, d: d}
}

func (r *SQLRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *SQLRepo) Close() error { return r.db.Close() }

// TableColumns lists the live columns of table. A schema-qualified name
// ("public.data") is split and only the table part is passed to the
// introspection query.
func (r *SQLRepo) TableColumns(ctx context.Context, table string) ([]string, error) {
	query, args := r.d.ColumnsQuery(unqualified(table))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// InsertBatch inserts rows in one transaction. The batch is split into
// multiple INSERT statements when the parameter budget requires it, but the
// transaction boundary stays at the batch: a failure rolls the whole batch
// back.
func (r *SQLRepo) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns configured")
	}

	rowsPerStmt := len(rows)
	if r.d.MaxParams > 0 {
		if limit := r.d.MaxParams / len(columns); limit < rowsPerStmt {
			rowsPerStmt = limit
		}
		if rowsPerStmt < 1 {
			return 0, fmt.Errorf("%d columns exceed the %s parameter budget", len(columns), r.d.Name)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	var inserted int64
	for start := 0; start < len(rows); start += rowsPerStmt {
		end := start + rowsPerStmt
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		query, args := r.buildInsert(table, columns, chunk)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(len(chunk))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *SQLRepo) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.quoteFQN(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// SampleRows reads back up to limit rows of cols as strings (NULL → "").
func (r *SQLRepo) SampleRows(ctx context.Context, table string, columns []string, limit int) ([][]string, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = r.d.QuoteIdent(c)
	}
	query := r.d.SampleQuery(r.quoteFQN(table), quoted, limit)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make([]string, len(columns))
		for i, v := range cells {
			rec[i] = stringify(v)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// buildInsert renders a multi-row INSERT for chunk with flattened bind args.
func (r *SQLRepo) buildInsert(table string, columns []string, chunk [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = r.d.QuoteIdent(c)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(r.quoteFQN(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(chunk)*len(columns))
	n := 1
	for ri, row := range chunk {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for ci := range columns {
			if ci > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.d.Placeholder(n))
			n++
			args = append(args, valueAt(row, ci))
		}
		b.WriteByte(')')
	}
	return b.String(), args
}

// quoteFQN quotes a possibly schema-qualified name ("public.data" →
// "public"."data" under the Postgres dialect).
func (r *SQLRepo) quoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = r.d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func unqualified(table string) string {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[i+1:]
	}
	return table
}

func valueAt(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
