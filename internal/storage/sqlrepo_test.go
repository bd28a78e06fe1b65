package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDialect(maxParams int) Dialect {
	return Dialect{
		Name:        "test",
		Placeholder: func(int) string { return "?" },
		QuoteIdent:  func(id string) string { return "`" + id + "`" },
		ColumnsQuery: func(table string) (string, []any) {
			return "SELECT column_name FROM cols WHERE table_name = ?", []any{table}
		},
		SampleQuery: func(table string, cols []string, limit int) string {
			return "SELECT " + strings.Join(cols, ", ") + " FROM " + table + " LIMIT 2"
		},
		MaxParams: maxParams,
	}
}

func TestSQLRepoInsertBatchSingleStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO `data` (`a`, `b`) VALUES (?, ?), (?, ?)")).
		WithArgs("r1a", "r1b", "r2a", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.InsertBatch(context.Background(), "data",
		[]string{"a", "b"}, [][]any{{"r1a", "r1b"}, {"r2a", nil}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSQLRepoInsertBatchChunksByParamBudget pins the parameter-budget
// behavior: 3 rows of 2 columns against a 4-parameter budget become two
// statements inside one transaction.
func TestSQLRepoInsertBatchChunksByParamBudget(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(4))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO `data` (`a`, `b`) VALUES (?, ?), (?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO `data` (`a`, `b`) VALUES (?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.InsertBatch(context.Background(), "data",
		[]string{"a", "b"}, [][]any{{"1", "2"}, {"3", "4"}, {"5", "6"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepoInsertBatchRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	boom := errors.New("duplicate key")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(boom)
	mock.ExpectRollback()

	_, err = repo.InsertBatch(context.Background(), "data",
		[]string{"a"}, [][]any{{"1"}})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepoInsertBatchColumnsOverBudget(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(2))

	_, err = repo.InsertBatch(context.Background(), "data",
		[]string{"a", "b", "c"}, [][]any{{"1", "2", "3"}})
	require.Error(t, err)
}

func TestSQLRepoInsertBatchEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	n, err := repo.InsertBatch(context.Background(), "data", []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepoInsertBatchShortRowPadsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WithArgs("only", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err = repo.InsertBatch(context.Background(), "data",
		[]string{"a", "b"}, [][]any{{"only"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepoTableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT column_name FROM cols WHERE table_name = ?")).
		WithArgs("data").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("feature_name").AddRow("Title"))

	// The schema qualifier is stripped before introspection.
	cols, err := repo.TableColumns(context.Background(), "lab.data")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature_name", "Title"}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepoCountRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `lab`.`data`")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(6193))

	n, err := repo.CountRows(context.Background(), "lab.data")
	require.NoError(t, err)
	assert.Equal(t, int64(6193), n)
}

func TestSQLRepoSampleRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSQLRepo(db, testDialect(0))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `a`, `b` FROM `data` LIMIT 2")).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b"}).
			AddRow("x", nil).
			AddRow([]byte("bytes"), int64(7)))

	rows, err := repo.SampleRows(context.Background(), "data", []string{"a", "b"}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", ""}, {"bytes", "7"}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteFQN(t *testing.T) {
	repo := &SQLRepo{d: testDialect(0)}
	cases := []struct{ in, want string }{
		{"data", "`data`"},
		{"lab.data", "`lab`.`data`"},
	}
	for _, tc := range cases {
		if got := repo.quoteFQN(tc.in); got != tc.want {
			t.Fatalf("quoteFQN(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
