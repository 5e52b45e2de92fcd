package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// sqlTimeLayout is the DATETIME format the driver expects with
// parseTime disabled.
const sqlTimeLayout = "2006-01-02 15:04:05"

func formatSQLTime(t time.Time) string {
	return t.UTC().Format(sqlTimeLayout)
}

// dbtx is the subset of *sql.DB and *sql.Tx the repositories run
// statements through, so helpers can join a caller's transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
