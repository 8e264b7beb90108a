package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"golang.org/x/text/cases"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/yamdb/yamdb-server/internal/store"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// sequenceTables have integer identity columns.
var sequenceTables = []string{"users", "categories", "genres", "titles", "genre_titles", "reviews", "comments"}

// dialect isolates the SQL differences between backends.
type dialect interface {
	driverName() string
	dsn(url string) string
	configurePool(db *sql.DB)
	schema() string
	// rebind converts '?' placeholders to the backend syntax.
	rebind(q string) string
	// ilike is a case-insensitive LIKE condition on column with one
	// pattern placeholder escaped by '\'.
	ilike(column string) string
	// translate maps constraint violations to store sentinels.
	translate(err error) error
	resetSequences(ctx context.Context, db *sql.DB) error
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite":
		return sqliteDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func init() {
	// SQLite LIKE folds ASCII only.
	if err := sqlite.RegisterDeterministicScalarFunction("casefold", 1, casefold); err != nil {
		panic(err)
	}
}

// casefold applies Unicode case folding to text values.
func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return cases.Fold().String(v), nil
	case []byte:
		return cases.Fold().String(string(v)), nil
	}
	return args[0], nil
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

// dsn sets pragmas through the connection string so that every pooled
// connection gets them, foreign_keys in particular.
func (sqliteDialect) dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func (sqliteDialect) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
}

func (sqliteDialect) schema() string { return sqliteSchema }
func (sqliteDialect) rebind(q string) string { return q }

func (sqliteDialect) ilike(column string) string {
	return "casefold(" + column + `) LIKE casefold(?) ESCAPE '\'`
}

func (sqliteDialect) translate(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists.WithCause(err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return store.ErrInvalidReference.WithCause(err)
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return store.ErrAlreadyExists.WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrInvalidReference.WithCause(err)
	}
	return err
}

// AUTOINCREMENT tracks explicit ids on its own.
func (sqliteDialect) resetSequences(context.Context, *sql.DB) error { return nil }

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "pgx" }
func (postgresDialect) dsn(url string) string { return url }

func (postgresDialect) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
}

func (postgresDialect) schema() string { return postgresSchema }

func (postgresDialect) ilike(column string) string {
	return column + ` ILIKE ? ESCAPE '\'`
}

func (postgresDialect) rebind(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 16)
	n := 0
	for i := range len(q) {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (postgresDialect) translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return store.ErrAlreadyExists.WithCause(err)
		case "23503":
			return store.ErrInvalidReference.WithCause(err)
		}
	}
	return err
}

func (postgresDialect) resetSequences(ctx context.Context, db *sql.DB) error {
	for _, table := range sequenceTables {
		q := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM %[1]s`,
			table)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
