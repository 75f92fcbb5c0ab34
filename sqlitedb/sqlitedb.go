// Package sqlitedb is the facade boundary: it owns one SQLite connection,
// serializes every driver call through a single mutex (SQLite forbids
// concurrent use of a connection), marshals rows into plain Go maps, and
// logs each query's SQL text, duration, and outcome. Nothing above this
// package talks to database/sql directly.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/asmartbear/sqlight/query"
	"github.com/asmartbear/sqlight/schema"
)

// Option configures a DB at Open time.
type Option func(*DB)

// WithLogger overrides the default standard logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(d *DB) { d.log = l }
}

// WithPragma runs `PRAGMA <name> = <value>;` immediately after opening,
// before any Option-ordering-sensitive setup. Typical uses: foreign_keys,
// journal_mode, busy_timeout.
func WithPragma(name, value string) Option {
	return func(d *DB) { d.pragmas = append(d.pragmas, [2]string{name, value}) }
}

// TableInfo is one row of GetTables: a table's name and the CREATE TABLE
// statement SQLite recorded for it in sqlite_master.
type TableInfo struct {
	Name string
	SQL  string
}

// DB is the mutex-serialized facade over one SQLite connection.
type DB struct {
	mu      sync.Mutex
	conn    *sql.DB
	log     *logrus.Logger
	path    string
	pragmas [][2]string
}

// Open opens (or creates) the SQLite database at path and applies opts.
func Open(path string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitedb: open %q: %w", path, err)
	}
	d := &DB{conn: conn, log: logrus.StandardLogger(), path: path}
	for _, opt := range opts {
		opt(d)
	}
	for _, p := range d.pragmas {
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA %s = %s;", p[0], p[1])); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlitedb: pragma %s: %w", p[0], err)
		}
	}
	return d, nil
}

// Close closes the underlying connection. It serializes against any call
// already holding the mutex rather than racing ahead of it.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn.Close()
}

func (d *DB) logQuery(sqlText string, dur time.Duration, err error) {
	fields := logrus.Fields{"sql": sqlText, "duration": dur}
	if err != nil {
		fields["err"] = err
		d.log.WithFields(fields).Error("sqlitedb: query failed")
		return
	}
	d.log.WithFields(fields).Debug("sqlitedb: query executed")
}

// exec serializes one statement with no result rows through the mutex,
// logging its outcome.
func (d *DB) exec(ctx context.Context, sqlText string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	start := time.Now()
	_, err := d.conn.ExecContext(ctx, sqlText)
	d.logQuery(sqlText, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("sqlitedb: exec: %w", err)
	}
	return nil
}

// query serializes one SELECT through the mutex; scan is invoked with the
// open *sql.Rows while the mutex is still held, so row marshalling counts
// as part of the critical section, not just the driver round-trip.
func (d *DB) query(ctx context.Context, sqlText string, scan func(*sql.Rows) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	start := time.Now()
	rows, err := d.conn.QueryContext(ctx, sqlText)
	if err != nil {
		d.logQuery(sqlText, time.Since(start), err)
		return fmt.Errorf("sqlitedb: query: %w", err)
	}
	defer rows.Close()
	err = scan(rows)
	d.logQuery(sqlText, time.Since(start), err)
	return err
}

func scanRow(rows *sql.Rows, cols []string) (map[string]interface{}, error) {
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(map[string]interface{}, len(cols))
	for i, c := range cols {
		row[c] = vals[i]
	}
	return row, nil
}

// QueryAll runs sqlText and returns every row as a column-name-keyed map.
func (d *DB) QueryAll(ctx context.Context, sqlText string) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	err := d.query(ctx, sqlText, func(rows *sql.Rows) error {
		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		for rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryOne runs sqlText and returns its first row, or nil if there were
// none.
func (d *DB) QueryOne(ctx context.Context, sqlText string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := d.query(ctx, sqlText, func(rows *sql.Rows) error {
		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		if rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return err
			}
			out = row
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryCol runs sqlText and returns every row's value for the named
// column.
func (d *DB) QueryCol(ctx context.Context, sqlText, name string) ([]interface{}, error) {
	var out []interface{}
	err := d.query(ctx, sqlText, func(rows *sql.Rows) error {
		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		found := false
		for _, c := range cols {
			if c == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("sqlitedb: column %q not present in result set", name)
		}
		for rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return err
			}
			out = append(out, row[name])
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTable emits and runs t's CREATE TABLE statement.
func (d *DB) CreateTable(ctx context.Context, t *schema.Table, ifNotExists bool) error {
	return d.exec(ctx, t.CreateTableSQL(ifNotExists))
}

// Insert emits and runs an INSERT for rows against t. A nil or empty rows
// slice is a no-op.
func (d *DB) Insert(ctx context.Context, t *schema.Table, rows []map[string]interface{}) error {
	sqlText := t.InsertRowsSQL(rows)
	if sqlText == "" {
		return nil
	}
	return d.exec(ctx, sqlText)
}

// GetTables lists every row of type 'table' recorded in sqlite_master
// (SQLite's own sqlite_-prefixed tables included, when present) along with
// the CREATE TABLE statement SQLite stored for it. This is the one facade
// operation built on a fixed SQL string rather than a query.Select, since
// sqlite_master isn't part of any caller-declared schema.
func (d *DB) GetTables(ctx context.Context) ([]TableInfo, error) {
	var out []TableInfo
	err := d.query(ctx, "SELECT name, sql FROM sqlite_master WHERE type='table'", func(rows *sql.Rows) error {
		for rows.Next() {
			var info TableInfo
			if err := rows.Scan(&info.Name, &info.SQL); err != nil {
				return err
			}
			out = append(out, info)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectAll renders sel and returns every row.
func (d *DB) SelectAll(ctx context.Context, sel *query.Select) ([]map[string]interface{}, error) {
	sqlText, err := sel.ToSQL()
	if err != nil {
		return nil, err
	}
	return d.QueryAll(ctx, sqlText)
}

// SelectOne renders a clone of sel with LIMIT 1 appended and returns its
// first row, or nil if there were none. sel itself is never mutated.
func (d *DB) SelectOne(ctx context.Context, sel *query.Select) (map[string]interface{}, error) {
	clone := sel.Clone().SetLimit(1)
	sqlText, err := clone.ToSQL()
	if err != nil {
		return nil, err
	}
	return d.QueryOne(ctx, sqlText)
}
