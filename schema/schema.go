// Package schema declares tables and columns as Go values and emits the
// CREATE TABLE / INSERT SQL for them. It is the one place column order is
// authoritative: every other package that cares about column order (INSERT
// value tuples, CREATE TABLE layout, the query package's FROM-table column
// handles) gets it from here.
package schema

import (
	"fmt"
	"strings"

	"github.com/asmartbear/sqlight/expr"
	"github.com/asmartbear/sqlight/query"
)

// Column describes one column of a Table. Nullable and PK both default to
// false, matching the schema declaration format's defaults.
type Column struct {
	Name     string
	Type     expr.SqlType
	Nullable bool
	PK       bool
}

// Table is a named, ordered set of columns. Declaration order drives both
// CreateTableSQL and InsertRowsSQL.
type Table struct {
	Name    string
	Columns []Column
}

// CreateTableSQL emits the table's CREATE TABLE statement, columns in
// declaration order, NOT NULL before PRIMARY KEY on each column.
func (t *Table) CreateTableSQL(ifNotExists bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(t.Name)
	b.WriteString(" ( ")

	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		part := c.Name + " " + c.Type.String()
		if !c.Nullable {
			part += " NOT NULL"
		}
		if c.PK {
			part += " PRIMARY KEY"
		}
		parts[i] = part
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(" )")
	return b.String()
}

// InsertRowsSQL emits a multi-row INSERT statement. rows is a slice of
// column-name-keyed maps; row field order is irrelevant, since both the
// column list and every value tuple are emitted in schema declaration
// order. Missing or explicit-nil values become typed NULLs. An empty or
// nil rows slice yields an empty string. returning, if given, appends a
// RETURNING clause (SQLite 3.35+).
func (t *Table) InsertRowsSQL(rows []map[string]interface{}, returning ...string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Name
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.Name)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ","))
	b.WriteString(") VALUES\n")

	tuples := make([]string, len(rows))
	for i, row := range rows {
		vals := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			vals[j] = expr.Literal(c.Type, row[c.Name]).Render(false)
		}
		tuples[i] = "(" + strings.Join(vals, ",") + ")"
	}
	b.WriteString(strings.Join(tuples, ",\n"))

	if len(returning) > 0 {
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(returning, ","))
	}
	return b.String()
}

// Database is a named set of tables.
type Database struct {
	Name   string
	Tables []Table
}

func (d *Database) table(name string) (*Table, bool) {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i], true
		}
	}
	return nil, false
}

// Table looks up a table by name, for callers that want to emit DDL/DML
// directly rather than through a Select.
func (d *Database) Table(name string) (*Table, bool) {
	return d.table(name)
}

// TableColumns implements query.SchemaProvider: it's how a Select resolves
// the column set behind a From/Join alias without query importing schema
// (schema imports query's ColumnInfo shape instead).
func (d *Database) TableColumns(tableName string) ([]query.ColumnInfo, error) {
	t, ok := d.table(tableName)
	if !ok {
		return nil, fmt.Errorf("schema: unknown table %q", tableName)
	}
	cols := make([]query.ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = query.ColumnInfo{Name: c.Name, SQLType: c.Type, Nullable: c.Nullable}
	}
	return cols, nil
}

// NewSelect starts a new Select builder rooted at this database.
func (d *Database) NewSelect() *query.Select {
	return query.NewSelect(d)
}
