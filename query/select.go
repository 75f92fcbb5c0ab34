// Package query implements the SELECT builder: a mutable, chainable value
// that accumulates projections, FROM/JOIN entries, WHERE conditions, ORDER
// BY clauses, and LIMIT/OFFSET, then renders the whole thing to one SQL
// string. Construction errors are deferred to ToSQL rather than panicking
// mid-chain, so every mutating method can keep returning *Select.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/asmartbear/sqlight/expr"
)

// ErrMissingProjection is returned by AsSubquery when the requested alias
// was never bound by Select.
var ErrMissingProjection = errors.New("query: missing projection")

// ColumnInfo is the shape a SchemaProvider reports for one column: just
// enough for the query package to build a column-reference expression.
type ColumnInfo struct {
	Name     string
	SQLType  expr.SqlType
	Nullable bool
}

// SchemaProvider is the one thing a Select needs from a schema: the
// column set behind a table name. schema.Database implements this, kept
// as an interface here (rather than a direct import of schema) so the two
// packages don't form a cycle.
type SchemaProvider interface {
	TableColumns(tableName string) ([]ColumnInfo, error)
}

// JoinKind names the SQL join keyword emitted between a base table and a
// joined one.
type JoinKind string

const (
	InnerJoin JoinKind = "JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
	RightJoin JoinKind = "RIGHT JOIN"
	CrossJoin JoinKind = "CROSS JOIN"
)

// OrderDir is the sort direction for an ORDER BY entry.
type OrderDir string

const (
	Asc  OrderDir = "ASC"
	Desc OrderDir = "DESC"
)

// FromTable is the handle returned by From/Join: the alias the caller
// chose plus a column-name-to-expression map for every column the schema
// declares on that table, each already qualified with this alias.
type FromTable struct {
	Alias     string
	TableName string
	Col       map[string]expr.Expr
}

type projection struct {
	alias string
	value expr.Expr
}

type joinEntry struct {
	alias     string
	tableName string
	kind      JoinKind // zero value for the base table
	on        expr.Expr
}

type orderEntry struct {
	value expr.Expr
	dir   OrderDir
}

// Select accumulates the clauses of one SELECT statement. Zero value is
// not usable; construct with NewSelect.
type Select struct {
	db          SchemaProvider
	projections []projection
	projIndex   map[string]int
	joins       []joinEntry
	wheres      []expr.Expr
	orderBys    []orderEntry
	limit       int
	hasLimit    bool
	offset      int
	err         error
}

// NewSelect starts a new Select resolving FROM/JOIN table columns through
// db. Callers normally reach this via schema.Database.NewSelect instead of
// calling it directly.
func NewSelect(db SchemaProvider) *Select {
	return &Select{db: db, projIndex: make(map[string]int)}
}

// Select appends or replaces the projection bound to alias; value is
// coerced through the expression factory.
func (s *Select) Select(alias string, value interface{}) *Select {
	if s.err != nil {
		return s
	}
	e, err := expr.Of(value)
	if err != nil {
		s.err = err
		return s
	}
	if idx, ok := s.projIndex[alias]; ok {
		s.projections[idx] = projection{alias: alias, value: e}
		return s
	}
	s.projIndex[alias] = len(s.projections)
	s.projections = append(s.projections, projection{alias: alias, value: e})
	return s
}

// PassThrough is shorthand for Select(col.ColumnName(), col); col must be
// a column-reference expression, typically one pulled off a FromTable.
func (s *Select) PassThrough(col expr.Expr) *Select {
	if s.err != nil {
		return s
	}
	name, ok := col.ColumnName()
	if !ok {
		s.err = fmt.Errorf("query: PassThrough requires a column reference expression")
		return s
	}
	return s.Select(name, col)
}

func (s *Select) addTable(alias, tableName string) (*FromTable, error) {
	cols, err := s.db.TableColumns(tableName)
	if err != nil {
		return nil, err
	}
	colMap := make(map[string]expr.Expr, len(cols))
	for _, c := range cols {
		colMap[c.Name] = expr.NewColumnRef(alias, c.Name, c.SQLType, c.Nullable)
	}
	return &FromTable{Alias: alias, TableName: tableName, Col: colMap}, nil
}

// From appends the base table of the FROM clause. It must be the first
// table added; use Join for everything after it.
func (s *Select) From(alias, tableName string) (*FromTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.joins) > 0 {
		err := errors.New("query: From must be called before any Join")
		s.err = err
		return nil, err
	}
	ft, err := s.addTable(alias, tableName)
	if err != nil {
		s.err = err
		return nil, err
	}
	s.joins = append(s.joins, joinEntry{alias: alias, tableName: tableName})
	return ft, nil
}

// Join appends a joined table. predicate is invoked with the freshly built
// FromTable so the ON condition can reference both sides symmetrically; it
// must evaluate to BOOLEAN.
func (s *Select) Join(alias, tableName string, kind JoinKind, predicate func(*FromTable) expr.Expr) (*FromTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.joins) == 0 {
		err := errors.New("query: Join requires a base table; call From first")
		s.err = err
		return nil, err
	}
	ft, err := s.addTable(alias, tableName)
	if err != nil {
		s.err = err
		return nil, err
	}
	on, err := predicate(ft).AssertIsBoolean()
	if err != nil {
		s.err = err
		return nil, err
	}
	s.joins = append(s.joins, joinEntry{alias: alias, tableName: tableName, kind: kind, on: on})
	return ft, nil
}

// Where appends e to the WHERE-clause conjunction; e must be BOOLEAN.
func (s *Select) Where(e expr.Expr) *Select {
	if s.err != nil {
		return s
	}
	b, err := e.AssertIsBoolean()
	if err != nil {
		s.err = err
		return s
	}
	s.wheres = append(s.wheres, b)
	return s
}

// OrderBy appends an ORDER BY entry; value is coerced through the
// expression factory exactly like Select's projection value.
func (s *Select) OrderBy(value interface{}, dir OrderDir) *Select {
	if s.err != nil {
		return s
	}
	e, err := expr.Of(value)
	if err != nil {
		s.err = err
		return s
	}
	s.orderBys = append(s.orderBys, orderEntry{value: e, dir: dir})
	return s
}

// SetLimit sets the LIMIT value.
func (s *Select) SetLimit(n int) *Select {
	s.limit = n
	s.hasLimit = true
	return s
}

// SetOffset sets the OFFSET value. Per the documented limitation, a
// nonzero offset with no limit set renders no LIMIT/OFFSET clause at all.
func (s *Select) SetOffset(n int) *Select {
	s.offset = n
	return s
}

// AsSubquery returns a scalar-subquery expression whose declared type is
// the type of the projection bound to alias and whose rendering is this
// entire SELECT wrapped in parentheses. Fails with ErrMissingProjection if
// alias was never bound.
func (s *Select) AsSubquery(alias string) (expr.Expr, error) {
	idx, ok := s.projIndex[alias]
	if !ok {
		return expr.Expr{}, fmt.Errorf("%w: %q", ErrMissingProjection, alias)
	}
	sqlText, err := s.ToSQL()
	if err != nil {
		return expr.Expr{}, err
	}
	return expr.NewSubquery(sqlText, s.projections[idx].value.SQLType()), nil
}

// Clone returns a deep-enough copy of s that mutating the clone (e.g.
// appending a LIMIT) never affects the original builder.
func (s *Select) Clone() *Select {
	c := *s
	c.projections = append([]projection(nil), s.projections...)
	c.projIndex = make(map[string]int, len(s.projIndex))
	for k, v := range s.projIndex {
		c.projIndex[k] = v
	}
	c.joins = append([]joinEntry(nil), s.joins...)
	c.wheres = append([]expr.Expr(nil), s.wheres...)
	c.orderBys = append([]orderEntry(nil), s.orderBys...)
	return &c
}

// ToSQL renders the accumulated clauses, one per line: SELECT, FROM,
// WHERE, ORDER BY, LIMIT. A SELECT with no projections renders exactly
// "SELECT 1" with no further clauses.
func (s *Select) ToSQL() (string, error) {
	if s.err != nil {
		return "", s.err
	}

	if len(s.projections) == 0 {
		return "SELECT 1", nil
	}

	var lines []string

	parts := make([]string, len(s.projections))
	for i, p := range s.projections {
		parts[i] = p.value.Render(false) + " AS " + p.alias
	}
	lines = append(lines, "SELECT "+strings.Join(parts, ", "))

	if len(s.joins) > 0 {
		var b strings.Builder
		b.WriteString("FROM ")
		base := s.joins[0]
		b.WriteString(base.tableName)
		b.WriteString(" ")
		b.WriteString(base.alias)
		for _, j := range s.joins[1:] {
			b.WriteString(" ")
			b.WriteString(string(j.kind))
			b.WriteString(" ")
			b.WriteString(j.tableName)
			b.WriteString(" ")
			b.WriteString(j.alias)
			b.WriteString(" ON ")
			b.WriteString(j.on.Render(true))
		}
		lines = append(lines, b.String())
	}

	if len(s.wheres) > 0 {
		items := make([]interface{}, len(s.wheres))
		for i, w := range s.wheres {
			items[i] = w
		}
		anded, err := expr.And(items...)
		if err != nil {
			return "", err
		}
		lines = append(lines, "WHERE "+anded.Render(false))
	}

	if len(s.orderBys) > 0 {
		parts := make([]string, len(s.orderBys))
		for i, o := range s.orderBys {
			parts[i] = o.value.Render(false) + " " + string(o.dir)
		}
		lines = append(lines, "ORDER BY "+strings.Join(parts, ", "))
	}

	if s.hasLimit {
		line := "LIMIT " + strconv.Itoa(s.limit)
		if s.offset != 0 {
			line += " OFFSET " + strconv.Itoa(s.offset)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}
