package expr

import "strings"

// Node is the internal tree element: something with a SQL type, a
// nullability, and a rendering. Concrete node types are unexported; callers
// only ever see the Expr wrapper below.
type Node interface {
	SQLType() SqlType
	Nullability() Nullability
	render(grouped bool) string
}

// Expr is a handle on a fully-typed expression tree. It wraps Node so that
// sugar methods (Eq, Add, And, ...) can hang off a concrete Go type; a bare
// interface can't grow methods the way spec pseudo-code implies.
type Expr struct {
	node Node
}

func wrap(n Node) Expr { return Expr{node: n} }

// SQLType reports the SQL type this expression evaluates to.
func (e Expr) SQLType() SqlType { return e.node.SQLType() }

// Nullability reports whether this expression can evaluate to NULL.
func (e Expr) Nullability() Nullability { return e.node.Nullability() }

// Render produces the SQL text for this expression. grouped tells the
// expression it is being rendered as a sub-part of a larger expression, so
// it should parenthesise itself if that's needed for unambiguous parsing.
func (e Expr) Render(grouped bool) string { return e.node.render(grouped) }

// IsZero reports whether e is the zero Expr (this package's constructors
// return it only together with a non-nil error; useful for callers checking
// an unset field).
func (e Expr) IsZero() bool { return e.node == nil }

// columnRefNode is a bare `alias.column` reference, used both for schema
// column access and FROM-table aliasing.
type columnRefNode struct {
	alias, column string
	sqlType       SqlType
	nullable      bool
}

func (n *columnRefNode) SQLType() SqlType { return n.sqlType }

func (n *columnRefNode) Nullability() Nullability {
	if n.nullable {
		return Sometimes
	}
	return Never
}

func (n *columnRefNode) render(bool) string {
	return n.alias + "." + n.column
}

// isNullNode renders `<child> IS NULL` / `<child> IS NOT NULL`. Always
// BOOLEAN, never itself nullable, and never needs outer grouping: the
// `IS [NOT] NULL` suffix is unambiguous wherever it appears.
type isNullNode struct {
	child Node
	not   bool
}

func (n *isNullNode) SQLType() SqlType        { return BOOLEAN }
func (n *isNullNode) Nullability() Nullability { return Never }

func (n *isNullNode) render(bool) string {
	if n.not {
		return n.child.render(false) + " IS NOT NULL"
	}
	return n.child.render(false) + " IS NULL"
}

// unaryNode wraps a single child with a fixed prefix/suffix (e.g. "NOT (" /
// ")"). A single-child node is never "composite" under the grouping rule,
// so it renders identically regardless of the grouped flag it's given.
type unaryNode struct {
	child       Node
	prefix      string
	suffix      string
	sqlType     SqlType
	nullability Nullability
}

func (n *unaryNode) SQLType() SqlType         { return n.sqlType }
func (n *unaryNode) Nullability() Nullability { return n.nullability }

func (n *unaryNode) render(bool) string {
	return n.prefix + n.child.render(false) + n.suffix
}

// multiNode covers both n-ary infix operators (comparisons, arithmetic,
// AND/OR, concat) and function-style calls (COALESCE, INSTR). Infix forms
// follow the minimal-but-sufficient parenthesization rule: a single
// operand never adds parens or the operator keyword; with more than one
// operand, every child is rendered grouped and the whole joined expression
// is wrapped iff the caller asked for grouped.
type multiNode struct {
	children    []Node
	sep         string
	isFunc      bool
	funcName    string
	sqlType     SqlType
	nullability Nullability
}

func (n *multiNode) SQLType() SqlType         { return n.sqlType }
func (n *multiNode) Nullability() Nullability { return n.nullability }

func (n *multiNode) render(grouped bool) string {
	if n.isFunc {
		parts := make([]string, len(n.children))
		for i, c := range n.children {
			parts[i] = c.render(false)
		}
		return n.funcName + "(" + strings.Join(parts, ",") + ")"
	}
	if len(n.children) == 1 {
		return n.children[0].render(grouped)
	}
	parts := make([]string, len(n.children))
	for i, c := range n.children {
		parts[i] = c.render(true)
	}
	joined := strings.Join(parts, n.sep)
	if grouped {
		return "(" + joined + ")"
	}
	return joined
}

// inListNode renders `<lhs> IN(a,b,c)`. Always BOOLEAN, never nullable,
// never needs outer grouping.
type inListNode struct {
	lhs   Node
	items []Node
}

func (n *inListNode) SQLType() SqlType         { return BOOLEAN }
func (n *inListNode) Nullability() Nullability { return Never }

func (n *inListNode) render(bool) string {
	parts := make([]string, len(n.items))
	for i, it := range n.items {
		parts[i] = it.render(false)
	}
	return n.lhs.render(false) + " IN(" + strings.Join(parts, ",") + ")"
}

// inSubqueryNode renders `<lhs> IN (SELECT ...)`. The subquery node already
// supplies its own enclosing parens, hence the single space before it.
type inSubqueryNode struct {
	lhs Node
	sub Node
}

func (n *inSubqueryNode) SQLType() SqlType         { return BOOLEAN }
func (n *inSubqueryNode) Nullability() Nullability { return Never }

func (n *inSubqueryNode) render(bool) string {
	return n.lhs.render(false) + " IN " + n.sub.render(false)
}

// whenThen is one WHEN/THEN branch of a caseNode.
type whenThen struct {
	when, then Node
}

// caseNode renders a CASE expression with one or more WHEN/THEN branches
// and an optional ELSE. Never needs outer grouping: CASE...END is
// self-delimiting.
type caseNode struct {
	whens       []whenThen
	elseNode    Node
	sqlType     SqlType
	nullability Nullability
}

func (n *caseNode) SQLType() SqlType         { return n.sqlType }
func (n *caseNode) Nullability() Nullability { return n.nullability }

func (n *caseNode) render(bool) string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, wt := range n.whens {
		b.WriteString(" WHEN ")
		b.WriteString(wt.when.render(false))
		b.WriteString(" THEN ")
		b.WriteString(wt.then.render(false))
	}
	if n.elseNode != nil {
		b.WriteString(" ELSE ")
		b.WriteString(n.elseNode.render(false))
	}
	b.WriteString(" END")
	return b.String()
}

// subqueryNode adapts a fully-rendered scalar SELECT statement into the
// expression tree. sqlText is the inner SELECT text, without enclosing
// parens; render always supplies them. A subquery's value is never known
// to be non-null, since SQLite scalar subqueries over zero rows yield NULL.
type subqueryNode struct {
	sqlText string
	sqlType SqlType
}

func (n *subqueryNode) SQLType() SqlType         { return n.sqlType }
func (n *subqueryNode) Nullability() Nullability { return Sometimes }

func (n *subqueryNode) render(bool) string {
	return "(" + n.sqlText + ")"
}
