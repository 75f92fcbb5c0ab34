// Package expr implements the typed SQL expression algebra: a small tree of
// nodes that each know their SQL type, their nullability, and how to render
// themselves to SQL text with minimal but sufficient parenthesization.
//
// Values are constructed, combined with operators, and rendered; nothing in
// this package mutates after construction and nothing here talks to a
// database.
package expr

import "fmt"

// SqlType is the closed enumeration of SQL data types this package knows
// how to type-check, promote, and render.
type SqlType int

const (
	TEXT SqlType = iota
	VARCHAR
	INTEGER
	REAL
	BOOLEAN
	TIMESTAMP
	BLOB
)

func (t SqlType) String() string {
	switch t {
	case TEXT:
		return "TEXT"
	case VARCHAR:
		return "VARCHAR"
	case INTEGER:
		return "INTEGER"
	case REAL:
		return "REAL"
	case BOOLEAN:
		return "BOOLEAN"
	case TIMESTAMP:
		return "TIMESTAMP"
	case BLOB:
		return "BLOB"
	default:
		return fmt.Sprintf("SqlType(%d)", int(t))
	}
}

// isText reports whether t is TEXT or VARCHAR; the two are interchangeable
// for type-compatibility checks.
func isText(t SqlType) bool {
	return t == TEXT || t == VARCHAR
}

// isNumeric reports whether t is INTEGER or REAL.
func isNumeric(t SqlType) bool {
	return t == INTEGER || t == REAL
}

// Nullability is the tri-state classification tracked alongside every
// expression. The third state named in the design -- a typed NULL literal
// itself -- is represented by a literal node, not by this type; any node
// that isn't a NULL literal is either Never or Sometimes nullable.
type Nullability int

const (
	// Never means the expression cannot evaluate to NULL.
	Never Nullability = iota
	// Sometimes means the expression may evaluate to NULL.
	Sometimes
)

func (n Nullability) String() string {
	if n == Never {
		return "never"
	}
	return "sometimes"
}

// anyOf returns Sometimes if any of ns is Sometimes, else Never.
func anyOf(ns ...Nullability) Nullability {
	for _, n := range ns {
		if n == Sometimes {
			return Sometimes
		}
	}
	return Never
}

// allOf returns Sometimes only if every one of ns is Sometimes, else Never.
func allOf(ns ...Nullability) Nullability {
	if len(ns) == 0 {
		return Never
	}
	for _, n := range ns {
		if n == Never {
			return Never
		}
	}
	return Sometimes
}
