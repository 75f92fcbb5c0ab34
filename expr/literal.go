package expr

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// litNode is the immutable representation of a single typed literal value,
// or a typed NULL when isNull is set. text is the fully-rendered SQL text
// computed once at construction time.
type litNode struct {
	sqlType SqlType
	isNull  bool
	text    string
}

func (n *litNode) SQLType() SqlType { return n.sqlType }

func (n *litNode) Nullability() Nullability {
	if n.isNull {
		return Sometimes
	}
	return Never
}

func (n *litNode) render(bool) string { return n.text }

// quoteString renders s as a single-quoted SQL string literal, doubling any
// embedded single quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// newTextLiteral builds a never-null TEXT/VARCHAR literal.
func newTextLiteral(t SqlType, s string) *litNode {
	return &litNode{sqlType: t, text: quoteString(s)}
}

// newIntLiteral builds a never-null INTEGER literal.
func newIntLiteral(v int64) *litNode {
	return &litNode{sqlType: INTEGER, text: strconv.FormatInt(v, 10)}
}

// newRealLiteral builds a never-null REAL literal.
func newRealLiteral(v float64) *litNode {
	return &litNode{sqlType: REAL, text: strconv.FormatFloat(v, 'g', -1, 64)}
}

// newBoolLiteral builds a never-null BOOLEAN literal, rendered 1/0 for
// SQLite-friendly output.
func newBoolLiteral(v bool) *litNode {
	text := "0"
	if v {
		text = "1"
	}
	return &litNode{sqlType: BOOLEAN, text: text}
}

// newTimestampLiteral builds a never-null TIMESTAMP literal, rendered as
// ISO-8601 with millisecond precision and a trailing Z.
func newTimestampLiteral(v time.Time) *litNode {
	return &litNode{sqlType: TIMESTAMP, text: quoteString(formatTimestamp(v))}
}

func formatTimestamp(v time.Time) string {
	return v.UTC().Format("2006-01-02T15:04:05.000Z")
}

// newBlobLiteral builds a never-null BLOB literal, rendered x'<hex>'.
func newBlobLiteral(v []byte) *litNode {
	return &litNode{sqlType: BLOB, text: "x'" + hex.EncodeToString(v) + "'"}
}

// newTypedNullLiteral builds a typed NULL literal of the given type, always
// Sometimes-nullable.
func newTypedNullLiteral(t SqlType) *litNode {
	return &litNode{sqlType: t, isNull: true, text: "NULL"}
}
