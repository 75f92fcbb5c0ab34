package expr

import "time"

// Of coerces a native Go value, or an already-built Expr, into an Expr.
// It implements the closed dispatch the type system allows: string, bool,
// the integer kinds, float32/float64, time.Time, []byte, and Expr itself.
// Anything else fails with ErrInvalidLiteral.
func Of(x interface{}) (Expr, error) {
	switch v := x.(type) {
	case Expr:
		return v, nil
	case string:
		return wrap(newTextLiteral(TEXT, v)), nil
	case bool:
		return wrap(newBoolLiteral(v)), nil
	case int:
		return wrap(newIntLiteral(int64(v))), nil
	case int8:
		return wrap(newIntLiteral(int64(v))), nil
	case int16:
		return wrap(newIntLiteral(int64(v))), nil
	case int32:
		return wrap(newIntLiteral(int64(v))), nil
	case int64:
		return wrap(newIntLiteral(v)), nil
	case uint:
		return wrap(newIntLiteral(int64(v))), nil
	case uint8:
		return wrap(newIntLiteral(int64(v))), nil
	case uint16:
		return wrap(newIntLiteral(int64(v))), nil
	case uint32:
		return wrap(newIntLiteral(int64(v))), nil
	case uint64:
		return wrap(newIntLiteral(int64(v))), nil
	case float32:
		return wrap(newRealLiteral(float64(v))), nil
	case float64:
		return wrap(newRealLiteral(v)), nil
	case time.Time:
		return wrap(newTimestampLiteral(v)), nil
	case []byte:
		return wrap(newBlobLiteral(v)), nil
	case nil:
		return Expr{}, invalidLiteralf("expr: nil has no type; use Literal(type, nil) for a typed NULL")
	default:
		return Expr{}, invalidLiteralf("expr: cannot coerce value of type %T to an expression", x)
	}
}

// Literal forces a target SQL type, accepting an explicit nil (or any value
// that doesn't match the target type's native kind) as a typed NULL with
// Sometimes nullability. This is the escape hatch for building nullable
// comparands that Of can't express, since Of always infers the type from
// the value itself.
func Literal(t SqlType, value interface{}) Expr {
	if value == nil {
		return wrap(newTypedNullLiteral(t))
	}
	switch t {
	case TEXT, VARCHAR:
		if s, ok := value.(string); ok {
			return wrap(newTextLiteral(t, s))
		}
	case INTEGER:
		if n, ok := asInt64(value); ok {
			return wrap(newIntLiteral(n))
		}
	case REAL:
		if f, ok := asFloat64(value); ok {
			return wrap(newRealLiteral(f))
		}
	case BOOLEAN:
		if b, ok := value.(bool); ok {
			return wrap(newBoolLiteral(b))
		}
	case TIMESTAMP:
		if ts, ok := value.(time.Time); ok {
			return wrap(newTimestampLiteral(ts))
		}
	case BLOB:
		if b, ok := value.([]byte); ok {
			return wrap(newBlobLiteral(b))
		}
	}
	return wrap(newTypedNullLiteral(t))
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// TypeOf descends through xs, skipping nils and flattening []interface{}
// holes, and returns the SQL type of the first value it can resolve to an
// expression. It returns false if none resolve.
func TypeOf(xs ...interface{}) (SqlType, bool) {
	for _, x := range xs {
		if t, ok := typeOfOne(x); ok {
			return t, true
		}
	}
	return 0, false
}

func typeOfOne(x interface{}) (SqlType, bool) {
	if x == nil {
		return 0, false
	}
	if e, ok := x.(Expr); ok {
		return e.SQLType(), true
	}
	if s, ok := x.([]interface{}); ok {
		return TypeOf(s...)
	}
	if e, err := Of(x); err == nil {
		return e.SQLType(), true
	}
	return 0, false
}

// NewColumnRef builds a column-reference expression, typically used by the
// schema and query packages to expose per-alias column handles.
func NewColumnRef(alias, column string, sqlType SqlType, nullable bool) Expr {
	return wrap(&columnRefNode{alias: alias, column: column, sqlType: sqlType, nullable: nullable})
}

// ColumnName reports the bare column name if e is a column reference.
func (e Expr) ColumnName() (string, bool) {
	if c, ok := e.node.(*columnRefNode); ok {
		return c.column, true
	}
	return "", false
}

// NewSubquery adapts a pre-rendered scalar SELECT (without its enclosing
// parens) into an expression of the given declared type.
func NewSubquery(sqlText string, sqlType SqlType) Expr {
	return wrap(&subqueryNode{sqlText: sqlText, sqlType: sqlType})
}
