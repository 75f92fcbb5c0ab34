package expr_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmartbear/sqlight/expr"
)

func TestOf_Dispatch(t *testing.T) {
	cases := []struct {
		name     string
		in       interface{}
		wantType expr.SqlType
		wantSQL  string
	}{
		{"string", "bar", expr.TEXT, "'bar'"},
		{"string with quote", "o'brien", expr.TEXT, "'o''brien'"},
		{"int", 123, expr.INTEGER, "123"},
		{"int64", int64(123), expr.INTEGER, "123"},
		{"float", 1.5, expr.REAL, "1.5"},
		{"bool true", true, expr.BOOLEAN, "1"},
		{"bool false", false, expr.BOOLEAN, "0"},
		{"blob", []byte{0xde, 0xad}, expr.BLOB, "x'dead'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := expr.Of(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, e.SQLType())
			assert.Equal(t, expr.Never, e.Nullability())
			assert.Equal(t, tc.wantSQL, e.Render(false))
		})
	}
}

func TestOf_Timestamp(t *testing.T) {
	ts := time.Date(2024, 3, 2, 1, 2, 3, 4_000_000, time.UTC)
	e, err := expr.Of(ts)
	require.NoError(t, err)
	assert.Equal(t, expr.TIMESTAMP, e.SQLType())
	assert.Equal(t, "'2024-03-02T01:02:03.004Z'", e.Render(false))
}

func TestOf_InvalidLiteral(t *testing.T) {
	_, err := expr.Of(struct{}{})
	assert.True(t, errors.Is(err, expr.ErrInvalidLiteral))

	_, err = expr.Of(nil)
	assert.True(t, errors.Is(err, expr.ErrInvalidLiteral))

	_, err = expr.Of([]int{1, 2})
	assert.True(t, errors.Is(err, expr.ErrInvalidLiteral))
}

func TestOf_PassesThroughExpr(t *testing.T) {
	lit, err := expr.Of(42)
	require.NoError(t, err)
	again, err := expr.Of(lit)
	require.NoError(t, err)
	assert.Equal(t, lit, again)
}

func TestLiteral_TypedNull(t *testing.T) {
	n := expr.Literal(expr.TEXT, nil)
	assert.Equal(t, expr.TEXT, n.SQLType())
	assert.Equal(t, expr.Sometimes, n.Nullability())
	assert.Equal(t, "NULL", n.Render(false))
}

func TestTypeOf(t *testing.T) {
	ty, ok := expr.TypeOf(nil, nil, 5, "x")
	require.True(t, ok)
	assert.Equal(t, expr.INTEGER, ty)

	_, ok = expr.TypeOf(nil, nil)
	assert.False(t, ok)
}

func TestComparisons(t *testing.T) {
	a := expr.Must(expr.Of(1))
	b := expr.Must(expr.Of(2))
	eq, err := a.Eq(b)
	require.NoError(t, err)
	assert.Equal(t, "1=2", eq.Render(false))
	assert.Equal(t, expr.BOOLEAN, eq.SQLType())

	ne, err := a.Ne(b)
	require.NoError(t, err)
	assert.Equal(t, "1!=2", ne.Render(false))
}

func TestComparison_TypeMismatch(t *testing.T) {
	a := expr.Must(expr.Of(1))
	b := expr.Must(expr.Of("x"))
	_, err := a.Eq(b)
	assert.True(t, errors.Is(err, expr.ErrTypeMismatch))
}

func TestComparison_NullOperandAllowed(t *testing.T) {
	a := expr.Must(expr.Of(1))
	n := expr.Literal(expr.INTEGER, nil)
	eq, err := a.Eq(n)
	require.NoError(t, err)
	assert.Equal(t, expr.Sometimes, eq.Nullability())
	assert.Equal(t, "1=NULL", eq.Render(false))
}

func TestArithmeticPromotion(t *testing.T) {
	i1 := expr.Must(expr.Of(1))
	i2 := expr.Must(expr.Of(2))
	r := expr.Must(expr.Of(1.5))

	sum, err := i1.Add(i2)
	require.NoError(t, err)
	assert.Equal(t, expr.INTEGER, sum.SQLType())

	mixed, err := i1.Add(r)
	require.NoError(t, err)
	assert.Equal(t, expr.REAL, mixed.SQLType())

	div, err := i1.Div(i2)
	require.NoError(t, err)
	assert.Equal(t, expr.REAL, div.SQLType())
	assert.Equal(t, "1/2", div.Render(false))
}

func TestArithmetic_TypeMismatch(t *testing.T) {
	i1 := expr.Must(expr.Of(1))
	s := expr.Must(expr.Of("x"))
	_, err := i1.Add(s)
	assert.True(t, errors.Is(err, expr.ErrTypeMismatch))
}

func TestIncludes(t *testing.T) {
	lhs := expr.Must(expr.Of("hello world"))
	got, err := lhs.Includes("world")
	require.NoError(t, err)
	assert.Equal(t, "INSTR('hello world','world')", got.Render(false))
	assert.Equal(t, expr.BOOLEAN, got.SQLType())
}

func TestIsNull(t *testing.T) {
	col := expr.NewColumnRef("u", "apiKey", expr.TEXT, true)
	assert.Equal(t, "u.apiKey IS NULL", col.IsNull().Render(false))
	assert.Equal(t, "u.apiKey IS NOT NULL", col.IsNotNull().Render(false))
	assert.Equal(t, expr.Never, col.IsNull().Nullability())
}

func TestAndOr_Degenerate(t *testing.T) {
	single := expr.Must(expr.Of(true))
	got, err := expr.And(single)
	require.NoError(t, err)
	assert.Equal(t, single.Render(false), got.Render(false))
	assert.Equal(t, single.Render(true), got.Render(true))
}

func TestAndOr_Multi(t *testing.T) {
	a := expr.Must(expr.Of(true))
	b := expr.Must(expr.Of(false))
	and, err := expr.And(a, b)
	require.NoError(t, err)
	assert.Equal(t, "1 AND 0", and.Render(false))
	assert.Equal(t, "(1 AND 0)", and.Render(true))

	or, err := expr.Or(a, b)
	require.NoError(t, err)
	assert.Equal(t, "1 OR 0", or.Render(false))
}

func TestGroupingSelfConsistency(t *testing.T) {
	a := expr.Must(expr.Of(1))
	b := expr.Must(expr.Of(2))
	c := expr.Must(expr.Of(3))

	eq := expr.Must(a.Eq(b))
	assert.Equal(t, "("+eq.Render(false)+")", eq.Render(true))

	sum := expr.Must(a.Add(b))
	assert.Equal(t, "("+sum.Render(false)+")", sum.Render(true))

	// Nested composite: each child re-parenthesises under a >1-ary parent.
	nested, err := expr.Of(c)
	require.NoError(t, err)
	added, err := sum.Add(nested)
	require.NoError(t, err)
	assert.Equal(t, "(1+2)+3", added.Render(false))
	assert.Equal(t, "((1+2)+3)", added.Render(true))
}

func TestNot(t *testing.T) {
	b := expr.Must(expr.Of(true))
	n, err := expr.Not(b)
	require.NoError(t, err)
	assert.Equal(t, "NOT (1)", n.Render(false))
	// Single-child node: grouped has no effect.
	assert.Equal(t, n.Render(false), n.Render(true))
}

func TestConcat(t *testing.T) {
	got, err := expr.Concat("a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, expr.TEXT, got.SQLType())
	assert.Equal(t, "'a'||'b'||'c'", got.Render(false))
}

func TestCoalesce_Nullability(t *testing.T) {
	allNull := []interface{}{
		expr.Literal(expr.INTEGER, nil),
		expr.Literal(expr.INTEGER, nil),
	}
	c, err := expr.Coalesce(allNull...)
	require.NoError(t, err)
	assert.Equal(t, expr.Sometimes, c.Nullability())

	mixed := []interface{}{
		expr.Literal(expr.INTEGER, nil),
		expr.Must(expr.Of(5)),
	}
	c2, err := expr.Coalesce(mixed...)
	require.NoError(t, err)
	assert.Equal(t, expr.Never, c2.Nullability())
	assert.Equal(t, "COALESCE(NULL,5)", c2.Render(false))
}

func TestInList(t *testing.T) {
	lhs := expr.Must(expr.Of(1))
	got, err := lhs.InList(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "1 IN(1,2,3)", got.Render(false))
	assert.Equal(t, expr.Never, got.Nullability())
}

func TestInSubquery(t *testing.T) {
	sub := expr.NewSubquery("SELECT 123 AS id", expr.INTEGER)
	lhs := expr.Must(expr.Of(456))
	got := lhs.InSubquery(sub)
	assert.Equal(t, "456 IN (SELECT 123 AS id)", got.Render(false))
	assert.Equal(t, expr.Never, got.Nullability())
	assert.Equal(t, expr.Sometimes, sub.Nullability())
}

func TestCase(t *testing.T) {
	branches := []expr.WhenThen{
		{When: expr.Must(expr.Of(true)), Then: "yes"},
	}
	withoutElse, err := expr.Case(branches)
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN 1 THEN 'yes' END", withoutElse.Render(false))
	assert.Equal(t, expr.Sometimes, withoutElse.Nullability())

	withElse, err := expr.Case(branches, "no")
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN 1 THEN 'yes' ELSE 'no' END", withElse.Render(false))
	assert.Equal(t, expr.Never, withElse.Nullability())
}

func TestCase_TypeMismatch(t *testing.T) {
	branches := []expr.WhenThen{
		{When: expr.Must(expr.Of(true)), Then: "yes"},
		{When: expr.Must(expr.Of(true)), Then: 1},
	}
	_, err := expr.Case(branches)
	assert.True(t, errors.Is(err, expr.ErrTypeMismatch))
}

func TestAssertions(t *testing.T) {
	b := expr.Must(expr.Of(true))
	_, err := b.AssertIsBoolean()
	assert.NoError(t, err)
	_, err = b.AssertIsNumeric()
	assert.True(t, errors.Is(err, expr.ErrTypeMismatch))

	s := expr.Must(expr.Of("x"))
	_, err = s.AssertIsText()
	assert.NoError(t, err)
}

func TestIdempotentRendering(t *testing.T) {
	e := expr.Must(expr.Must(expr.Of(1)).Add(expr.Must(expr.Of(2))))
	assert.Equal(t, e.Render(false), e.Render(false))
	assert.Equal(t, e.Render(true), e.Render(true))
}
