package expr

// Must panics if err is non-nil, otherwise returns e. Convenient for tests
// and package-level var initializers where a construction error means a
// programming mistake, mirroring regexp.MustCompile.
func Must(e Expr, err error) Expr {
	if err != nil {
		panic(err)
	}
	return e
}

func typesCompatible(a, b SqlType) bool {
	if a == b {
		return true
	}
	return isText(a) && isText(b)
}

func comparison(lhs Expr, other interface{}, op string) (Expr, error) {
	rhs, err := Of(other)
	if err != nil {
		return Expr{}, err
	}
	if !typesCompatible(lhs.SQLType(), rhs.SQLType()) {
		return Expr{}, typeMismatchf("cannot compare %s to %s", lhs.SQLType(), rhs.SQLType())
	}
	return wrap(&multiNode{
		children:    []Node{lhs.node, rhs.node},
		sep:         op,
		sqlType:     BOOLEAN,
		nullability: anyOf(lhs.Nullability(), rhs.Nullability()),
	}), nil
}

// Eq, Ne, Lt, Le, Gt, Ge build the matching comparison with e as the
// left-hand side; other is coerced via Of. Operand types must match (TEXT
// and VARCHAR are interchangeable); a typed NULL is acceptable on either
// side since it still carries a concrete declared type.
func (e Expr) Eq(other interface{}) (Expr, error) { return comparison(e, other, "=") }
func (e Expr) Ne(other interface{}) (Expr, error) { return comparison(e, other, "!=") }
func (e Expr) Lt(other interface{}) (Expr, error) { return comparison(e, other, "<") }
func (e Expr) Le(other interface{}) (Expr, error) { return comparison(e, other, "<=") }
func (e Expr) Gt(other interface{}) (Expr, error) { return comparison(e, other, ">") }
func (e Expr) Ge(other interface{}) (Expr, error) { return comparison(e, other, ">=") }

func (e Expr) arith(other interface{}, op string, forceReal bool) (Expr, error) {
	rhs, err := Of(other)
	if err != nil {
		return Expr{}, err
	}
	if !isNumeric(e.SQLType()) || !isNumeric(rhs.SQLType()) {
		return Expr{}, typeMismatchf("arithmetic requires numeric operands, got %s and %s", e.SQLType(), rhs.SQLType())
	}
	resultType := INTEGER
	if forceReal || e.SQLType() == REAL || rhs.SQLType() == REAL {
		resultType = REAL
	}
	return wrap(&multiNode{
		children:    []Node{e.node, rhs.node},
		sep:         op,
		sqlType:     resultType,
		nullability: anyOf(e.Nullability(), rhs.Nullability()),
	}), nil
}

// Add, Sub, Mul promote to REAL if either operand is REAL, else INTEGER.
// Div always promotes to REAL regardless of operand types.
func (e Expr) Add(other interface{}) (Expr, error) { return e.arith(other, "+", false) }
func (e Expr) Sub(other interface{}) (Expr, error) { return e.arith(other, "-", false) }
func (e Expr) Mul(other interface{}) (Expr, error) { return e.arith(other, "*", false) }
func (e Expr) Div(other interface{}) (Expr, error) { return e.arith(other, "/", true) }

// Includes renders INSTR(e,sub): e must be TEXT/VARCHAR.
func (e Expr) Includes(sub interface{}) (Expr, error) {
	if !isText(e.SQLType()) {
		return Expr{}, typeMismatchf("includes requires a TEXT/VARCHAR receiver, got %s", e.SQLType())
	}
	rhs, err := Of(sub)
	if err != nil {
		return Expr{}, err
	}
	return wrap(&multiNode{
		children:    []Node{e.node, rhs.node},
		isFunc:      true,
		funcName:    "INSTR",
		sqlType:     BOOLEAN,
		nullability: anyOf(e.Nullability(), rhs.Nullability()),
	}), nil
}

// IsNull and IsNotNull always succeed: they accept any expression and are
// always BOOLEAN, never-null.
func (e Expr) IsNull() Expr    { return wrap(&isNullNode{child: e.node, not: false}) }
func (e Expr) IsNotNull() Expr { return wrap(&isNullNode{child: e.node, not: true}) }

// InList renders `e IN(item1,item2,...)`; every item must share e's type
// (TEXT/VARCHAR interchangeable).
func (e Expr) InList(items ...interface{}) (Expr, error) {
	nodes := make([]Node, len(items))
	for i, it := range items {
		x, err := Of(it)
		if err != nil {
			return Expr{}, err
		}
		if !typesCompatible(e.SQLType(), x.SQLType()) {
			return Expr{}, typeMismatchf("IN list item %d has type %s, incompatible with %s", i, x.SQLType(), e.SQLType())
		}
		nodes[i] = x.node
	}
	return wrap(&inListNode{lhs: e.node, items: nodes}), nil
}

// InSubquery renders `e IN (SELECT ...)` against a scalar subquery
// expression, typically produced by a Select's AsSubquery.
func (e Expr) InSubquery(sub Expr) Expr {
	return wrap(&inSubqueryNode{lhs: e.node, sub: sub.node})
}

// AssertIsBoolean, AssertIsText, AssertIsNumeric return e unchanged if its
// declared type matches, else fail with ErrTypeMismatch.
func (e Expr) AssertIsBoolean() (Expr, error) {
	if e.SQLType() != BOOLEAN {
		return Expr{}, typeMismatchf("expected BOOLEAN, got %s", e.SQLType())
	}
	return e, nil
}

func (e Expr) AssertIsText() (Expr, error) {
	if !isText(e.SQLType()) {
		return Expr{}, typeMismatchf("expected TEXT/VARCHAR, got %s", e.SQLType())
	}
	return e, nil
}

func (e Expr) AssertIsNumeric() (Expr, error) {
	if !isNumeric(e.SQLType()) {
		return Expr{}, typeMismatchf("expected INTEGER/REAL, got %s", e.SQLType())
	}
	return e, nil
}

func boolCombinator(name string, items []interface{}, sep string) (Expr, error) {
	if len(items) == 0 {
		return Expr{}, typeMismatchf("%s requires at least one operand", name)
	}
	nodes := make([]Node, len(items))
	nullabs := make([]Nullability, len(items))
	for i, it := range items {
		x, err := Of(it)
		if err != nil {
			return Expr{}, err
		}
		if x.SQLType() != BOOLEAN {
			return Expr{}, typeMismatchf("%s requires BOOLEAN operands, got %s", name, x.SQLType())
		}
		nodes[i] = x.node
		nullabs[i] = x.Nullability()
	}
	return wrap(&multiNode{children: nodes, sep: sep, sqlType: BOOLEAN, nullability: anyOf(nullabs...)}), nil
}

// And and Or build n-ary boolean combinators. The degenerate 1-operand form
// renders as the operand alone, with no added keyword or parentheses.
func And(items ...interface{}) (Expr, error) { return boolCombinator("AND", items, " AND ") }
func Or(items ...interface{}) (Expr, error)  { return boolCombinator("OR", items, " OR ") }

// Not builds a unary NOT, rendered `NOT (...)`.
func Not(b interface{}) (Expr, error) {
	x, err := Of(b)
	if err != nil {
		return Expr{}, err
	}
	if x.SQLType() != BOOLEAN {
		return Expr{}, typeMismatchf("NOT requires a BOOLEAN operand, got %s", x.SQLType())
	}
	return wrap(&unaryNode{
		child:       x.node,
		prefix:      "NOT (",
		suffix:      ")",
		sqlType:     BOOLEAN,
		nullability: x.Nullability(),
	}), nil
}

// And and Or as receiver sugar, with e as the first operand.
func (e Expr) And(other interface{}) (Expr, error) { return And(e, other) }
func (e Expr) Or(other interface{}) (Expr, error)  { return Or(e, other) }
func (e Expr) Not() (Expr, error)                  { return Not(e) }

// Concat builds a TEXT concatenation using SQLite's `||` operator.
func Concat(items ...interface{}) (Expr, error) {
	if len(items) == 0 {
		return Expr{}, typeMismatchf("CONCAT requires at least one operand")
	}
	nodes := make([]Node, len(items))
	nullabs := make([]Nullability, len(items))
	for i, it := range items {
		x, err := Of(it)
		if err != nil {
			return Expr{}, err
		}
		if !isText(x.SQLType()) {
			return Expr{}, typeMismatchf("CONCAT requires TEXT/VARCHAR operands, got %s", x.SQLType())
		}
		nodes[i] = x.node
		nullabs[i] = x.Nullability()
	}
	return wrap(&multiNode{children: nodes, sep: "||", sqlType: TEXT, nullability: anyOf(nullabs...)}), nil
}

// Coalesce builds a COALESCE(...) call, sharing the first operand's
// declared type and Sometimes-nullable only if every operand is.
func Coalesce(items ...interface{}) (Expr, error) {
	if len(items) == 0 {
		return Expr{}, typeMismatchf("COALESCE requires at least one operand")
	}
	nodes := make([]Node, len(items))
	nullabs := make([]Nullability, len(items))
	var repType SqlType
	for i, it := range items {
		x, err := Of(it)
		if err != nil {
			return Expr{}, err
		}
		if i == 0 {
			repType = x.SQLType()
		}
		nodes[i] = x.node
		nullabs[i] = x.Nullability()
	}
	return wrap(&multiNode{children: nodes, isFunc: true, funcName: "COALESCE", sqlType: repType, nullability: allOf(nullabs...)}), nil
}

// WhenThen is one WHEN/THEN branch passed to Case.
type WhenThen struct {
	When, Then interface{}
}

// Case builds a CASE expression. elseVal is variadic so that "no ELSE" can
// be distinguished from "ELSE NULL": pass nothing for the former, a single
// value for the latter. The value goes through Of, so an untyped nil fails
// with ErrInvalidLiteral; ELSE NULL takes a typed NULL from Literal(t, nil).
func Case(branches []WhenThen, elseVal ...interface{}) (Expr, error) {
	if len(branches) == 0 {
		return Expr{}, typeMismatchf("CASE requires at least one WHEN/THEN branch")
	}
	whens := make([]whenThen, len(branches))
	var repType SqlType
	var nullabs []Nullability
	for i, b := range branches {
		w, err := Of(b.When)
		if err != nil {
			return Expr{}, err
		}
		if w.SQLType() != BOOLEAN {
			return Expr{}, typeMismatchf("CASE WHEN branch %d must be BOOLEAN, got %s", i, w.SQLType())
		}
		t, err := Of(b.Then)
		if err != nil {
			return Expr{}, err
		}
		if i == 0 {
			repType = t.SQLType()
		} else if !typesCompatible(repType, t.SQLType()) {
			return Expr{}, typeMismatchf("CASE THEN branch %d has type %s, incompatible with %s", i, t.SQLType(), repType)
		}
		whens[i] = whenThen{when: w.node, then: t.node}
		nullabs = append(nullabs, t.Nullability())
	}

	var elseNode Node
	nullability := Sometimes
	if len(elseVal) > 0 {
		e, err := Of(elseVal[0])
		if err != nil {
			return Expr{}, err
		}
		if !typesCompatible(repType, e.SQLType()) {
			return Expr{}, typeMismatchf("CASE ELSE branch has type %s, incompatible with %s", e.SQLType(), repType)
		}
		elseNode = e.node
		nullabs = append(nullabs, e.Nullability())
		nullability = anyOf(nullabs...)
	}

	return wrap(&caseNode{whens: whens, elseNode: elseNode, sqlType: repType, nullability: nullability}), nil
}
