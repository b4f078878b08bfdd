package ast

// Pattern is a binding pattern. Pattern types are tracked by the checker,
// not stored on the nodes.
type Pattern interface {
	Node
	patternNode()
}

type patternBase struct {
	spanned
}

func (patternBase) patternNode() {}

// NamedPattern binds a single variable.
type NamedPattern struct {
	patternBase
	Var *VarDecl
}

// AnyPattern is the `_` wildcard.
type AnyPattern struct {
	patternBase
}

// TypedPattern annotates a subpattern with an explicit type.
type TypedPattern struct {
	patternBase
	Sub        Pattern
	Annotation TypeExpr
}

// ParenPattern is a parenthesised subpattern.
type ParenPattern struct {
	patternBase
	Sub Pattern
}

// TuplePatternField is one element of a tuple pattern. A field with an
// Init expression is defaultable in the enclosing function's argument list.
type TuplePatternField struct {
	Pattern Pattern
	Init    Expr
}

// TuplePattern destructures an ordered sequence of labeled fields.
type TuplePattern struct {
	patternBase
	Fields []TuplePatternField
}

// EachVar invokes fn for every variable bound by the pattern, in source
// order.
func EachVar(p Pattern, fn func(*VarDecl)) {
	switch pat := p.(type) {
	case *NamedPattern:
		if pat.Var != nil {
			fn(pat.Var)
		}
	case *TypedPattern:
		EachVar(pat.Sub, fn)
	case *ParenPattern:
		EachVar(pat.Sub, fn)
	case *TuplePattern:
		for _, f := range pat.Fields {
			EachVar(f.Pattern, fn)
		}
	}
}
