package ast

// TypeExpr is a syntactic type expression. Resolution to a semantic type is
// the checker's job; the nodes carry only structure.
type TypeExpr interface {
	Node
	typeExprNode()
}

type typeExprBase struct {
	spanned
}

func (typeExprBase) typeExprNode() {}

// NamedTypeExpr references a type by name, optionally applying generic
// arguments.
type NamedTypeExpr struct {
	typeExprBase
	TypeName string
	Args     []TypeExpr
}

// TupleTypeExprElem is one labeled element of a tuple type expression. An
// element with an Init expression is defaulted.
type TupleTypeExprElem struct {
	Label string
	Type  TypeExpr
	Init  Expr
}

// TupleTypeExpr is an ordered sequence of labeled element types.
type TupleTypeExpr struct {
	typeExprBase
	Elems []TupleTypeExprElem
}

// FunctionTypeExpr is `Input -> Result`.
type FunctionTypeExpr struct {
	typeExprBase
	Input  TypeExpr
	Result TypeExpr
}

// ByrefTypeExpr is an explicit `@byref T` reference layer.
type ByrefTypeExpr struct {
	typeExprBase
	Elem TypeExpr
}

// CompositionTypeExpr is a `protocol<P, Q>` existential composition.
type CompositionTypeExpr struct {
	typeExprBase
	Protocols []TypeExpr
}
