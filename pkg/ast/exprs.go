package ast

import "math/big"

// Expr is an expression node. The declaration checker treats expressions as
// opaque except for the narrow initializer checking the expression
// collaborator performs.
type Expr interface {
	Node
	exprNode()
}

type exprBase struct {
	spanned
}

func (exprBase) exprNode() {}

// IntegerLiteral is a whole-number literal.
type IntegerLiteral struct {
	exprBase
	Value *big.Int
}

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	exprBase
	Text string
}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	exprBase
	Value string
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	exprBase
	Value bool
}

// NameExpr references a declared value by name.
type NameExpr struct {
	exprBase
	Ident string
}

// TupleExpr is a parenthesised, possibly labeled, sequence of expressions.
type TupleExpr struct {
	exprBase
	Labels []string
	Elems  []Expr
}

// MaterializeExpr is inserted by the checker to strip a reference layer from
// an initializer before it is bound.
type MaterializeExpr struct {
	exprBase
	Sub Expr
}
