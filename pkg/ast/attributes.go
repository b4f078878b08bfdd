package ast

import "strings"

// Associativity of an infix operator.
type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

// InfixData carries the parse shape of an infix operator. The zero value
// means "not infix".
type InfixData struct {
	Valid         bool
	Precedence    int
	Associativity Associativity
}

// DeclAttributes is the attribute set attached to a value declaration. The
// checker neutralises invalid flags in place.
type DeclAttributes struct {
	Infix       InfixData
	Postfix     bool
	Assignment  bool
	Conversion  bool
	Byref       bool
	AutoClosure bool
	// Span of the attribute list, for diagnostics.
	AttrSpan Span
}

// IsInfix reports whether the declaration carries infix data.
func (a *DeclAttributes) IsInfix() bool { return a.Infix.Valid }

const operatorChars = "/=-+*%<>!&|^~."

// IsOperatorName reports whether the name is spelled with operator
// characters.
func IsOperatorName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !strings.ContainsRune(operatorChars, r) {
			return false
		}
	}
	return true
}

// IsOperator reports whether the value declaration names an operator.
func IsOperator(d ValueDecl) bool {
	return IsOperatorName(d.Name())
}

// InstanceMember reports whether the declaration is a non-static member of a
// nominal type or extension.
func InstanceMember(d ValueDecl) bool {
	if TypeContext(d) == nil {
		return false
	}
	if fd, ok := d.(*FuncDecl); ok && fd.Static {
		return false
	}
	return true
}
