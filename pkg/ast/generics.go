package ast

// RequirementKind distinguishes the two clauses a requirements list can
// contain.
type RequirementKind int

const (
	// RequirementConformance is `T : P`.
	RequirementConformance RequirementKind = iota
	// RequirementSameType is `T == U`.
	RequirementSameType
)

// Requirement is one clause of a generic requirements list. For conformance
// requirements Subject/Constraint are set; for same-type requirements
// First/Second are set. Resolved operand types live in the checker's side
// tables.
type Requirement struct {
	spanned
	Kind       RequirementKind
	Subject    TypeExpr
	Constraint TypeExpr
	First      TypeExpr
	Second     TypeExpr
}

// GenericParamList is an ordered sequence of type parameters plus a
// requirements clause. Each parameter is represented as a type alias decl
// whose underlying type the archetype builder fills in.
type GenericParamList struct {
	spanned
	Params       []*TypeAliasDecl
	Requirements []*Requirement
	// RequiresSpan locates the `requires` keyword, for diagnostics.
	RequiresSpan Span
}
