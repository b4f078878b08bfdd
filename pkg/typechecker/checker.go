package typechecker

import "calyx/compiler-go/pkg/ast"

// ImportedValue is one entry surfaced by an imported module's interface.
// Only the pieces declaration checking consumes are carried: the name and
// the declared attribute set.
type ImportedValue struct {
	Name  string
	Attrs ast.DeclAttributes
}

// ModuleLookup is the point-lookup interface onto an imported module. The
// driver supplies implementations backed by module interface summaries.
type ModuleLookup interface {
	ModuleName() string
	LookupValue(name string) []ImportedValue
}

// ConformanceOracle decides whether a type satisfies a protocol, diagnosing
// at its discretion. The default oracle performs a structural witness
// check; richer implementations can be swapped in by the driver.
type ConformanceOracle interface {
	ConformsToProtocol(c *Checker, t Type, proto *ast.ProtocolDecl, span ast.Span) bool
}

// Checker drives declaration checking for one translation unit. It owns the
// side tables that hold every computed type slot; the AST itself stays
// untouched apart from initializer rewrites and the attribute validator
// clearing invalid flags in place.
//
// The checker is single-threaded and non-suspending: each call runs to
// completion before returning.
type Checker struct {
	ctx   *Context
	unit  *ast.Unit
	diags []Diagnostic

	imports []ModuleLookup
	exprs   ExprChecker
	oracle  ConformanceOracle

	// Type slots. Each transitions unset -> set once; overwriteDeclType is
	// the one exception, used to poison an already-set declaration slot.
	declTypes    map[ast.Decl]Type
	patternTypes map[ast.Pattern]Type
	exprTypes    map[ast.Expr]Type
	resolved     map[ast.TypeExpr]Type
	aliasTypes   map[*ast.TypeAliasDecl]Type
	reqTypes     map[*ast.Requirement]*requirementTypes
	elemArgTypes map[*ast.OneOfElementDecl]Type

	// Idempotence guards for sub-checks that must not re-diagnose.
	inheritedChecked map[ast.Decl]bool
	genericsChecked  map[*ast.GenericParamList]bool
	aliasInProgress  map[*ast.TypeAliasDecl]bool
}

// requirementTypes carries the resolved operand slots of one requirement.
type requirementTypes struct {
	Protocol Type
	Subject  Type
	First    Type
	Second   Type
}

// New builds a checker over a linked translation unit. The zero
// collaborators are the in-repo defaults; SetImports, SetExprChecker, and
// SetOracle replace them before the first pass runs.
func New(ctx *Context, unit *ast.Unit) *Checker {
	if ctx == nil {
		ctx = NewContext()
	}
	c := &Checker{
		ctx:              ctx,
		unit:             unit,
		declTypes:        make(map[ast.Decl]Type),
		patternTypes:     make(map[ast.Pattern]Type),
		exprTypes:        make(map[ast.Expr]Type),
		resolved:         make(map[ast.TypeExpr]Type),
		aliasTypes:       make(map[*ast.TypeAliasDecl]Type),
		reqTypes:         make(map[*ast.Requirement]*requirementTypes),
		elemArgTypes:     make(map[*ast.OneOfElementDecl]Type),
		inheritedChecked: make(map[ast.Decl]bool),
		genericsChecked:  make(map[*ast.GenericParamList]bool),
		aliasInProgress:  make(map[*ast.TypeAliasDecl]bool),
	}
	c.exprs = &initializerChecker{c: c}
	c.oracle = &structuralOracle{}
	return c
}

// SetImports supplies the imported modules, in import order.
func (c *Checker) SetImports(imports []ModuleLookup) { c.imports = imports }

// SetExprChecker replaces the expression collaborator.
func (c *Checker) SetExprChecker(exprs ExprChecker) { c.exprs = exprs }

// SetOracle replaces the conformance oracle.
func (c *Checker) SetOracle(oracle ConformanceOracle) { c.oracle = oracle }

// Context returns the shared type context.
func (c *Checker) Context() *Context { return c.ctx }

// TypeCheckDecl is the single entry point: one declaration, one pass. For
// module-scope declarations isFirstPass=false is only legal after the first
// pass has run; child declarations are reached through their container.
func (c *Checker) TypeCheckDecl(d ast.Decl, isFirstPass bool) {
	isSecondPass := !isFirstPass && ast.ModuleScope(d)
	dc := &declChecker{c: c, isFirstPass: isFirstPass, isSecondPass: isSecondPass}
	dc.visit(d)
}

// CheckUnit runs the two-pass schedule over every module-scope declaration
// and returns the accumulated diagnostics. Top-level code is the driver's
// concern and is skipped here.
func (c *Checker) CheckUnit() []Diagnostic {
	for _, d := range c.unit.Decls {
		if _, ok := d.(*ast.TopLevelCodeDecl); ok {
			continue
		}
		c.TypeCheckDecl(d, true)
	}
	for _, d := range c.unit.Decls {
		if _, ok := d.(*ast.TopLevelCodeDecl); ok {
			continue
		}
		c.TypeCheckDecl(d, false)
	}
	return c.diags
}

// TypeOf returns the computed type slot of a declaration, or nil when the
// declaration has not been checked.
func (c *Checker) TypeOf(d ast.Decl) Type {
	if t, ok := c.declTypes[d]; ok {
		return t
	}
	if alias, ok := d.(*ast.TypeAliasDecl); ok {
		return c.aliasTypes[alias]
	}
	return nil
}

// PatternType returns the computed type of a pattern, or nil.
func (c *Checker) PatternType(p ast.Pattern) Type {
	return c.patternTypes[p]
}

// ResolvedType returns the semantic type a type expression resolved to, or
// nil when it has not been validated.
func (c *Checker) ResolvedType(t ast.TypeExpr) Type {
	return c.resolved[t]
}

// UnderlyingType returns the underlying-type slot of an alias: the resolved
// aliased type, or the archetype assigned to a generic parameter or
// associated type.
func (c *Checker) UnderlyingType(alias *ast.TypeAliasDecl) Type {
	return c.aliasTypes[alias]
}

// RequirementTypes exposes the resolved operand slots of a requirement for
// inspection: protocol, subject, first, second. Unvalidated operands are
// nil.
func (c *Checker) RequirementTypes(req *ast.Requirement) (protocol, subject, first, second Type) {
	rt := c.reqTypes[req]
	if rt == nil {
		return nil, nil, nil, nil
	}
	return rt.Protocol, rt.Subject, rt.First, rt.Second
}

// setDeclType populates a declaration's type slot. Slots transition
// unset -> set once; later writes are ignored so poisoned declarations stay
// poisoned.
func (c *Checker) setDeclType(d ast.Decl, t Type) {
	if t == nil {
		return
	}
	if _, ok := c.declTypes[d]; ok {
		return
	}
	c.declTypes[d] = t
}

// overwriteDeclType poisons a slot regardless of its current value. Used
// when a later check invalidates an already-computed type.
func (c *Checker) overwriteDeclType(d ast.Decl, t Type) {
	c.declTypes[d] = t
}

// requirementState returns the mutable operand slots for a requirement.
func (c *Checker) requirementState(req *ast.Requirement) *requirementTypes {
	rt, ok := c.reqTypes[req]
	if !ok {
		rt = &requirementTypes{}
		c.reqTypes[req] = rt
	}
	return rt
}
