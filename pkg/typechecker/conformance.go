package typechecker

import "calyx/compiler-go/pkg/ast"

// checkInherited validates each type in a declaration's inheritance
// clause. Every successfully validated entry must be an existential;
// anything else draws a diagnostic but does not poison the declaration.
// The clause is checked at most once per declaration.
func (dc *declChecker) checkInherited(d ast.Decl, inherited []ast.TypeExpr) {
	c := dc.c
	if c.inheritedChecked[d] {
		return
	}
	c.inheritedChecked[d] = true
	for _, entry := range inherited {
		if c.validateType(entry, dc.isFirstPass, d) {
			continue
		}
		t := c.resolved[entry]
		if !IsExistential(t) && !IsError(t) {
			c.diagnose(d.Span(), DiagNonprotocolInherit,
				"inheritance from non-protocol type %s", t.Name())
		}
	}
}

// checkExplicitConformance walks an inheritance clause and asks the oracle
// whether the declared type satisfies each protocol it names. The clause is
// taken verbatim; superprotocol conformance is a downstream concern. Runs
// in the second pass only.
func (dc *declChecker) checkExplicitConformance(d ast.Decl, t Type, inherited []ast.TypeExpr) {
	c := dc.c
	if t == nil || IsError(t) {
		return
	}
	for _, entry := range inherited {
		resolved := c.resolved[entry]
		if resolved == nil || !IsExistential(resolved) {
			continue
		}
		for _, proto := range ExistentialProtocols(resolved) {
			c.oracle.ConformsToProtocol(c, t, proto, d.Span())
		}
	}
}

// structuralOracle is the default conformance oracle: a witness check that
// requires every value member of the protocol to have a same-named member
// on the conforming type's declaration. Archetypes conform through their
// recorded conformance sets, existentials through their protocol lists.
type structuralOracle struct{}

func (o *structuralOracle) ConformsToProtocol(c *Checker, t Type, proto *ast.ProtocolDecl, span ast.Span) bool {
	if IsError(t) {
		return true
	}
	switch ty := t.(type) {
	case *ArchetypeType:
		for _, conf := range ty.ConformsTo {
			for _, p := range ExistentialProtocols(conf) {
				if p == proto {
					return true
				}
			}
		}
	case *ProtocolType, *CompositionType:
		for _, p := range ExistentialProtocols(t) {
			if p == proto {
				return true
			}
		}
	default:
		if o.witnessesFor(c, t, proto) {
			return true
		}
	}
	c.diagnose(span, DiagDoesNotConform,
		"type %s does not conform to protocol %s", t.Name(), proto.TypeName)
	return false
}

// witnessesFor checks that every named value requirement of the protocol
// has a candidate member on the type's declaration or one of the unit's
// extensions of it.
func (o *structuralOracle) witnessesFor(c *Checker, t Type, proto *ast.ProtocolDecl) bool {
	decl := nominalDeclOf(t)
	if decl == nil {
		return false
	}
	for _, requirement := range proto.MemberList {
		vd, ok := requirement.(ast.ValueDecl)
		if !ok {
			continue
		}
		if !o.hasMember(c, decl, vd.Name()) {
			return false
		}
	}
	return true
}

func (o *structuralOracle) hasMember(c *Checker, decl ast.NominalDecl, name string) bool {
	for _, m := range decl.Members() {
		if vd, ok := m.(ast.ValueDecl); ok && vd.Name() == name {
			return true
		}
		if pbd, ok := m.(*ast.PatternBindingDecl); ok {
			found := false
			ast.EachVar(pbd.Pattern, func(v *ast.VarDecl) {
				if v.VarName == name {
					found = true
				}
			})
			if found {
				return true
			}
		}
	}
	if c.unit != nil {
		for _, d := range c.unit.Decls {
			ext, ok := d.(*ast.ExtensionDecl)
			if !ok {
				continue
			}
			extended := c.resolved[ext.Extended]
			if extended == nil || nominalDeclOf(extended) != decl {
				continue
			}
			for _, m := range ext.MemberList {
				if vd, ok := m.(ast.ValueDecl); ok && vd.Name() == name {
					return true
				}
			}
		}
	}
	return false
}

// nominalDeclOf extracts the declaration behind a nominal or unbound
// generic type.
func nominalDeclOf(t Type) ast.NominalDecl {
	switch ty := t.(type) {
	case *OneOfType:
		return ty.Decl
	case *StructType:
		return ty.Decl
	case *ClassType:
		return ty.Decl
	case *ProtocolType:
		return ty.Decl
	case *UnboundGenericType:
		return ty.Decl
	}
	return nil
}
