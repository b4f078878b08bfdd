package typechecker

import "calyx/compiler-go/pkg/ast"

// ArchetypeBuilder maps the parameters of one generic parameter list to
// fresh archetypes. The builder itself is a transient table discarded at
// the end of checkGenericParams; the bindings persist in each parameter's
// underlying-type slot.
type ArchetypeBuilder struct {
	c       *Checker
	params  []*ast.TypeAliasDecl
	indices map[*ast.TypeAliasDecl]int
	reqs    []*ast.Requirement
	seen    map[*ast.Requirement]bool
}

func newArchetypeBuilder(c *Checker) *ArchetypeBuilder {
	return &ArchetypeBuilder{
		c:       c,
		indices: make(map[*ast.TypeAliasDecl]int),
		seen:    make(map[*ast.Requirement]bool),
	}
}

// AddGenericParameter registers a parameter under its declaration-order
// index.
func (b *ArchetypeBuilder) AddGenericParameter(param *ast.TypeAliasDecl, index int) {
	if _, ok := b.indices[param]; ok {
		return
	}
	b.params = append(b.params, param)
	b.indices[param] = index
}

// AddRequirement registers a surviving requirement. Requirements already
// added are ignored, so the two requirement scans can overlap safely.
func (b *ArchetypeBuilder) AddRequirement(req *ast.Requirement) {
	if b.seen[req] {
		return
	}
	b.seen[req] = true
	b.reqs = append(b.reqs, req)
}

// AssignArchetypes synthesises one fresh archetype per registered
// parameter. Each archetype's conformance set is the union of the
// parameter's declared inherited protocols and every conformance
// requirement targeting the parameter, in that order, deduplicated.
func (b *ArchetypeBuilder) AssignArchetypes() map[*ast.TypeAliasDecl]*ArchetypeType {
	out := make(map[*ast.TypeAliasDecl]*ArchetypeType, len(b.params))
	for _, param := range b.params {
		conforms := b.conformanceSet(param)
		out[param] = b.c.ctx.NewArchetype(param.AliasName, conforms, b.indices[param])
	}
	return out
}

func (b *ArchetypeBuilder) conformanceSet(param *ast.TypeAliasDecl) []Type {
	var conforms []Type
	added := make(map[*ast.ProtocolDecl]bool)
	add := func(t Type) {
		if t == nil || !IsExistential(t) {
			return
		}
		fresh := false
		for _, proto := range ExistentialProtocols(t) {
			if !added[proto] {
				added[proto] = true
				fresh = true
			}
		}
		if fresh {
			conforms = append(conforms, t)
		}
	}
	for _, inherited := range param.Inherited {
		add(b.c.resolved[inherited])
	}
	for _, req := range b.reqs {
		if req.Kind != ast.RequirementConformance {
			continue
		}
		if !requirementTargets(req, param) {
			continue
		}
		add(b.c.requirementState(req).Protocol)
	}
	return conforms
}

// requirementTargets reports whether a conformance requirement's subject
// names the given parameter. At assignment time subjects are still
// syntactic, so matching is by name.
func requirementTargets(req *ast.Requirement, param *ast.TypeAliasDecl) bool {
	named, ok := req.Subject.(*ast.NamedTypeExpr)
	return ok && len(named.Args) == 0 && named.TypeName == param.AliasName
}

// checkGenericParams elaborates a generic parameter list: parameter intake,
// a first requirements scan over the operands archetype assignment needs,
// archetype synthesis, and a second scan over the operands that may refer
// to the new archetypes. Validation failures poison the offending operand
// slot and checking continues; assignment still runs over whichever
// parameters remain valid.
func (dc *declChecker) checkGenericParams(gp *ast.GenericParamList, scope ast.Decl) {
	if gp == nil {
		return
	}
	c := dc.c
	if c.genericsChecked[gp] {
		return
	}
	c.genericsChecked[gp] = true

	builder := newArchetypeBuilder(c)
	for index, param := range gp.Params {
		dc.checkInherited(param, param.Inherited)
		builder.AddGenericParameter(param, index)
	}

	// First scan: only the protocol operand of each conformance
	// requirement must be complete before archetypes exist.
	for _, req := range gp.Requirements {
		switch req.Kind {
		case ast.RequirementConformance:
			if c.validateType(req.Constraint, dc.isFirstPass, scope) {
				c.requirementState(req).Protocol = c.ctx.Error()
				continue
			}
			constraint := c.resolved[req.Constraint]
			if !IsExistential(constraint) {
				c.diagnose(gp.RequiresSpan, DiagRequiresConformanceNonprotocol,
					"requirement constraint %s is not a protocol", constraint.Name())
				c.requirementState(req).Protocol = c.ctx.Error()
				continue
			}
			c.requirementState(req).Protocol = constraint

		case ast.RequirementSameType:
			// Deferred to the second scan.
			continue
		}
		builder.AddRequirement(req)
	}

	archetypes := builder.AssignArchetypes()
	for param, arch := range archetypes {
		if _, ok := c.aliasTypes[param]; !ok {
			c.aliasTypes[param] = arch
		}
	}

	// Second scan: subjects and same-type operands may refer to the
	// archetypes just created.
	for _, req := range gp.Requirements {
		switch req.Kind {
		case ast.RequirementConformance:
			if c.validateType(req.Subject, dc.isFirstPass, scope) {
				c.requirementState(req).Subject = c.ctx.Error()
				continue
			}
			c.requirementState(req).Subject = c.resolved[req.Subject]

		case ast.RequirementSameType:
			state := c.requirementState(req)
			if c.validateType(req.First, dc.isFirstPass, scope) {
				state.First = c.ctx.Error()
				continue
			}
			state.First = c.resolved[req.First]
			if c.validateType(req.Second, dc.isFirstPass, scope) {
				state.Second = c.ctx.Error()
				continue
			}
			state.Second = c.resolved[req.Second]
		}
		builder.AddRequirement(req)
	}
}
