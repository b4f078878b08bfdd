package typechecker

import "calyx/compiler-go/pkg/ast"

// validateType resolves a syntactic type expression, records the resolved
// type in the expression's slot, and reports whether validation failed. On
// failure the slot holds ErrorType and the caller is expected to poison the
// enclosing declaration.
//
// First-pass validation tolerates forward references to not-yet-checked
// nominal declarations; aliases that have not settled are chased
// recursively with a cycle guard. Re-validating an already-resolved
// expression returns its cached outcome without new diagnostics.
func (c *Checker) validateType(loc ast.TypeExpr, isFirstPass bool, scope ast.Decl) bool {
	if loc == nil {
		return true
	}
	if t, ok := c.resolved[loc]; ok {
		return IsError(t)
	}
	t := c.resolveTypeExpr(loc, isFirstPass, scope)
	if t == nil {
		t = c.ctx.Error()
	}
	c.resolved[loc] = t
	return IsError(t)
}

// resolveTypeExpr computes the semantic type for an expression, or nil on
// failure (already diagnosed).
func (c *Checker) resolveTypeExpr(loc ast.TypeExpr, isFirstPass bool, scope ast.Decl) Type {
	switch expr := loc.(type) {
	case *ast.NamedTypeExpr:
		return c.resolveNamed(expr, isFirstPass, scope)

	case *ast.TupleTypeExpr:
		elems := make([]TupleElem, 0, len(expr.Elems))
		failed := false
		for _, e := range expr.Elems {
			if c.validateType(e.Type, isFirstPass, scope) {
				failed = true
				continue
			}
			elems = append(elems, TupleElem{
				Label:      e.Label,
				Type:       c.resolved[e.Type],
				HasDefault: e.Init != nil,
			})
		}
		if failed {
			return nil
		}
		return c.ctx.Tuple(elems)

	case *ast.FunctionTypeExpr:
		if c.validateType(expr.Input, isFirstPass, scope) {
			return nil
		}
		if c.validateType(expr.Result, isFirstPass, scope) {
			return nil
		}
		return c.ctx.Function(c.resolved[expr.Input], c.resolved[expr.Result])

	case *ast.ByrefTypeExpr:
		if c.validateType(expr.Elem, isFirstPass, scope) {
			return nil
		}
		return c.ctx.LValue(c.resolved[expr.Elem])

	case *ast.CompositionTypeExpr:
		protocols := make([]Type, 0, len(expr.Protocols))
		for _, p := range expr.Protocols {
			if c.validateType(p, isFirstPass, scope) {
				return nil
			}
			member := c.resolved[p]
			if !IsExistential(member) {
				c.diagnose(p.Span(), DiagNonprotocolComposition,
					"type %s is not a protocol and cannot appear in a protocol composition", member.Name())
				return nil
			}
			protocols = append(protocols, member)
		}
		return &CompositionType{Protocols: protocols}
	}
	return nil
}

// resolveNamed resolves a name reference against the scope chain: enclosing
// generic parameters, associated types, nested type members, unit-scope
// declarations, then the builtin scalars.
func (c *Checker) resolveNamed(expr *ast.NamedTypeExpr, isFirstPass bool, scope ast.Decl) Type {
	for _, arg := range expr.Args {
		if c.validateType(arg, isFirstPass, scope) {
			return nil
		}
	}

	decl := c.lookupTypeDecl(expr.TypeName, scope)
	if decl == nil {
		if prim, ok := c.ctx.PrimitiveNamed(expr.TypeName); ok {
			return prim
		}
		c.diagnose(expr.Span(), DiagUnresolvedType, "use of undeclared type %q", expr.TypeName)
		return nil
	}

	switch d := decl.(type) {
	case *ast.TypeAliasDecl:
		return c.resolveAliasRef(expr, d, isFirstPass)
	case *ast.ProtocolDecl:
		return c.ctx.NominalType(d)
	case ast.NominalDecl:
		if d.GenericParams() != nil && len(expr.Args) == 0 {
			return c.ctx.UnboundGeneric(d)
		}
		return c.ctx.NominalType(decl)
	}
	c.diagnose(expr.Span(), DiagUnresolvedType, "%q does not name a type", expr.TypeName)
	return nil
}

// resolveAliasRef resolves a reference to a type alias through its
// underlying-type slot. In the first pass an unsettled alias is chased
// eagerly; in the second pass every alias must already have settled.
func (c *Checker) resolveAliasRef(expr *ast.NamedTypeExpr, alias *ast.TypeAliasDecl, isFirstPass bool) Type {
	if t, ok := c.aliasTypes[alias]; ok {
		return t
	}
	if alias.Underlying == nil || !isFirstPass || c.aliasInProgress[alias] {
		c.diagnose(expr.Span(), DiagUnresolvedType, "type %q cannot be resolved here", expr.TypeName)
		return nil
	}
	c.aliasInProgress[alias] = true
	failed := c.validateType(alias.Underlying, isFirstPass, alias)
	delete(c.aliasInProgress, alias)
	if failed {
		c.aliasTypes[alias] = c.ctx.Error()
		return nil
	}
	t := c.resolved[alias.Underlying]
	c.aliasTypes[alias] = t
	return t
}

// lookupTypeDecl finds the declaration a type name refers to, walking the
// scope chain outward from the given declaration and finishing at unit
// scope. Unit-scope declarations are scanned in source order.
func (c *Checker) lookupTypeDecl(name string, scope ast.Decl) ast.Decl {
	for p := scope; p != nil; p = p.Parent() {
		switch d := p.(type) {
		case *ast.OneOfDecl:
			if d.TypeName == name {
				return d
			}
			if found := lookupGenericParam(d.Generics, name); found != nil {
				return found
			}
			if found := lookupTypeMember(d.MemberList, name); found != nil {
				return found
			}
		case *ast.StructDecl:
			if d.TypeName == name {
				return d
			}
			if found := lookupGenericParam(d.Generics, name); found != nil {
				return found
			}
			if found := lookupTypeMember(d.MemberList, name); found != nil {
				return found
			}
		case *ast.ClassDecl:
			if d.TypeName == name {
				return d
			}
			if found := lookupGenericParam(d.Generics, name); found != nil {
				return found
			}
			if found := lookupTypeMember(d.MemberList, name); found != nil {
				return found
			}
		case *ast.ProtocolDecl:
			if d.TypeName == name {
				return d
			}
			if found := lookupTypeMember(d.MemberList, name); found != nil {
				return found
			}
		case *ast.ExtensionDecl:
			if found := lookupTypeMember(d.MemberList, name); found != nil {
				return found
			}
		case *ast.FuncDecl:
			if found := lookupGenericParam(d.Generics, name); found != nil {
				return found
			}
		case *ast.ConstructorDecl:
			if found := lookupGenericParam(d.Generics, name); found != nil {
				return found
			}
		}
	}

	if c.unit != nil {
		for _, d := range c.unit.Decls {
			switch decl := d.(type) {
			case ast.NominalDecl:
				if decl.Name() == name {
					return decl
				}
			case *ast.TypeAliasDecl:
				if decl.AliasName == name {
					return decl
				}
			}
		}
	}
	return nil
}

func lookupGenericParam(gp *ast.GenericParamList, name string) ast.Decl {
	if gp == nil {
		return nil
	}
	for _, p := range gp.Params {
		if p.AliasName == name {
			return p
		}
	}
	return nil
}

func lookupTypeMember(members []ast.Decl, name string) ast.Decl {
	for _, m := range members {
		switch decl := m.(type) {
		case ast.NominalDecl:
			if decl.Name() == name {
				return decl
			}
		case *ast.TypeAliasDecl:
			if decl.AliasName == name {
				return decl
			}
		}
	}
	return nil
}
