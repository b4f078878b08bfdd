package typechecker

import "calyx/compiler-go/pkg/ast"

// declChecker routes one declaration visit to its per-kind handler. The
// checker makes two passes over module scope; the booleans say which pass
// this visit belongs to. Members reached through their container share the
// container's flags; a visit is neither first nor second pass when
// TypeCheckDecl is called with isFirstPass=false on a declaration outside
// module scope.
type declChecker struct {
	c            *Checker
	isFirstPass  bool
	isSecondPass bool
}

func (dc *declChecker) visit(d ast.Decl) {
	switch decl := d.(type) {
	case *ast.ImportDecl:
		// Nothing to do.
	case *ast.PatternBindingDecl:
		dc.visitPatternBinding(decl)
	case *ast.VarDecl:
		// Vars are checked through the pattern binding that binds them.
	case *ast.FuncDecl:
		dc.visitFunc(decl)
	case *ast.ConstructorDecl:
		dc.visitConstructor(decl)
	case *ast.DestructorDecl:
		dc.visitDestructor(decl)
	case *ast.SubscriptDecl:
		dc.visitSubscript(decl)
	case *ast.TypeAliasDecl:
		dc.visitTypeAlias(decl)
	case *ast.OneOfDecl:
		dc.visitOneOf(decl)
	case *ast.OneOfElementDecl:
		dc.visitOneOfElement(decl)
	case *ast.StructDecl:
		dc.visitStruct(decl)
	case *ast.ClassDecl:
		dc.visitClass(decl)
	case *ast.ProtocolDecl:
		dc.visitProtocol(decl)
	case *ast.ExtensionDecl:
		dc.visitExtension(decl)
	case *ast.TopLevelCodeDecl:
		// Routed to the statement checker by the driver, never here.
	}
}

// visitBoundVars validates every variable a checked pattern binds: the
// type must be materialisable, and the attribute rules apply.
func (dc *declChecker) visitBoundVars(p ast.Pattern) {
	switch pat := p.(type) {
	case *ast.TuplePattern:
		for _, f := range pat.Fields {
			dc.visitBoundVars(f.Pattern)
		}
	case *ast.ParenPattern:
		dc.visitBoundVars(pat.Sub)
	case *ast.TypedPattern:
		dc.visitBoundVars(pat.Sub)
	case *ast.NamedPattern:
		vd := pat.Var
		if vd == nil {
			return
		}
		t := dc.c.declTypes[vd]
		if t != nil && !IsMaterializable(t) {
			dc.c.diagnose(vd.Span(), DiagVarTypeNotMaterializable,
				"variable %q has non-materializable type %s", vd.VarName, t.Name())
			dc.c.overwriteDeclType(vd, dc.c.ctx.Error())
		}
		dc.validateAttributes(vd)
	case *ast.AnyPattern:
		// Binds nothing.
	}
}

func (dc *declChecker) visitPatternBinding(pbd *ast.PatternBindingDecl) {
	c := dc.c
	delayCheckingPattern := c.unit.Kind != ast.UnitLibrary && ast.ModuleScope(pbd)

	if dc.isSecondPass && !delayCheckingPattern {
		if pbd.Init != nil && c.patternTypes[pbd.Pattern] != nil {
			destTy := c.patternTypes[pbd.Pattern]
			if init, failed := c.exprs.TypeCheckExpression(pbd.Init, destTy); failed {
				c.diagnose(pbd.Span(), DiagWhileConvertingVarInit,
					"cannot convert initializer to declared type %s", destTy.Name())
			} else {
				pbd.Init = init
			}
		}
		return
	}

	if pbd.Init != nil && !dc.isFirstPass {
		var destTy Type
		if _, ok := pbd.Pattern.(*ast.TypedPattern); ok {
			if c.typeCheckPattern(pbd.Pattern, false, pbd) {
				c.setDeclType(pbd, c.ctx.Error())
				return
			}
			destTy = c.patternTypes[pbd.Pattern]
		}
		init, failed := c.exprs.TypeCheckExpression(pbd.Init, destTy)
		if failed {
			if destTy != nil {
				c.diagnose(pbd.Span(), DiagWhileConvertingVarInit,
					"cannot convert initializer to declared type %s", destTy.Name())
			}
			c.setDeclType(pbd, c.ctx.Error())
			return
		}
		if destTy == nil {
			if converted := c.exprs.ConvertToMaterializable(init); converted != nil {
				init = converted
			}
		}
		pbd.Init = init
		if destTy == nil {
			if c.coerceToType(pbd.Pattern, c.exprTypes[init], false, pbd) {
				c.setDeclType(pbd, c.ctx.Error())
				return
			}
		}
	} else if !dc.isFirstPass || !delayCheckingPattern {
		if c.typeCheckPattern(pbd.Pattern, dc.isFirstPass, pbd) {
			c.setDeclType(pbd, c.ctx.Error())
			return
		}
	}

	dc.visitBoundVars(pbd.Pattern)
	if t := c.patternTypes[pbd.Pattern]; t != nil {
		c.setDeclType(pbd, t)
	}
}

func (dc *declChecker) visitSubscript(sd *ast.SubscriptDecl) {
	if dc.isSecondPass {
		return
	}
	c := dc.c

	// The getter and setter are type-checked separately.
	if ast.TypeContext(sd) == nil {
		c.diagnose(sd.Span(), DiagSubscriptNotMember, "subscript declared outside a type")
	}

	c.validateType(sd.ElementType, dc.isFirstPass, sd)

	if !c.typeCheckPattern(sd.Indices, dc.isFirstPass, sd) {
		element := c.resolved[sd.ElementType]
		if element == nil {
			element = c.ctx.Error()
		}
		c.setDeclType(sd, c.ctx.Function(c.patternTypes[sd.Indices], element))
	} else {
		c.setDeclType(sd, c.ctx.Error())
	}
}

func (dc *declChecker) visitTypeAlias(tad *ast.TypeAliasDecl) {
	c := dc.c
	if !dc.isSecondPass {
		if tad.Underlying != nil {
			if _, ok := c.aliasTypes[tad]; !ok {
				if c.validateType(tad.Underlying, dc.isFirstPass, tad) {
					c.aliasTypes[tad] = c.ctx.Error()
				} else {
					c.aliasTypes[tad] = c.resolved[tad.Underlying]
				}
			}
		}
		if _, inProtocol := tad.Parent().(*ast.ProtocolDecl); !inProtocol {
			dc.checkInherited(tad, tad.Inherited)
		}
	}

	if !dc.isFirstPass {
		dc.checkExplicitConformance(tad, c.aliasTypes[tad], tad.Inherited)
	}
}

func (dc *declChecker) visitOneOf(ood *ast.OneOfDecl) {
	if !dc.isSecondPass {
		dc.c.setDeclType(ood, dc.c.ctx.NominalType(ood))
		dc.checkInherited(ood, ood.Inherited)
		dc.checkGenericParams(ood.Generics, ood)
	}

	for _, member := range ood.MemberList {
		dc.visit(member)
	}

	if !dc.isFirstPass {
		dc.checkExplicitConformance(ood, dc.c.ctx.NominalType(ood), ood.Inherited)
	}
}

func (dc *declChecker) visitStruct(sd *ast.StructDecl) {
	c := dc.c
	if !dc.isSecondPass {
		c.setDeclType(sd, c.ctx.NominalType(sd))
		dc.checkInherited(sd, sd.Inherited)
		dc.checkGenericParams(sd.Generics, sd)
	}

	for _, member := range sd.MemberList {
		dc.visit(member)
	}

	if !dc.isSecondPass {
		// Synthesize the implied elementwise constructor: the non-property
		// stored fields, in source order, as a labeled tuple.
		var elems []TupleElem
		for _, member := range sd.MemberList {
			var vars []*ast.VarDecl
			switch m := member.(type) {
			case *ast.VarDecl:
				vars = append(vars, m)
			case *ast.PatternBindingDecl:
				ast.EachVar(m.Pattern, func(v *ast.VarDecl) { vars = append(vars, v) })
			}
			for _, vd := range vars {
				if vd.Property {
					continue
				}
				fieldTy := c.declTypes[vd]
				if fieldTy == nil {
					fieldTy = c.ctx.Error()
				}
				elems = append(elems, TupleElem{Label: vd.VarName, Type: fieldTy})
			}
		}
		tt := c.ctx.Tuple(elems)
		createTy := c.ctx.Function(tt, dc.declaredTypeInContext(sd))
		if ctor := sd.ElementConstructor(); ctor != nil {
			c.setDeclType(ctor, createTy)
			c.elemArgTypes[ctor] = tt
		}
	}

	if !dc.isFirstPass {
		dc.checkExplicitConformance(sd, c.ctx.NominalType(sd), sd.Inherited)
	}
}

func (dc *declChecker) visitClass(cd *ast.ClassDecl) {
	if !dc.isSecondPass {
		dc.c.setDeclType(cd, dc.c.ctx.NominalType(cd))
		dc.checkInherited(cd, cd.Inherited)
		dc.checkGenericParams(cd.Generics, cd)
	}

	for _, member := range cd.MemberList {
		dc.visit(member)
	}

	if !dc.isFirstPass {
		dc.checkExplicitConformance(cd, dc.c.ctx.NominalType(cd), cd.Inherited)
	}
}

func (dc *declChecker) visitProtocol(pd *ast.ProtocolDecl) {
	if dc.isSecondPass {
		return
	}
	c := dc.c
	c.setDeclType(pd, c.ctx.NominalType(pd))

	dc.checkInherited(pd, pd.Inherited)

	// Assign an archetype to each associated type. The `This` alias is the
	// distinguished self parameter and takes positional index 0.
	for _, member := range pd.MemberList {
		assoc, ok := member.(*ast.TypeAliasDecl)
		if !ok {
			continue
		}
		dc.checkInherited(assoc, assoc.Inherited)

		if _, done := c.aliasTypes[assoc]; done {
			continue
		}
		index := -1
		if assoc.AliasName == "This" {
			index = 0
		}
		var inherited []Type
		for _, entry := range assoc.Inherited {
			if t := c.resolved[entry]; t != nil && !IsError(t) {
				inherited = append(inherited, t)
			}
		}
		c.aliasTypes[assoc] = c.ctx.NewArchetype(assoc.AliasName, inherited, index)
	}

	for _, member := range pd.MemberList {
		dc.visit(member)
	}
}

func (dc *declChecker) visitFunc(fd *ast.FuncDecl) {
	if dc.isSecondPass {
		return
	}
	c := dc.c

	// Before anything else, set up the `this` argument correctly.
	if thisTy := dc.computeThisType(fd); thisTy != nil && len(fd.ParamLevels) > 0 {
		c.seedPattern(fd.ParamLevels[0], thisTy)
	}

	dc.checkGenericParams(fd.Generics, fd)

	c.setDeclType(fd, c.exprs.SemaFuncExpr(fd, dc.isFirstPass))

	dc.validateAttributes(fd)
}

func (dc *declChecker) visitOneOfElement(ed *ast.OneOfElementDecl) {
	if dc.isSecondPass {
		return
	}
	c := dc.c

	// Element decls inside structs are the synthesized elementwise
	// constructor, typed by the struct visit.
	ood, ok := ed.Parent().(*ast.OneOfDecl)
	if !ok {
		return
	}

	elemTy := dc.declaredTypeInContext(ood)

	// A simple element carries the enclosing type itself.
	if ed.ArgType == nil {
		c.setDeclType(ed, elemTy)
		return
	}

	if c.validateType(ed.ArgType, dc.isFirstPass, ed) {
		c.setDeclType(ed, c.ctx.Error())
		return
	}

	argTy := c.resolved[ed.ArgType]
	c.setDeclType(ed, c.ctx.Function(argTy, elemTy))
	c.elemArgTypes[ed] = argTy

	// The carried payload must be materializable.
	if !IsMaterializable(argTy) {
		c.diagnose(ed.Span(), DiagOneOfElementNotMaterializable,
			"element payload type %s is not materializable", argTy.Name())
	}
}

func (dc *declChecker) visitExtension(ed *ast.ExtensionDecl) {
	c := dc.c
	if !dc.isSecondPass {
		c.validateType(ed.Extended, dc.isFirstPass, ed)

		extendedTy := c.resolved[ed.Extended]
		if extendedTy == nil {
			extendedTy = c.ctx.Error()
		}
		switch extendedTy.(type) {
		case *OneOfType, *StructType, *ClassType, *UnboundGenericType, *ErrorType:
		case *ProtocolType, *CompositionType:
			c.diagnose(ed.Span(), DiagProtocolExtension,
				"protocols cannot be extended; declare the requirements in the protocol itself")
		default:
			c.diagnose(ed.Span(), DiagNonNominalExtension,
				"non-nominal type %s cannot be extended", extendedTy.Name())
		}
		c.setDeclType(ed, extendedTy)

		dc.checkInherited(ed, ed.Inherited)
	}

	for _, member := range ed.MemberList {
		dc.visit(member)
	}

	if !dc.isFirstPass {
		dc.checkExplicitConformance(ed, c.resolved[ed.Extended], ed.Inherited)
	}
}

func (dc *declChecker) visitConstructor(cd *ast.ConstructorDecl) {
	if dc.isSecondPass {
		return
	}
	c := dc.c

	if ast.TypeContext(cd) == nil {
		c.diagnose(cd.Span(), DiagConstructorNotMember, "constructor declared outside a type")
	}

	dc.checkGenericParams(cd.Generics, cd)

	thisTy := dc.computeThisType(cd)
	if thisTy == nil {
		thisTy = c.ctx.Error()
	}
	if cd.ImplicitThis != nil {
		c.setDeclType(cd.ImplicitThis, thisTy)
	}

	if c.typeCheckPattern(cd.Args, dc.isFirstPass, cd) {
		c.setDeclType(cd, c.ctx.Error())
	} else {
		argsTy := c.patternTypes[cd.Args]
		if cd.Generics != nil {
			c.setDeclType(cd, c.ctx.Polymorphic(argsTy, thisTy, cd.Generics))
		} else {
			c.setDeclType(cd, c.ctx.Function(argsTy, thisTy))
		}
	}

	dc.validateAttributes(cd)
}

func (dc *declChecker) visitDestructor(dd *ast.DestructorDecl) {
	if dc.isSecondPass {
		return
	}
	c := dc.c

	if _, inClass := ast.TypeContext(dd).(*ast.ClassDecl); !inClass {
		c.diagnose(dd.Span(), DiagDestructorNotMember, "destructor declared outside a class")
	}

	thisTy := dc.computeThisType(dd)
	if thisTy == nil {
		thisTy = c.ctx.Error()
	}
	c.setDeclType(dd, c.ctx.Function(thisTy, c.ctx.EmptyTuple()))
	if dd.ImplicitThis != nil {
		c.setDeclType(dd.ImplicitThis, thisTy)
	}

	dc.validateAttributes(dd)
}

// computeThisType determines the implicit `this` type of a member
// declaration, or nil when the declaration takes none.
func (dc *declChecker) computeThisType(d ast.Decl) Type {
	if fd, ok := d.(*ast.FuncDecl); ok && fd.Static {
		return nil
	}
	tc := ast.TypeContext(d)
	if tc == nil {
		return nil
	}
	return dc.declaredTypeInContext(tc)
}

// declaredTypeInContext is the type a container declaration stands for when
// referenced from within itself: the nominal type, the extended type of an
// extension, or a protocol's This archetype.
func (dc *declChecker) declaredTypeInContext(d ast.Decl) Type {
	c := dc.c
	switch decl := d.(type) {
	case *ast.OneOfDecl, *ast.StructDecl, *ast.ClassDecl:
		return c.ctx.NominalType(decl)
	case *ast.ExtensionDecl:
		if t := c.resolved[decl.Extended]; t != nil {
			return t
		}
		return c.ctx.Error()
	case *ast.ProtocolDecl:
		for _, member := range decl.MemberList {
			if assoc, ok := member.(*ast.TypeAliasDecl); ok && assoc.AliasName == "This" {
				if t := c.aliasTypes[assoc]; t != nil {
					return t
				}
			}
		}
		return c.ctx.NominalType(decl)
	}
	return c.ctx.Error()
}
