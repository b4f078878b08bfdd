package typechecker

import "calyx/compiler-go/pkg/ast"

// ExprChecker is the expression-checking collaborator the declaration
// checker delegates to. The in-repo default handles initializer literals
// and signature elaboration; a full expression checker can be swapped in by
// the driver.
type ExprChecker interface {
	// TypeCheckExpression elaborates an initializer against an optional
	// destination type, returning the (possibly rewritten) expression and
	// whether checking failed.
	TypeCheckExpression(expr ast.Expr, dest Type) (ast.Expr, bool)
	// SemaFuncExpr elaborates a function's signature from its parameter
	// patterns and result annotation, returning the function's type.
	SemaFuncExpr(fn *ast.FuncDecl, isFirstPass bool) Type
	// ConvertToMaterializable strips reference layers from an initializer,
	// returning the rewritten expression or nil when nothing changed.
	ConvertToMaterializable(expr ast.Expr) ast.Expr
}

// initializerChecker is the default expression collaborator: literal and
// reference initializers, tuple composition, and structural signature
// elaboration.
type initializerChecker struct {
	c *Checker
}

func (ic *initializerChecker) TypeCheckExpression(expr ast.Expr, dest Type) (ast.Expr, bool) {
	t := ic.exprType(expr)
	if t == nil {
		return expr, true
	}
	ic.c.exprTypes[expr] = t
	if dest == nil || IsError(dest) || IsError(t) {
		return expr, false
	}
	if t == dest {
		return expr, false
	}
	// A reference-typed initializer can satisfy its object type through a
	// materialization step.
	if lv, ok := t.(*LValueType); ok && lv.Object == dest {
		converted := &ast.MaterializeExpr{Sub: expr}
		ic.c.exprTypes[converted] = lv.Object
		return converted, false
	}
	// An existential destination accepts any value the oracle can vouch
	// for.
	if IsExistential(dest) {
		ok := true
		for _, proto := range ExistentialProtocols(dest) {
			if !ic.c.oracle.ConformsToProtocol(ic.c, t, proto, expr.Span()) {
				ok = false
			}
		}
		if ok {
			return expr, false
		}
	}
	return expr, true
}

func (ic *initializerChecker) SemaFuncExpr(fn *ast.FuncDecl, isFirstPass bool) Type {
	failed := false
	for _, level := range fn.ParamLevels {
		if ic.c.typeCheckPattern(level, isFirstPass, fn) {
			failed = true
		}
	}

	result := Type(ic.c.ctx.EmptyTuple())
	if fn.ResultType != nil {
		if ic.c.validateType(fn.ResultType, isFirstPass, fn) {
			failed = true
		} else {
			result = ic.c.resolved[fn.ResultType]
		}
	}
	if failed {
		return ic.c.ctx.Error()
	}

	t := result
	for i := len(fn.ParamLevels) - 1; i >= 0; i-- {
		input := ic.c.patternTypes[fn.ParamLevels[i]]
		if input == nil {
			return ic.c.ctx.Error()
		}
		if i == 0 && fn.Generics != nil {
			t = ic.c.ctx.Polymorphic(input, t, fn.Generics)
		} else {
			t = ic.c.ctx.Function(input, t)
		}
	}
	return t
}

func (ic *initializerChecker) ConvertToMaterializable(expr ast.Expr) ast.Expr {
	t := ic.c.exprTypes[expr]
	if t == nil {
		return nil
	}
	if lv, ok := t.(*LValueType); ok {
		converted := &ast.MaterializeExpr{Sub: expr}
		ic.c.exprTypes[converted] = lv.Object
		return converted
	}
	return nil
}

// exprType computes the structural type of an initializer expression, or
// nil when the expression cannot be typed here.
func (ic *initializerChecker) exprType(expr ast.Expr) Type {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return ic.c.ctx.Primitive(PrimitiveInt)
	case *ast.FloatLiteral:
		return ic.c.ctx.Primitive(PrimitiveFloat)
	case *ast.StringLiteral:
		return ic.c.ctx.Primitive(PrimitiveString)
	case *ast.BoolLiteral:
		return ic.c.ctx.Primitive(PrimitiveBool)
	case *ast.MaterializeExpr:
		sub := ic.exprType(e.Sub)
		if lv, ok := sub.(*LValueType); ok {
			return lv.Object
		}
		return sub
	case *ast.NameExpr:
		if ic.c.unit != nil {
			for _, d := range ic.c.unit.Decls {
				if vd, ok := d.(ast.ValueDecl); ok && vd.Name() == e.Ident {
					if t := ic.c.declTypes[vd]; t != nil {
						return t
					}
				}
				if pbd, ok := d.(*ast.PatternBindingDecl); ok {
					var found Type
					ast.EachVar(pbd.Pattern, func(v *ast.VarDecl) {
						if v.VarName == e.Ident && found == nil {
							found = ic.c.declTypes[v]
						}
					})
					if found != nil {
						return found
					}
				}
			}
		}
		return nil
	case *ast.TupleExpr:
		elems := make([]TupleElem, 0, len(e.Elems))
		for i, sub := range e.Elems {
			t := ic.exprType(sub)
			if t == nil {
				return nil
			}
			ic.c.exprTypes[sub] = t
			label := ""
			if i < len(e.Labels) {
				label = e.Labels[i]
			}
			elems = append(elems, TupleElem{Label: label, Type: t})
		}
		return ic.c.ctx.Tuple(elems)
	}
	return nil
}

// ExprType returns the recorded type of a checked expression, or nil.
func (c *Checker) ExprType(expr ast.Expr) Type {
	return c.exprTypes[expr]
}
