package typechecker

import "calyx/compiler-go/pkg/ast"

// validateAttributes checks the structural attribute rules on a
// value-producing declaration after its type has been computed. Each rule
// is evaluated independently; a violation neutralises only the offending
// flag.
func (dc *declChecker) validateAttributes(vd ast.ValueDecl) {
	c := dc.c
	attrs := vd.Attrs()
	ty := c.declTypes[vd]

	// The number of lexical arguments, for the arity checks below.
	numArguments := -1
	if input, _, ok := AsFunction(ty); ok {
		if tuple, ok := input.(*TupleType); ok {
			numArguments = len(tuple.Elems)
		}
	}

	isOperator := ast.IsOperator(vd)

	// Operators must be declared with `func`, not `var`.
	if isOperator {
		if _, ok := vd.(*ast.FuncDecl); !ok {
			c.diagnose(vd.Span(), DiagOperatorNotFunc, "operator %q must be declared as a function", vd.Name())
			return
		}

		if numArguments == 0 || numArguments > 2 {
			c.diagnose(vd.Span(), DiagInvalidArgCountForOperator,
				"operator %q must take one or two arguments", vd.Name())
			attrs.Infix = ast.InfixData{}
			return
		}

		// The unary operator `&` is reserved and cannot be overloaded.
		if numArguments == 1 && vd.Name() == "&" {
			c.diagnose(vd.Span(), DiagCustomOperatorAddressof, "the unary operator & cannot be overloaded")
			return
		}
	}

	if attrs.IsInfix() {
		// Only operator functions can be infix.
		if !isOperator {
			c.diagnose(vd.Span(), DiagInfixNotAnOperator, "infix attribute on a non-operator declaration")
			attrs.Infix = ast.InfixData{}
			return
		}

		// Only binary operators can be infix.
		if numArguments != 2 {
			c.diagnose(attrs.AttrSpan, DiagInvalidInfixLeftInput, "infix operator %q must take two arguments", vd.Name())
			attrs.Infix = ast.InfixData{}
			return
		}
	}

	if attrs.Postfix {
		// Only operator functions can be postfix.
		if !isOperator {
			c.diagnose(vd.Span(), DiagPostfixNotAnOperator, "postfix attribute on a non-operator declaration")
			attrs.Postfix = false
			return
		}

		// Only unary operators can be postfix.
		if numArguments != 1 {
			c.diagnose(vd.Span(), DiagInvalidPostfixInput, "postfix operator %q must take one argument", vd.Name())
			attrs.Postfix = false
			return
		}
	}

	if attrs.Assignment {
		// Only operator functions can be assignments.
		if _, ok := vd.(*ast.FuncDecl); !ok || !isOperator {
			c.diagnose(vd.Span(), DiagInvalidDeclAttribute, "invalid attribute %q on this declaration", "assignment")
			attrs.Assignment = false
		} else if numArguments < 1 {
			c.diagnose(vd.Span(), DiagAssignmentWithoutByref, "assignment operator %q must take a @byref first argument", vd.Name())
			attrs.Assignment = false
		} else {
			input, result, _ := AsFunction(ty)
			paramType := input
			if tuple, ok := input.(*TupleType); ok {
				paramType = tuple.Elems[0].Type
			}

			if _, ok := paramType.(*LValueType); !ok {
				c.diagnose(vd.Span(), DiagAssignmentWithoutByref, "assignment operator %q must take a @byref first argument", vd.Name())
				attrs.Assignment = false
			} else if result != Type(c.ctx.EmptyTuple()) {
				c.diagnose(vd.Span(), DiagAssignmentNonvoid, "assignment operator returns %s, not ()", result.Name())
			}
		}
	}

	if attrs.Conversion {
		// Only instance members whose bound type accepts an empty parameter
		// list can be conversions.
		if _, ok := vd.(*ast.FuncDecl); !ok || !ast.InstanceMember(vd) {
			c.diagnose(vd.Span(), DiagConversionNotInstanceMethod,
				"conversion %q must be an instance method", vd.Name())
			attrs.Conversion = false
		} else if !IsError(ty) {
			acceptsEmptyParamList := false
			if _, boundTy, ok := AsFunction(ty); ok {
				if input, _, ok := AsFunction(boundTy); ok {
					if tuple, ok := input.(*TupleType); ok {
						allDefaulted := true
						for _, elem := range tuple.Elems {
							if !elem.HasDefault {
								allDefaulted = false
								break
							}
						}
						acceptsEmptyParamList = allDefaulted
					}
				}
			}

			if !acceptsEmptyParamList {
				c.diagnose(vd.Span(), DiagConversionParams,
					"conversion %q cannot take non-defaulted parameters", vd.Name())
				attrs.Conversion = false
			}
		}
	}

	if isOperator && !attrs.IsInfix() && numArguments != 1 {
		// A binary operator without its own infix attribute inherits one
		// from a previously declared operator of the same name: the
		// translation unit in source order first, then imported modules in
		// import order, first hit wins.
		if ast.ModuleScope(vd) {
			for _, d := range c.unit.Decls {
				if existing, ok := d.(ast.ValueDecl); ok {
					if existing.Name() == vd.Name() && existing.Attrs().IsInfix() {
						attrs.Infix = existing.Attrs().Infix
						break
					}
				}
			}

			if !attrs.IsInfix() {
			moduleScan:
				for _, mod := range c.imports {
					for _, existing := range mod.LookupValue(vd.Name()) {
						if existing.Name == vd.Name() && existing.Attrs.IsInfix() {
							attrs.Infix = existing.Attrs.Infix
							break moduleScan
						}
					}
				}
			}
		}

		if !attrs.IsInfix() {
			c.diagnose(vd.Span(), DiagBinopsInfixLeft,
				"binary operator %q has no infix declaration in scope", vd.Name())
		}
	}

	if attrs.Byref {
		c.diagnose(vd.Span(), DiagInvalidDeclAttribute, "invalid attribute %q on this declaration", "byref")
		attrs.Byref = false
	}

	if attrs.AutoClosure {
		c.diagnose(vd.Span(), DiagInvalidDeclAttribute, "invalid attribute %q on this declaration", "auto_closure")
		attrs.AutoClosure = false
	}
}
