package typechecker

import "calyx/compiler-go/pkg/ast"

// Pattern checking computes a type for a binding pattern from its explicit
// annotations, then pushes types down onto the variables it binds. The
// routines are idempotent: a pattern with a settled type is never
// re-checked and never re-diagnosed.

// typeCheckPattern computes the pattern's type from its structure,
// reporting true on failure.
func (c *Checker) typeCheckPattern(p ast.Pattern, isFirstPass bool, scope ast.Decl) bool {
	if p == nil {
		return true
	}
	if t, ok := c.patternTypes[p]; ok {
		return IsError(t)
	}
	switch pat := p.(type) {
	case *ast.TypedPattern:
		if pat.Annotation == nil {
			// The implicit `this` level: its type is seeded by the
			// declaration checker before pattern checking runs.
			c.patternTypes[p] = c.ctx.Error()
			return true
		}
		if c.validateType(pat.Annotation, isFirstPass, scope) {
			c.patternTypes[p] = c.ctx.Error()
			return true
		}
		t := c.resolved[pat.Annotation]
		if c.coerceToType(pat.Sub, t, isFirstPass, scope) {
			c.patternTypes[p] = c.ctx.Error()
			return true
		}
		c.patternTypes[p] = t
		return false

	case *ast.ParenPattern:
		if c.typeCheckPattern(pat.Sub, isFirstPass, scope) {
			c.patternTypes[p] = c.ctx.Error()
			return true
		}
		c.patternTypes[p] = c.patternTypes[pat.Sub]
		return false

	case *ast.TuplePattern:
		elems := make([]TupleElem, 0, len(pat.Fields))
		failed := false
		for _, f := range pat.Fields {
			if c.typeCheckPattern(f.Pattern, isFirstPass, scope) {
				failed = true
				continue
			}
			elems = append(elems, TupleElem{
				Label:      patternLabel(f.Pattern),
				Type:       c.patternTypes[f.Pattern],
				HasDefault: f.Init != nil,
			})
		}
		if failed {
			c.patternTypes[p] = c.ctx.Error()
			return true
		}
		c.patternTypes[p] = c.ctx.Tuple(elems)
		return false

	case *ast.NamedPattern, *ast.AnyPattern:
		// Bare names and wildcards have no inherent type; they acquire one
		// through coercion from an annotation or initializer.
		return true
	}
	return true
}

// coerceToType pushes a known type down through a pattern, typing every
// variable it binds. Reports true on failure.
func (c *Checker) coerceToType(p ast.Pattern, t Type, isFirstPass bool, scope ast.Decl) bool {
	if p == nil || t == nil {
		return true
	}
	if existing, ok := c.patternTypes[p]; ok {
		return existing != t && !IsError(t)
	}
	switch pat := p.(type) {
	case *ast.NamedPattern:
		c.patternTypes[p] = t
		if pat.Var != nil {
			c.setDeclType(pat.Var, t)
		}
		return false

	case *ast.AnyPattern:
		c.patternTypes[p] = t
		return false

	case *ast.ParenPattern:
		if c.coerceToType(pat.Sub, t, isFirstPass, scope) {
			return true
		}
		c.patternTypes[p] = t
		return false

	case *ast.TypedPattern:
		if pat.Annotation == nil {
			// Seeded `this` patterns are coerced by seedPattern, not here.
			if c.coerceToType(pat.Sub, t, isFirstPass, scope) {
				return true
			}
			c.patternTypes[p] = t
			return false
		}
		if c.validateType(pat.Annotation, isFirstPass, scope) {
			return true
		}
		declared := c.resolved[pat.Annotation]
		if declared != t && !IsError(t) && !IsError(declared) {
			c.diagnose(p.Span(), DiagPatternTypeMismatch,
				"pattern annotated %s cannot bind a value of type %s", declared.Name(), t.Name())
			return true
		}
		if c.coerceToType(pat.Sub, declared, isFirstPass, scope) {
			return true
		}
		c.patternTypes[p] = declared
		return false

	case *ast.TuplePattern:
		tuple, ok := t.(*TupleType)
		if !ok || len(tuple.Elems) != len(pat.Fields) {
			c.diagnose(p.Span(), DiagPatternTypeMismatch,
				"tuple pattern cannot bind a value of type %s", t.Name())
			return true
		}
		for i, f := range pat.Fields {
			if c.coerceToType(f.Pattern, tuple.Elems[i].Type, isFirstPass, scope) {
				return true
			}
		}
		c.patternTypes[p] = t
		return false
	}
	return true
}

// seedPattern writes an externally computed type onto a pattern before
// pattern checking runs, typing the bound variable alongside. Used for the
// implicit `this` parameter. Seeding an already-typed pattern is a no-op.
func (c *Checker) seedPattern(p ast.Pattern, t Type) {
	if p == nil || t == nil {
		return
	}
	if _, ok := c.patternTypes[p]; ok {
		return
	}
	c.patternTypes[p] = t
	switch pat := p.(type) {
	case *ast.TypedPattern:
		c.seedPattern(pat.Sub, t)
	case *ast.ParenPattern:
		c.seedPattern(pat.Sub, t)
	case *ast.NamedPattern:
		if pat.Var != nil {
			c.setDeclType(pat.Var, t)
		}
	}
}

// patternLabel names a tuple element after the variable its field binds,
// when the field is a simple binding.
func patternLabel(p ast.Pattern) string {
	switch pat := p.(type) {
	case *ast.NamedPattern:
		if pat.Var != nil {
			return pat.Var.VarName
		}
	case *ast.TypedPattern:
		return patternLabel(pat.Sub)
	case *ast.ParenPattern:
		return patternLabel(pat.Sub)
	}
	return ""
}
