package typechecker

import (
	"testing"

	"calyx/compiler-go/pkg/ast"
)

func TestAnnotatedBindingChecksInitializerInSecondPass(t *testing.T) {
	v := ast.VarD("x")
	binding := ast.Binding(ast.TypedP(ast.NamedVar(v), ast.Ty("Int")), ast.Int(1))
	c := checkDecls(t, ast.UnitLibrary, binding)

	if len(c.Diagnostics()) != 0 {
		t.Fatalf("expected clean check, got %v", c.Diagnostics())
	}
	if c.TypeOf(v) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected x : Int, got %v", c.TypeOf(v))
	}
}

func TestInitializerTypeMismatchIsDiagnosed(t *testing.T) {
	binding := ast.Binding(ast.TypedP(ast.Named("x"), ast.Ty("Int")), ast.Str("nope"))
	c := checkDecls(t, ast.UnitLibrary, binding)

	expectCode(t, c, DiagWhileConvertingVarInit, 1)
}

func TestScriptBindingInfersFromInitializerInSecondPass(t *testing.T) {
	v := ast.VarD("x")
	binding := ast.Binding(ast.NamedVar(v), ast.Int(42))
	c := checkDecls(t, ast.UnitScript, binding)

	if len(c.Diagnostics()) != 0 {
		t.Fatalf("expected clean check, got %v", c.Diagnostics())
	}
	if c.TypeOf(v) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected inferred Int, got %v", c.TypeOf(v))
	}
}

func TestScriptBindingPatternIsDeferredToSecondPass(t *testing.T) {
	v := ast.VarD("x")
	binding := ast.Binding(ast.TypedP(ast.NamedVar(v), ast.Ty("Int")), nil)
	unit := ast.NewUnit("main", ast.UnitScript, []ast.Decl{binding})
	c := New(NewContext(), unit)

	c.TypeCheckDecl(binding, true)
	if c.TypeOf(v) != nil {
		t.Fatalf("expected deferred binding to stay untyped after the first pass")
	}

	c.TypeCheckDecl(binding, false)
	if c.TypeOf(v) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected x : Int after the second pass, got %v", c.TypeOf(v))
	}
}

func TestLibraryBindingIsCheckedEagerly(t *testing.T) {
	v := ast.VarD("x")
	binding := ast.Binding(ast.TypedP(ast.NamedVar(v), ast.Ty("Int")), nil)
	unit := ast.NewUnit("lib", ast.UnitLibrary, []ast.Decl{binding})
	c := New(NewContext(), unit)

	c.TypeCheckDecl(binding, true)
	if c.TypeOf(v) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected eager checking in a library unit, got %v", c.TypeOf(v))
	}
}

func TestTuplePatternBindsEachVar(t *testing.T) {
	a := ast.VarD("a")
	b := ast.VarD("b")
	binding := ast.Binding(ast.TupleP(
		ast.FieldP(ast.TypedP(ast.NamedVar(a), ast.Ty("Int"))),
		ast.FieldP(ast.TypedP(ast.NamedVar(b), ast.Ty("String"))),
	), nil)
	c := checkDecls(t, ast.UnitLibrary, binding)

	if c.TypeOf(a) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected a : Int, got %v", c.TypeOf(a))
	}
	if c.TypeOf(b) != Type(c.Context().Primitive(PrimitiveString)) {
		t.Fatalf("expected b : String, got %v", c.TypeOf(b))
	}
	tuple, ok := c.PatternType(binding.Pattern).(*TupleType)
	if !ok || len(tuple.Elems) != 2 {
		t.Fatalf("expected a two-element tuple pattern type, got %v", c.PatternType(binding.Pattern))
	}
	if tuple.Elems[0].Label != "a" || tuple.Elems[1].Label != "b" {
		t.Fatalf("expected tuple labels from the bound vars, got %q and %q", tuple.Elems[0].Label, tuple.Elems[1].Label)
	}
}

func TestTupleInitializerCoercesBareTuplePattern(t *testing.T) {
	a := ast.VarD("a")
	b := ast.VarD("b")
	binding := ast.Binding(
		ast.TupleP(ast.FieldP(ast.NamedVar(a)), ast.FieldP(ast.NamedVar(b))),
		&ast.TupleExpr{Elems: []ast.Expr{ast.Int(1), ast.Str("two")}},
	)
	c := checkDecls(t, ast.UnitScript, binding)

	if len(c.Diagnostics()) != 0 {
		t.Fatalf("expected clean check, got %v", c.Diagnostics())
	}
	if c.TypeOf(a) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected a : Int, got %v", c.TypeOf(a))
	}
	if c.TypeOf(b) != Type(c.Context().Primitive(PrimitiveString)) {
		t.Fatalf("expected b : String, got %v", c.TypeOf(b))
	}
}

func TestWildcardBindsNothing(t *testing.T) {
	binding := ast.Binding(ast.TypedP(ast.AnyP(), ast.Ty("Int")), nil)
	c := checkDecls(t, ast.UnitLibrary, binding)

	if len(c.Diagnostics()) != 0 {
		t.Fatalf("expected clean check, got %v", c.Diagnostics())
	}
	if c.PatternType(binding.Pattern) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected wildcard pattern typed Int")
	}
}
