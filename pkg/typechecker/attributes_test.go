package typechecker

import (
	"testing"

	"calyx/compiler-go/pkg/ast"
)

func binaryOp(name, arg string) *ast.FuncDecl {
	return ast.Fn(name, ast.Args(ast.Param("a", ast.Ty(arg)), ast.Param("b", ast.Ty(arg))), ast.Ty(arg))
}

func TestInfixOnNonOperatorIsCleared(t *testing.T) {
	fn := ast.Fn("add", ast.Args(ast.Param("a", ast.Ty("Int")), ast.Param("b", ast.Ty("Int"))), ast.Ty("Int"))
	fn.Attributes.Infix = ast.InfixAttr(90, ast.AssocLeft)
	c := checkDecls(t, ast.UnitLibrary, fn)

	expectCode(t, c, DiagInfixNotAnOperator, 1)
	if fn.Attributes.IsInfix() {
		t.Fatalf("expected infix attribute cleared")
	}
}

func TestInfixOnUnaryOperatorIsCleared(t *testing.T) {
	fn := ast.Fn("!", ast.Args(ast.Param("a", ast.Ty("Bool"))), ast.Ty("Bool"))
	fn.Attributes.Infix = ast.InfixAttr(90, ast.AssocLeft)
	c := checkDecls(t, ast.UnitLibrary, fn)

	expectCode(t, c, DiagInvalidInfixLeftInput, 1)
	if fn.Attributes.IsInfix() {
		t.Fatalf("expected infix attribute cleared")
	}
}

func TestOperatorArityIsChecked(t *testing.T) {
	fn := ast.Fn("+", ast.Args(
		ast.Param("a", ast.Ty("Int")),
		ast.Param("b", ast.Ty("Int")),
		ast.Param("c", ast.Ty("Int")),
	), ast.Ty("Int"))
	fn.Attributes.Infix = ast.InfixAttr(90, ast.AssocLeft)
	c := checkDecls(t, ast.UnitLibrary, fn)

	expectCode(t, c, DiagInvalidArgCountForOperator, 1)
	if fn.Attributes.IsInfix() {
		t.Fatalf("expected infix neutralised on arity violation")
	}
	// The early return suppresses the infix-inheritance diagnostic.
	expectCode(t, c, DiagBinopsInfixLeft, 0)
}

func TestOperatorMustBeAFunction(t *testing.T) {
	v := ast.VarD("+")
	binding := ast.Binding(ast.TypedP(ast.NamedVar(v), ast.Ty("Int")), nil)
	c := checkDecls(t, ast.UnitLibrary, binding)

	expectCode(t, c, DiagOperatorNotFunc, 1)
}

func TestPostfixRules(t *testing.T) {
	good := ast.Fn("++", ast.Args(ast.Param("a", ast.Ty("Int"))), ast.Ty("Int"))
	good.Attributes.Postfix = true

	wrongArity := binaryOp("--", "Int")
	wrongArity.Attributes.Postfix = true
	wrongArity.Attributes.Infix = ast.InfixAttr(70, ast.AssocLeft)

	nonOperator := ast.Fn("bump", ast.Args(ast.Param("a", ast.Ty("Int"))), ast.Ty("Int"))
	nonOperator.Attributes.Postfix = true

	c := checkDecls(t, ast.UnitLibrary, good, wrongArity, nonOperator)

	if !good.Attributes.Postfix {
		t.Fatalf("expected valid postfix attribute kept")
	}
	expectCode(t, c, DiagInvalidPostfixInput, 1)
	if wrongArity.Attributes.Postfix {
		t.Fatalf("expected postfix cleared on binary operator")
	}
	expectCode(t, c, DiagPostfixNotAnOperator, 1)
	if nonOperator.Attributes.Postfix {
		t.Fatalf("expected postfix cleared on non-operator")
	}
}

func TestAssignmentOperatorRules(t *testing.T) {
	good := ast.Fn("+=", ast.Args(
		ast.Param("a", ast.Byref(ast.Ty("Int"))),
		ast.Param("b", ast.Ty("Int")),
	), nil)
	good.Attributes.Assignment = true
	good.Attributes.Infix = ast.InfixAttr(90, ast.AssocRight)

	noByref := ast.Fn("-=", ast.Args(
		ast.Param("a", ast.Ty("Int")),
		ast.Param("b", ast.Ty("Int")),
	), nil)
	noByref.Attributes.Assignment = true
	noByref.Attributes.Infix = ast.InfixAttr(90, ast.AssocRight)

	nonVoid := ast.Fn("*=", ast.Args(
		ast.Param("a", ast.Byref(ast.Ty("Int"))),
		ast.Param("b", ast.Ty("Int")),
	), ast.Ty("Int"))
	nonVoid.Attributes.Assignment = true
	nonVoid.Attributes.Infix = ast.InfixAttr(90, ast.AssocRight)

	c := checkDecls(t, ast.UnitLibrary, good, noByref, nonVoid)

	if !good.Attributes.Assignment {
		t.Fatalf("expected valid assignment attribute kept")
	}
	expectCode(t, c, DiagAssignmentWithoutByref, 1)
	if noByref.Attributes.Assignment {
		t.Fatalf("expected assignment cleared without @byref first argument")
	}
	// A non-void result is diagnosed but the attribute survives.
	expectCode(t, c, DiagAssignmentNonvoid, 1)
	if !nonVoid.Attributes.Assignment {
		t.Fatalf("expected assignment kept despite nonvoid result")
	}
}

func TestAssignmentOnNonOperatorIsCleared(t *testing.T) {
	fn := ast.Fn("store", ast.Args(ast.Param("a", ast.Byref(ast.Ty("Int")))), nil)
	fn.Attributes.Assignment = true
	c := checkDecls(t, ast.UnitLibrary, fn)

	expectCode(t, c, DiagInvalidDeclAttribute, 1)
	if fn.Attributes.Assignment {
		t.Fatalf("expected assignment cleared on non-operator")
	}
}

func TestConversionRules(t *testing.T) {
	good := ast.Method("toInt", nil, ast.Ty("Int"))
	good.Attributes.Conversion = true

	withParams := ast.Method("scaled", ast.Args(ast.Param("factor", ast.Ty("Int"))), ast.Ty("Int"))
	withParams.Attributes.Conversion = true

	box := ast.StructD("Box", good, withParams)

	topLevel := ast.Fn("convert", nil, ast.Ty("Int"))
	topLevel.Attributes.Conversion = true

	c := checkDecls(t, ast.UnitLibrary, box, topLevel)

	if !good.Attributes.Conversion {
		t.Fatalf("expected zero-arg instance conversion kept")
	}
	expectCode(t, c, DiagConversionParams, 1)
	if withParams.Attributes.Conversion {
		t.Fatalf("expected conversion cleared with non-defaulted params")
	}
	expectCode(t, c, DiagConversionNotInstanceMethod, 1)
	if topLevel.Attributes.Conversion {
		t.Fatalf("expected conversion cleared outside a type")
	}
}

func TestConversionAllowsFullyDefaultedParams(t *testing.T) {
	method := ast.Method("rounded", ast.TupleP(
		ast.FieldPDefault(ast.TypedP(ast.Named("digits"), ast.Ty("Int")), ast.Int(0)),
	), ast.Ty("Int"))
	method.Attributes.Conversion = true
	box := ast.StructD("Box", method)
	c := checkDecls(t, ast.UnitLibrary, box)

	expectCode(t, c, DiagConversionParams, 0)
	if !method.Attributes.Conversion {
		t.Fatalf("expected conversion kept when every param is defaulted")
	}
}

func TestByrefAndAutoClosureAreNeverDeclAttributes(t *testing.T) {
	fn := ast.Fn("f", nil, nil)
	fn.Attributes.Byref = true
	fn.Attributes.AutoClosure = true
	c := checkDecls(t, ast.UnitLibrary, fn)

	expectCode(t, c, DiagInvalidDeclAttribute, 2)
	if fn.Attributes.Byref || fn.Attributes.AutoClosure {
		t.Fatalf("expected both attributes cleared")
	}
}

type stubModule struct {
	name   string
	values map[string][]ImportedValue
}

func (m *stubModule) ModuleName() string { return m.name }

func (m *stubModule) LookupValue(name string) []ImportedValue {
	return m.values[name]
}

func TestInfixInheritedFromImportedModule(t *testing.T) {
	op := binaryOp("<*>", "Int")
	unit := ast.NewUnit("test", ast.UnitLibrary, []ast.Decl{op})
	c := New(NewContext(), unit)
	c.SetImports([]ModuleLookup{
		&stubModule{name: "plain", values: map[string][]ImportedValue{
			"<*>": {{Name: "<*>", Attrs: ast.DeclAttributes{}}},
		}},
		&stubModule{name: "ops", values: map[string][]ImportedValue{
			"<*>": {{Name: "<*>", Attrs: ast.DeclAttributes{Infix: ast.InfixAttr(60, ast.AssocLeft)}}},
		}},
	})
	c.CheckUnit()

	if !op.Attributes.IsInfix() || op.Attributes.Infix.Precedence != 60 {
		t.Fatalf("expected infix inherited from the ops module, got %+v", op.Attributes.Infix)
	}
	expectCode(t, c, DiagBinopsInfixLeft, 0)
}

func TestInfixInheritanceStopsAtFirstModuleHit(t *testing.T) {
	op := binaryOp("<*>", "Int")
	unit := ast.NewUnit("test", ast.UnitLibrary, []ast.Decl{op})
	c := New(NewContext(), unit)
	c.SetImports([]ModuleLookup{
		&stubModule{name: "first", values: map[string][]ImportedValue{
			"<*>": {{Name: "<*>", Attrs: ast.DeclAttributes{Infix: ast.InfixAttr(80, ast.AssocLeft)}}},
		}},
		&stubModule{name: "second", values: map[string][]ImportedValue{
			"<*>": {{Name: "<*>", Attrs: ast.DeclAttributes{Infix: ast.InfixAttr(90, ast.AssocRight)}}},
		}},
	})
	c.CheckUnit()

	if op.Attributes.Infix.Precedence != 80 {
		t.Fatalf("expected the first module's infix data to win, got %+v", op.Attributes.Infix)
	}
}

func TestBinaryOperatorWithoutInfixAnywhereIsDiagnosed(t *testing.T) {
	op := binaryOp("<+>", "Int")
	c := checkDecls(t, ast.UnitLibrary, op)

	expectCode(t, c, DiagBinopsInfixLeft, 1)
	if op.Attributes.IsInfix() {
		t.Fatalf("expected attribute left unset")
	}
}
