package typechecker

import (
	"testing"

	"calyx/compiler-go/pkg/ast"
)

func TestForwardReferenceToNominalResolves(t *testing.T) {
	alias := ast.Alias("Buffer", ast.Ty("Bytes"))
	bytes := ast.StructD("Bytes")
	c := checkDecls(t, ast.UnitLibrary, alias, bytes)

	if len(c.Diagnostics()) != 0 {
		t.Fatalf("expected clean check, got %v", c.Diagnostics())
	}
	if _, ok := c.UnderlyingType(alias).(*StructType); !ok {
		t.Fatalf("expected Buffer to settle to Bytes, got %v", c.UnderlyingType(alias))
	}
}

func TestGenericNominalReferenceIsUnbound(t *testing.T) {
	box := ast.WithGenerics(ast.StructD("Box", ast.VarBinding("x", ast.Ty("T"))), ast.Generics(ast.GenericParam("T")))
	alias := ast.Alias("AnyBox", ast.Ty("Box"))
	c := checkDecls(t, ast.UnitLibrary, box, alias)

	if _, ok := c.UnderlyingType(alias).(*UnboundGenericType); !ok {
		t.Fatalf("expected unbound generic reference, got %v", c.UnderlyingType(alias))
	}
}

func TestAliasChainsSettleThroughForwardReferences(t *testing.T) {
	first := ast.Alias("A", ast.Ty("B"))
	second := ast.Alias("B", ast.Ty("Int"))
	c := checkDecls(t, ast.UnitLibrary, first, second)

	if c.UnderlyingType(first) != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected A to settle to Int, got %v", c.UnderlyingType(first))
	}
}

func TestAliasCycleFailsWithoutLooping(t *testing.T) {
	first := ast.Alias("A", ast.Ty("B"))
	second := ast.Alias("B", ast.Ty("A"))
	c := checkDecls(t, ast.UnitLibrary, first, second)

	if !IsError(c.UnderlyingType(first)) {
		t.Fatalf("expected cycle to poison A, got %v", c.UnderlyingType(first))
	}
	if len(c.DiagnosticsByCode(DiagUnresolvedType)) == 0 {
		t.Fatalf("expected an unresolved-type diagnostic for the cycle")
	}
}

func TestUnresolvedReferencePoisonsEnclosingDecl(t *testing.T) {
	binding := ast.VarBinding("x", ast.Ty("Mystery"))
	c := checkDecls(t, ast.UnitLibrary, binding)

	expectCode(t, c, DiagUnresolvedType, 1)
	if !IsError(c.TypeOf(binding)) {
		t.Fatalf("expected poisoned binding, got %v", c.TypeOf(binding))
	}
}

func TestValidateTypeIsIdempotent(t *testing.T) {
	loc := ast.Ty("Mystery")
	binding := ast.Binding(ast.TypedP(ast.Named("x"), loc), nil)
	unit := ast.NewUnit("test", ast.UnitLibrary, []ast.Decl{binding})
	c := New(NewContext(), unit)

	if !c.validateType(loc, true, binding) {
		t.Fatalf("expected first validation to fail")
	}
	diags := len(c.Diagnostics())
	if !c.validateType(loc, true, binding) {
		t.Fatalf("expected cached validation to keep failing")
	}
	if len(c.Diagnostics()) != diags {
		t.Fatalf("re-validation added diagnostics: %v", c.Diagnostics())
	}
}

func TestResolvedTypesAreInterned(t *testing.T) {
	a := ast.FnTy(ast.Ty("Int"), ast.Ty("Int"))
	b := ast.FnTy(ast.Ty("Int"), ast.Ty("Int"))
	binding := ast.Binding(ast.TupleP(
		ast.FieldP(ast.TypedP(ast.Named("f"), a)),
		ast.FieldP(ast.TypedP(ast.Named("g"), b)),
	), nil)
	c := checkDecls(t, ast.UnitLibrary, binding)

	if c.ResolvedType(a) == nil || c.ResolvedType(a) != c.ResolvedType(b) {
		t.Fatalf("expected structurally equal function types to intern to one instance")
	}
}

func TestCompositionRequiresProtocols(t *testing.T) {
	p := ast.ProtocolD("P")
	q := ast.ProtocolD("Q")
	good := ast.VarBinding("pq", ast.Composition(ast.Ty("P"), ast.Ty("Q")))
	bad := ast.VarBinding("px", ast.Composition(ast.Ty("P"), ast.Ty("Int")))
	c := checkDecls(t, ast.UnitLibrary, p, q, good, bad)

	expectCode(t, c, DiagNonprotocolComposition, 1)
	comp, ok := c.TypeOf(good).(*CompositionType)
	if !ok || len(comp.Protocols) != 2 {
		t.Fatalf("expected a two-protocol composition, got %v", c.TypeOf(good))
	}
	if !IsExistential(comp) {
		t.Fatalf("expected the composition to be existential")
	}
}

func TestMemberTypeLookupWalksEnclosingScopes(t *testing.T) {
	inner := ast.Alias("Element", ast.Ty("Int"))
	method := ast.Method("first", nil, ast.Ty("Element"))
	box := ast.StructD("Box", inner, method)
	c := checkDecls(t, ast.UnitLibrary, box)

	fn, ok := c.TypeOf(method).(*FunctionType)
	if !ok {
		t.Fatalf("expected method type, got %v", c.TypeOf(method))
	}
	bound, ok := fn.Result.(*FunctionType)
	if !ok {
		t.Fatalf("expected bound method type, got %s", fn.Result.Name())
	}
	if bound.Result != Type(c.Context().Primitive(PrimitiveInt)) {
		t.Fatalf("expected Element to resolve through the enclosing struct, got %s", bound.Result.Name())
	}
}
