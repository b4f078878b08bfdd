package ast

import "testing"

func TestDecodeUnitLinksDecls(t *testing.T) {
	unit, err := DecodeUnit([]byte(`{
		"name": "demo",
		"kind": "script",
		"decls": [
			{"decl": "Import", "path": ["core", "ops"]},
			{"decl": "Struct", "name": "Point", "members": [
				{"decl": "PatternBinding", "pattern": {
					"pattern": "Typed",
					"sub": {"pattern": "Named", "name": "x"},
					"annotation": {"type": "Named", "name": "Int"}
				}}
			]},
			{"decl": "PatternBinding",
			 "pattern": {"pattern": "Named", "name": "origin"},
			 "init": {"expr": "Integer", "value": 0}}
		]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.Name != "demo" || unit.Kind != UnitScript {
		t.Fatalf("unexpected unit header: %q %v", unit.Name, unit.Kind)
	}
	if len(unit.Decls) != 3 || len(unit.Imports) != 1 {
		t.Fatalf("expected 3 decls with 1 import, got %d/%d", len(unit.Decls), len(unit.Imports))
	}

	st, ok := unit.Decls[1].(*StructDecl)
	if !ok {
		t.Fatalf("expected struct, got %T", unit.Decls[1])
	}
	if !ModuleScope(st) || st.Unit() != unit {
		t.Fatalf("expected struct linked at module scope")
	}
	if st.ElementConstructor() == nil {
		t.Fatalf("expected implicit element constructor appended")
	}
	binding, ok := st.MemberList[0].(*PatternBindingDecl)
	if !ok {
		t.Fatalf("expected member binding, got %T", st.MemberList[0])
	}
	var bound *VarDecl
	EachVar(binding.Pattern, func(v *VarDecl) { bound = v })
	if bound == nil || bound.VarName != "x" {
		t.Fatalf("expected bound var x")
	}
	if bound.Parent() != Decl(st) {
		t.Fatalf("expected member var parented to the struct")
	}

	pbd, ok := unit.Decls[2].(*PatternBindingDecl)
	if !ok || pbd.Init == nil {
		t.Fatalf("expected top-level binding with initializer")
	}
	if _, ok := pbd.Init.(*IntegerLiteral); !ok {
		t.Fatalf("expected integer initializer, got %T", pbd.Init)
	}
}

func TestDecodeUnitGenericsAndAttrs(t *testing.T) {
	unit, err := DecodeUnit([]byte(`{
		"name": "ops",
		"decls": [
			{"decl": "Func", "name": "+",
			 "attrs": {"infix": {"precedence": 100, "associativity": "left"}},
			 "params": {"pattern": "Tuple", "fields": [
				{"pattern": {"pattern": "Typed", "sub": {"pattern": "Named", "name": "a"}, "annotation": {"type": "Named", "name": "Int"}}},
				{"pattern": {"pattern": "Typed", "sub": {"pattern": "Named", "name": "b"}, "annotation": {"type": "Named", "name": "Int"}}}
			 ]},
			 "result": {"type": "Named", "name": "Int"}},
			{"decl": "Struct", "name": "Box",
			 "generics": {
				"params": [{"name": "T", "inherited": [{"type": "Named", "name": "P"}]}],
				"requirements": [
					{"kind": "conformance", "subject": {"type": "Named", "name": "T"}, "constraint": {"type": "Named", "name": "P"}},
					{"kind": "sameType", "first": {"type": "Named", "name": "T"}, "second": {"type": "Named", "name": "U"}}
				]
			 }}
		]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn, ok := unit.Decls[0].(*FuncDecl)
	if !ok {
		t.Fatalf("expected func, got %T", unit.Decls[0])
	}
	if !fn.Attributes.IsInfix() || fn.Attributes.Infix.Precedence != 100 || fn.Attributes.Infix.Associativity != AssocLeft {
		t.Fatalf("unexpected infix data: %+v", fn.Attributes.Infix)
	}

	box := unit.Decls[1].(*StructDecl)
	if box.Generics == nil || len(box.Generics.Params) != 1 {
		t.Fatalf("expected one generic parameter")
	}
	if box.Generics.Params[0].AliasName != "T" || len(box.Generics.Params[0].Inherited) != 1 {
		t.Fatalf("unexpected generic parameter: %+v", box.Generics.Params[0])
	}
	if len(box.Generics.Requirements) != 2 {
		t.Fatalf("expected two requirements")
	}
	if box.Generics.Requirements[0].Kind != RequirementConformance {
		t.Fatalf("expected conformance requirement first")
	}
	if box.Generics.Requirements[1].Kind != RequirementSameType {
		t.Fatalf("expected same-type requirement second")
	}
}

func TestDecodeUnitRejectsUnknownKinds(t *testing.T) {
	if _, err := DecodeUnit([]byte(`{"name": "x", "kind": "plugin"}`)); err == nil {
		t.Fatalf("expected unknown unit kind error")
	}
	if _, err := DecodeUnit([]byte(`{"name": "x", "decls": [{"decl": "Gadget"}]}`)); err == nil {
		t.Fatalf("expected unknown decl kind error")
	}
}
