package driver

import (
	"testing"

	"calyx/compiler-go/pkg/typechecker"
)

const shapesFixture = `{
  "name": "geometry",
  "kind": "library",
  "decls": [
    {"decl": "Protocol", "name": "Area", "members": [
      {"decl": "Method", "name": "area", "result": {"type": "Named", "name": "Float"}}
    ]},
    {"decl": "Struct", "name": "Circle",
     "inherited": [{"type": "Named", "name": "Area"}],
     "members": [
       {"decl": "PatternBinding", "pattern": {
         "pattern": "Typed",
         "sub": {"pattern": "Named", "name": "radius"},
         "annotation": {"type": "Named", "name": "Float"}
       }},
       {"decl": "Method", "name": "area", "result": {"type": "Named", "name": "Float"}}
     ]}
  ]
}`

const brokenFixture = `{
  "name": "broken",
  "decls": [
    {"decl": "Struct", "name": "Hole", "members": [
      {"decl": "PatternBinding", "pattern": {
        "pattern": "Typed",
        "sub": {"pattern": "Named", "name": "x"},
        "annotation": {"type": "Named", "name": "Missing"}
      }}
    ]}
  ]
}`

func TestLoadPackageBuildsLinkedUnit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shapes.json", shapesFixture)
	writeFile(t, dir, ManifestFileName, "name: geometry\nkind: library\nsources:\n  - shapes.json\n")

	pkg, err := LoadPackage(dir, LoadOptions{SkipDependencies: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Unit.Name != "geometry" {
		t.Fatalf("expected unit named geometry, got %q", pkg.Unit.Name)
	}
	if len(pkg.Unit.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(pkg.Unit.Decls))
	}
	for _, d := range pkg.Unit.Decls {
		if d.Unit() != pkg.Unit {
			t.Fatalf("expected decls linked to the unit")
		}
	}
}

func TestCheckPackageIsClean(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shapes.json", shapesFixture)
	writeFile(t, dir, ManifestFileName, "name: geometry\nkind: library\nsources:\n  - shapes.json\n")

	result, err := CheckPackage(dir, LoadOptions{SkipDependencies: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Clean() {
		t.Fatalf("expected clean check, got %v", result.Diagnostics)
	}
}

func TestCheckPackageSurfacesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", brokenFixture)
	writeFile(t, dir, ManifestFileName, "name: broken\nsources:\n  - broken.json\n")

	result, err := CheckPackage(dir, LoadOptions{SkipDependencies: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Clean() {
		t.Fatalf("expected diagnostics for the unresolved field type")
	}
	found := false
	for _, d := range result.Diagnostics {
		if d.Code == typechecker.DiagUnresolvedType {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unresolved-type diagnostic, got %v", result.Diagnostics)
	}
}

func TestPathDependencyProvidesOperatorInterface(t *testing.T) {
	depDir := t.TempDir()
	writeFile(t, depDir, InterfaceFileName, `
module: ops
values:
  - name: "<*>"
    infix:
      precedence: 60
      associativity: left
`)

	dir := t.TempDir()
	writeFile(t, dir, "main.json", `{
  "name": "main",
  "decls": [
    {"decl": "Func", "name": "<*>",
     "params": {"pattern": "Tuple", "fields": [
       {"pattern": {"pattern": "Typed", "sub": {"pattern": "Named", "name": "a"}, "annotation": {"type": "Named", "name": "Int"}}},
       {"pattern": {"pattern": "Typed", "sub": {"pattern": "Named", "name": "b"}, "annotation": {"type": "Named", "name": "Int"}}}
     ]},
     "result": {"type": "Named", "name": "Int"}}
  ]
}`)
	writeFile(t, dir, ManifestFileName,
		"name: main\nsources:\n  - main.json\ndependencies:\n  ops:\n    path: "+depDir+"\n")

	pkg, err := LoadPackage(dir, LoadOptions{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkg.Interfaces) != 1 {
		t.Fatalf("expected one module interface, got %d", len(pkg.Interfaces))
	}
	if pkg.Lockfile == nil || pkg.Lockfile.Find("ops") == nil {
		t.Fatalf("expected a locked entry for ops")
	}

	result, err := CheckLoaded(pkg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Clean() {
		t.Fatalf("expected operator to inherit infix from the import, got %v", result.Diagnostics)
	}
}
