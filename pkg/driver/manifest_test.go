package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"calyx/compiler-go/pkg/ast"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestFileName, `
name: geometry
kind: library
sources:
  - shapes.json
dependencies:
  ops:
    path: ./vendor/ops
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "geometry" {
		t.Fatalf("expected name geometry, got %q", m.Name)
	}
	if m.UnitKind() != ast.UnitLibrary {
		t.Fatalf("expected library unit kind")
	}
	if len(m.Sources) != 1 || m.Sources[0] != "shapes.json" {
		t.Fatalf("unexpected sources: %v", m.Sources)
	}
	if m.Dependencies["ops"] == nil || m.Dependencies["ops"].Path != "./vendor/ops" {
		t.Fatalf("unexpected dependencies: %+v", m.Dependencies)
	}
}

func TestLoadManifestRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestFileName, "name: x\nkind: plugin\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestLoadManifestRejectsUnsourcedDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestFileName, "name: x\ndependencies:\n  dangling:\n    version: '1.0'\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected error for dependency without git or path")
	}
}

func TestScriptManifestDefersBindings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ManifestFileName, "name: main\nkind: script\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UnitKind() != ast.UnitScript {
		t.Fatalf("expected script unit kind")
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lock := NewLockfile("geometry", "calyxc-test")
	lock.Upsert(&LockedPackage{
		Name:      "ops",
		Version:   "v1.2.0@abc123",
		Source:    "git+https://example.com/ops.git@abc123",
		Checksum:  "deadbeef",
		Interface: "/cache/ops/module.yml",
	})
	lock.Upsert(&LockedPackage{Name: "core", Version: "local", Source: "path+/src/core"})

	path := filepath.Join(dir, LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Packages) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(loaded.Packages))
	}
	// normalize sorts entries by name.
	if loaded.Packages[0].Name != "core" || loaded.Packages[1].Name != "ops" {
		t.Fatalf("expected sorted entries, got %v", loaded.Packages)
	}
	ops := loaded.Find("ops")
	if ops == nil || ops.Interface != "/cache/ops/module.yml" {
		t.Fatalf("expected interface path preserved, got %+v", ops)
	}
	if loaded.Find("missing") != nil {
		t.Fatalf("expected nil for unknown package")
	}
}

func TestLockfileInterfacePathsTravelRelative(t *testing.T) {
	dir := t.TempDir()
	ifacePath := filepath.Join(dir, "cache", "ops", InterfaceFileName)
	lock := NewLockfile("geometry", "calyxc-test")
	lock.Upsert(&LockedPackage{Name: "ops", Version: "local", Source: "path+x", Interface: ifacePath})

	path := filepath.Join(dir, LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "cache/ops/"+InterfaceFileName) {
		t.Fatalf("expected a relative interface path on disk, got:\n%s", data)
	}
	if strings.Contains(string(data), dir) {
		t.Fatalf("expected no absolute cache paths on disk, got:\n%s", data)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := loaded.Find("ops").Interface; got != ifacePath {
		t.Fatalf("expected the interface path re-anchored to %q, got %q", ifacePath, got)
	}
}

func TestLoadLockfileRejectsNamelessEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, LockfileName, "root: x\npackages:\n  - name: \"\"\n    version: v1\n    source: s\n")
	if _, err := LoadLockfile(path); err == nil {
		t.Fatalf("expected error for an entry with no package name")
	}
}

func TestModuleInterfaceLookup(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, InterfaceFileName, `
module: ops
values:
  - name: "+"
    infix:
      precedence: 100
      associativity: left
  - name: "++"
    postfix: true
`)
	mi, err := LoadModuleInterface(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mi.ModuleName() != "ops" {
		t.Fatalf("expected module ops, got %q", mi.ModuleName())
	}
	plus := mi.LookupValue("+")
	if len(plus) != 1 || !plus[0].Attrs.IsInfix() || plus[0].Attrs.Infix.Precedence != 100 {
		t.Fatalf("unexpected lookup result: %+v", plus)
	}
	if plus[0].Attrs.Infix.Associativity != ast.AssocLeft {
		t.Fatalf("expected left associativity")
	}
	bump := mi.LookupValue("++")
	if len(bump) != 1 || !bump[0].Attrs.Postfix {
		t.Fatalf("expected postfix entry, got %+v", bump)
	}
	if mi.LookupValue("absent") != nil {
		t.Fatalf("expected no entries for unknown name")
	}
}
