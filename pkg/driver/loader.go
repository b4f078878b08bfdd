package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"calyx/compiler-go/pkg/ast"
	"calyx/compiler-go/pkg/typechecker"
)

// Package aggregates everything checking one package requires: the
// manifest, the linked translation unit, and the interfaces of its
// imported modules in dependency-name order.
type Package struct {
	Manifest   *Manifest
	Unit       *ast.Unit
	Interfaces []typechecker.ModuleLookup
	Lockfile   *Lockfile
}

// LoadOptions configures package loading.
type LoadOptions struct {
	// CacheDir is where git dependencies are materialised. Defaults to
	// .calyx under the package root.
	CacheDir string
	// SkipDependencies loads the unit without fetching or reading module
	// interfaces.
	SkipDependencies bool
}

// LoadPackage reads a package directory: package.yml, the serialized
// source fixtures it names, and the module interfaces of its dependencies.
func LoadPackage(dir string, opts LoadOptions) (*Package, error) {
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, err
	}

	unit, err := loadUnit(manifest)
	if err != nil {
		return nil, err
	}

	pkg := &Package{Manifest: manifest, Unit: unit}
	if opts.SkipDependencies || len(manifest.Dependencies) == 0 {
		return pkg, nil
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(manifest.Root(), ".calyx")
	}
	fetcher, err := NewFetcher(cacheDir)
	if err != nil {
		return nil, err
	}

	lock := NewLockfile(manifest.Name, "calyxc")
	for _, name := range manifest.DependencyNames() {
		locked, _, err := fetcher.Fetch(name, manifest.Dependencies[name])
		if err != nil {
			return nil, fmt.Errorf("loader: dependency %q: %w", name, err)
		}
		lock.Upsert(locked)
		iface, err := LoadModuleInterface(locked.Interface)
		if err != nil {
			return nil, fmt.Errorf("loader: dependency %q: %w", name, err)
		}
		pkg.Interfaces = append(pkg.Interfaces, iface)
	}
	pkg.Lockfile = lock
	return pkg, nil
}

// loadUnit decodes every source fixture the manifest names and links the
// collected declarations into one translation unit.
func loadUnit(manifest *Manifest) (*ast.Unit, error) {
	var decls []ast.Decl
	for _, source := range manifest.Sources {
		path := source
		if !filepath.IsAbs(path) {
			path = filepath.Join(manifest.Root(), source)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", source, err)
		}
		unit, err := ast.DecodeUnit(data)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", source, err)
		}
		decls = append(decls, unit.Decls...)
	}
	return ast.NewUnit(manifest.Name, manifest.UnitKind(), decls), nil
}
