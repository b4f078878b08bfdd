package driver

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"calyx/compiler-go/pkg/ast"
)

// ManifestFileName is the package metadata file at a package root.
const ManifestFileName = "package.yml"

// Manifest models package.yml: the package name, how its translation unit
// is classified, the serialized source fixtures, and its dependencies.
type Manifest struct {
	Path         string
	Name         string
	Kind         string
	Sources      []string
	Dependencies map[string]*DependencySpec
}

// DependencySpec describes where one dependency comes from. At least one of
// Git or Path must be set, and Path is used when both are; Rev/Tag/Branch
// pin a git source.
type DependencySpec struct {
	Version string `yaml:"version,omitempty"`
	Git     string `yaml:"git,omitempty"`
	Rev     string `yaml:"rev,omitempty"`
	Tag     string `yaml:"tag,omitempty"`
	Branch  string `yaml:"branch,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

type manifestDisk struct {
	Name         string                     `yaml:"name"`
	Kind         string                     `yaml:"kind,omitempty"`
	Sources      []string                   `yaml:"sources,omitempty"`
	Dependencies map[string]*DependencySpec `yaml:"dependencies,omitempty"`
}

// LoadManifest parses package.yml from a package root.
func LoadManifest(path string) (*Manifest, error) {
	var raw manifestDisk
	abs, err := readStrictYAML(path, &raw)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Path:         abs,
		Name:         strings.TrimSpace(raw.Name),
		Kind:         strings.TrimSpace(raw.Kind),
		Sources:      raw.Sources,
		Dependencies: raw.Dependencies,
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest: %s: missing package name", abs)
	}
	switch m.Kind {
	case "", "library", "script":
	default:
		return nil, fmt.Errorf("manifest: %s: unknown kind %q", abs, m.Kind)
	}
	for name, spec := range m.Dependencies {
		if spec == nil {
			return nil, fmt.Errorf("manifest: dependency %q: empty spec", name)
		}
		if spec.Git == "" && spec.Path == "" {
			return nil, fmt.Errorf("manifest: dependency %q: must specify git or path", name)
		}
	}
	return m, nil
}

// UnitKind maps the manifest kind to the checker's translation-unit
// classification. Libraries check pattern bindings eagerly; scripts defer
// them to the second pass.
func (m *Manifest) UnitKind() ast.UnitKind {
	if m.Kind == "script" {
		return ast.UnitScript
	}
	return ast.UnitLibrary
}

// Root returns the directory the manifest was loaded from.
func (m *Manifest) Root() string {
	return filepath.Dir(m.Path)
}

// DependencyNames returns the declared dependencies in sorted order so
// fetch and lockfile output stay deterministic.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
