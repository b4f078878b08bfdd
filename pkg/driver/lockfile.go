package driver

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LockfileName is the resolved-dependency file at a package root.
const LockfileName = "package.lock"

// Lockfile records which checkout satisfied each manifest dependency and
// where its module interface lives. Interface paths are stored relative to
// the lockfile so a committed lock stays valid when the cache moves.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Packages  []*LockedPackage
}

// LockedPackage captures a single resolved dependency entry. Interface
// names the module interface file the checker will read; Checksum covers
// that file, not the whole checkout.
type LockedPackage struct {
	Name      string
	Version   string
	Source    string
	Checksum  string
	Interface string
}

type lockfileDisk struct {
	Root      string              `yaml:"root"`
	Generated string              `yaml:"generated,omitempty"`
	Tool      string              `yaml:"tool,omitempty"`
	Packages  []lockedPackageDisk `yaml:"packages"`
}

type lockedPackageDisk struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Source    string `yaml:"source"`
	Checksum  string `yaml:"checksum,omitempty"`
	Interface string `yaml:"interface,omitempty"`
}

// NewLockfile seeds an empty lock for the given package root.
func NewLockfile(root, tool string) *Lockfile {
	lock := &Lockfile{
		Root:      root,
		Tool:      tool,
		Generated: time.Now().UTC().Format(time.RFC3339),
	}
	lock.normalize()
	return lock
}

// LoadLockfile reads package.lock, validating each entry and re-anchoring
// relative interface paths against the lockfile's own directory.
func LoadLockfile(path string) (*Lockfile, error) {
	var raw lockfileDisk
	abs, err := readStrictYAML(path, &raw)
	if err != nil {
		return nil, err
	}

	lock := &Lockfile{
		Path:      abs,
		Root:      raw.Root,
		Generated: raw.Generated,
		Tool:      raw.Tool,
	}
	base := filepath.Dir(abs)
	for _, p := range raw.Packages {
		if p.Name == "" {
			return nil, fmt.Errorf("lockfile %s: entry with no package name", abs)
		}
		iface := p.Interface
		if iface != "" && !filepath.IsAbs(iface) {
			iface = filepath.Clean(filepath.Join(base, iface))
		}
		lock.Packages = append(lock.Packages, &LockedPackage{
			Name:      p.Name,
			Version:   p.Version,
			Source:    p.Source,
			Checksum:  p.Checksum,
			Interface: iface,
		})
	}
	lock.normalize()
	return lock, nil
}

// WriteLockfile renders the lock back to disk. Absolute interface paths
// are made relative to the destination on the way out, so the written file
// is position-independent.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return errors.New("lockfile: nothing to write")
	}
	if path == "" {
		path = lock.Path
	}
	if path == "" {
		return errors.New("lockfile: no destination path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve destination %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	disk := lockfileDisk{
		Root:      lock.Root,
		Generated: lock.Generated,
		Tool:      lock.Tool,
	}
	base := filepath.Dir(abs)
	for _, p := range lock.Packages {
		iface := p.Interface
		if filepath.IsAbs(iface) {
			if rel, err := filepath.Rel(base, iface); err == nil {
				iface = rel
			}
		}
		disk.Packages = append(disk.Packages, lockedPackageDisk{
			Name:      p.Name,
			Version:   p.Version,
			Source:    p.Source,
			Checksum:  p.Checksum,
			Interface: iface,
		})
	}
	return writeYAML(abs, disk)
}

// Upsert replaces or appends the entry for a package.
func (l *Lockfile) Upsert(pkg *LockedPackage) {
	if pkg == nil {
		return
	}
	for i, existing := range l.Packages {
		if existing.Name == pkg.Name {
			l.Packages[i] = pkg
			return
		}
	}
	l.Packages = append(l.Packages, pkg)
}

// Find returns the locked entry for a package name, or nil.
func (l *Lockfile) Find(name string) *LockedPackage {
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg
		}
	}
	return nil
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.Slice(l.Packages, func(i, j int) bool {
		return l.Packages[i].Name < l.Packages[j].Name
	})
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "package"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
