package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Fetcher materialises package dependencies into the cache directory so
// their module interfaces can be loaded before checking begins. A fetched
// checkout is only as useful as the module.yml inside it: the interface
// file is what gets located, checksummed, and locked.
type Fetcher struct {
	cacheDir string
}

// NewFetcher builds a fetcher rooted at the given cache directory.
func NewFetcher(cacheDir string) (*Fetcher, error) {
	if cacheDir == "" {
		return nil, errors.New("fetch: cache directory required")
	}
	abs, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("fetch: resolve cache dir %s: %w", cacheDir, err)
	}
	return &Fetcher{cacheDir: abs}, nil
}

// Fetch resolves one dependency to a directory on disk and a lockfile
// entry. Path dependencies are used in place; git dependencies are cloned
// into the cache at the manifest's pin.
func (f *Fetcher) Fetch(name string, spec *DependencySpec) (*LockedPackage, string, error) {
	if spec == nil {
		return nil, "", fmt.Errorf("fetch: dependency %q: empty spec", name)
	}
	if spec.Path != "" {
		return f.fetchPath(name, spec)
	}
	if spec.Git != "" {
		return f.fetchGit(name, spec)
	}
	return nil, "", fmt.Errorf("fetch: dependency %q: must specify git or path", name)
}

func (f *Fetcher) fetchPath(name string, spec *DependencySpec) (*LockedPackage, string, error) {
	abs, err := filepath.Abs(spec.Path)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: dependency %q: resolve %s: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: dependency %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("fetch: dependency %q: expected directory at %s", name, abs)
	}
	locked, err := lockCheckout(name, "path+"+abs, "local", abs)
	if err != nil {
		return nil, "", err
	}
	return locked, abs, nil
}

func (f *Fetcher) fetchGit(name string, spec *DependencySpec) (*LockedPackage, string, error) {
	url := strings.TrimSpace(spec.Git)
	p, err := pinFromSpec(name, spec)
	if err != nil {
		return nil, "", err
	}

	dir := filepath.Join(f.cacheDir, "src", sanitizeSegment(name), sanitizeSegment(p.label))

	// An explicit commit never moves, so a cached checkout whose
	// interface is still intact satisfies the pin without going to the
	// network. Name- and tag-pins must be resolved against the remote.
	if p.rev != "" {
		if locked, err := lockCheckout(name, "git+"+url+"#"+p.rev, p.rev, dir); err == nil {
			return locked, dir, nil
		}
	}

	commit, err := cloneAtPin(url, dir, p)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: dependency %q: %w", name, err)
	}

	locked, err := lockCheckout(name, "git+"+url+"#"+commit, p.version(commit), dir)
	if err != nil {
		return nil, "", err
	}
	return locked, dir, nil
}

// pin is the selector a manifest dependency selects a git source by:
// either an exact commit, or a named tag/branch ref to resolve remotely.
type pin struct {
	label string
	ref   plumbing.ReferenceName
	rev   string
}

func pinFromSpec(name string, spec *DependencySpec) (pin, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return pin{label: rev, rev: rev}, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return pin{label: tag, ref: plumbing.NewTagReferenceName(tag)}, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return pin{label: branch, ref: plumbing.NewBranchReferenceName(branch)}, nil
	}
	return pin{}, fmt.Errorf("fetch: dependency %q: a git source needs rev, tag, or branch", name)
}

// version renders the locked version string for a pin resolved to the
// given commit: exact pins stand alone, named pins carry the commit they
// resolved to.
func (p pin) version(commit string) string {
	if p.rev != "" {
		return p.rev
	}
	short := commit
	if len(short) > 12 {
		short = short[:12]
	}
	return p.label + "+" + short
}

// cloneAtPin materialises the pinned source into dir and reports the
// commit it landed on. The checkout is staged beside dir so an
// interrupted fetch never leaves a half-written package in the cache.
func cloneAtPin(url, dir string, p pin) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", err
	}
	stage := dir + ".fetching"
	if err := os.RemoveAll(stage); err != nil {
		return "", err
	}

	opts := &git.CloneOptions{URL: url}
	if p.ref != "" {
		opts.ReferenceName = p.ref
		opts.SingleBranch = true
	}
	repo, err := git.PlainClone(stage, false, opts)
	if err != nil {
		_ = os.RemoveAll(stage)
		return "", fmt.Errorf("cannot clone %s at %s: %w", url, p.label, err)
	}

	var commit string
	if p.rev != "" {
		hash, err := repo.ResolveRevision(plumbing.Revision(p.rev))
		if err != nil {
			_ = os.RemoveAll(stage)
			return "", fmt.Errorf("%s does not contain revision %s: %w", url, p.rev, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			_ = os.RemoveAll(stage)
			return "", err
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
			_ = os.RemoveAll(stage)
			return "", fmt.Errorf("cannot check out %s from %s: %w", p.rev, url, err)
		}
		commit = hash.String()
	} else {
		head, err := repo.Head()
		if err != nil {
			_ = os.RemoveAll(stage)
			return "", fmt.Errorf("%s has no HEAD at %s: %w", url, p.label, err)
		}
		commit = head.Hash().String()
	}

	if err := os.RemoveAll(dir); err != nil {
		_ = os.RemoveAll(stage)
		return "", err
	}
	if err := os.Rename(stage, dir); err != nil {
		_ = os.RemoveAll(stage)
		return "", err
	}
	return commit, nil
}

// lockCheckout turns a materialised checkout into a lockfile entry. The
// module interface inside it is the piece the checker consumes, so it is
// what gets checksummed; a checkout without a readable module.yml is
// rejected outright.
func lockCheckout(name, source, version, dir string) (*LockedPackage, error) {
	ifacePath := filepath.Join(dir, InterfaceFileName)
	sum, err := fileChecksum(ifacePath)
	if err != nil {
		return nil, fmt.Errorf("fetch: dependency %q has no usable module interface: %w", name, err)
	}
	return &LockedPackage{
		Name:      sanitizeSegment(name),
		Version:   version,
		Source:    source,
		Checksum:  sum,
		Interface: ifacePath,
	}, nil
}

func fileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
