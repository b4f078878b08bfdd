package driver

import (
	"fmt"

	"calyx/compiler-go/pkg/typechecker"
)

// CheckResult carries the outcome of checking one package.
type CheckResult struct {
	Package     string
	Diagnostics []typechecker.Diagnostic
}

// Clean reports whether checking produced no diagnostics.
func (r CheckResult) Clean() bool { return len(r.Diagnostics) == 0 }

// CheckPackage loads a package directory and runs the two-pass declaration
// schedule over its translation unit: every module-scope declaration is
// visited once with the first-pass configuration, then once with the
// second. Top-level code declarations are routed around the declaration
// checker.
func CheckPackage(dir string, opts LoadOptions) (CheckResult, error) {
	pkg, err := LoadPackage(dir, opts)
	if err != nil {
		return CheckResult{}, err
	}
	return CheckLoaded(pkg)
}

// CheckLoaded runs the declaration checker over an already-loaded package.
func CheckLoaded(pkg *Package) (CheckResult, error) {
	if pkg == nil || pkg.Unit == nil {
		return CheckResult{}, fmt.Errorf("driver: nil package")
	}
	checker := typechecker.New(typechecker.NewContext(), pkg.Unit)
	checker.SetImports(pkg.Interfaces)
	diags := checker.CheckUnit()
	return CheckResult{Package: pkg.Unit.Name, Diagnostics: diags}, nil
}
