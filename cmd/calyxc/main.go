package main

import (
	"fmt"
	"os"
	"path/filepath"

	"calyx/compiler-go/pkg/driver"
)

const cliToolVersion = "calyxc 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "check":
		return runCheck(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "calyxc: unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

func runCheck(args []string) int {
	dir, opts, ok := parsePackageArgs(args)
	if !ok {
		return 1
	}

	result, err := driver.CheckPackage(dir, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calyxc: %v\n", err)
		return 1
	}
	for _, diag := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s:%s\n", result.Package, diag)
	}
	if !result.Clean() {
		fmt.Fprintf(os.Stderr, "calyxc: %d problem(s) in package %s\n",
			len(result.Diagnostics), result.Package)
		return 1
	}
	return 0
}

func runDeps(args []string) int {
	dir, opts, ok := parsePackageArgs(args)
	if !ok {
		return 1
	}

	pkg, err := driver.LoadPackage(dir, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calyxc: %v\n", err)
		return 1
	}
	if pkg.Lockfile == nil {
		fmt.Fprintln(os.Stdout, "calyxc: no dependencies")
		return 0
	}
	lockPath := filepath.Join(dir, driver.LockfileName)
	if err := driver.WriteLockfile(pkg.Lockfile, lockPath); err != nil {
		fmt.Fprintf(os.Stderr, "calyxc: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "calyxc: wrote %s (%d package(s))\n", lockPath, len(pkg.Lockfile.Packages))
	return 0
}

func parsePackageArgs(args []string) (string, driver.LoadOptions, bool) {
	dir := "."
	opts := driver.LoadOptions{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--cache":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "calyxc: --cache requires a directory")
				return "", opts, false
			}
			i++
			opts.CacheDir = args[i]
		case "--no-deps":
			opts.SkipDependencies = true
		default:
			dir = args[i]
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calyxc: resolve %s: %v\n", dir, err)
		return "", opts, false
	}
	return abs, opts, true
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: calyxc <command> [options] [package-dir]

commands:
  check    type-check the package's declarations
  deps     fetch dependencies and write package.lock
  version  print the tool version

options:
  --cache <dir>   dependency cache directory (default: <package>/.calyx)
  --no-deps       skip dependency fetching and module interfaces`)
}
