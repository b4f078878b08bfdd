// Package typechecker implements Calyx declaration semantics in Go. It
// resolves every type reference in declaration signatures, assigns each
// generic parameter a fresh archetype subject to its constraints, computes
// the elaborated type of every named entity, verifies claimed protocol
// conformances, and enforces the structural attribute rules. Checking is
// diagnostic-and-poison: semantic problems accumulate as diagnostics while
// the offending slots settle to ErrorType, and every handler returns
// normally.
package typechecker
