package typechecker

import (
	"fmt"
	"strings"

	"calyx/compiler-go/pkg/ast"
)

// Type is a semantic Calyx type as understood by the declaration checker.
// Types are interned by the Context and compared by pointer identity;
// archetypes are freshly allocated per generic-parameter occurrence.
type Type interface {
	Name() string
}

// ErrorType poisons a declaration whose type could not be computed. A single
// instance lives in the Context.
type ErrorType struct{}

func (*ErrorType) Name() string { return "<error>" }

// PrimitiveKind identifies a builtin scalar type.
type PrimitiveKind string

const (
	PrimitiveInt    PrimitiveKind = "Int"
	PrimitiveFloat  PrimitiveKind = "Float"
	PrimitiveBool   PrimitiveKind = "Bool"
	PrimitiveString PrimitiveKind = "String"
	PrimitiveChar   PrimitiveKind = "Char"
)

// PrimitiveType is a builtin scalar. One instance per kind lives in the
// Context.
type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p *PrimitiveType) Name() string { return string(p.Kind) }

// TupleElem is one labeled element of a tuple type. HasDefault marks
// elements whose source declaration carries a default initializer.
type TupleElem struct {
	Label      string
	Type       Type
	HasDefault bool
}

// TupleType is an ordered sequence of labeled element types.
type TupleType struct {
	Elems []TupleElem
}

func (t *TupleType) Name() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		if e.Label != "" {
			parts[i] = e.Label + " : " + e.Type.Name()
		} else {
			parts[i] = e.Type.Name()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FunctionType is `Input -> Result`.
type FunctionType struct {
	Input  Type
	Result Type
}

func (t *FunctionType) Name() string {
	return t.Input.Name() + " -> " + t.Result.Name()
}

// PolymorphicFunctionType is a function type parameterised by a generic
// parameter list.
type PolymorphicFunctionType struct {
	Input  Type
	Result Type
	Params *ast.GenericParamList
}

func (t *PolymorphicFunctionType) Name() string {
	names := make([]string, len(t.Params.Params))
	for i, p := range t.Params.Params {
		names[i] = p.AliasName
	}
	return "<" + strings.Join(names, ", ") + "> " + t.Input.Name() + " -> " + t.Result.Name()
}

// LValueType is a mutable reference layer around an object type.
type LValueType struct {
	Object Type
}

func (t *LValueType) Name() string { return "@byref " + t.Object.Name() }

// OneOfType is the declared type of a tagged union.
type OneOfType struct {
	Decl *ast.OneOfDecl
}

func (t *OneOfType) Name() string { return t.Decl.TypeName }

// StructType is the declared type of a struct.
type StructType struct {
	Decl *ast.StructDecl
}

func (t *StructType) Name() string { return t.Decl.TypeName }

// ClassType is the declared type of a class.
type ClassType struct {
	Decl *ast.ClassDecl
}

func (t *ClassType) Name() string { return t.Decl.TypeName }

// ProtocolType is the existential type of a single protocol.
type ProtocolType struct {
	Decl *ast.ProtocolDecl
}

func (t *ProtocolType) Name() string { return t.Decl.TypeName }

// CompositionType is a `protocol<P, Q>` existential composition.
type CompositionType struct {
	Protocols []Type
}

func (t *CompositionType) Name() string {
	parts := make([]string, len(t.Protocols))
	for i, p := range t.Protocols {
		parts[i] = p.Name()
	}
	return "protocol<" + strings.Join(parts, ", ") + ">"
}

// UnboundGenericType is a generic nominal referenced without type
// arguments, awaiting substitution.
type UnboundGenericType struct {
	Decl ast.NominalDecl
}

func (t *UnboundGenericType) Name() string { return t.Decl.Name() }

// ArchetypeType is an abstract type standing for a generic parameter or
// protocol associated type, carrying the protocols it is known to conform
// to. Index is the parameter's position in its list, or -1 when unset.
type ArchetypeType struct {
	DisplayName string
	ConformsTo  []Type
	Index       int
}

func (t *ArchetypeType) Name() string { return t.DisplayName }

// IsError reports whether the type is the poison sentinel.
func IsError(t Type) bool {
	_, ok := t.(*ErrorType)
	return ok
}

// IsExistential reports whether the type is a protocol or a protocol
// composition.
func IsExistential(t Type) bool {
	switch t.(type) {
	case *ProtocolType, *CompositionType:
		return true
	}
	return false
}

// ExistentialProtocols flattens an existential type into the protocol
// declarations it mentions. Non-existential types yield nil.
func ExistentialProtocols(t Type) []*ast.ProtocolDecl {
	switch ty := t.(type) {
	case *ProtocolType:
		return []*ast.ProtocolDecl{ty.Decl}
	case *CompositionType:
		var protos []*ast.ProtocolDecl
		for _, p := range ty.Protocols {
			protos = append(protos, ExistentialProtocols(p)...)
		}
		return protos
	}
	return nil
}

// IsMaterializable reports whether the type has a concrete in-memory
// representation: no reference layers, directly or inside a tuple.
func IsMaterializable(t Type) bool {
	switch ty := t.(type) {
	case *LValueType:
		return false
	case *TupleType:
		for _, e := range ty.Elems {
			if !IsMaterializable(e.Type) {
				return false
			}
		}
	}
	return true
}

// AsFunction unwraps a plain or polymorphic function type.
func AsFunction(t Type) (input, result Type, ok bool) {
	switch fn := t.(type) {
	case *FunctionType:
		return fn.Input, fn.Result, true
	case *PolymorphicFunctionType:
		return fn.Input, fn.Result, true
	}
	return nil, nil, false
}

// Context owns the interned types shared by every checker visit. Entries
// are only ever added, never removed or rewritten.
type Context struct {
	errType    *ErrorType
	primitives map[PrimitiveKind]*PrimitiveType
	emptyTuple *TupleType
	tuples     map[string]*TupleType
	funcs      map[[2]Type]*FunctionType
	lvalues    map[Type]*LValueType
	nominals   map[ast.Decl]Type
	unbound    map[ast.Decl]*UnboundGenericType
	archetypes []*ArchetypeType
}

// NewContext builds an empty type context with the builtin scalars seeded.
func NewContext() *Context {
	ctx := &Context{
		errType:    &ErrorType{},
		primitives: make(map[PrimitiveKind]*PrimitiveType),
		tuples:     make(map[string]*TupleType),
		funcs:      make(map[[2]Type]*FunctionType),
		lvalues:    make(map[Type]*LValueType),
		nominals:   make(map[ast.Decl]Type),
		unbound:    make(map[ast.Decl]*UnboundGenericType),
	}
	for _, kind := range []PrimitiveKind{PrimitiveInt, PrimitiveFloat, PrimitiveBool, PrimitiveString, PrimitiveChar} {
		ctx.primitives[kind] = &PrimitiveType{Kind: kind}
	}
	ctx.emptyTuple = &TupleType{}
	ctx.tuples[""] = ctx.emptyTuple
	return ctx
}

// Error returns the poison sentinel type.
func (ctx *Context) Error() Type { return ctx.errType }

// Primitive returns the builtin type of the given kind.
func (ctx *Context) Primitive(kind PrimitiveKind) *PrimitiveType {
	return ctx.primitives[kind]
}

// PrimitiveNamed resolves a builtin scalar by its source name, if any.
func (ctx *Context) PrimitiveNamed(name string) (*PrimitiveType, bool) {
	p, ok := ctx.primitives[PrimitiveKind(name)]
	return p, ok
}

// EmptyTuple returns the interned `()` type.
func (ctx *Context) EmptyTuple() *TupleType { return ctx.emptyTuple }

// Tuple interns a tuple type for the given elements.
func (ctx *Context) Tuple(elems []TupleElem) *TupleType {
	key := tupleKey(elems)
	if t, ok := ctx.tuples[key]; ok {
		return t
	}
	t := &TupleType{Elems: append([]TupleElem(nil), elems...)}
	ctx.tuples[key] = t
	return t
}

// Function interns a function type.
func (ctx *Context) Function(input, result Type) *FunctionType {
	key := [2]Type{input, result}
	if t, ok := ctx.funcs[key]; ok {
		return t
	}
	t := &FunctionType{Input: input, Result: result}
	ctx.funcs[key] = t
	return t
}

// Polymorphic builds a polymorphic function type. These are not interned;
// every generic declaration owns exactly one.
func (ctx *Context) Polymorphic(input, result Type, params *ast.GenericParamList) *PolymorphicFunctionType {
	return &PolymorphicFunctionType{Input: input, Result: result, Params: params}
}

// LValue interns the reference layer around an object type.
func (ctx *Context) LValue(object Type) *LValueType {
	if t, ok := ctx.lvalues[object]; ok {
		return t
	}
	t := &LValueType{Object: object}
	ctx.lvalues[object] = t
	return t
}

// NominalType interns the declared type of a nominal declaration.
func (ctx *Context) NominalType(d ast.Decl) Type {
	if t, ok := ctx.nominals[d]; ok {
		return t
	}
	var t Type
	switch decl := d.(type) {
	case *ast.OneOfDecl:
		t = &OneOfType{Decl: decl}
	case *ast.StructDecl:
		t = &StructType{Decl: decl}
	case *ast.ClassDecl:
		t = &ClassType{Decl: decl}
	case *ast.ProtocolDecl:
		t = &ProtocolType{Decl: decl}
	default:
		return ctx.errType
	}
	ctx.nominals[d] = t
	return t
}

// UnboundGeneric interns the unbound reference type of a generic nominal.
func (ctx *Context) UnboundGeneric(d ast.NominalDecl) *UnboundGenericType {
	if t, ok := ctx.unbound[d]; ok {
		return t
	}
	t := &UnboundGenericType{Decl: d}
	ctx.unbound[d] = t
	return t
}

// NewArchetype allocates a fresh archetype in the context's arena.
// Archetypes outlive every declaration that references them.
func (ctx *Context) NewArchetype(name string, conformsTo []Type, index int) *ArchetypeType {
	arch := &ArchetypeType{DisplayName: name, ConformsTo: conformsTo, Index: index}
	ctx.archetypes = append(ctx.archetypes, arch)
	return arch
}

// tupleKey renders an interning key for a tuple shape. Element types are
// keyed by identity, so consistently interned inputs yield stable keys.
func tupleKey(elems []TupleElem) string {
	if len(elems) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range elems {
		fmt.Fprintf(&b, "%s;%p;%t|", e.Label, e.Type, e.HasDefault)
	}
	return b.String()
}
