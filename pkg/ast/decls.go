package ast

// UnitKind classifies a translation unit. Library units check pattern
// bindings eagerly; script units defer module-scope bindings to the second
// pass so earlier top-level code can settle first.
type UnitKind int

const (
	UnitLibrary UnitKind = iota
	UnitScript
)

// Unit is a single translation unit: the module-scope declarations of one
// Calyx package plus its imports.
type Unit struct {
	Name    string
	Kind    UnitKind
	Imports []*ImportDecl
	Decls   []Decl
}

// NewUnit links the given module-scope declarations into a unit. Every decl
// reachable from the list gets its parent and unit pointers wired.
func NewUnit(name string, kind UnitKind, decls []Decl) *Unit {
	u := &Unit{Name: name, Kind: kind}
	for _, d := range decls {
		if d == nil {
			continue
		}
		if imp, ok := d.(*ImportDecl); ok {
			u.Imports = append(u.Imports, imp)
		}
		u.Decls = append(u.Decls, d)
		link(d, nil, u)
	}
	return u
}

// Decl is a node in the declaration tree.
type Decl interface {
	Node
	// Parent is the enclosing declaration, or nil at module scope.
	Parent() Decl
	// Unit is the translation unit the declaration belongs to.
	Unit() *Unit
	declNode()
}

// declBase carries the context links shared by every declaration.
type declBase struct {
	spanned
	parent Decl
	unit   *Unit
}

func (d *declBase) Parent() Decl { return d.parent }
func (d *declBase) Unit() *Unit  { return d.unit }
func (d *declBase) declNode()    {}

// ValueDecl is a declaration that produces a value: vars, funcs,
// constructors, destructors, subscripts, and oneof elements.
type ValueDecl interface {
	Decl
	Name() string
	Attrs() *DeclAttributes
}

// NominalDecl is a declaration that introduces a nominal type.
type NominalDecl interface {
	Decl
	Name() string
	InheritedTypes() []TypeExpr
	GenericParams() *GenericParamList
	Members() []Decl
}

// ImportDecl names an imported module. The checker itself has nothing to do
// with it; the driver resolves the path before checking begins.
type ImportDecl struct {
	declBase
	Path []string
}

// VarDecl is one named variable. Its type is computed through the
// PatternBindingDecl that binds it, never by visiting the var directly.
type VarDecl struct {
	declBase
	VarName string
	// Property marks computed properties, which do not contribute storage
	// and are excluded from the implied elementwise constructor.
	Property   bool
	Attributes DeclAttributes
}

func (d *VarDecl) Name() string           { return d.VarName }
func (d *VarDecl) Attrs() *DeclAttributes { return &d.Attributes }

// PatternBindingDecl binds the variables of one pattern to an optional
// initializer expression.
type PatternBindingDecl struct {
	declBase
	Pattern Pattern
	Init    Expr
}

// FuncDecl is a function declaration. For instance methods the first
// parameter level is the implicit `this` pattern; the declared parameters
// occupy the remaining levels.
type FuncDecl struct {
	declBase
	FuncName   string
	Attributes DeclAttributes
	Generics   *GenericParamList
	// ParamLevels holds one pattern per curry level, outermost first.
	ParamLevels []Pattern
	ResultType  TypeExpr
	// Static marks type-level members, which take no implicit `this`.
	Static bool
	Body   *FuncBody
}

func (d *FuncDecl) Name() string           { return d.FuncName }
func (d *FuncDecl) Attrs() *DeclAttributes { return &d.Attributes }

// FuncBody is the opaque body payload handed to the expression checker.
// Declaration checking only elaborates the signature around it.
type FuncBody struct {
	spanned
	Stmts []Expr
}

// ConstructorDecl is a `constructor(...)` member of a nominal type.
type ConstructorDecl struct {
	declBase
	Attributes   DeclAttributes
	Generics     *GenericParamList
	Args         Pattern
	ImplicitThis *VarDecl
}

func (d *ConstructorDecl) Name() string           { return "constructor" }
func (d *ConstructorDecl) Attrs() *DeclAttributes { return &d.Attributes }

// DestructorDecl is a `destructor` member of a class.
type DestructorDecl struct {
	declBase
	Attributes   DeclAttributes
	ImplicitThis *VarDecl
}

func (d *DestructorDecl) Name() string           { return "destructor" }
func (d *DestructorDecl) Attrs() *DeclAttributes { return &d.Attributes }

// SubscriptDecl declares an indexed accessor on a nominal type.
type SubscriptDecl struct {
	declBase
	Attributes  DeclAttributes
	Indices     Pattern
	ElementType TypeExpr
}

func (d *SubscriptDecl) Name() string           { return "subscript" }
func (d *SubscriptDecl) Attrs() *DeclAttributes { return &d.Attributes }

// TypeAliasDecl declares a named alias for another type. Inside a protocol
// it declares an associated type; inside a generic parameter list it is the
// parameter itself, and its underlying type becomes the parameter's
// archetype.
type TypeAliasDecl struct {
	declBase
	AliasName  string
	Underlying TypeExpr
	Inherited  []TypeExpr
}

func (d *TypeAliasDecl) Name() string { return d.AliasName }

// OneOfElementDecl is one case of a oneof declaration, optionally carrying a
// payload. Structs reuse the node for their implied elementwise constructor,
// marked Implicit.
type OneOfElementDecl struct {
	declBase
	ElementName string
	Attributes  DeclAttributes
	ArgType     TypeExpr
	// Implicit marks the synthesized elementwise constructor of a struct.
	Implicit bool
}

func (d *OneOfElementDecl) Name() string           { return d.ElementName }
func (d *OneOfElementDecl) Attrs() *DeclAttributes { return &d.Attributes }

// OneOfDecl declares a tagged union.
type OneOfDecl struct {
	declBase
	TypeName  string
	Inherited []TypeExpr
	Generics  *GenericParamList
	MemberList []Decl
}

func (d *OneOfDecl) Name() string                    { return d.TypeName }
func (d *OneOfDecl) InheritedTypes() []TypeExpr      { return d.Inherited }
func (d *OneOfDecl) GenericParams() *GenericParamList { return d.Generics }
func (d *OneOfDecl) Members() []Decl                 { return d.MemberList }

// StructDecl declares a struct. The parser appends an implicit
// OneOfElementDecl as the final member; first-pass checking assigns it the
// elementwise constructor type.
type StructDecl struct {
	declBase
	TypeName  string
	Inherited []TypeExpr
	Generics  *GenericParamList
	MemberList []Decl
}

func (d *StructDecl) Name() string                    { return d.TypeName }
func (d *StructDecl) InheritedTypes() []TypeExpr      { return d.Inherited }
func (d *StructDecl) GenericParams() *GenericParamList { return d.Generics }
func (d *StructDecl) Members() []Decl                 { return d.MemberList }

// ElementConstructor returns the implicit elementwise constructor member, or
// nil if the tree was built without one.
func (d *StructDecl) ElementConstructor() *OneOfElementDecl {
	for i := len(d.MemberList) - 1; i >= 0; i-- {
		if elem, ok := d.MemberList[i].(*OneOfElementDecl); ok && elem.Implicit {
			return elem
		}
	}
	return nil
}

// ClassDecl declares a class.
type ClassDecl struct {
	declBase
	TypeName  string
	Inherited []TypeExpr
	Generics  *GenericParamList
	MemberList []Decl
}

func (d *ClassDecl) Name() string                    { return d.TypeName }
func (d *ClassDecl) InheritedTypes() []TypeExpr      { return d.Inherited }
func (d *ClassDecl) GenericParams() *GenericParamList { return d.Generics }
func (d *ClassDecl) Members() []Decl                 { return d.MemberList }

// ProtocolDecl declares a protocol. TypeAliasDecl members are its associated
// types.
type ProtocolDecl struct {
	declBase
	TypeName  string
	Inherited []TypeExpr
	MemberList []Decl
}

func (d *ProtocolDecl) Name() string                    { return d.TypeName }
func (d *ProtocolDecl) InheritedTypes() []TypeExpr      { return d.Inherited }
func (d *ProtocolDecl) GenericParams() *GenericParamList { return nil }
func (d *ProtocolDecl) Members() []Decl                 { return d.MemberList }

// ExtensionDecl extends a previously declared nominal type with new members
// and conformances.
type ExtensionDecl struct {
	declBase
	Extended  TypeExpr
	Inherited []TypeExpr
	MemberList []Decl
}

func (d *ExtensionDecl) Members() []Decl { return d.MemberList }

// TopLevelCodeDecl wraps executable statements at the top level of a script
// unit. The driver routes these to the statement checker, never through the
// declaration checker.
type TopLevelCodeDecl struct {
	declBase
	Body []Expr
}

// ModuleScope reports whether the declaration sits directly at module scope.
func ModuleScope(d Decl) bool {
	return d != nil && d.Parent() == nil
}

// TypeContext returns the innermost enclosing nominal type or extension
// declaration, or nil when the declaration is not a type member. The
// declaration itself is not considered its own context.
func TypeContext(d Decl) Decl {
	if d == nil {
		return nil
	}
	for p := d.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *OneOfDecl, *StructDecl, *ClassDecl, *ProtocolDecl, *ExtensionDecl:
			return p
		}
	}
	return nil
}

// link wires parent/unit pointers through the declaration tree.
func link(d Decl, parent Decl, unit *Unit) {
	if d == nil {
		return
	}
	setContext(d, parent, unit)
	switch decl := d.(type) {
	case *OneOfDecl:
		linkMembers(decl.MemberList, decl, unit)
		linkGenerics(decl.Generics, decl, unit)
	case *StructDecl:
		linkMembers(decl.MemberList, decl, unit)
		linkGenerics(decl.Generics, decl, unit)
	case *ClassDecl:
		linkMembers(decl.MemberList, decl, unit)
		linkGenerics(decl.Generics, decl, unit)
	case *ProtocolDecl:
		linkMembers(decl.MemberList, decl, unit)
	case *ExtensionDecl:
		linkMembers(decl.MemberList, decl, unit)
	case *FuncDecl:
		linkGenerics(decl.Generics, decl, unit)
		for _, p := range decl.ParamLevels {
			linkPattern(p, decl, unit)
		}
	case *ConstructorDecl:
		linkGenerics(decl.Generics, decl, unit)
		linkPattern(decl.Args, decl, unit)
		if decl.ImplicitThis != nil {
			setContext(decl.ImplicitThis, decl, unit)
		}
	case *DestructorDecl:
		if decl.ImplicitThis != nil {
			setContext(decl.ImplicitThis, decl, unit)
		}
	case *SubscriptDecl:
		linkPattern(decl.Indices, decl, unit)
	case *PatternBindingDecl:
		linkPattern(decl.Pattern, parent, unit)
	}
}

func linkMembers(members []Decl, parent Decl, unit *Unit) {
	for _, m := range members {
		link(m, parent, unit)
	}
}

func linkGenerics(gp *GenericParamList, parent Decl, unit *Unit) {
	if gp == nil {
		return
	}
	for _, p := range gp.Params {
		setContext(p, parent, unit)
	}
}

// linkPattern wires the vars bound by a pattern. Vars bound by a pattern
// binding share the binding's declaration context.
func linkPattern(p Pattern, parent Decl, unit *Unit) {
	switch pat := p.(type) {
	case *NamedPattern:
		if pat.Var != nil {
			setContext(pat.Var, parent, unit)
		}
	case *TypedPattern:
		linkPattern(pat.Sub, parent, unit)
	case *ParenPattern:
		linkPattern(pat.Sub, parent, unit)
	case *TuplePattern:
		for _, f := range pat.Fields {
			linkPattern(f.Pattern, parent, unit)
		}
	}
}

func setContext(d Decl, parent Decl, unit *Unit) {
	type contextSetter interface {
		setContext(parent Decl, unit *Unit)
	}
	if s, ok := d.(contextSetter); ok {
		s.setContext(parent, unit)
	}
}

func (d *declBase) setContext(parent Decl, unit *Unit) {
	d.parent = parent
	d.unit = unit
}
