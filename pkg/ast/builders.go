package ast

import "math/big"

// Builder helpers used by tests and fixture tooling to assemble declaration
// trees without a parser in the loop. Each helper returns the concrete node
// type so call sites can tweak fields before linking the tree with NewUnit.

// Ty builds a named type reference.
func Ty(name string, args ...TypeExpr) *NamedTypeExpr {
	return &NamedTypeExpr{TypeName: name, Args: args}
}

// TyElem builds one labeled tuple-type element.
func TyElem(label string, t TypeExpr) TupleTypeExprElem {
	return TupleTypeExprElem{Label: label, Type: t}
}

// TyElemDefault builds a tuple-type element with a default initializer.
func TyElemDefault(label string, t TypeExpr, init Expr) TupleTypeExprElem {
	return TupleTypeExprElem{Label: label, Type: t, Init: init}
}

// TupleTy builds a tuple type expression.
func TupleTy(elems ...TupleTypeExprElem) *TupleTypeExpr {
	return &TupleTypeExpr{Elems: elems}
}

// FnTy builds a function type expression.
func FnTy(input, result TypeExpr) *FunctionTypeExpr {
	return &FunctionTypeExpr{Input: input, Result: result}
}

// Byref wraps a type expression in an explicit reference layer.
func Byref(elem TypeExpr) *ByrefTypeExpr {
	return &ByrefTypeExpr{Elem: elem}
}

// Composition builds a protocol composition type expression.
func Composition(protocols ...TypeExpr) *CompositionTypeExpr {
	return &CompositionTypeExpr{Protocols: protocols}
}

// VarD builds a stored variable declaration.
func VarD(name string) *VarDecl {
	return &VarDecl{VarName: name}
}

// PropertyD builds a computed-property variable declaration.
func PropertyD(name string) *VarDecl {
	return &VarDecl{VarName: name, Property: true}
}

// Named builds a pattern binding one fresh variable.
func Named(name string) *NamedPattern {
	return &NamedPattern{Var: VarD(name)}
}

// NamedVar builds a pattern binding an existing variable declaration.
func NamedVar(v *VarDecl) *NamedPattern {
	return &NamedPattern{Var: v}
}

// TypedP annotates a pattern with an explicit type.
func TypedP(sub Pattern, annotation TypeExpr) *TypedPattern {
	return &TypedPattern{Sub: sub, Annotation: annotation}
}

// ParenP parenthesises a pattern.
func ParenP(sub Pattern) *ParenPattern {
	return &ParenPattern{Sub: sub}
}

// AnyP builds the wildcard pattern.
func AnyP() *AnyPattern {
	return &AnyPattern{}
}

// FieldP builds one tuple-pattern field.
func FieldP(p Pattern) TuplePatternField {
	return TuplePatternField{Pattern: p}
}

// FieldPDefault builds a tuple-pattern field with a default initializer.
func FieldPDefault(p Pattern, init Expr) TuplePatternField {
	return TuplePatternField{Pattern: p, Init: init}
}

// TupleP builds a tuple pattern.
func TupleP(fields ...TuplePatternField) *TuplePattern {
	return &TuplePattern{Fields: fields}
}

// Param builds the common argument shape: a named pattern annotated with a
// type.
func Param(name string, t TypeExpr) TuplePatternField {
	return FieldP(TypedP(Named(name), t))
}

// Args collects parameters into the argument tuple pattern.
func Args(params ...TuplePatternField) *TuplePattern {
	return TupleP(params...)
}

// Binding binds a pattern to an optional initializer.
func Binding(p Pattern, init Expr) *PatternBindingDecl {
	return &PatternBindingDecl{Pattern: p, Init: init}
}

// VarBinding is shorthand for `var name : type` with no initializer.
func VarBinding(name string, t TypeExpr) *PatternBindingDecl {
	return Binding(TypedP(Named(name), t), nil)
}

// ImplicitThisPattern builds the unannotated `this` parameter level the
// checker seeds with the enclosing type.
func ImplicitThisPattern() *TypedPattern {
	return TypedP(NamedVar(VarD("this")), nil)
}

// Fn builds a module-scope function with one argument level.
func Fn(name string, params *TuplePattern, result TypeExpr) *FuncDecl {
	if params == nil {
		params = TupleP()
	}
	return &FuncDecl{
		FuncName:    name,
		ParamLevels: []Pattern{params},
		ResultType:  result,
		Body:        &FuncBody{},
	}
}

// Method builds an instance method: an implicit `this` level followed by the
// declared arguments.
func Method(name string, params *TuplePattern, result TypeExpr) *FuncDecl {
	if params == nil {
		params = TupleP()
	}
	return &FuncDecl{
		FuncName:    name,
		ParamLevels: []Pattern{ImplicitThisPattern(), params},
		ResultType:  result,
		Body:        &FuncBody{},
	}
}

// Ctor builds a constructor declaration.
func Ctor(args *TuplePattern) *ConstructorDecl {
	if args == nil {
		args = TupleP()
	}
	return &ConstructorDecl{Args: args, ImplicitThis: VarD("this")}
}

// Dtor builds a destructor declaration.
func Dtor() *DestructorDecl {
	return &DestructorDecl{ImplicitThis: VarD("this")}
}

// SubscriptD builds a subscript declaration.
func SubscriptD(indices *TuplePattern, element TypeExpr) *SubscriptDecl {
	if indices == nil {
		indices = TupleP()
	}
	return &SubscriptDecl{Indices: indices, ElementType: element}
}

// Alias builds a type alias declaration.
func Alias(name string, underlying TypeExpr, inherited ...TypeExpr) *TypeAliasDecl {
	return &TypeAliasDecl{AliasName: name, Underlying: underlying, Inherited: inherited}
}

// AssocTy builds a protocol associated-type declaration.
func AssocTy(name string, inherited ...TypeExpr) *TypeAliasDecl {
	return &TypeAliasDecl{AliasName: name, Inherited: inherited}
}

// GenericParam builds one generic type parameter.
func GenericParam(name string, inherited ...TypeExpr) *TypeAliasDecl {
	return &TypeAliasDecl{AliasName: name, Inherited: inherited}
}

// Generics builds a generic parameter list.
func Generics(params ...*TypeAliasDecl) *GenericParamList {
	return &GenericParamList{Params: params}
}

// Requires attaches requirement clauses to a generic parameter list.
func (gp *GenericParamList) Requires(reqs ...*Requirement) *GenericParamList {
	gp.Requirements = append(gp.Requirements, reqs...)
	return gp
}

// ConformanceReq builds a `subject : constraint` requirement.
func ConformanceReq(subject, constraint TypeExpr) *Requirement {
	return &Requirement{Kind: RequirementConformance, Subject: subject, Constraint: constraint}
}

// SameTypeReq builds a `first == second` requirement.
func SameTypeReq(first, second TypeExpr) *Requirement {
	return &Requirement{Kind: RequirementSameType, First: first, Second: second}
}

// Case builds a payload-free oneof element.
func Case(name string) *OneOfElementDecl {
	return &OneOfElementDecl{ElementName: name}
}

// CaseOf builds a oneof element carrying a payload type.
func CaseOf(name string, payload TypeExpr) *OneOfElementDecl {
	return &OneOfElementDecl{ElementName: name, ArgType: payload}
}

// OneOf builds a tagged-union declaration.
func OneOf(name string, members ...Decl) *OneOfDecl {
	return &OneOfDecl{TypeName: name, MemberList: members}
}

// StructD builds a struct declaration, appending the implicit elementwise
// constructor the checker elaborates in the first pass.
func StructD(name string, members ...Decl) *StructDecl {
	elem := &OneOfElementDecl{ElementName: name, Implicit: true}
	return &StructDecl{TypeName: name, MemberList: append(members, elem)}
}

// ClassD builds a class declaration.
func ClassD(name string, members ...Decl) *ClassDecl {
	return &ClassDecl{TypeName: name, MemberList: members}
}

// ProtocolD builds a protocol declaration.
func ProtocolD(name string, members ...Decl) *ProtocolDecl {
	return &ProtocolDecl{TypeName: name, MemberList: members}
}

// Ext builds an extension of the named type.
func Ext(extended TypeExpr, members ...Decl) *ExtensionDecl {
	return &ExtensionDecl{Extended: extended, MemberList: members}
}

// Import builds an import declaration.
func Import(path ...string) *ImportDecl {
	return &ImportDecl{Path: path}
}

// Inherit attaches an inheritance clause to a nominal or alias declaration
// built by the helpers above.
func Inherit(d Decl, inherited ...TypeExpr) Decl {
	switch decl := d.(type) {
	case *OneOfDecl:
		decl.Inherited = append(decl.Inherited, inherited...)
	case *StructDecl:
		decl.Inherited = append(decl.Inherited, inherited...)
	case *ClassDecl:
		decl.Inherited = append(decl.Inherited, inherited...)
	case *ProtocolDecl:
		decl.Inherited = append(decl.Inherited, inherited...)
	case *ExtensionDecl:
		decl.Inherited = append(decl.Inherited, inherited...)
	case *TypeAliasDecl:
		decl.Inherited = append(decl.Inherited, inherited...)
	}
	return d
}

// WithGenerics attaches a generic parameter list to a declaration that can
// carry one.
func WithGenerics(d Decl, gp *GenericParamList) Decl {
	switch decl := d.(type) {
	case *OneOfDecl:
		decl.Generics = gp
	case *StructDecl:
		decl.Generics = gp
	case *ClassDecl:
		decl.Generics = gp
	case *FuncDecl:
		decl.Generics = gp
	case *ConstructorDecl:
		decl.Generics = gp
	}
	return d
}

// InfixAttr builds infix attribute data.
func InfixAttr(precedence int, assoc Associativity) InfixData {
	return InfixData{Valid: true, Precedence: precedence, Associativity: assoc}
}

// Int builds an integer literal.
func Int(v int64) *IntegerLiteral {
	return &IntegerLiteral{Value: big.NewInt(v)}
}

// Flt builds a float literal.
func Flt(text string) *FloatLiteral {
	return &FloatLiteral{Text: text}
}

// Str builds a string literal.
func Str(v string) *StringLiteral {
	return &StringLiteral{Value: v}
}

// Bool builds a boolean literal.
func Bool(v bool) *BoolLiteral {
	return &BoolLiteral{Value: v}
}

// Ref builds a name reference expression.
func Ref(name string) *NameExpr {
	return &NameExpr{Ident: name}
}
