package ast

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Serialized declaration trees enter the compiler as JSON fixtures: every
// node is an object tagged with its kind. The decoder below rebuilds the
// tree and links it into a Unit. Parsing source text is a separate tool's
// concern.

type unitJSON struct {
	Name  string            `json:"name"`
	Kind  string            `json:"kind"`
	Decls []json.RawMessage `json:"decls"`
}

type declJSON struct {
	Decl      string            `json:"decl"`
	Name      string            `json:"name,omitempty"`
	Path      []string          `json:"path,omitempty"`
	Property  bool              `json:"property,omitempty"`
	Static    bool              `json:"static,omitempty"`
	Pattern   json.RawMessage   `json:"pattern,omitempty"`
	Init      json.RawMessage   `json:"init,omitempty"`
	Params    json.RawMessage   `json:"params,omitempty"`
	Indices   json.RawMessage   `json:"indices,omitempty"`
	Args      json.RawMessage   `json:"args,omitempty"`
	Result    json.RawMessage   `json:"result,omitempty"`
	Element   json.RawMessage   `json:"element,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Underlying json.RawMessage  `json:"underlying,omitempty"`
	Extended  json.RawMessage   `json:"extended,omitempty"`
	Inherited []json.RawMessage `json:"inherited,omitempty"`
	Generics  *genericsJSON     `json:"generics,omitempty"`
	Members   []json.RawMessage `json:"members,omitempty"`
	Attrs     *attrsJSON        `json:"attrs,omitempty"`
	Span      *Span             `json:"span,omitempty"`
}

type genericsJSON struct {
	Params []struct {
		Name      string            `json:"name"`
		Inherited []json.RawMessage `json:"inherited,omitempty"`
	} `json:"params"`
	Requirements []struct {
		Kind       string          `json:"kind"`
		Subject    json.RawMessage `json:"subject,omitempty"`
		Constraint json.RawMessage `json:"constraint,omitempty"`
		First      json.RawMessage `json:"first,omitempty"`
		Second     json.RawMessage `json:"second,omitempty"`
	} `json:"requirements,omitempty"`
}

type attrsJSON struct {
	Infix       *infixJSON `json:"infix,omitempty"`
	Postfix     bool       `json:"postfix,omitempty"`
	Assignment  bool       `json:"assignment,omitempty"`
	Conversion  bool       `json:"conversion,omitempty"`
	Byref       bool       `json:"byref,omitempty"`
	AutoClosure bool       `json:"autoClosure,omitempty"`
}

type infixJSON struct {
	Precedence    int    `json:"precedence"`
	Associativity string `json:"associativity,omitempty"`
}

type typeExprJSON struct {
	Type      string            `json:"type"`
	Name      string            `json:"name,omitempty"`
	Args      []json.RawMessage `json:"args,omitempty"`
	Elems     []tupleElemJSON   `json:"elems,omitempty"`
	Input     json.RawMessage   `json:"input,omitempty"`
	Result    json.RawMessage   `json:"result,omitempty"`
	Elem      json.RawMessage   `json:"elem,omitempty"`
	Protocols []json.RawMessage `json:"protocols,omitempty"`
}

type tupleElemJSON struct {
	Label string          `json:"label,omitempty"`
	Type  json.RawMessage `json:"type"`
	Init  json.RawMessage `json:"init,omitempty"`
}

type patternJSON struct {
	Pattern    string          `json:"pattern"`
	Name       string          `json:"name,omitempty"`
	Property   bool            `json:"property,omitempty"`
	Sub        json.RawMessage `json:"sub,omitempty"`
	Annotation json.RawMessage `json:"annotation,omitempty"`
	Fields     []struct {
		Pattern json.RawMessage `json:"pattern"`
		Init    json.RawMessage `json:"init,omitempty"`
	} `json:"fields,omitempty"`
}

type exprJSON struct {
	Expr   string            `json:"expr"`
	Value  json.RawMessage   `json:"value,omitempty"`
	Name   string            `json:"name,omitempty"`
	Labels []string          `json:"labels,omitempty"`
	Elems  []json.RawMessage `json:"elems,omitempty"`
}

// DecodeUnit rebuilds a translation unit from its serialized form.
func DecodeUnit(data []byte) (*Unit, error) {
	var raw unitJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: decode unit: %w", err)
	}
	kind := UnitLibrary
	switch raw.Kind {
	case "", "library":
	case "script":
		kind = UnitScript
	default:
		return nil, fmt.Errorf("ast: decode unit: unknown kind %q", raw.Kind)
	}
	decls := make([]Decl, 0, len(raw.Decls))
	for i, msg := range raw.Decls {
		d, err := decodeDecl(msg)
		if err != nil {
			return nil, fmt.Errorf("ast: decode decl %d: %w", i, err)
		}
		decls = append(decls, d)
	}
	return NewUnit(raw.Name, kind, decls), nil
}

func decodeDecl(msg json.RawMessage) (Decl, error) {
	var raw declJSON
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	var d Decl
	switch raw.Decl {
	case "Import":
		d = Import(raw.Path...)
	case "PatternBinding":
		pat, err := decodePattern(raw.Pattern)
		if err != nil {
			return nil, err
		}
		init, err := decodeOptExpr(raw.Init)
		if err != nil {
			return nil, err
		}
		d = Binding(pat, init)
	case "Func", "Method":
		params, err := decodeTuplePattern(raw.Params)
		if err != nil {
			return nil, err
		}
		result, err := decodeOptTypeExpr(raw.Result)
		if err != nil {
			return nil, err
		}
		var fn *FuncDecl
		if raw.Decl == "Method" {
			fn = Method(raw.Name, params, result)
		} else {
			fn = Fn(raw.Name, params, result)
		}
		fn.Static = raw.Static
		applyAttrs(&fn.Attributes, raw.Attrs)
		if err := applyGenerics(fn, raw.Generics); err != nil {
			return nil, err
		}
		d = fn
	case "Constructor":
		args, err := decodeTuplePattern(raw.Args)
		if err != nil {
			return nil, err
		}
		ctor := Ctor(args)
		applyAttrs(&ctor.Attributes, raw.Attrs)
		if err := applyGenerics(ctor, raw.Generics); err != nil {
			return nil, err
		}
		d = ctor
	case "Destructor":
		dtor := Dtor()
		applyAttrs(&dtor.Attributes, raw.Attrs)
		d = dtor
	case "Subscript":
		indices, err := decodeTuplePattern(raw.Indices)
		if err != nil {
			return nil, err
		}
		elem, err := decodeOptTypeExpr(raw.Element)
		if err != nil {
			return nil, err
		}
		d = SubscriptD(indices, elem)
	case "TypeAlias":
		underlying, err := decodeOptTypeExpr(raw.Underlying)
		if err != nil {
			return nil, err
		}
		inherited, err := decodeTypeExprs(raw.Inherited)
		if err != nil {
			return nil, err
		}
		d = Alias(raw.Name, underlying, inherited...)
	case "OneOfElement":
		payload, err := decodeOptTypeExpr(raw.Payload)
		if err != nil {
			return nil, err
		}
		elem := &OneOfElementDecl{ElementName: raw.Name, ArgType: payload}
		d = elem
	case "OneOf", "Struct", "Class", "Protocol":
		members := make([]Decl, 0, len(raw.Members))
		for _, m := range raw.Members {
			member, err := decodeDecl(m)
			if err != nil {
				return nil, err
			}
			members = append(members, member)
		}
		inherited, err := decodeTypeExprs(raw.Inherited)
		if err != nil {
			return nil, err
		}
		switch raw.Decl {
		case "OneOf":
			oneof := OneOf(raw.Name, members...)
			oneof.Inherited = inherited
			if err := applyGenerics(oneof, raw.Generics); err != nil {
				return nil, err
			}
			d = oneof
		case "Struct":
			st := StructD(raw.Name, members...)
			st.Inherited = inherited
			if err := applyGenerics(st, raw.Generics); err != nil {
				return nil, err
			}
			d = st
		case "Class":
			cl := ClassD(raw.Name, members...)
			cl.Inherited = inherited
			if err := applyGenerics(cl, raw.Generics); err != nil {
				return nil, err
			}
			d = cl
		default:
			proto := ProtocolD(raw.Name, members...)
			proto.Inherited = inherited
			d = proto
		}
	case "Extension":
		extended, err := decodeOptTypeExpr(raw.Extended)
		if err != nil {
			return nil, err
		}
		if extended == nil {
			return nil, fmt.Errorf("extension missing extended type")
		}
		members := make([]Decl, 0, len(raw.Members))
		for _, m := range raw.Members {
			member, err := decodeDecl(m)
			if err != nil {
				return nil, err
			}
			members = append(members, member)
		}
		ext := Ext(extended, members...)
		inherited, err := decodeTypeExprs(raw.Inherited)
		if err != nil {
			return nil, err
		}
		ext.Inherited = inherited
		d = ext
	case "TopLevelCode":
		d = &TopLevelCodeDecl{}
	default:
		return nil, fmt.Errorf("unknown decl kind %q", raw.Decl)
	}
	if raw.Span != nil {
		SetSpan(d, *raw.Span)
	}
	return d, nil
}

func applyGenerics(d Decl, raw *genericsJSON) error {
	if raw == nil {
		return nil
	}
	gp := &GenericParamList{}
	for _, p := range raw.Params {
		inherited, err := decodeTypeExprs(p.Inherited)
		if err != nil {
			return err
		}
		gp.Params = append(gp.Params, GenericParam(p.Name, inherited...))
	}
	for _, r := range raw.Requirements {
		switch r.Kind {
		case "conformance":
			subject, err := decodeOptTypeExpr(r.Subject)
			if err != nil {
				return err
			}
			constraint, err := decodeOptTypeExpr(r.Constraint)
			if err != nil {
				return err
			}
			gp.Requirements = append(gp.Requirements, ConformanceReq(subject, constraint))
		case "sameType":
			first, err := decodeOptTypeExpr(r.First)
			if err != nil {
				return err
			}
			second, err := decodeOptTypeExpr(r.Second)
			if err != nil {
				return err
			}
			gp.Requirements = append(gp.Requirements, SameTypeReq(first, second))
		default:
			return fmt.Errorf("unknown requirement kind %q", r.Kind)
		}
	}
	WithGenerics(d, gp)
	return nil
}

func applyAttrs(attrs *DeclAttributes, raw *attrsJSON) {
	if raw == nil {
		return
	}
	if raw.Infix != nil {
		assoc := AssocNone
		switch raw.Infix.Associativity {
		case "left":
			assoc = AssocLeft
		case "right":
			assoc = AssocRight
		}
		attrs.Infix = InfixData{Valid: true, Precedence: raw.Infix.Precedence, Associativity: assoc}
	}
	attrs.Postfix = raw.Postfix
	attrs.Assignment = raw.Assignment
	attrs.Conversion = raw.Conversion
	attrs.Byref = raw.Byref
	attrs.AutoClosure = raw.AutoClosure
}

func decodeTypeExprs(msgs []json.RawMessage) ([]TypeExpr, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	out := make([]TypeExpr, 0, len(msgs))
	for _, msg := range msgs {
		t, err := decodeTypeExpr(msg)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeOptTypeExpr(msg json.RawMessage) (TypeExpr, error) {
	if len(msg) == 0 || string(msg) == "null" {
		return nil, nil
	}
	return decodeTypeExpr(msg)
}

func decodeTypeExpr(msg json.RawMessage) (TypeExpr, error) {
	var raw typeExprJSON
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case "Named":
		args, err := decodeTypeExprs(raw.Args)
		if err != nil {
			return nil, err
		}
		return Ty(raw.Name, args...), nil
	case "Tuple":
		elems := make([]TupleTypeExprElem, 0, len(raw.Elems))
		for _, e := range raw.Elems {
			t, err := decodeTypeExpr(e.Type)
			if err != nil {
				return nil, err
			}
			init, err := decodeOptExpr(e.Init)
			if err != nil {
				return nil, err
			}
			elems = append(elems, TupleTypeExprElem{Label: e.Label, Type: t, Init: init})
		}
		return TupleTy(elems...), nil
	case "Function":
		input, err := decodeTypeExpr(raw.Input)
		if err != nil {
			return nil, err
		}
		result, err := decodeTypeExpr(raw.Result)
		if err != nil {
			return nil, err
		}
		return FnTy(input, result), nil
	case "Byref":
		elem, err := decodeTypeExpr(raw.Elem)
		if err != nil {
			return nil, err
		}
		return Byref(elem), nil
	case "Composition":
		protocols, err := decodeTypeExprs(raw.Protocols)
		if err != nil {
			return nil, err
		}
		return Composition(protocols...), nil
	default:
		return nil, fmt.Errorf("unknown type expression %q", raw.Type)
	}
}

func decodeTuplePattern(msg json.RawMessage) (*TuplePattern, error) {
	if len(msg) == 0 || string(msg) == "null" {
		return nil, nil
	}
	p, err := decodePattern(msg)
	if err != nil {
		return nil, err
	}
	tuple, ok := p.(*TuplePattern)
	if !ok {
		return nil, fmt.Errorf("expected tuple pattern, got %T", p)
	}
	return tuple, nil
}

func decodePattern(msg json.RawMessage) (Pattern, error) {
	var raw patternJSON
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	switch raw.Pattern {
	case "Named":
		v := VarD(raw.Name)
		v.Property = raw.Property
		return NamedVar(v), nil
	case "Any":
		return AnyP(), nil
	case "Typed":
		sub, err := decodePattern(raw.Sub)
		if err != nil {
			return nil, err
		}
		annotation, err := decodeOptTypeExpr(raw.Annotation)
		if err != nil {
			return nil, err
		}
		return TypedP(sub, annotation), nil
	case "Paren":
		sub, err := decodePattern(raw.Sub)
		if err != nil {
			return nil, err
		}
		return ParenP(sub), nil
	case "Tuple":
		fields := make([]TuplePatternField, 0, len(raw.Fields))
		for _, f := range raw.Fields {
			sub, err := decodePattern(f.Pattern)
			if err != nil {
				return nil, err
			}
			init, err := decodeOptExpr(f.Init)
			if err != nil {
				return nil, err
			}
			fields = append(fields, TuplePatternField{Pattern: sub, Init: init})
		}
		return TupleP(fields...), nil
	default:
		return nil, fmt.Errorf("unknown pattern %q", raw.Pattern)
	}
}

func decodeOptExpr(msg json.RawMessage) (Expr, error) {
	if len(msg) == 0 || string(msg) == "null" {
		return nil, nil
	}
	return decodeExpr(msg)
}

func decodeExpr(msg json.RawMessage) (Expr, error) {
	var raw exprJSON
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	switch raw.Expr {
	case "Integer":
		value := new(big.Int)
		if _, ok := value.SetString(string(raw.Value), 10); !ok {
			return nil, fmt.Errorf("bad integer literal %s", raw.Value)
		}
		return &IntegerLiteral{Value: value}, nil
	case "Float":
		return &FloatLiteral{Text: string(raw.Value)}, nil
	case "String":
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return nil, err
		}
		return &StringLiteral{Value: s}, nil
	case "Bool":
		var b bool
		if err := json.Unmarshal(raw.Value, &b); err != nil {
			return nil, err
		}
		return &BoolLiteral{Value: b}, nil
	case "Name":
		return Ref(raw.Name), nil
	case "Tuple":
		elems := make([]Expr, 0, len(raw.Elems))
		for _, e := range raw.Elems {
			sub, err := decodeExpr(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, sub)
		}
		return &TupleExpr{Labels: raw.Labels, Elems: elems}, nil
	default:
		return nil, fmt.Errorf("unknown expression %q", raw.Expr)
	}
}

// MarshalJSON ensures integer literals serialize with numeric values in
// fixtures.
func (lit *IntegerLiteral) MarshalJSON() ([]byte, error) {
	if lit == nil {
		return []byte("null"), nil
	}
	value := "0"
	if lit.Value != nil {
		value = lit.Value.String()
	}
	payload := struct {
		Expr  string          `json:"expr"`
		Value json.RawMessage `json:"value"`
	}{
		Expr:  "Integer",
		Value: json.RawMessage(value),
	}
	return json.Marshal(payload)
}
