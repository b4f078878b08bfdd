package driver

import (
	"fmt"

	"calyx/compiler-go/pkg/ast"
	"calyx/compiler-go/pkg/typechecker"
)

// InterfaceFileName is the module interface summary shipped at the root of
// every importable package.
const InterfaceFileName = "module.yml"

// ModuleInterface summarises the exported values of an imported module, as
// far as declaration checking needs them: names and operator attribute
// data. It implements the checker's point-lookup interface.
type ModuleInterface struct {
	Module string
	Values []InterfaceValue
}

// InterfaceValue is one exported value entry.
type InterfaceValue struct {
	Name    string
	Infix   *InterfaceInfix
	Postfix bool
}

// InterfaceInfix carries the infix shape of an exported operator.
type InterfaceInfix struct {
	Precedence    int
	Associativity string
}

type interfaceDisk struct {
	Module string `yaml:"module"`
	Values []struct {
		Name  string `yaml:"name"`
		Infix *struct {
			Precedence    int    `yaml:"precedence"`
			Associativity string `yaml:"associativity,omitempty"`
		} `yaml:"infix,omitempty"`
		Postfix bool `yaml:"postfix,omitempty"`
	} `yaml:"values,omitempty"`
}

// LoadModuleInterface parses a module.yml interface summary.
func LoadModuleInterface(path string) (*ModuleInterface, error) {
	var raw interfaceDisk
	abs, err := readStrictYAML(path, &raw)
	if err != nil {
		return nil, err
	}
	if raw.Module == "" {
		return nil, fmt.Errorf("interface: %s: missing module name", abs)
	}

	mi := &ModuleInterface{Module: raw.Module}
	for _, v := range raw.Values {
		entry := InterfaceValue{Name: v.Name, Postfix: v.Postfix}
		if v.Infix != nil {
			entry.Infix = &InterfaceInfix{
				Precedence:    v.Infix.Precedence,
				Associativity: v.Infix.Associativity,
			}
		}
		mi.Values = append(mi.Values, entry)
	}
	return mi, nil
}

// ModuleName returns the summarised module's name.
func (mi *ModuleInterface) ModuleName() string { return mi.Module }

// LookupValue returns every exported entry with the given name, converted
// to the checker's imported-value shape.
func (mi *ModuleInterface) LookupValue(name string) []typechecker.ImportedValue {
	var out []typechecker.ImportedValue
	for _, v := range mi.Values {
		if v.Name != name {
			continue
		}
		attrs := ast.DeclAttributes{Postfix: v.Postfix}
		if v.Infix != nil {
			assoc := ast.AssocNone
			switch v.Infix.Associativity {
			case "left":
				assoc = ast.AssocLeft
			case "right":
				assoc = ast.AssocRight
			}
			attrs.Infix = ast.InfixData{
				Valid:         true,
				Precedence:    v.Infix.Precedence,
				Associativity: assoc,
			}
		}
		out = append(out, typechecker.ImportedValue{Name: v.Name, Attrs: attrs})
	}
	return out
}
