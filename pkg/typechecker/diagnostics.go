package typechecker

import (
	"fmt"

	"calyx/compiler-go/pkg/ast"
)

// Diagnostic codes emitted by the declaration checker. Codes are stable
// identifiers; messages are rendered per call site.
const (
	DiagNonprotocolInherit             = "nonprotocol_inherit"
	DiagRequiresConformanceNonprotocol = "requires_conformance_nonprotocol"
	DiagNonprotocolComposition         = "nonprotocol_composition"
	DiagUnresolvedType                 = "unresolved_type"
	DiagSubscriptNotMember             = "subscript_not_member"
	DiagConstructorNotMember           = "constructor_not_member"
	DiagDestructorNotMember            = "destructor_not_member"
	DiagNonNominalExtension            = "non_nominal_extension"
	DiagProtocolExtension              = "protocol_extension"
	DiagOperatorNotFunc                = "operator_not_func"
	DiagInvalidArgCountForOperator     = "invalid_arg_count_for_operator"
	DiagCustomOperatorAddressof        = "custom_operator_addressof"
	DiagInfixNotAnOperator             = "infix_not_an_operator"
	DiagInvalidInfixLeftInput          = "invalid_infix_left_input"
	DiagPostfixNotAnOperator           = "postfix_not_an_operator"
	DiagInvalidPostfixInput            = "invalid_postfix_input"
	DiagInvalidDeclAttribute           = "invalid_decl_attribute"
	DiagAssignmentWithoutByref         = "assignment_without_byref"
	DiagAssignmentNonvoid              = "assignment_nonvoid"
	DiagConversionNotInstanceMethod    = "conversion_not_instance_method"
	DiagConversionParams               = "conversion_params"
	DiagBinopsInfixLeft                = "binops_infix_left"
	DiagVarTypeNotMaterializable       = "var_type_not_materializable"
	DiagOneOfElementNotMaterializable  = "oneof_element_not_materializable"
	DiagWhileConvertingVarInit         = "while_converting_var_init"
	DiagPatternTypeMismatch            = "pattern_type_mismatch"
	DiagDoesNotConform                 = "does_not_conform"
)

// Diagnostic is one semantic problem report. Semantic problems never become
// Go errors; they accumulate here while checking continues.
type Diagnostic struct {
	Code    string
	Message string
	Span    ast.Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s [%s]", d.Span.Start.Line, d.Span.Start.Column, d.Message, d.Code)
}

// diagnose appends a diagnostic to the checker's log.
func (c *Checker) diagnose(span ast.Span, code, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	})
}

// Diagnostics returns everything diagnosed so far, in emission order.
func (c *Checker) Diagnostics() []Diagnostic {
	return c.diags
}

// DiagnosticsByCode filters the log to one code, preserving order.
func (c *Checker) DiagnosticsByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
