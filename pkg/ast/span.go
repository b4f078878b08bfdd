package ast

// Pos is a line/column pair within a source fixture. The zero value means
// "unknown position".
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is the half-open source range covered by a node.
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// Node is implemented by every syntax node.
type Node interface {
	Span() Span
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// spanned is embedded by concrete nodes to carry their source range.
type spanned struct {
	span Span
}

func (s *spanned) Span() Span        { return s.span }
func (s *spanned) setSpan(span Span) { s.span = span }
