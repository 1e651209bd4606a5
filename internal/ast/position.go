package ast

import "fmt"

// Position is a source span. A Line <= 0 marks a synthetic node.
type Position struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Synthetic reports whether the span belongs to generated code.
func (p Position) Synthetic() bool {
	return p.Line <= 0
}

func (p Position) String() string {
	if p.Synthetic() {
		return "<synthetic>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span returns a Position covering line:column to endLine:endColumn.
func Span(line, column, endLine, endColumn int) Position {
	return Position{Line: line, Column: column, EndLine: endLine, EndColumn: endColumn}
}
