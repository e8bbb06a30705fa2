package token

import "fmt"

// Position is a location in expression source.
type Position struct {
	Line   int // 1-indexed
	Column int // 1-indexed byte column on the line
	Offset int // 0-indexed byte offset from the start of source
}

// String formats the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was set by the lexer.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p comes before other in the source.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// After reports whether p comes after other in the source.
func (p Position) After(other Position) bool {
	return other.Before(p)
}

// NoPos is the zero Position, used for synthesized nodes.
var NoPos = Position{}
