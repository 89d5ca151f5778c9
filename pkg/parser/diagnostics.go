package parser

import "fmt"

// SourceLocation captures where a diagnostic starts.
type SourceLocation struct {
	Line   int
	Column int
}

// ParseError includes a message plus the source location it applies to.
type ParseError struct {
	Message  string
	Location SourceLocation
}

func (e *ParseError) Error() string {
	if e.Location.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Column, e.Message)
}
