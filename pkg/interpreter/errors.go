package interpreter

import (
	"errors"
	"fmt"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

// ErrorKind classifies runtime failures.
type ErrorKind string

const (
	TypeMismatch       ErrorKind = "type mismatch"
	Undefined          ErrorKind = "undefined"
	Arity              ErrorKind = "arity"
	IndexOutOfRange    ErrorKind = "index"
	Redeclaration      ErrorKind = "redeclaration"
	ResourceExhaustion ErrorKind = "resource exhaustion"
	Internal           ErrorKind = "internal"
)

// RuntimeError is returned for every failure raised while evaluating a node.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Fatal errors abort the whole module instead of the current statement.
func (e *RuntimeError) Fatal() bool {
	return e.Kind == ResourceExhaustion || e.Kind == Internal
}

// IsFatal reports whether err carries a fatal RuntimeError.
func IsFatal(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Fatal()
}

func newError(node ast.Node, kind ErrorKind, format string, args ...any) *RuntimeError {
	rerr := &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		rerr.Line = node.Line()
	}
	return rerr
}

func wrapError(node ast.Node, kind ErrorKind, err error) *RuntimeError {
	rerr := newError(node, kind, "%v", err)
	rerr.Err = err
	return rerr
}

// asRuntimeError attaches the statement's line to errors that lack one.
func asRuntimeError(err error, stmt ast.Node) *RuntimeError {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		if rerr.Line == 0 && stmt != nil {
			rerr.Line = stmt.Line()
		}
		return rerr
	}
	if _, ok := err.(returnSignal); ok {
		return newError(stmt, Undefined, "return outside function")
	}
	return wrapError(stmt, Internal, err)
}

// returnSignal unwinds evaluation to the nearest call boundary.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string { return "return outside function" }
