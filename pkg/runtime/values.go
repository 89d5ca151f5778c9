package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one of NumberValue, StringValue or *ListValue.
type Value interface {
	Kind() Kind
}

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

// ListValue is never mutated after construction; operations build new lists.
type ListValue struct {
	Elements []Value
}

func (*ListValue) Kind() Kind { return KindList }

// NewList wraps elements without copying them.
func NewList(elements ...Value) *ListValue {
	return &ListValue{Elements: elements}
}

// Bool maps a Go boolean to the language's 1/0 convention.
func Bool(b bool) NumberValue {
	if b {
		return NumberValue{Val: 1}
	}
	return NumberValue{Val: 0}
}

// KindForType returns the value kind a declared type admits.
func KindForType(t ast.DataType) (Kind, bool) {
	switch t {
	case ast.TypeNumber:
		return KindNumber, true
	case ast.TypeString:
		return KindString, true
	case ast.TypeList:
		return KindList, true
	}
	return 0, false
}

// ZeroValue is the value a declaration without initializer starts with.
func ZeroValue(t ast.DataType) Value {
	switch t {
	case ast.TypeString:
		return StringValue{}
	case ast.TypeList:
		return NewList()
	default:
		return NumberValue{}
	}
}

// Admits reports whether a symbol declared as t may hold v.
func Admits(t ast.DataType, v Value) bool {
	kind, typed := KindForType(t)
	return !typed || v.Kind() == kind
}

// Truthy implements the condition test: non-zero numbers, non-empty strings and lists.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case NumberValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	case *ListValue:
		return len(val.Elements) > 0
	}
	return false
}

// Equal compares two values structurally. Numbers follow IEEE equality.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// FormatNumber renders a number in the short general format used by print.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Format renders v the way print shows it: strings verbatim, lists as
// "(a, b)" with nested strings quoted.
func Format(v Value) string {
	if s, ok := v.(StringValue); ok {
		return s.Val
	}
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case NumberValue:
		b.WriteString(FormatNumber(val.Val))
	case StringValue:
		b.WriteString(strconv.Quote(val.Val))
	case *ListValue:
		b.WriteByte('(')
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el)
		}
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	default:
		fmt.Fprintf(b, "<%T>", v)
	}
}
