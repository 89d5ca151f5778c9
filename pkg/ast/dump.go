package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes an indented outline of node and its children, one node per line.
func Dump(w io.Writer, node Node) error {
	d := &dumper{w: w}
	d.node(node, 0)
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) node(node Node, depth int) {
	if node == nil {
		d.line(depth, "<nil>")
		return
	}
	switch n := node.(type) {
	case *Module:
		if n.Path != "" {
			d.line(depth, "Module %s", n.Path)
		} else {
			d.line(depth, "Module")
		}
		for _, stmt := range n.Body {
			d.node(stmt, depth+1)
		}
	case *NumberLiteral:
		d.line(depth, "NumberLiteral %s", strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *StringLiteral:
		d.line(depth, "StringLiteral %q", n.Value)
	case *ListLiteral:
		d.line(depth, "ListLiteral (%d)", len(n.Elements))
		for _, el := range n.Elements {
			d.node(el, depth+1)
		}
	case *Identifier:
		d.line(depth, "Identifier %s", n.Name)
	case *Declaration:
		d.line(depth, "Declaration %s %s", n.Type, n.Name)
		if n.Initializer != nil {
			d.node(n.Initializer, depth+1)
		}
	case *AssignmentExpression:
		d.line(depth, "Assignment %s", n.Name)
		d.node(n.Value, depth+1)
	case *BinaryExpression:
		d.line(depth, "BinaryExpression %s", n.Operator)
		d.node(n.Left, depth+1)
		d.node(n.Right, depth+1)
	case *UnaryExpression:
		d.line(depth, "UnaryExpression %s", n.Operator)
		d.node(n.Operand, depth+1)
	case *ComparisonExpression:
		d.line(depth, "Comparison %s", n.Operator)
		d.node(n.Left, depth+1)
		d.node(n.Right, depth+1)
	case *LogicalExpression:
		d.line(depth, "Logical %s", n.Operator)
		d.node(n.Left, depth+1)
		d.node(n.Right, depth+1)
	case *StatementList:
		d.line(depth, "StatementList (%d)", len(n.Statements))
		for _, stmt := range n.Statements {
			d.node(stmt, depth+1)
		}
	case *IfStatement:
		d.line(depth, "If")
		d.node(n.Condition, depth+1)
		d.line(depth+1, "Then")
		d.node(n.Then, depth+2)
		if n.Else != nil {
			d.line(depth+1, "Else")
			d.node(n.Else, depth+2)
		}
	case *WhileLoop:
		d.line(depth, "While")
		d.node(n.Condition, depth+1)
		d.node(n.Body, depth+1)
	case *ForLoop:
		d.line(depth, "For")
		if n.Init != nil {
			d.line(depth+1, "Init")
			d.node(n.Init, depth+2)
		}
		d.line(depth+1, "Condition")
		d.node(n.Condition, depth+2)
		if n.Step != nil {
			d.line(depth+1, "Step")
			d.node(n.Step, depth+2)
		}
		d.node(n.Body, depth+1)
	case *BuiltinCall:
		d.line(depth, "BuiltinCall %s", n.Builtin)
		for _, arg := range n.Arguments {
			d.node(arg, depth+1)
		}
	case *FunctionCall:
		d.line(depth, "FunctionCall %s", n.Callee)
		for _, arg := range n.Arguments {
			d.node(arg, depth+1)
		}
	case *FunctionDefinition:
		d.line(depth, "FunctionDefinition %s %s(%s)", n.ReturnType, n.Name, strings.Join(n.Params, ", "))
		d.node(n.Body, depth+1)
	case *ReturnStatement:
		d.line(depth, "Return")
		d.node(n.Argument, depth+1)
	default:
		d.line(depth, "%s", node.NodeType())
	}
}
