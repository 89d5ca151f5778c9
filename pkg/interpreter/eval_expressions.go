package interpreter

import (
	"cmp"
	"math"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

func (i *Interpreter) evaluate(node ast.Node) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.ListLiteral:
		return i.evaluateListLiteral(n)
	case *ast.Identifier:
		return i.evaluateIdentifier(n)
	case *ast.Declaration:
		return i.evaluateDeclaration(n)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n)
	case *ast.ComparisonExpression:
		return i.evaluateComparison(n)
	case *ast.LogicalExpression:
		return i.evaluateLogical(n)
	case *ast.StatementList:
		return i.evaluateStatementList(n)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n)
	case *ast.WhileLoop:
		return i.evaluateWhileLoop(n)
	case *ast.ForLoop:
		return i.evaluateForLoop(n)
	case *ast.BuiltinCall:
		return i.callBuiltin(n)
	case *ast.FunctionCall:
		return i.callFunction(n)
	case *ast.FunctionDefinition:
		return i.evaluateFunctionDefinition(n)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n)
	case *ast.Module:
		return i.EvaluateModule(n)
	case nil:
		return nil, newError(nil, Internal, "nil node")
	default:
		return nil, newError(node, Internal, "unsupported node type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateListLiteral(n *ast.ListLiteral) (runtime.Value, error) {
	elements := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		val, err := i.evaluate(el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, val)
	}
	return runtime.NewList(elements...), nil
}

func (i *Interpreter) evaluateIdentifier(n *ast.Identifier) (runtime.Value, error) {
	sym, ok := i.scopes.Resolve(n.Name)
	if !ok {
		return nil, newError(n, Undefined, "undefined variable '%s'", n.Name)
	}
	if sym.IsFunction() {
		return nil, newError(n, TypeMismatch, "'%s' is a function, not a value", n.Name)
	}
	return sym.Value, nil
}

func (i *Interpreter) evaluateBinaryExpression(n *ast.BinaryExpression) (runtime.Value, error) {
	left, err := i.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	return binaryOp(n, n.Operator, left, right)
}

func binaryOp(node ast.Node, op string, left, right runtime.Value) (runtime.Value, error) {
	if l, ok := left.(runtime.NumberValue); ok {
		if r, ok := right.(runtime.NumberValue); ok {
			result, ok := arithmetic(op, l.Val, r.Val)
			if !ok {
				return nil, newError(node, Internal, "unknown arithmetic operator %s", op)
			}
			return runtime.NumberValue{Val: result}, nil
		}
	}
	if op == "+" {
		switch l := left.(type) {
		case runtime.StringValue:
			if r, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: l.Val + r.Val}, nil
			}
		case *runtime.ListValue:
			if r, ok := right.(*runtime.ListValue); ok {
				joined := make([]runtime.Value, 0, len(l.Elements)+len(r.Elements))
				joined = append(joined, l.Elements...)
				return runtime.NewList(append(joined, r.Elements...)...), nil
			}
			appended := make([]runtime.Value, 0, len(l.Elements)+1)
			appended = append(appended, l.Elements...)
			return runtime.NewList(append(appended, right)...), nil
		}
	}
	return nil, newError(node, TypeMismatch, "unsupported operand types for %s: %s and %s", op, left.Kind(), right.Kind())
}

func arithmetic(op string, a, b float64) (float64, bool) {
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		return a / b, true
	case "^":
		return math.Pow(a, b), true
	}
	return 0, false
}

func (i *Interpreter) evaluateUnaryExpression(n *ast.UnaryExpression) (runtime.Value, error) {
	operand, err := i.evaluate(n.Operand)
	if err != nil {
		return nil, err
	}
	num, ok := operand.(runtime.NumberValue)
	if !ok {
		return nil, newError(n, TypeMismatch, "unary %s requires a number, got %s", n.Operator, operand.Kind())
	}
	result, ok := unary(n.Operator, num.Val)
	if !ok {
		return nil, newError(n, Internal, "unknown unary operator %s", n.Operator)
	}
	return runtime.NumberValue{Val: result}, nil
}

func unary(op ast.UnaryOperator, v float64) (float64, bool) {
	switch op {
	case ast.UnaryNegate:
		return -v, true
	case ast.UnaryAbs:
		return math.Abs(v), true
	case ast.UnaryNot:
		if v == 0 {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (i *Interpreter) evaluateComparison(n *ast.ComparisonExpression) (runtime.Value, error) {
	left, err := i.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	if left.Kind() != right.Kind() {
		return nil, newError(n, TypeMismatch, "cannot compare %s with %s", left.Kind(), right.Kind())
	}
	switch l := left.(type) {
	case runtime.NumberValue:
		if result, ok := compareOrdered(n.Operator, l.Val, right.(runtime.NumberValue).Val); ok {
			return runtime.Bool(result), nil
		}
	case runtime.StringValue:
		if result, ok := compareOrdered(n.Operator, l.Val, right.(runtime.StringValue).Val); ok {
			return runtime.Bool(result), nil
		}
	case *runtime.ListValue:
		switch n.Operator {
		case "==":
			return runtime.Bool(runtime.Equal(l, right)), nil
		case "!=":
			return runtime.Bool(!runtime.Equal(l, right)), nil
		}
		return nil, newError(n, TypeMismatch, "lists only support == and !=, got %s", n.Operator)
	}
	return nil, newError(n, Internal, "unknown comparison operator %s", n.Operator)
}

func compareOrdered[T cmp.Ordered](op string, a, b T) (bool, bool) {
	switch op {
	case ">":
		return a > b, true
	case "<":
		return a < b, true
	case ">=":
		return a >= b, true
	case "<=":
		return a <= b, true
	case "==":
		return a == b, true
	case "!=":
		return a != b, true
	}
	return false, false
}

// Both operands are always evaluated.
func (i *Interpreter) evaluateLogical(n *ast.LogicalExpression) (runtime.Value, error) {
	left, err := i.evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	if left.Kind() != right.Kind() {
		return nil, newError(n, TypeMismatch, "operands of %s must share a type, got %s and %s", n.Operator, left.Kind(), right.Kind())
	}
	switch n.Operator {
	case "and":
		return runtime.Bool(runtime.Truthy(left) && runtime.Truthy(right)), nil
	case "or":
		return runtime.Bool(runtime.Truthy(left) || runtime.Truthy(right)), nil
	}
	return nil, newError(n, Internal, "unknown logical operator %s", n.Operator)
}
