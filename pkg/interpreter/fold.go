package interpreter

import (
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
)

// FoldConstants rewrites numeric operations whose operands are all number
// literals into a single literal. It runs before evaluation and uses the
// evaluator's own arithmetic, so results are identical either way.
func FoldConstants(module *ast.Module) {
	for idx, stmt := range module.Body {
		module.Body[idx] = foldStatement(stmt)
	}
}

func foldStatement(stmt ast.Statement) ast.Statement {
	switch n := stmt.(type) {
	case ast.Expression:
		return foldExpression(n)
	case *ast.Declaration:
		if n.Initializer != nil {
			n.Initializer = foldExpression(n.Initializer)
		}
	case *ast.StatementList:
		foldList(n)
	case *ast.IfStatement:
		n.Condition = foldExpression(n.Condition)
		foldList(n.Then)
		foldList(n.Else)
	case *ast.WhileLoop:
		n.Condition = foldExpression(n.Condition)
		foldList(n.Body)
	case *ast.ForLoop:
		if n.Init != nil {
			n.Init = foldStatement(n.Init)
		}
		n.Condition = foldExpression(n.Condition)
		if n.Step != nil {
			n.Step = foldStatement(n.Step)
		}
		foldList(n.Body)
	case *ast.FunctionDefinition:
		foldList(n.Body)
	case *ast.ReturnStatement:
		if n.Argument != nil {
			n.Argument = foldExpression(n.Argument)
		}
	}
	return stmt
}

func foldList(list *ast.StatementList) {
	if list == nil {
		return
	}
	for idx, stmt := range list.Statements {
		list.Statements[idx] = foldStatement(stmt)
	}
}

func foldExpression(expr ast.Expression) ast.Expression {
	switch n := expr.(type) {
	case *ast.BinaryExpression:
		n.Left = foldExpression(n.Left)
		n.Right = foldExpression(n.Right)
		if l, r, ok := literalPair(n.Left, n.Right); ok {
			if v, ok := arithmetic(n.Operator, l, r); ok {
				return literalAt(n, v)
			}
		}
	case *ast.UnaryExpression:
		n.Operand = foldExpression(n.Operand)
		if lit, ok := n.Operand.(*ast.NumberLiteral); ok {
			if v, ok := unary(n.Operator, lit.Value); ok {
				return literalAt(n, v)
			}
		}
	case *ast.ComparisonExpression:
		n.Left = foldExpression(n.Left)
		n.Right = foldExpression(n.Right)
		if l, r, ok := literalPair(n.Left, n.Right); ok {
			if v, ok := compareOrdered(n.Operator, l, r); ok {
				return literalAt(n, boolNumber(v))
			}
		}
	case *ast.LogicalExpression:
		n.Left = foldExpression(n.Left)
		n.Right = foldExpression(n.Right)
		if l, r, ok := literalPair(n.Left, n.Right); ok {
			switch n.Operator {
			case "and":
				return literalAt(n, boolNumber(l != 0 && r != 0))
			case "or":
				return literalAt(n, boolNumber(l != 0 || r != 0))
			}
		}
	case *ast.AssignmentExpression:
		n.Value = foldExpression(n.Value)
	case *ast.ListLiteral:
		for idx, el := range n.Elements {
			n.Elements[idx] = foldExpression(el)
		}
	case *ast.BuiltinCall:
		for idx, arg := range n.Arguments {
			n.Arguments[idx] = foldExpression(arg)
		}
	case *ast.FunctionCall:
		for idx, arg := range n.Arguments {
			n.Arguments[idx] = foldExpression(arg)
		}
	}
	return expr
}

func literalPair(left, right ast.Expression) (float64, float64, bool) {
	l, ok := left.(*ast.NumberLiteral)
	if !ok {
		return 0, 0, false
	}
	r, ok := right.(*ast.NumberLiteral)
	if !ok {
		return 0, 0, false
	}
	return l.Value, r.Value, true
}

func literalAt(origin ast.Node, v float64) *ast.NumberLiteral {
	lit := ast.NewNumberLiteral(v)
	lit.SetLine(origin.Line())
	return lit
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
