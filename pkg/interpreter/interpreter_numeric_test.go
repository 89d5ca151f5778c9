package interpreter

import (
	"math"
	"testing"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

func TestArithmetic(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	cases := []struct {
		name string
		expr ast.Expression
		want float64
	}{
		{"Add", ast.Bin("+", ast.Num(2), ast.Num(3)), 5},
		{"Sub", ast.Bin("-", ast.Num(2), ast.Num(3)), -1},
		{"Mul", ast.Bin("*", ast.Num(2), ast.Num(3)), 6},
		{"Div", ast.Bin("/", ast.Num(3), ast.Num(2)), 1.5},
		{"Pow", ast.Bin("^", ast.Num(2), ast.Num(10)), 1024},
		{"Negate", ast.Neg(ast.Num(4)), -4},
		{"Abs", ast.Abs(ast.Num(-4)), 4},
		{"NotZero", ast.Not(ast.Num(0)), 1},
		{"NotNonZero", ast.Not(ast.Num(3)), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectNumber(t, mustEval(t, interp, tc.expr), tc.want)
		})
	}
}

func TestDivisionByZeroFollowsIEEE(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	inf := mustEval(t, interp, ast.Bin("/", ast.Num(1), ast.Num(0))).(runtime.NumberValue)
	if !math.IsInf(inf.Val, 1) {
		t.Fatalf("1/0 = %v, want +Inf", inf.Val)
	}
	nan := mustEval(t, interp, ast.Bin("/", ast.Num(0), ast.Num(0))).(runtime.NumberValue)
	if !math.IsNaN(nan.Val) {
		t.Fatalf("0/0 = %v, want NaN", nan.Val)
	}
	expectNumber(t, mustEval(t, interp, ast.Cmp("==", ast.Bin("/", ast.Num(0), ast.Num(0)), ast.Bin("/", ast.Num(0), ast.Num(0)))), 0)
	expectNumber(t, mustEval(t, interp, ast.Cmp("!=", ast.Bin("/", ast.Num(0), ast.Num(0)), ast.Num(1))), 1)
}

func TestStringConcatenation(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	val := mustEval(t, interp, ast.Bin("+", ast.Str("ab"), ast.Str("cd")))
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "abcd" {
		t.Fatalf("unexpected concatenation %#v", val)
	}
	_, err := interp.Evaluate(ast.Bin("+", ast.Str("a"), ast.Num(1)))
	expectKind(t, err, TypeMismatch)
	_, err = interp.Evaluate(ast.Bin("-", ast.Str("a"), ast.Str("b")))
	expectKind(t, err, TypeMismatch)
	_, err = interp.Evaluate(ast.Neg(ast.Str("a")))
	expectKind(t, err, TypeMismatch)
}

func TestListAppendAndConcat(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	appended := mustEval(t, interp, ast.Bin("+", ast.List(ast.Num(1), ast.Num(2)), ast.Num(3))).(*runtime.ListValue)
	if len(appended.Elements) != 3 {
		t.Fatalf("append length = %d, want 3", len(appended.Elements))
	}
	expectNumber(t, appended.Elements[2], 3)

	joined := mustEval(t, interp, ast.Bin("+", ast.List(ast.Num(1)), ast.List(ast.Num(2), ast.Num(3)))).(*runtime.ListValue)
	if runtime.Format(joined) != "(1, 2, 3)" {
		t.Fatalf("unexpected concat %s", runtime.Format(joined))
	}

	nested := mustEval(t, interp, ast.Bin("+", ast.List(), ast.List(ast.Num(1)))).(*runtime.ListValue)
	if len(nested.Elements) != 1 {
		t.Fatalf("list + list must concatenate, got %s", runtime.Format(nested))
	}

	_, err := interp.Evaluate(ast.Bin("+", ast.Num(1), ast.List()))
	expectKind(t, err, TypeMismatch)
}

func TestListConcatDoesNotAliasOperands(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	mustEval(t, interp, ast.Decl(ast.TypeList, "a", ast.List(ast.Num(1))))
	mustEval(t, interp, ast.Decl(ast.TypeList, "b", ast.Bin("+", ast.ID("a"), ast.Num(2))))
	a, _ := interp.Value("a")
	if runtime.Format(a) != "(1)" {
		t.Fatalf("append modified its operand: %s", runtime.Format(a))
	}
}

func TestComparisons(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	cases := []struct {
		name string
		expr ast.Expression
		want float64
	}{
		{"NumberLess", ast.Cmp("<", ast.Num(1), ast.Num(2)), 1},
		{"NumberGreaterEqual", ast.Cmp(">=", ast.Num(1), ast.Num(2)), 0},
		{"StringOrder", ast.Cmp("<", ast.Str("apple"), ast.Str("banana")), 1},
		{"StringEqual", ast.Cmp("==", ast.Str("x"), ast.Str("x")), 1},
		{"ListEqual", ast.Cmp("==", ast.List(ast.Num(1), ast.Str("a")), ast.List(ast.Num(1), ast.Str("a"))), 1},
		{"ListNotEqual", ast.Cmp("!=", ast.List(ast.Num(1)), ast.List(ast.Num(2))), 1},
		{"And", ast.And(ast.Num(1), ast.Num(0)), 0},
		{"Or", ast.Or(ast.Num(1), ast.Num(0)), 1},
		{"StringAnd", ast.And(ast.Str("a"), ast.Str("b")), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectNumber(t, mustEval(t, interp, tc.expr), tc.want)
		})
	}

	_, err := interp.Evaluate(ast.Cmp("<", ast.Num(1), ast.Str("1")))
	expectKind(t, err, TypeMismatch)
	_, err = interp.Evaluate(ast.Cmp("<", ast.List(), ast.List()))
	expectKind(t, err, TypeMismatch)
	_, err = interp.Evaluate(ast.Or(ast.Num(1), ast.Str("a")))
	expectKind(t, err, TypeMismatch)
}

func TestLogicalEvaluatesBothOperands(t *testing.T) {
	interp, out, _ := newTestInterpreter()
	mustEval(t, interp, ast.Or(ast.Num(1), ast.CallBuiltin(ast.BuiltinPrint, ast.Num(2))))
	if out.String() != "2\n" {
		t.Fatalf("right operand was not evaluated: %q", out.String())
	}
}

func TestFoldConstants(t *testing.T) {
	expr := ast.Bin("+", ast.Num(1), ast.Bin("*", ast.Num(2), ast.Num(3)))
	expr.SetLine(4)
	cond := ast.Cmp("<", ast.ID("x"), ast.Neg(ast.Num(2)))
	module := ast.Mod(
		ast.Decl(ast.TypeNumber, "x", expr),
		ast.While(cond, ast.Block(ast.Assign("x", ast.Bin("-", ast.ID("x"), ast.Bin("^", ast.Num(2), ast.Num(0)))))),
	)
	FoldConstants(module)

	decl := module.Body[0].(*ast.Declaration)
	lit, ok := decl.Initializer.(*ast.NumberLiteral)
	if !ok || lit.Value != 7 {
		t.Fatalf("expected folded literal 7, got %#v", decl.Initializer)
	}
	if lit.Line() != 4 {
		t.Fatalf("folded literal lost its line: %d", lit.Line())
	}
	if _, ok := cond.Right.(*ast.NumberLiteral); !ok {
		t.Fatalf("unary minus on a literal should fold, got %#v", cond.Right)
	}
	if _, ok := cond.Left.(*ast.Identifier); !ok {
		t.Fatalf("identifiers must not fold")
	}
	step := module.Body[1].(*ast.WhileLoop).Body.Statements[0].(*ast.AssignmentExpression)
	if bin := step.Value.(*ast.BinaryExpression); bin.Right.(*ast.NumberLiteral).Value != 1 {
		t.Fatalf("nested constant not folded")
	}
}
