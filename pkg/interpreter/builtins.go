package interpreter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

var mathBuiltins = map[ast.Builtin]func(float64) float64{
	ast.BuiltinSqrt: math.Sqrt,
	ast.BuiltinExp:  math.Exp,
	ast.BuiltinLog:  math.Log,
	ast.BuiltinSin:  math.Sin,
	ast.BuiltinCos:  math.Cos,
	ast.BuiltinTan:  math.Tan,
}

func (i *Interpreter) callBuiltin(n *ast.BuiltinCall) (runtime.Value, error) {
	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := i.evaluate(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	if fn, ok := mathBuiltins[n.Builtin]; ok {
		x, err := numberArg(n, args)
		if err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: fn(x)}, nil
	}

	switch n.Builtin {
	case ast.BuiltinFactorial:
		x, err := numberArg(n, args)
		if err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: factorial(x)}, nil
	case ast.BuiltinPrint:
		return i.builtinPrint(args)
	case ast.BuiltinLength:
		if err := arity(n, args, 1, 1); err != nil {
			return nil, err
		}
		list, ok := args[0].(*runtime.ListValue)
		if !ok {
			return nil, newError(n, TypeMismatch, "length expects a list, got %s", args[0].Kind())
		}
		return runtime.NumberValue{Val: float64(len(list.Elements))}, nil
	case ast.BuiltinGet:
		return builtinGet(n, args)
	case ast.BuiltinInput:
		return i.builtinInput(n, args)
	case ast.BuiltinSplit:
		s, err := stringArg(n, args)
		if err != nil {
			return nil, err
		}
		fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' })
		parts := make([]runtime.Value, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, runtime.StringValue{Val: f})
		}
		return runtime.NewList(parts...), nil
	case ast.BuiltinCharCount:
		s, err := stringArg(n, args)
		if err != nil {
			return nil, err
		}
		return runtime.NumberValue{Val: float64(utf8.RuneCountInString(s))}, nil
	case ast.BuiltinRandom:
		bound, err := numberArg(n, args)
		if err != nil {
			return nil, err
		}
		if bound < 1 || math.IsNaN(bound) {
			return runtime.NumberValue{Val: math.NaN()}, nil
		}
		bound = math.Min(bound, 1<<62)
		return runtime.NumberValue{Val: float64(i.rng.Int64N(int64(bound)))}, nil
	}
	return nil, newError(n, Undefined, "unknown builtin %s", n.Builtin)
}

func arity(n *ast.BuiltinCall, args []runtime.Value, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return newError(n, Arity, "%s expects %d argument(s), got %d", n.Builtin, lo, len(args))
		}
		return newError(n, Arity, "%s expects %d to %d arguments, got %d", n.Builtin, lo, hi, len(args))
	}
	return nil
}

func numberArg(n *ast.BuiltinCall, args []runtime.Value) (float64, error) {
	if err := arity(n, args, 1, 1); err != nil {
		return 0, err
	}
	num, ok := args[0].(runtime.NumberValue)
	if !ok {
		return 0, newError(n, TypeMismatch, "%s expects a number, got %s", n.Builtin, args[0].Kind())
	}
	return num.Val, nil
}

func stringArg(n *ast.BuiltinCall, args []runtime.Value) (string, error) {
	if err := arity(n, args, 1, 1); err != nil {
		return "", err
	}
	s, ok := args[0].(runtime.StringValue)
	if !ok {
		return "", newError(n, TypeMismatch, "%s expects a string, got %s", n.Builtin, args[0].Kind())
	}
	return s.Val, nil
}

func factorial(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return math.NaN()
	}
	result := 1.0
	for k := 2.0; k <= math.Floor(x); k++ {
		result *= k
		if math.IsInf(result, 1) {
			break
		}
	}
	return result
}

func (i *Interpreter) builtinPrint(args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, arg := range args {
		parts[idx] = runtime.Format(arg)
	}
	fmt.Fprintln(i.out, strings.Join(parts, " "))
	if len(args) == 0 {
		return runtime.NumberValue{}, nil
	}
	return args[len(args)-1], nil
}

// builtinGet indexes a list, or a list of lists when given a row and a column.
func builtinGet(n *ast.BuiltinCall, args []runtime.Value) (runtime.Value, error) {
	if err := arity(n, args, 2, 3); err != nil {
		return nil, err
	}
	current := args[0]
	for _, raw := range args[1:] {
		list, ok := current.(*runtime.ListValue)
		if !ok {
			return nil, newError(n, TypeMismatch, "get expects a list, got %s", current.Kind())
		}
		idx, ok := raw.(runtime.NumberValue)
		if !ok {
			return nil, newError(n, TypeMismatch, "get index must be a number, got %s", raw.Kind())
		}
		if idx.Val != math.Trunc(idx.Val) || idx.Val < 0 || idx.Val >= float64(len(list.Elements)) {
			return nil, newError(n, IndexOutOfRange, "index %s out of range for list of length %d", runtime.FormatNumber(idx.Val), len(list.Elements))
		}
		current = list.Elements[int(idx.Val)]
	}
	return current, nil
}

// builtinInput reads one line; it yields a number when the line parses as one.
func (i *Interpreter) builtinInput(n *ast.BuiltinCall, args []runtime.Value) (runtime.Value, error) {
	if err := arity(n, args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 1 {
		fmt.Fprint(i.out, runtime.Format(args[0]))
	}
	line, err := i.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, wrapError(n, Internal, fmt.Errorf("input: %w", err))
	}
	line = strings.TrimRight(line, "\r\n")
	if num, parseErr := strconv.ParseFloat(strings.TrimSpace(line), 64); parseErr == nil {
		return runtime.NumberValue{Val: num}, nil
	}
	return runtime.StringValue{Val: line}, nil
}
