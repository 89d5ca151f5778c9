package interpreter

import (
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

// evaluateFunctionDefinition binds the function in the innermost scope.
// Redefinition replaces the body and the dummy parameters.
func (i *Interpreter) evaluateFunctionDefinition(n *ast.FunctionDefinition) (runtime.Value, error) {
	params := make([]*runtime.Symbol, 0, len(n.Params))
	seen := make(map[string]struct{}, len(n.Params))
	for _, name := range n.Params {
		if _, dup := seen[name]; dup {
			return nil, newError(n, Redeclaration, "duplicate parameter '%s' in function '%s'", name, n.Name)
		}
		seen[name] = struct{}{}
		params = append(params, runtime.NewSymbol(name))
	}
	sym, existed := i.scopes.Declare(n.Name)
	if existed && sym.Type != ast.TypeUntyped {
		return nil, newError(n, Redeclaration, "'%s' is already declared as a %s variable", n.Name, sym.Type)
	}
	sym.Body = n.Body
	sym.ReturnType = n.ReturnType
	sym.Params = params
	i.logger.Debug().Str("function", n.Name).Int("params", len(params)).Msg("function defined")
	return runtime.NumberValue{}, nil
}

// callFunction implements the call protocol: evaluate every argument, then
// save each dummy parameter's value and type, overwrite the value with the
// actual, run the body in a call scope and restore both on every exit path.
// A declaration in the body may type the parameter; that must not outlive
// the call.
func (i *Interpreter) callFunction(n *ast.FunctionCall) (result runtime.Value, err error) {
	fn, ok := i.scopes.Resolve(n.Callee)
	if !ok || !fn.IsFunction() {
		return nil, newError(n, Undefined, "call to undefined function '%s'", n.Callee)
	}
	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, argErr := i.evaluate(arg)
		if argErr != nil {
			return nil, argErr
		}
		args = append(args, val)
	}

	// The body may redefine the function; keep the definition that was called.
	body, params, returnType := fn.Body, fn.Params, fn.ReturnType
	switch {
	case len(args) < len(params):
		return nil, newError(n, Arity, "too few args in call to '%s': want %d, got %d", n.Callee, len(params), len(args))
	case len(args) > len(params):
		return nil, newError(n, Arity, "too many args in call to '%s': want %d, got %d", n.Callee, len(params), len(args))
	}
	for idx, param := range params {
		if !runtime.Admits(param.Type, args[idx]) {
			return nil, newError(n, TypeMismatch, "argument %d of '%s' must be a %s, got %s", idx+1, n.Callee, param.Type, args[idx].Kind())
		}
	}

	if err := i.pushScope(n); err != nil {
		return nil, err
	}
	type savedParam struct {
		typ   ast.DataType
		value runtime.Value
	}
	saved := make([]savedParam, len(params))
	for idx, param := range params {
		saved[idx] = savedParam{typ: param.Type, value: param.Value}
		param.Value = args[idx]
		i.scopes.Bind(param)
	}
	defer func() {
		for idx, param := range params {
			param.Type = saved[idx].typ
			param.Value = saved[idx].value
		}
		i.popScope(n, &err)
	}()

	i.logger.Debug().Str("function", n.Callee).Int("args", len(args)).Int("depth", i.scopes.Depth()).Msg("call")
	val, bodyErr := i.evaluateStatementList(body)
	if bodyErr != nil {
		ret, isReturn := bodyErr.(returnSignal)
		if !isReturn {
			return nil, bodyErr
		}
		val = ret.value
	}
	if !runtime.Admits(returnType, val) {
		return nil, newError(n, TypeMismatch, "function '%s' must return a %s, got %s", n.Callee, returnType, val.Kind())
	}
	return val, nil
}
