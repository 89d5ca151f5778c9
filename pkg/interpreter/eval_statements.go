package interpreter

import (
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

func (i *Interpreter) evaluateDeclaration(n *ast.Declaration) (runtime.Value, error) {
	if _, typed := runtime.KindForType(n.Type); !typed {
		return nil, newError(n, Internal, "declaration of '%s' without a type", n.Name)
	}
	val := runtime.ZeroValue(n.Type)
	if n.Initializer != nil {
		init, err := i.evaluate(n.Initializer)
		if err != nil {
			return nil, err
		}
		if !runtime.Admits(n.Type, init) {
			return nil, newError(n, TypeMismatch, "cannot initialize %s variable '%s' with a %s", n.Type, n.Name, init.Kind())
		}
		val = init
	}
	sym, existed := i.scopes.Declare(n.Name)
	if existed && (sym.Type != ast.TypeUntyped || sym.IsFunction()) {
		return nil, newError(n, Redeclaration, "variable '%s' already declared", n.Name)
	}
	sym.Type = n.Type
	sym.Value = val
	return val, nil
}

func (i *Interpreter) evaluateAssignment(n *ast.AssignmentExpression) (runtime.Value, error) {
	val, err := i.evaluate(n.Value)
	if err != nil {
		return nil, err
	}
	sym := i.scopes.Lookup(n.Name)
	if sym.IsFunction() {
		return nil, newError(n, TypeMismatch, "cannot assign to function '%s'", n.Name)
	}
	if !runtime.Admits(sym.Type, val) {
		return nil, newError(n, TypeMismatch, "cannot assign a %s to %s variable '%s'", val.Kind(), sym.Type, n.Name)
	}
	sym.Value = val
	return val, nil
}

func (i *Interpreter) evaluateStatementList(list *ast.StatementList) (runtime.Value, error) {
	var result runtime.Value = runtime.NumberValue{}
	if list == nil {
		return result, nil
	}
	for _, stmt := range list.Statements {
		val, err := i.evaluate(stmt)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

// evaluateScoped runs list inside a freshly pushed scope.
func (i *Interpreter) evaluateScoped(owner ast.Node, list *ast.StatementList) (result runtime.Value, err error) {
	if err := i.pushScope(owner); err != nil {
		return nil, err
	}
	defer i.popScope(owner, &err)
	return i.evaluateStatementList(list)
}

func (i *Interpreter) condition(expr ast.Expression) (bool, error) {
	val, err := i.evaluate(expr)
	if err != nil {
		return false, err
	}
	num, ok := val.(runtime.NumberValue)
	if !ok {
		return false, newError(expr, TypeMismatch, "condition must be a number, got %s", val.Kind())
	}
	return num.Val != 0, nil
}

func (i *Interpreter) evaluateIfStatement(n *ast.IfStatement) (runtime.Value, error) {
	ok, err := i.condition(n.Condition)
	if err != nil {
		return nil, err
	}
	if ok {
		return i.evaluateScoped(n, n.Then)
	}
	if n.Else != nil {
		return i.evaluateScoped(n, n.Else)
	}
	return runtime.NumberValue{}, nil
}

func (i *Interpreter) loopBody(owner ast.Node, body *ast.StatementList) (runtime.Value, error) {
	if i.loopScope == LoopScopePerIteration {
		return i.evaluateScoped(owner, body)
	}
	return i.evaluateStatementList(body)
}

func (i *Interpreter) evaluateWhileLoop(n *ast.WhileLoop) (result runtime.Value, err error) {
	if i.loopScope == LoopScopePerLoop {
		if err := i.pushScope(n); err != nil {
			return nil, err
		}
		defer i.popScope(n, &err)
	}
	result = runtime.NumberValue{}
	for {
		ok, condErr := i.condition(n.Condition)
		if condErr != nil {
			return nil, condErr
		}
		if !ok {
			return result, nil
		}
		val, bodyErr := i.loopBody(n, n.Body)
		if bodyErr != nil {
			return nil, bodyErr
		}
		result = val
	}
}

// The init statement binds into a loop scope that lives for the whole loop.
func (i *Interpreter) evaluateForLoop(n *ast.ForLoop) (result runtime.Value, err error) {
	if err := i.pushScope(n); err != nil {
		return nil, err
	}
	defer i.popScope(n, &err)
	if n.Init != nil {
		if _, initErr := i.evaluate(n.Init); initErr != nil {
			return nil, initErr
		}
	}
	for {
		ok, condErr := i.condition(n.Condition)
		if condErr != nil {
			return nil, condErr
		}
		if !ok {
			return runtime.NumberValue{}, nil
		}
		if _, bodyErr := i.loopBody(n, n.Body); bodyErr != nil {
			return nil, bodyErr
		}
		if n.Step != nil {
			if _, stepErr := i.evaluate(n.Step); stepErr != nil {
				return nil, stepErr
			}
		}
	}
}

func (i *Interpreter) evaluateReturnStatement(n *ast.ReturnStatement) (runtime.Value, error) {
	var val runtime.Value = runtime.NumberValue{}
	if n.Argument != nil {
		v, err := i.evaluate(n.Argument)
		if err != nil {
			return nil, err
		}
		val = v
	}
	return nil, returnSignal{value: val}
}
