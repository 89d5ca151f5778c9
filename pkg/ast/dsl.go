package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func List(elements ...Expression) *ListLiteral {
	return NewListLiteral(elements)
}

// Binding helpers.

func Decl(dataType DataType, name string, initializer Expression) *Declaration {
	return NewDeclaration(dataType, name, initializer)
}

func Assign(name string, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(name, value)
}

// Operator helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Neg(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNegate, operand)
}

func Abs(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryAbs, operand)
}

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNot, operand)
}

func Cmp(op string, left, right Expression) *ComparisonExpression {
	return NewComparisonExpression(op, left, right)
}

func And(left, right Expression) *LogicalExpression {
	return NewLogicalExpression("and", left, right)
}

func Or(left, right Expression) *LogicalExpression {
	return NewLogicalExpression("or", left, right)
}

// Control-flow helpers.

func Block(statements ...Statement) *StatementList {
	return NewStatementList(statements)
}

func If(condition Expression, then *StatementList, otherwise *StatementList) *IfStatement {
	return NewIfStatement(condition, then, otherwise)
}

func While(condition Expression, body *StatementList) *WhileLoop {
	return NewWhileLoop(condition, body)
}

func For(init Statement, condition Expression, step Statement, body *StatementList) *ForLoop {
	return NewForLoop(init, condition, step, body)
}

// Call helpers.

func Call(callee string, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func CallBuiltin(builtin Builtin, args ...Expression) *BuiltinCall {
	return NewBuiltinCall(builtin, args)
}

func Fn(returnType DataType, name string, params []string, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(returnType, name, params, NewStatementList(body))
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Mod(body ...Statement) *Module {
	return NewModule(body)
}
