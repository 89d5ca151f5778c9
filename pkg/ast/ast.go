package ast

import "fmt"

type NodeType string

const (
	NodeNumberLiteral        NodeType = "NumberLiteral"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeListLiteral          NodeType = "ListLiteral"
	NodeIdentifier           NodeType = "Identifier"
	NodeDeclaration          NodeType = "Declaration"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeComparisonExpression NodeType = "ComparisonExpression"
	NodeLogicalExpression    NodeType = "LogicalExpression"
	NodeIfStatement          NodeType = "IfStatement"
	NodeWhileLoop            NodeType = "WhileLoop"
	NodeForLoop              NodeType = "ForLoop"
	NodeStatementList        NodeType = "StatementList"
	NodeBuiltinCall          NodeType = "BuiltinCall"
	NodeFunctionCall         NodeType = "FunctionCall"
	NodeFunctionDefinition   NodeType = "FunctionDefinition"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeModule               NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	Line() int
	SetLine(line int)
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	line int
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Line() int          { return n.line }
func (n *nodeImpl) SetLine(line int)  { n.line = line }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// DataType is the declared type of a symbol. The zero value is untyped.
type DataType int

const (
	TypeUntyped DataType = iota
	TypeNumber
	TypeString
	TypeList
)

func (t DataType) String() string {
	switch t {
	case TypeUntyped:
		return "untyped"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// ParseDataType maps a type keyword to its DataType.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "number":
		return TypeNumber, true
	case "string":
		return TypeString, true
	case "list":
		return TypeList, true
	}
	return TypeUntyped, false
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Bindings

type Declaration struct {
	nodeImpl
	statementMarker

	Type        DataType   `json:"dataType"`
	Name        string     `json:"name"`
	Initializer Expression `json:"initializer,omitempty"`
}

func NewDeclaration(dataType DataType, name string, initializer Expression) *Declaration {
	return &Declaration{nodeImpl: newNodeImpl(NodeDeclaration), Type: dataType, Name: name, Initializer: initializer}
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewAssignmentExpression(name string, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Name: name, Value: value}
}

// Operators

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// UnaryOperator is one of "-", "|" (absolute value) or "not".
type UnaryOperator string

const (
	UnaryNegate UnaryOperator = "-"
	UnaryAbs    UnaryOperator = "|"
	UnaryNot    UnaryOperator = "not"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type ComparisonExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewComparisonExpression(operator string, left, right Expression) *ComparisonExpression {
	return &ComparisonExpression{nodeImpl: newNodeImpl(NodeComparisonExpression), Operator: operator, Left: left, Right: right}
}

type LogicalExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewLogicalExpression(operator string, left, right Expression) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpression), Operator: operator, Left: left, Right: right}
}

// Control flow

type StatementList struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewStatementList(statements []Statement) *StatementList {
	return &StatementList{nodeImpl: newNodeImpl(NodeStatementList), Statements: statements}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression     `json:"condition"`
	Then      *StatementList `json:"then"`
	Else      *StatementList `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then, otherwise *StatementList) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: otherwise}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression     `json:"condition"`
	Body      *StatementList `json:"body"`
}

func NewWhileLoop(condition Expression, body *StatementList) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

type ForLoop struct {
	nodeImpl
	statementMarker

	Init      Statement      `json:"init,omitempty"`
	Condition Expression     `json:"condition"`
	Step      Statement      `json:"step,omitempty"`
	Body      *StatementList `json:"body"`
}

func NewForLoop(init Statement, condition Expression, step Statement, body *StatementList) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Init: init, Condition: condition, Step: step, Body: body}
}

// Calls

// Builtin names a function implemented by the interpreter itself.
type Builtin string

const (
	BuiltinSqrt      Builtin = "sqrt"
	BuiltinExp       Builtin = "exp"
	BuiltinLog       Builtin = "log"
	BuiltinSin       Builtin = "sin"
	BuiltinCos       Builtin = "cos"
	BuiltinTan       Builtin = "tan"
	BuiltinFactorial Builtin = "factorial"
	BuiltinPrint     Builtin = "print"
	BuiltinLength    Builtin = "length"
	BuiltinGet       Builtin = "get"
	BuiltinInput     Builtin = "input"
	BuiltinSplit     Builtin = "split"
	BuiltinCharCount Builtin = "char_count"
	BuiltinRandom    Builtin = "random"
)

var builtins = map[string]Builtin{
	"sqrt":       BuiltinSqrt,
	"exp":        BuiltinExp,
	"log":        BuiltinLog,
	"sin":        BuiltinSin,
	"cos":        BuiltinCos,
	"tan":        BuiltinTan,
	"factorial":  BuiltinFactorial,
	"print":      BuiltinPrint,
	"length":     BuiltinLength,
	"get":        BuiltinGet,
	"input":      BuiltinInput,
	"split":      BuiltinSplit,
	"char_count": BuiltinCharCount,
	"random":     BuiltinRandom,
}

// LookupBuiltin reports whether name is reserved for a builtin.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

type BuiltinCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Builtin   Builtin      `json:"builtin"`
	Arguments []Expression `json:"arguments"`
}

func NewBuiltinCall(builtin Builtin, args []Expression) *BuiltinCall {
	return &BuiltinCall{nodeImpl: newNodeImpl(NodeBuiltinCall), Builtin: builtin, Arguments: args}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    string       `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee string, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	ReturnType DataType       `json:"returnType"`
	Name       string         `json:"name"`
	Params     []string       `json:"params"`
	Body       *StatementList `json:"body"`
}

func NewFunctionDefinition(returnType DataType, name string, params []string, body *StatementList) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), ReturnType: returnType, Name: name, Params: params, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

// Module is a parsed source file.
type Module struct {
	nodeImpl

	Path string      `json:"path,omitempty"`
	Body []Statement `json:"body"`
}

func NewModule(body []Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Body: body}
}
