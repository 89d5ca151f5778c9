package parser

import (
	"fmt"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
)

var comparisonOperators = map[TokenType]string{
	EQ: "==", NEQ: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
}

// ParseModule parses a whole source file. path is recorded on the module only.
func ParseModule(path string, source []byte) (*ast.Module, error) {
	tokens, err := Tokenize(string(source))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	var body []ast.Statement
	for {
		p.skipSemicolons()
		if p.check(EOF) {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	module := ast.NewModule(body)
	module.Path = path
	module.SetLine(1)
	return module, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) peekAt(offset int) Token {
	if p.pos+offset < len(p.tokens) {
		return p.tokens[p.pos+offset]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType, context string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errorf(p.peek(), "expected %s %s, found %s", tt, context, describe(p.peek()))
}

func (p *parser) skipSemicolons() {
	for p.match(SEMICOLON) {
	}
}

func (p *parser) errorf(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Location: SourceLocation{Line: tok.Line, Column: tok.Col}}
}

func describe(tok Token) string {
	if tok.Type == EOF {
		return tok.Type.String()
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func at[T ast.Node](node T, tok Token) T {
	node.SetLine(tok.Line)
	return node
}

// Statements

func (p *parser) statement() (ast.Statement, error) {
	tok := p.peek()
	switch tok.Type {
	case TYPE:
		return p.declaration()
	case DEFINE:
		return p.functionDefinition()
	case RETURN:
		p.advance()
		if p.check(SEMICOLON) || p.check(RBRACE) || p.check(EOF) {
			return at(ast.NewReturnStatement(nil), tok), nil
		}
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		return at(ast.NewReturnStatement(arg), tok), nil
	case WHETHER:
		return p.ifStatement()
	case WHEN:
		return p.whileLoop()
	case SHIFT:
		return p.forLoop()
	}
	return p.expression()
}

func (p *parser) declaration() (ast.Statement, error) {
	typeTok := p.advance()
	dataType, _ := ast.ParseDataType(typeTok.Lexeme)
	name, err := p.expect(ID, "after type "+typeTok.Lexeme)
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if p.match(ASSIGN) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	return at(ast.NewDeclaration(dataType, name.Lexeme, init), typeTok), nil
}

func (p *parser) functionDefinition() (ast.Statement, error) {
	defTok := p.advance()
	typeTok, err := p.expect(TYPE, "after 'define'")
	if err != nil {
		return nil, err
	}
	returnType, _ := ast.ParseDataType(typeTok.Lexeme)
	name, err := p.expect(ID, "as function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(RPAREN) {
		for {
			param, err := p.expect(ID, "in parameter list")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN, "to close parameter list"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return at(ast.NewFunctionDefinition(returnType, name.Lexeme, params, body), defTok), nil
}

func (p *parser) block() (*ast.StatementList, error) {
	open, err := p.expect(LBRACE, "to open block")
	if err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for {
		p.skipSemicolons()
		if p.match(RBRACE) {
			break
		}
		if p.check(EOF) {
			return nil, p.errorf(p.peek(), "unterminated block opened at line %d", open.Line)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return at(ast.NewStatementList(stmts), open), nil
}

// body is a braced block or a single statement.
func (p *parser) body() (*ast.StatementList, error) {
	if p.check(LBRACE) {
		return p.block()
	}
	tok := p.peek()
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	return at(ast.NewStatementList([]ast.Statement{stmt}), tok), nil
}

// condition accepts an expression, optionally wrapped in square brackets.
func (p *parser) condition() (ast.Expression, error) {
	if !p.match(LBRACKET) {
		return p.expression()
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACKET, "to close condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) ifStatement() (ast.Statement, error) {
	tok := p.advance()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(THEN, "after condition"); err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "after 'then'"); err != nil {
		return nil, err
	}
	then, err := p.body()
	if err != nil {
		return nil, err
	}
	var otherwise *ast.StatementList
	save := p.pos
	p.skipSemicolons()
	if p.match(OTHERWISE) {
		if _, err := p.expect(COLON, "after 'otherwise'"); err != nil {
			return nil, err
		}
		if otherwise, err = p.body(); err != nil {
			return nil, err
		}
	} else {
		p.pos = save
	}
	return at(ast.NewIfStatement(cond, then, otherwise), tok), nil
}

func (p *parser) whileLoop() (ast.Statement, error) {
	tok := p.advance()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(UNTIL, "after loop condition"); err != nil {
		return nil, err
	}
	p.match(COLON)
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return at(ast.NewWhileLoop(cond, body), tok), nil
}

func (p *parser) forLoop() (ast.Statement, error) {
	tok := p.advance()
	if p.check(ID) && p.peekAt(1).Type == FROM {
		return p.rangeLoop(tok)
	}
	if _, err := p.expect(LPAREN, "after 'shift'"); err != nil {
		return nil, err
	}
	init, err := p.statement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "after loop initializer"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "after loop condition"); err != nil {
		return nil, err
	}
	step, err := p.statement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "to close loop header"); err != nil {
		return nil, err
	}
	p.match(COLON)
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return at(ast.NewForLoop(init, cond, step, body), tok), nil
}

// rangeLoop desugars "shift i from a to b [step s]" into a counted for loop.
func (p *parser) rangeLoop(tok Token) (ast.Statement, error) {
	name := p.advance().Lexeme
	p.advance() // from
	start, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TO, "in range loop"); err != nil {
		return nil, err
	}
	end, err := p.expression()
	if err != nil {
		return nil, err
	}
	var step ast.Expression = at(ast.NewNumberLiteral(1), tok)
	if p.match(STEP) {
		if step, err = p.expression(); err != nil {
			return nil, err
		}
	}
	p.match(COLON)
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	op := "<="
	if negativeLiteral(step) {
		op = ">="
	}
	init := at(ast.NewAssignmentExpression(name, start), tok)
	cond := at(ast.NewComparisonExpression(op, at(ast.NewIdentifier(name), tok), end), tok)
	next := at(ast.NewAssignmentExpression(name,
		at(ast.NewBinaryExpression("+", at(ast.NewIdentifier(name), tok), step), tok)), tok)
	return at(ast.NewForLoop(init, cond, next, body), tok), nil
}

func negativeLiteral(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return e.Value < 0
	case *ast.UnaryExpression:
		lit, ok := e.Operand.(*ast.NumberLiteral)
		return ok && e.Operator == ast.UnaryNegate && lit.Value > 0
	}
	return false
}

// Expressions

func (p *parser) expression() (ast.Expression, error) {
	if p.check(ID) && p.peekAt(1).Type == ASSIGN {
		name := p.advance()
		p.advance()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		return at(ast.NewAssignmentExpression(name.Lexeme, value), name), nil
	}
	return p.or()
}

func (p *parser) or() (ast.Expression, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.check(OR) {
		tok := p.advance()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = at(ast.NewLogicalExpression("or", left, right), tok)
	}
	return left, nil
}

func (p *parser) and() (ast.Expression, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.check(AND) {
		tok := p.advance()
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		left = at(ast.NewLogicalExpression("and", left, right), tok)
	}
	return left, nil
}

func (p *parser) not() (ast.Expression, error) {
	if p.check(NOT) {
		tok := p.advance()
		operand, err := p.not()
		if err != nil {
			return nil, err
		}
		return at(ast.NewUnaryExpression(ast.UnaryNot, operand), tok), nil
	}
	return p.comparison()
}

func (p *parser) comparison() (ast.Expression, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	op, ok := comparisonOperators[p.peek().Type]
	if !ok {
		return left, nil
	}
	tok := p.advance()
	right, err := p.additive()
	if err != nil {
		return nil, err
	}
	if _, chained := comparisonOperators[p.peek().Type]; chained {
		return nil, p.errorf(p.peek(), "comparisons cannot be chained")
	}
	return at(ast.NewComparisonExpression(op, left, right), tok), nil
}

func (p *parser) additive() (ast.Expression, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		tok := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = at(ast.NewBinaryExpression(tok.Lexeme, left, right), tok)
	}
	return left, nil
}

func (p *parser) multiplicative() (ast.Expression, error) {
	left, err := p.power()
	if err != nil {
		return nil, err
	}
	for p.check(STAR) || p.check(SLASH) {
		tok := p.advance()
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		left = at(ast.NewBinaryExpression(tok.Lexeme, left, right), tok)
	}
	return left, nil
}

// power is right-associative.
func (p *parser) power() (ast.Expression, error) {
	base, err := p.unary()
	if err != nil {
		return nil, err
	}
	if !p.check(CARET) {
		return base, nil
	}
	tok := p.advance()
	exponent, err := p.power()
	if err != nil {
		return nil, err
	}
	return at(ast.NewBinaryExpression("^", base, exponent), tok), nil
}

func (p *parser) unary() (ast.Expression, error) {
	if p.check(MINUS) {
		tok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return at(ast.NewUnaryExpression(ast.UnaryNegate, operand), tok), nil
	}
	return p.primary()
}

func (p *parser) primary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return at(ast.NewNumberLiteral(tok.Literal.(float64)), tok), nil
	case STRING:
		p.advance()
		return at(ast.NewStringLiteral(tok.Literal.(string)), tok), nil
	case LBRACKET:
		p.advance()
		elements, err := p.arguments(RBRACKET, "to close list")
		if err != nil {
			return nil, err
		}
		return at(ast.NewListLiteral(elements), tok), nil
	case PIPE:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(PIPE, "to close absolute value"); err != nil {
			return nil, err
		}
		return at(ast.NewUnaryExpression(ast.UnaryAbs, inner), tok), nil
	case LPAREN:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "to close group"); err != nil {
			return nil, err
		}
		return inner, nil
	case ID:
		p.advance()
		if !p.match(LPAREN) {
			return at(ast.NewIdentifier(tok.Lexeme), tok), nil
		}
		args, err := p.arguments(RPAREN, "to close call")
		if err != nil {
			return nil, err
		}
		return at(ast.NewFunctionCall(tok.Lexeme, args), tok), nil
	case BUILTIN:
		p.advance()
		builtin, _ := ast.LookupBuiltin(tok.Lexeme)
		if _, err := p.expect(LPAREN, "after builtin "+tok.Lexeme); err != nil {
			return nil, err
		}
		args, err := p.arguments(RPAREN, "to close call")
		if err != nil {
			return nil, err
		}
		return at(ast.NewBuiltinCall(builtin, args), tok), nil
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

// arguments parses a comma-separated expression list up to and including close.
func (p *parser) arguments(close TokenType, context string) ([]ast.Expression, error) {
	var args []ast.Expression
	if p.match(close) {
		return args, nil
	}
	for {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(close, context); err != nil {
		return nil, err
	}
	return args, nil
}
