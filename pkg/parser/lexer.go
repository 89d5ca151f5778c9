package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Punctuation
	LPAREN    // "("
	RPAREN    // ")"
	LBRACKET  // "["
	RBRACKET  // "]"
	LBRACE    // "{"
	RBRACE    // "}"
	COMMA     // ","
	SEMICOLON // ";"
	COLON     // ":"
	PIPE      // "|" absolute value delimiter

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	CARET
	ASSIGN
	EQ
	NEQ
	LT
	LE
	GT
	GE

	// Literals & identifiers
	ID
	NUMBER
	STRING
	BUILTIN

	// Keywords
	TYPE
	DEFINE
	RETURN
	WHETHER
	THEN
	OTHERWISE
	WHEN
	UNTIL
	SHIFT
	FROM
	TO
	STEP
	AND
	OR
	NOT
)

var tokenNames = map[TokenType]string{
	EOF: "end of input", LPAREN: "'('", RPAREN: "')'", LBRACKET: "'['", RBRACKET: "']'",
	LBRACE: "'{'", RBRACE: "'}'", COMMA: "','", SEMICOLON: "';'", COLON: "':'", PIPE: "'|'",
	PLUS: "'+'", MINUS: "'-'", STAR: "'*'", SLASH: "'/'", CARET: "'^'", ASSIGN: "'='",
	EQ: "'=='", NEQ: "'!='", LT: "'<'", LE: "'<='", GT: "'>'", GE: "'>='",
	ID: "identifier", NUMBER: "number", STRING: "string", BUILTIN: "builtin",
	TYPE: "type", DEFINE: "'define'", RETURN: "'return'", WHETHER: "'whether'", THEN: "'then'",
	OTHERWISE: "'otherwise'", WHEN: "'when'", UNTIL: "'until'", SHIFT: "'shift'", FROM: "'from'",
	TO: "'to'", STEP: "'step'", AND: "'and'", OR: "'or'", NOT: "'not'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any // float64 for NUMBER, string for STRING
	Line    int
	Col     int
}

var keywords = map[string]TokenType{
	"number":    TYPE,
	"string":    TYPE,
	"list":      TYPE,
	"define":    DEFINE,
	"return":    RETURN,
	"whether":   WHETHER,
	"then":      THEN,
	"otherwise": OTHERWISE,
	"when":      WHEN,
	"until":     UNTIL,
	"shift":     SHIFT,
	"from":      FROM,
	"to":        TO,
	"step":      STEP,
	"and":       AND,
	"or":        OR,
	"not":       NOT,
}

// Lexer turns source text into tokens. Comments run from '#' to end of line.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans the whole input; the last token is always EOF.
func Tokenize(src string) ([]Token, error) {
	lx := NewLexer(src)
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) errorf(line, col int, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Location: SourceLocation{Line: line, Column: col}}
}

func (l *Lexer) peekByte(offset int) byte {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		switch ch := l.src[l.pos]; {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipSpaceAndComments()
	line, col, start := l.line, l.col, l.pos
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: line, Col: col}, nil
	}
	tok := func(tt TokenType) (Token, error) {
		return Token{Type: tt, Lexeme: l.src[start:l.pos], Line: line, Col: col}, nil
	}

	ch := l.advance()
	switch {
	case isDigit(ch):
		return l.scanNumber(ch, start, line, col)
	case isIdentStart(ch):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.advance()
		}
		word := l.src[start:l.pos]
		if tt, ok := keywords[word]; ok {
			return tok(tt)
		}
		if _, ok := ast.LookupBuiltin(word); ok {
			return tok(BUILTIN)
		}
		return tok(ID)
	case ch == '"':
		return l.scanString(start, line, col)
	}

	switch ch {
	case '(':
		return tok(LPAREN)
	case ')':
		return tok(RPAREN)
	case '[':
		return tok(LBRACKET)
	case ']':
		return tok(RBRACKET)
	case '{':
		return tok(LBRACE)
	case '}':
		return tok(RBRACE)
	case ',':
		return tok(COMMA)
	case ';':
		return tok(SEMICOLON)
	case ':':
		return tok(COLON)
	case '|':
		return tok(PIPE)
	case '+':
		return tok(PLUS)
	case '-':
		return tok(MINUS)
	case '*':
		return tok(STAR)
	case '/':
		return tok(SLASH)
	case '^':
		return tok(CARET)
	case '=':
		if l.peekByte(0) == '=' {
			l.advance()
			return tok(EQ)
		}
		return tok(ASSIGN)
	case '!':
		if l.peekByte(0) == '=' {
			l.advance()
			return tok(NEQ)
		}
	case '<':
		if l.peekByte(0) == '=' {
			l.advance()
			return tok(LE)
		}
		return tok(LT)
	case '>':
		if l.peekByte(0) == '=' {
			l.advance()
			return tok(GE)
		}
		return tok(GT)
	}
	return Token{}, l.errorf(line, col, "unexpected character %q", ch)
}

// scanNumber scans decimal literals plus the 0b (binary) and 0r (roman) forms.
func (l *Lexer) scanNumber(first byte, start, line, col int) (Token, error) {
	if first == '0' && (l.peekByte(0) == 'b' || l.peekByte(0) == 'r') {
		prefix := l.advance()
		digitsStart := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.advance()
		}
		digits := l.src[digitsStart:l.pos]
		var (
			val int
			err error
		)
		if prefix == 'b' {
			val, err = binaryToInt(digits)
		} else {
			val, err = romanToInt(digits)
		}
		if err != nil {
			return Token{}, l.errorf(line, col, "invalid literal %s: %v", l.src[start:l.pos], err)
		}
		return Token{Type: NUMBER, Lexeme: l.src[start:l.pos], Literal: float64(val), Line: line, Col: col}, nil
	}

	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.advance()
	}
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.advance()
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
	}
	if e := l.peekByte(0); e == 'e' || e == 'E' {
		next := l.peekByte(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekByte(2))) {
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.advance()
			}
		}
	}
	lexeme := l.src[start:l.pos]
	val, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return Token{}, l.errorf(line, col, "invalid number %s", lexeme)
	}
	return Token{Type: NUMBER, Lexeme: lexeme, Literal: val, Line: line, Col: col}, nil
}

func (l *Lexer) scanString(start, line, col int) (Token, error) {
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, l.errorf(line, col, "unterminated string")
		}
		ch := l.advance()
		switch ch {
		case '"':
			return Token{Type: STRING, Lexeme: l.src[start:l.pos], Literal: b.String(), Line: line, Col: col}, nil
		case '\n':
			return Token{}, l.errorf(line, col, "unterminated string")
		case '\\':
			if l.pos >= len(l.src) {
				return Token{}, l.errorf(line, col, "unterminated string")
			}
			switch esc := l.advance(); esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(esc)
			default:
				return Token{}, l.errorf(l.line, l.col-2, "unknown escape \\%c", esc)
			}
		default:
			b.WriteByte(ch)
		}
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
