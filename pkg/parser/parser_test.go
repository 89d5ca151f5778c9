package parser_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/interpreter"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/parser"
)

func runSource(t *testing.T, source string, opts ...interpreter.Option) (string, []string) {
	t.Helper()
	mod, err := parser.ParseModule("test.fb", []byte(source))
	if err != nil {
		t.Fatalf("ParseModule returned error: %v", err)
	}
	var out bytes.Buffer
	var reported []string
	opts = append([]interpreter.Option{
		interpreter.WithOutput(&out),
		interpreter.WithReporter(interpreter.ErrorReporterFunc(func(line int, message string) {
			reported = append(reported, message)
		})),
	}, opts...)
	interp := interpreter.New(opts...)
	if _, err := interp.EvaluateModule(mod); err != nil {
		t.Fatalf("EvaluateModule returned error: %v", err)
	}
	return out.String(), reported
}

func TestRecursiveFactorialProgram(t *testing.T) {
	out, reported := runSource(t, `
define number fact(n) {
    whether [n <= 1] then: return 1;
    otherwise: return n * fact(n-1);
}
print(fact(5));
`)
	if len(reported) != 0 {
		t.Fatalf("unexpected errors %v", reported)
	}
	if out != "120\n" {
		t.Fatalf("expected 120, got %q", out)
	}
}

func TestNumeralLiterals(t *testing.T) {
	out, _ := runSource(t, `print(0rXIV, 0b1011, 2.5e1, 0rMCMXCIV)`)
	if out != "14 11 25 1994\n" {
		t.Fatalf("unexpected literals %q", out)
	}
}

func TestStringsAndComments(t *testing.T) {
	out, _ := runSource(t, `
# greeting
string s = "say \"hi\"\tnow" # trailing comment
print(s)
print(char_count("a\nb"))
`)
	if out != "say \"hi\"\tnow\n3\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	out, _ := runSource(t, `
print(1 + 2 * 3, 2 ^ 3 ^ 2, -2 ^ 2, |3 - 5| * 2)
print(1 < 2 and not 0, 0 or 1 == 2)
`)
	if out != "7 512 4 4\n1 0\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLoops(t *testing.T) {
	out, _ := runSource(t, `
number total = 0
shift i from 1 to 4 { total = total + i }
print(total)
shift (number k = 3; k > 0; k = k - 1) print(k)
shift j from 3 to 1 step -1: print(j * 10)
number w = 0
when [w < 2] until: { w = w + 1 }
print(w)
`)
	if out != "10\n3\n2\n1\n30\n20\n10\n2\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestListsAndBuiltins(t *testing.T) {
	out, _ := runSource(t, `
list l = [1, "two", [3]]
l = l + 4
print(length(l), get(l, 1), get(l, 2, 0))
print(l)
`)
	if out != "4 two 3\n(1, \"two\", (3), 4)\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRuntimeErrorsCarryLines(t *testing.T) {
	mod, err := parser.ParseModule("", []byte("number x = 1\n\nx = \"oops\"\nprint(x)\n"))
	if err != nil {
		t.Fatalf("ParseModule returned error: %v", err)
	}
	var lines []int
	var out bytes.Buffer
	interp := interpreter.New(
		interpreter.WithOutput(&out),
		interpreter.WithReporter(interpreter.ErrorReporterFunc(func(line int, message string) {
			lines = append(lines, line)
		})),
	)
	if _, err := interp.EvaluateModule(mod); err != nil {
		t.Fatalf("EvaluateModule returned error: %v", err)
	}
	if len(lines) != 1 || lines[0] != 3 {
		t.Fatalf("expected one error on line 3, got %v", lines)
	}
	if out.String() != "1\n" {
		t.Fatalf("evaluation should continue after the error, got %q", out.String())
	}
}

func TestParseModuleShapes(t *testing.T) {
	mod, err := parser.ParseModule("shapes.fb", []byte(`
define string pick(a, b) { return a }
whether 1 then: pick("x", "y")
`))
	if err != nil {
		t.Fatalf("ParseModule returned error: %v", err)
	}
	if mod.Path != "shapes.fb" || len(mod.Body) != 2 {
		t.Fatalf("unexpected module %#v", mod)
	}
	fn, ok := mod.Body[0].(*ast.FunctionDefinition)
	if !ok || fn.Name != "pick" || fn.ReturnType != ast.TypeString || len(fn.Params) != 2 {
		t.Fatalf("unexpected definition %#v", mod.Body[0])
	}
	if fn.Line() != 2 {
		t.Fatalf("definition line = %d, want 2", fn.Line())
	}
	stmt, ok := mod.Body[1].(*ast.IfStatement)
	if !ok || stmt.Else != nil {
		t.Fatalf("unexpected if statement %#v", mod.Body[1])
	}
	if call, ok := stmt.Then.Statements[0].(*ast.FunctionCall); !ok || call.Callee != "pick" {
		t.Fatalf("unexpected then body %#v", stmt.Then.Statements[0])
	}
}

func TestParseErrorsReportLocation(t *testing.T) {
	cases := []struct {
		name   string
		source string
		line   int
		col    int
		msg    string
	}{
		{"MissingParen", "print(1\nnumber y", 2, 1, "expected ')' to close call"},
		{"Chained", "1 < 2 < 3", 1, 7, "comparisons cannot be chained"},
		{"BadRoman", "x = 0rXQ", 1, 5, "invalid literal 0rXQ"},
		{"Unterminated", "string s = \"abc", 1, 12, "unterminated string"},
		{"UnclosedBlock", "define number f() {\n  return 1", 2, 11, "unterminated block"},
		{"BadCharacter", "x = 1 @ 2", 1, 7, "unexpected character '@'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.ParseModule("", []byte(tc.source))
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Location.Line != tc.line || perr.Location.Column != tc.col {
				t.Fatalf("location = %d:%d, want %d:%d (%s)", perr.Location.Line, perr.Location.Column, tc.line, tc.col, perr.Message)
			}
			if !strings.Contains(perr.Message, tc.msg) {
				t.Fatalf("message %q does not contain %q", perr.Message, tc.msg)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := parser.Tokenize("whether [x>=2] then: print(\"a\") # c\n")
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	want := []parser.TokenType{
		parser.WHETHER, parser.LBRACKET, parser.ID, parser.GE, parser.NUMBER, parser.RBRACKET,
		parser.THEN, parser.COLON, parser.BUILTIN, parser.LPAREN, parser.STRING, parser.RPAREN, parser.EOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for idx, tok := range tokens {
		if tok.Type != want[idx] {
			t.Fatalf("token %d = %s, want %s", idx, tok.Type, want[idx])
		}
	}
	if tokens[4].Literal.(float64) != 2 || tokens[2].Col != 10 {
		t.Fatalf("unexpected token details %#v %#v", tokens[4], tokens[2])
	}
	if tokens[12].Line != 2 {
		t.Fatalf("EOF line = %d, want 2", tokens[12].Line)
	}
}
