package ast

import (
	"strings"
	"testing"
)

func TestDumpOutlinesTree(t *testing.T) {
	module := Mod(
		Decl(TypeNumber, "x", Num(5)),
		Fn(TypeNumber, "f", []string{"x"},
			Ret(Bin("+", ID("x"), Num(1))),
		),
		If(Cmp(">", ID("x"), Num(1)),
			Block(CallBuiltin(BuiltinPrint, Str("big"))),
			nil,
		),
	)

	var b strings.Builder
	if err := Dump(&b, module); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"Module",
		"  Declaration number x",
		"    NumberLiteral 5",
		"  FunctionDefinition number f(x)",
		"    StatementList (1)",
		"      Return",
		"        BinaryExpression +",
		"          Identifier x",
		"          NumberLiteral 1",
		"  If",
		"    Comparison >",
		"      Identifier x",
		"      NumberLiteral 1",
		"    Then",
		"      StatementList (1)",
		"        BuiltinCall print",
		"          StringLiteral \"big\"",
		"",
	}, "\n")
	if got := b.String(); got != want {
		t.Fatalf("dump mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestDataTypeKeywords(t *testing.T) {
	cases := map[string]DataType{"number": TypeNumber, "string": TypeString, "list": TypeList}
	for name, want := range cases {
		got, ok := ParseDataType(name)
		if !ok || got != want {
			t.Fatalf("ParseDataType(%q) = %v, %v; want %v", name, got, ok, want)
		}
		if got.String() != name {
			t.Fatalf("String() = %q, want %q", got.String(), name)
		}
	}
	if _, ok := ParseDataType("bool"); ok {
		t.Fatalf("expected bool to be rejected")
	}
}

func TestNodesCarryLines(t *testing.T) {
	id := ID("x")
	id.SetLine(7)
	var node Node = id
	if node.Line() != 7 {
		t.Fatalf("Line() = %d, want 7", node.Line())
	}
}
