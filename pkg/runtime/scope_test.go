package runtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
)

func TestHashNameMatchesMultiplyXor(t *testing.T) {
	// "ab": ((0*9)^'a')*9 ^ 'b'
	want := uint32('a')*9 ^ uint32('b')
	if got := hashName("ab"); got != want {
		t.Fatalf("hashName(ab) = %d, want %d", got, want)
	}
}

func TestScopeLookupIsIdempotent(t *testing.T) {
	scope := NewScope()
	first := scope.Lookup("x")
	second := scope.Lookup("x")
	if first != second {
		t.Fatalf("expected the same symbol for repeated lookups")
	}
	if scope.Len() != 1 {
		t.Fatalf("Len = %d, want 1", scope.Len())
	}
	if first.Type != ast.TypeUntyped {
		t.Fatalf("new symbol should be untyped, got %v", first.Type)
	}
}

func TestScopeGrowsAndKeepsEverySymbol(t *testing.T) {
	scope := NewScope()
	const n = 1000
	for i := 0; i < n; i++ {
		sym := scope.Lookup(fmt.Sprintf("v%d", i))
		sym.Type = ast.TypeNumber
		sym.Value = NumberValue{Val: float64(i)}
	}
	if scope.Len() != n {
		t.Fatalf("Len = %d, want %d", scope.Len(), n)
	}
	if scope.Capacity() < n {
		t.Fatalf("Capacity = %d, expected growth past %d", scope.Capacity(), n)
	}
	if float64(scope.Len()) > maxLoadFactor*float64(scope.Capacity()) {
		t.Fatalf("load factor exceeded: %d/%d", scope.Len(), scope.Capacity())
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("v%d", i)
		sym, ok := scope.Find(name)
		if !ok {
			t.Fatalf("%s missing after resize", name)
		}
		if sym.Type != ast.TypeNumber {
			t.Fatalf("%s lost its type", name)
		}
		if got := sym.Value.(NumberValue).Val; got != float64(i) {
			t.Fatalf("%s = %v, want %d", name, got, i)
		}
	}
	// Repeated lookups after resizing never duplicate entries.
	for i := 0; i < n; i++ {
		scope.Lookup(fmt.Sprintf("v%d", i))
	}
	if scope.Len() != n {
		t.Fatalf("Len after re-lookup = %d, want %d", scope.Len(), n)
	}
}

func TestScopeResolvesCollidingNames(t *testing.T) {
	buckets := map[uint32][]string{}
	var colliding []string
	for i := 0; i < 5000 && colliding == nil; i++ {
		name := fmt.Sprintf("n%d", i)
		h := hashName(name) % initialCapacity
		buckets[h] = append(buckets[h], name)
		if len(buckets[h]) == 4 {
			colliding = buckets[h]
		}
	}
	if colliding == nil {
		t.Fatalf("could not find colliding names")
	}
	scope := NewScope()
	for _, name := range colliding {
		scope.Lookup(name)
	}
	// Force a rehash with quadratic placement, then confirm linear lookups still find them.
	for i := 0; i < 80; i++ {
		scope.Lookup(fmt.Sprintf("fill%d", i))
	}
	for _, name := range colliding {
		if _, ok := scope.Find(name); !ok {
			t.Fatalf("%s not found after rehash", name)
		}
	}
	before := scope.Len()
	for _, name := range colliding {
		scope.Lookup(name)
	}
	if scope.Len() != before {
		t.Fatalf("lookup duplicated colliding names: %d -> %d", before, scope.Len())
	}
}

func TestScopeBindReplacesByName(t *testing.T) {
	scope := NewScope()
	scope.Lookup("p").Value = NumberValue{Val: 1}
	other := NewSymbol("p")
	other.Value = NumberValue{Val: 2}
	scope.Bind(other)
	got, _ := scope.Find("p")
	if got != other || scope.Len() != 1 {
		t.Fatalf("expected bind to replace the existing entry")
	}
}

func TestScopeStackRoundTrip(t *testing.T) {
	stack := NewScopeStack(0)
	stack.Lookup("g")
	before := stack.Names()

	if err := stack.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, existed := stack.Declare("local"); existed {
		t.Fatalf("local should be new")
	}
	if _, ok := stack.Resolve("g"); !ok {
		t.Fatalf("global should be visible from the inner scope")
	}
	if err := stack.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}

	after := stack.Names()
	if fmt.Sprint(before) != fmt.Sprint(after) {
		t.Fatalf("visible names changed: %v -> %v", before, after)
	}
	if _, ok := stack.Resolve("local"); ok {
		t.Fatalf("local survived its scope")
	}
}

func TestScopeStackShadowing(t *testing.T) {
	stack := NewScopeStack(0)
	outer := stack.Lookup("x")
	if err := stack.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}
	inner, existed := stack.Declare("x")
	if existed || inner == outer {
		t.Fatalf("declare should shadow the outer symbol")
	}
	if got := stack.Lookup("x"); got != inner {
		t.Fatalf("lookup should find the innermost symbol")
	}
	_ = stack.Pop()
	if got := stack.Lookup("x"); got != outer {
		t.Fatalf("outer symbol should be visible again")
	}
}

func TestScopeStackGuards(t *testing.T) {
	stack := NewScopeStack(2)
	if err := stack.Pop(); !errors.Is(err, ErrPopGlobalScope) {
		t.Fatalf("expected ErrPopGlobalScope, got %v", err)
	}
	if err := stack.Push(); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := stack.Push(); !errors.Is(err, ErrScopeDepth) {
		t.Fatalf("expected ErrScopeDepth, got %v", err)
	}
	if stack.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", stack.Depth())
	}
}
