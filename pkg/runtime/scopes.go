package runtime

import (
	"errors"
	"sort"

	"github.com/emirpasic/gods/stacks/arraystack"
)

var (
	ErrPopGlobalScope = errors.New("cannot pop the global scope")
	ErrScopeDepth     = errors.New("maximum scope depth exceeded")
)

// ScopeStack holds the active scopes; the bottom one is the global scope.
type ScopeStack struct {
	scopes   *arraystack.Stack
	global   *Scope
	maxDepth int
}

// NewScopeStack returns a stack holding only the global scope. A maxDepth of
// zero leaves the depth unbounded.
func NewScopeStack(maxDepth int) *ScopeStack {
	global := NewScope()
	scopes := arraystack.New()
	scopes.Push(global)
	return &ScopeStack{scopes: scopes, global: global, maxDepth: maxDepth}
}

func (s *ScopeStack) Depth() int { return s.scopes.Size() }

func (s *ScopeStack) Global() *Scope { return s.global }

func (s *ScopeStack) Current() *Scope {
	top, _ := s.scopes.Peek()
	return top.(*Scope)
}

// Push opens a new innermost scope.
func (s *ScopeStack) Push() error {
	if s.maxDepth > 0 && s.scopes.Size() >= s.maxDepth {
		return ErrScopeDepth
	}
	s.scopes.Push(NewScope())
	return nil
}

// Pop discards the innermost scope and everything declared in it.
func (s *ScopeStack) Pop() error {
	if s.scopes.Size() <= 1 {
		return ErrPopGlobalScope
	}
	s.scopes.Pop()
	return nil
}

// Resolve searches innermost to outermost without creating anything.
func (s *ScopeStack) Resolve(name string) (*Symbol, bool) {
	it := s.scopes.Iterator()
	for it.Next() {
		if sym, ok := it.Value().(*Scope).Find(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// Lookup resolves name, creating an untyped symbol in the innermost scope on a miss.
func (s *ScopeStack) Lookup(name string) *Symbol {
	if sym, ok := s.Resolve(name); ok {
		return sym
	}
	return s.Current().Lookup(name)
}

// Declare returns the innermost scope's symbol for name and whether it already existed.
func (s *ScopeStack) Declare(name string) (*Symbol, bool) {
	scope := s.Current()
	if sym, ok := scope.Find(name); ok {
		return sym, true
	}
	return scope.Lookup(name), false
}

// Bind exposes an existing symbol in the innermost scope.
func (s *ScopeStack) Bind(sym *Symbol) {
	s.Current().Bind(sym)
}

// Names lists every identifier visible from the innermost scope, sorted.
func (s *ScopeStack) Names() []string {
	seen := make(map[string]struct{})
	it := s.scopes.Iterator()
	for it.Next() {
		for _, sym := range it.Value().(*Scope).Symbols() {
			seen[sym.Name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
