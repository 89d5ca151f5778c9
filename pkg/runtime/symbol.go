package runtime

import (
	"sort"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
)

// Symbol is a named storage cell. A symbol with a Body also denotes a user function.
type Symbol struct {
	Name  string
	Type  ast.DataType
	Value Value

	Body       *ast.StatementList
	ReturnType ast.DataType
	Params     []*Symbol
}

// NewSymbol returns an untyped symbol holding 0.
func NewSymbol(name string) *Symbol {
	return &Symbol{Name: name, Value: NumberValue{}}
}

func (s *Symbol) IsFunction() bool {
	return s.Body != nil
}

const (
	initialCapacity = 100
	maxLoadFactor   = 0.7
)

// Scope is an open-addressed hash table of symbols.
//
// Lookups and insertions probe linearly from the home slot. Resizing
// rehashes with quadratic probing, so an entry may sit past an empty slot;
// maxProbe records the longest linear distance any entry has from its home
// slot and bounds every lookup.
type Scope struct {
	slots    []*Symbol
	count    int
	maxProbe int
}

func NewScope() *Scope {
	return &Scope{}
}

func hashName(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*9 ^ uint32(name[i])
	}
	return h
}

func (s *Scope) home(name string) int {
	return int(hashName(name) % uint32(len(s.slots)))
}

// Len is the number of symbols stored.
func (s *Scope) Len() int { return s.count }

// Capacity is the number of slots allocated.
func (s *Scope) Capacity() int { return len(s.slots) }

// Find returns the symbol stored under name, if any.
func (s *Scope) Find(name string) (*Symbol, bool) {
	if s.count == 0 {
		return nil, false
	}
	size := len(s.slots)
	start := s.home(name)
	for i := 0; i <= s.maxProbe && i < size; i++ {
		if sym := s.slots[(start+i)%size]; sym != nil && sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}

// Lookup returns the symbol stored under name, creating an untyped one on a miss.
func (s *Scope) Lookup(name string) *Symbol {
	if sym, ok := s.Find(name); ok {
		return sym
	}
	sym := NewSymbol(name)
	s.insert(sym)
	return sym
}

// Bind stores sym under its own name, replacing any entry with that name.
func (s *Scope) Bind(sym *Symbol) {
	if len(s.slots) > 0 {
		size := len(s.slots)
		start := s.home(sym.Name)
		for i := 0; i <= s.maxProbe && i < size; i++ {
			idx := (start + i) % size
			if cur := s.slots[idx]; cur != nil && cur.Name == sym.Name {
				s.slots[idx] = sym
				return
			}
		}
	}
	s.insert(sym)
}

func (s *Scope) insert(sym *Symbol) {
	if len(s.slots) == 0 || float64(s.count) >= maxLoadFactor*float64(len(s.slots)) {
		s.grow()
	}
	size := len(s.slots)
	start := s.home(sym.Name)
	for i := 0; i < size; i++ {
		idx := (start + i) % size
		if s.slots[idx] == nil {
			s.slots[idx] = sym
			s.count++
			if i > s.maxProbe {
				s.maxProbe = i
			}
			return
		}
	}
	// Unreachable while the load factor stays below 1.
	panic("runtime: symbol table overflow")
}

func (s *Scope) grow() {
	size := len(s.slots) * 2
	if size == 0 {
		size = initialCapacity
	}
	old := s.slots
	s.slots = make([]*Symbol, size)
	s.maxProbe = 0
	for _, sym := range old {
		if sym != nil {
			s.rehash(sym)
		}
	}
}

func (s *Scope) rehash(sym *Symbol) {
	size := len(s.slots)
	start := s.home(sym.Name)
	idx := start
	for probe := 1; probe <= size; probe++ {
		if s.slots[idx] == nil {
			s.place(sym, start, idx)
			return
		}
		idx = (idx + probe*probe) % size
	}
	// Quadratic sequences need not cover a non-prime table; finish linearly.
	for i := 0; i < size; i++ {
		idx = (start + i) % size
		if s.slots[idx] == nil {
			s.place(sym, start, idx)
			return
		}
	}
	panic("runtime: symbol table overflow")
}

func (s *Scope) place(sym *Symbol, start, idx int) {
	s.slots[idx] = sym
	if dist := (idx - start + len(s.slots)) % len(s.slots); dist > s.maxProbe {
		s.maxProbe = dist
	}
}

// Symbols returns the stored symbols ordered by name.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, s.count)
	for _, sym := range s.slots {
		if sym != nil {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
