package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/oarkflow/log"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/runtime"
)

// DefaultMaxScopeDepth bounds nesting, including recursion, when no limit is configured.
const DefaultMaxScopeDepth = 4096

// LoopScope selects how loop bodies are scoped.
type LoopScope int

const (
	// LoopScopePerLoop pushes one scope for the whole loop; body locals persist across iterations.
	LoopScopePerLoop LoopScope = iota
	// LoopScopePerIteration pushes a fresh scope for every iteration.
	LoopScopePerIteration
)

// ParseLoopScope maps the configuration spelling to a LoopScope.
func ParseLoopScope(s string) (LoopScope, error) {
	switch s {
	case "", "loop":
		return LoopScopePerLoop, nil
	case "iteration":
		return LoopScopePerIteration, nil
	}
	return LoopScopePerLoop, fmt.Errorf("unknown loop scope %q (want loop or iteration)", s)
}

func (l LoopScope) String() string {
	if l == LoopScopePerIteration {
		return "iteration"
	}
	return "loop"
}

// ErrorReporter receives recoverable errors, one per failed top-level statement.
type ErrorReporter interface {
	ReportError(line int, message string)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(line int, message string)

func (f ErrorReporterFunc) ReportError(line int, message string) { f(line, message) }

// Interpreter evaluates ASTs against a stack of scopes.
type Interpreter struct {
	scopes    *runtime.ScopeStack
	out       io.Writer
	in        *bufio.Reader
	reporter  ErrorReporter
	logger    *log.Logger
	loopScope LoopScope
	maxDepth  int
	echo      bool
	rng       *rand.Rand

	reported int
}

type Option func(*Interpreter)

func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

func WithInput(r io.Reader) Option {
	return func(i *Interpreter) { i.in = bufio.NewReader(r) }
}

func WithReporter(r ErrorReporter) Option {
	return func(i *Interpreter) { i.reporter = r }
}

func WithLogger(logger *log.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

func WithLoopScope(policy LoopScope) Option {
	return func(i *Interpreter) { i.loopScope = policy }
}

func WithMaxScopeDepth(depth int) Option {
	return func(i *Interpreter) { i.maxDepth = depth }
}

// WithEcho prints "= value" after every successful top-level statement.
func WithEcho(echo bool) Option {
	return func(i *Interpreter) { i.echo = echo }
}

// WithSeed makes random() deterministic.
func WithSeed(seed uint64) Option {
	return func(i *Interpreter) { i.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// New returns an interpreter holding only the global scope.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		out:      os.Stdout,
		maxDepth: DefaultMaxScopeDepth,
		logger:   &log.Logger{Level: log.WarnLevel, Writer: &log.IOWriter{Writer: os.Stderr}},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.in == nil {
		i.in = bufio.NewReader(os.Stdin)
	}
	if i.reporter == nil {
		i.reporter = ErrorReporterFunc(func(line int, message string) {
			fmt.Fprintf(os.Stderr, "%d: error: %s\n", line, message)
		})
	}
	if i.rng == nil {
		i.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	i.scopes = runtime.NewScopeStack(i.maxDepth)
	return i
}

// Scopes exposes the scope stack.
func (i *Interpreter) Scopes() *runtime.ScopeStack {
	return i.scopes
}

// ReportedErrors counts the statements that failed with a recoverable error so far.
func (i *Interpreter) ReportedErrors() int {
	return i.reported
}

// Value returns the current value of a visible variable.
func (i *Interpreter) Value(name string) (runtime.Value, bool) {
	sym, ok := i.scopes.Resolve(name)
	if !ok || sym.IsFunction() {
		return nil, false
	}
	return sym.Value, true
}

// EvaluateModule runs each top-level statement in order. A recoverable error
// is reported with its line and evaluation continues with the next
// statement; a fatal error stops the module and is returned.
func (i *Interpreter) EvaluateModule(module *ast.Module) (runtime.Value, error) {
	var last runtime.Value = runtime.NumberValue{}
	for _, stmt := range module.Body {
		val, err := i.evaluate(stmt)
		if err != nil {
			rerr := asRuntimeError(err, stmt)
			if rerr.Fatal() {
				i.logger.Error().Str("module", module.Path).Int("line", rerr.Line).Err(rerr).Msg("evaluation aborted")
				return nil, rerr
			}
			i.reported++
			i.reporter.ReportError(rerr.Line, rerr.Message)
			continue
		}
		last = val
		if i.echo {
			fmt.Fprintf(i.out, "= %s\n", runtime.Format(val))
		}
	}
	if depth := i.scopes.Depth(); depth != 1 {
		return nil, newError(module, Internal, "scope stack unbalanced after module: depth %d", depth)
	}
	return last, nil
}

// Evaluate runs a single node in the current scope. A stray return becomes an error.
func (i *Interpreter) Evaluate(node ast.Node) (runtime.Value, error) {
	val, err := i.evaluate(node)
	if err != nil {
		return nil, asRuntimeError(err, node)
	}
	return val, nil
}

func (i *Interpreter) pushScope(node ast.Node) error {
	if err := i.scopes.Push(); err != nil {
		return wrapError(node, ResourceExhaustion, err)
	}
	i.logger.Trace().Int("depth", i.scopes.Depth()).Msg("scope push")
	return nil
}

// popScope is deferred after a successful pushScope; err is the caller's named result.
func (i *Interpreter) popScope(node ast.Node, err *error) {
	if popErr := i.scopes.Pop(); popErr != nil {
		if *err == nil {
			*err = wrapError(node, Internal, popErr)
		}
		return
	}
	i.logger.Trace().Int("depth", i.scopes.Depth()).Msg("scope pop")
}
