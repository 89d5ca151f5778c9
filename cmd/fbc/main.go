package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/driver"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/interpreter"
)

const cliToolVersion = "fbc 0.1.0-dev"

// errFailed signals that diagnostics were already printed and the exit code is 1.
var errFailed = errors.New("evaluation failed")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return runWith(args, os.Stdin, os.Stdout, os.Stderr)
}

func runWith(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp(stdin, stdout, stderr)
	if err := app.Run(append([]string{"fbc"}, args...)); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(stderr, "fbc: %v\n", err)
		}
		return 1
	}
	return 0
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        "fbc",
		Usage:       "evaluate .fb scripts",
		Version:     cliToolVersion,
		HideVersion: true,
		Reader:      stdin,
		Writer:      stdout,
		ErrWriter:   stderr,
		Flags:       runFlags(),
		ArgsUsage:   "file...",
		Action:      runAction,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Evaluate preludes then each file in one interpreter",
				ArgsUsage: "file...",
				Flags:     runFlags(),
				Action:    runAction,
			},
			{
				Name:      "dump",
				Usage:     "Print the syntax tree of each file",
				ArgsUsage: "file...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "fold",
						Usage: "Fold constant expressions before printing",
					},
				},
				Action: dumpAction,
			},
			{
				Name:   "repl",
				Usage:  "Read and evaluate statements interactively",
				Flags:  runFlags(),
				Action: replAction,
			},
			{
				Name:  "version",
				Usage: "Print the tool version",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, cliToolVersion)
					return nil
				},
			},
		},
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to fbc.yml (default: nearest one above the first file)",
		},
		&cli.BoolFlag{
			Name:  "echo",
			Usage: "Print \"= value\" after each top-level statement",
		},
		&cli.BoolFlag{
			Name:  "dump-ast",
			Usage: "Print each module's syntax tree before evaluating it",
		},
		&cli.BoolFlag{
			Name:  "fold",
			Usage: "Fold constant expressions before evaluating",
		},
		&cli.StringFlag{
			Name:  "loop-scope",
			Usage: "Loop body scoping: loop or iteration",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "trace, debug, info, warn or error",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for random()",
		},
	}
}

// loadConfig reads --config or the nearest fbc.yml and applies flag overrides.
func loadConfig(c *cli.Context, start string) (*driver.Config, error) {
	path := c.String("config")
	if path == "" {
		found, err := driver.FindConfig(start)
		if err != nil {
			return nil, err
		}
		path = found
	}
	cfg := driver.DefaultConfig()
	if path != "" {
		loaded, err := driver.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("echo") {
		cfg.Echo = c.Bool("echo")
	}
	if c.IsSet("dump-ast") {
		cfg.DumpAST = c.Bool("dump-ast")
	}
	if c.IsSet("fold") {
		cfg.FoldConstants = c.Bool("fold")
	}
	if c.IsSet("loop-scope") {
		policy, err := interpreter.ParseLoopScope(c.String("loop-scope"))
		if err != nil {
			return nil, err
		}
		cfg.LoopScope = policy
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = strings.ToLower(c.String("log-level"))
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		cfg.Seed = &seed
	}
	return cfg, nil
}

// session evaluates several sources in one interpreter.
type session struct {
	cfg     *driver.Config
	interp  *interpreter.Interpreter
	loader  *driver.Loader
	logger  *log.Logger
	stdout  io.Writer
	stderr  io.Writer
	current string
	failed  bool
}

func newSession(c *cli.Context, cfg *driver.Config) *session {
	s := &session{
		cfg:    cfg,
		logger: cfg.NewLogger(c.App.ErrWriter),
		stdout: c.App.Writer,
		stderr: c.App.ErrWriter,
	}
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		s.logger.Warn().Err(err).Msg("git preludes disabled")
	}
	s.loader = driver.NewLoader(cacheDir, s.logger)

	opts := append(cfg.InterpreterOptions(),
		interpreter.WithOutput(c.App.Writer),
		interpreter.WithInput(c.App.Reader),
		interpreter.WithLogger(s.logger),
		interpreter.WithReporter(interpreter.ErrorReporterFunc(func(line int, message string) {
			fmt.Fprintf(s.stderr, "%s:%d: error: %s\n", s.current, line, message)
		})),
	)
	s.interp = interpreter.New(opts...)
	s.logger.Debug().Str("config", cfg.Path).Str("loop_scope", cfg.LoopScope.String()).Int("max_scope_depth", cfg.MaxScopeDepth).Msg("session ready")
	return s
}

func (s *session) evalPreludes() error {
	preludes, err := s.loader.Preludes(s.cfg)
	if err != nil {
		return err
	}
	for _, src := range preludes {
		if err := s.eval(src); err != nil {
			return err
		}
	}
	return nil
}

// eval parses and evaluates one source. Parse failures are reported and
// skipped; a fatal runtime error is returned.
func (s *session) eval(src *driver.Source) error {
	s.current = src.Path
	mod, err := src.Parse()
	if err != nil {
		fmt.Fprintf(s.stderr, "%v\n", err)
		s.failed = true
		return nil
	}
	if s.cfg.FoldConstants {
		interpreter.FoldConstants(mod)
	}
	if s.cfg.DumpAST {
		if err := ast.Dump(s.stdout, mod); err != nil {
			return err
		}
	}
	if _, err := s.interp.EvaluateModule(mod); err != nil {
		fmt.Fprintf(s.stderr, "%s: fatal: %v\n", src.Path, err)
		return errFailed
	}
	return nil
}

func (s *session) result() error {
	if s.failed || s.interp.ReportedErrors() > 0 {
		return errFailed
	}
	return nil
}

func runAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		_ = cli.ShowAppHelp(c)
		return errFailed
	}
	cfg, err := loadConfig(c, filepath.Dir(files[0]))
	if err != nil {
		return err
	}
	s := newSession(c, cfg)
	if err := s.evalPreludes(); err != nil {
		return err
	}
	for _, file := range files {
		src, err := s.loader.ReadFile(file)
		if err != nil {
			return err
		}
		if err := s.eval(src); err != nil {
			return err
		}
	}
	return s.result()
}

func dumpAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("dump requires at least one file")
	}
	loader := driver.NewLoader("", nil)
	for _, file := range files {
		src, err := loader.ReadFile(file)
		if err != nil {
			return err
		}
		mod, err := src.Parse()
		if err != nil {
			return err
		}
		if c.Bool("fold") {
			interpreter.FoldConstants(mod)
		}
		if err := ast.Dump(c.App.Writer, mod); err != nil {
			return err
		}
	}
	return nil
}

func replAction(c *cli.Context) error {
	cfg, err := loadConfig(c, ".")
	if err != nil {
		return err
	}
	if !c.IsSet("echo") {
		cfg.Echo = true
	}
	s := newSession(c, cfg)
	if err := s.evalPreludes(); err != nil {
		return err
	}
	s.current = "repl"

	scanner := bufio.NewScanner(c.App.Reader)
	var pending strings.Builder
	prompt := "> "
	// held is a parsed statement list ending in a 'whether' with no
	// 'otherwise'; it runs once the next line turns out not to continue it.
	var held *ast.Module
	run := func(mod *ast.Module) error {
		if s.cfg.FoldConstants {
			interpreter.FoldConstants(mod)
		}
		if _, err := s.interp.EvaluateModule(mod); err != nil {
			fmt.Fprintf(s.stderr, "fatal: %v\n", err)
			return errFailed
		}
		return nil
	}
	for {
		fmt.Fprint(s.stdout, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.stdout)
			if held != nil {
				if err := run(held); err != nil {
					return err
				}
			}
			return scanner.Err()
		}
		line := scanner.Text()
		if held != nil {
			if strings.HasPrefix(strings.TrimSpace(line), "otherwise") {
				held = nil
			} else {
				mod := held
				held = nil
				pending.Reset()
				prompt = "> "
				if err := run(mod); err != nil {
					return err
				}
			}
		}
		if pending.Len() == 0 {
			switch strings.TrimSpace(line) {
			case ":quit", ":q":
				return nil
			case ":symbols":
				fmt.Fprintln(s.stdout, strings.Join(s.interp.Scopes().Names(), " "))
				continue
			case "":
				continue
			}
		}
		pending.WriteString(line)
		pending.WriteByte('\n')

		src := &driver.Source{Path: "repl", Text: pending.String()}
		mod, err := src.Parse()
		if err != nil {
			if incomplete(err) {
				prompt = "... "
				continue
			}
			fmt.Fprintf(s.stderr, "%v\n", err)
			pending.Reset()
			prompt = "> "
			continue
		}
		if awaitsOtherwise(mod) {
			held = mod
			prompt = "... "
			continue
		}
		pending.Reset()
		prompt = "> "
		if err := run(mod); err != nil {
			return err
		}
	}
}

// awaitsOtherwise reports whether the last statement is a 'whether' that an
// 'otherwise' on the next line could still complete.
func awaitsOtherwise(mod *ast.Module) bool {
	if len(mod.Body) == 0 {
		return false
	}
	stmt, ok := mod.Body[len(mod.Body)-1].(*ast.IfStatement)
	return ok && stmt.Else == nil
}

// incomplete reports whether more input could complete the statement.
func incomplete(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "end of input") || strings.Contains(msg, "unterminated block")
}
