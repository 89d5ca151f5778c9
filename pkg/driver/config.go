package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/log"
	"gopkg.in/yaml.v3"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/interpreter"
)

// ConfigFileName is searched for from the entry script's directory upward.
const ConfigFileName = "fbc.yml"

var logLevels = map[string]log.Level{
	"trace": log.TraceLevel,
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
}

// Config represents the parsed contents of fbc.yml.
type Config struct {
	// Path is the absolute path of the file the config was read from; empty for defaults.
	Path          string
	Echo          bool
	DumpAST       bool
	FoldConstants bool
	LoopScope     interpreter.LoopScope
	MaxScopeDepth int
	LogLevel      string
	Seed          *uint64
	Preludes      []*PreludeSpec
}

// PreludeSpec names a script evaluated before the entry files. Exactly one
// of Path or Git is set; git preludes pin one of Rev, Tag or Branch.
type PreludeSpec struct {
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
	File   string
}

// Describe renders the prelude for logs and error messages.
func (p *PreludeSpec) Describe() string {
	if p.Git == "" {
		return p.Path
	}
	ref := p.Rev
	if ref == "" {
		ref = p.Tag
	}
	if ref == "" {
		ref = p.Branch
	}
	return fmt.Sprintf("%s@%s:%s", p.Git, ref, p.File)
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultConfig is used when no fbc.yml is found.
func DefaultConfig() *Config {
	return &Config{
		LoopScope:     interpreter.LoopScopePerLoop,
		MaxScopeDepth: interpreter.DefaultMaxScopeDepth,
		LogLevel:      "warn",
	}
}

// Dir is the directory relative prelude paths resolve against.
func (c *Config) Dir() string {
	if c.Path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(c.Path)
}

// Level maps LogLevel onto the logger's levels.
func (c *Config) Level() log.Level {
	if level, ok := logLevels[c.LogLevel]; ok {
		return level
	}
	return log.WarnLevel
}

// NewLogger builds a leveled logger writing to w.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	return &log.Logger{Level: c.Level(), Writer: &log.IOWriter{Writer: w}}
}

// InterpreterOptions translates the config into interpreter options.
func (c *Config) InterpreterOptions() []interpreter.Option {
	opts := []interpreter.Option{
		interpreter.WithEcho(c.Echo),
		interpreter.WithLoopScope(c.LoopScope),
		interpreter.WithMaxScopeDepth(c.MaxScopeDepth),
	}
	if c.Seed != nil {
		opts = append(opts, interpreter.WithSeed(*c.Seed))
	}
	return opts
}

// LoadConfig parses fbc.yml from disk, returning a validated config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			cfg := DefaultConfig()
			cfg.Path = absPath
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	return raw.toConfig(absPath)
}

// FindConfig walks from start toward the filesystem root and returns the
// first fbc.yml found, or "" when there is none.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

type configFile struct {
	Echo          bool           `yaml:"echo"`
	DumpAST       bool           `yaml:"dump_ast"`
	FoldConstants bool           `yaml:"fold_constants"`
	LoopScope     string         `yaml:"loop_scope"`
	MaxScopeDepth *int           `yaml:"max_scope_depth"`
	LogLevel      string         `yaml:"log_level"`
	Seed          *uint64        `yaml:"seed"`
	Preludes      []preludeEntry `yaml:"preludes"`
}

type preludeEntry struct {
	Path   string `yaml:"path"`
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	File   string `yaml:"file"`
}

func (cf configFile) toConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.Echo = cf.Echo
	cfg.DumpAST = cf.DumpAST
	cfg.FoldConstants = cf.FoldConstants
	cfg.Seed = cf.Seed

	var errs ValidationError
	if scope := strings.TrimSpace(cf.LoopScope); scope != "" {
		policy, err := interpreter.ParseLoopScope(scope)
		if err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("loop_scope: %v", err))
		}
		cfg.LoopScope = policy
	}
	if cf.MaxScopeDepth != nil {
		if *cf.MaxScopeDepth < 2 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("max_scope_depth must be at least 2, got %d", *cf.MaxScopeDepth))
		}
		cfg.MaxScopeDepth = *cf.MaxScopeDepth
	}
	if level := strings.ToLower(strings.TrimSpace(cf.LogLevel)); level != "" {
		if _, ok := logLevels[level]; !ok {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log_level %q must be one of trace, debug, info, warn, error", cf.LogLevel))
		}
		cfg.LogLevel = level
	}

	for idx, entry := range cf.Preludes {
		spec := &PreludeSpec{
			Path:   strings.TrimSpace(entry.Path),
			Git:    strings.TrimSpace(entry.Git),
			Rev:    strings.TrimSpace(entry.Rev),
			Tag:    strings.TrimSpace(entry.Tag),
			Branch: strings.TrimSpace(entry.Branch),
			File:   strings.TrimSpace(entry.File),
		}
		for _, issue := range spec.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("preludes[%d]: %s", idx, issue))
		}
		cfg.Preludes = append(cfg.Preludes, spec)
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return cfg, nil
}

func (p *PreludeSpec) validate() []string {
	var issues []string
	switch {
	case p.Path == "" && p.Git == "":
		issues = append(issues, "path or git must be provided")
	case p.Path != "" && p.Git != "":
		issues = append(issues, "path and git are mutually exclusive")
	case p.Path != "":
		if p.Rev != "" || p.Tag != "" || p.Branch != "" || p.File != "" {
			issues = append(issues, "rev, tag, branch and file only apply to git preludes")
		}
	default:
		refs := 0
		for _, ref := range []string{p.Rev, p.Tag, p.Branch} {
			if ref != "" {
				refs++
			}
		}
		if refs != 1 {
			issues = append(issues, "git preludes require exactly one of rev, tag or branch")
		}
		if p.File == "" {
			issues = append(issues, "git preludes require file")
		} else if filepath.IsAbs(p.File) || strings.HasPrefix(filepath.Clean(p.File), "..") {
			issues = append(issues, fmt.Sprintf("file %q must stay inside the repository", p.File))
		}
	}
	return issues
}
