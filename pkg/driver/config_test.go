package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oarkflow/log"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/interpreter"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `
echo: true
dump_ast: true
fold_constants: true
loop_scope: iteration
max_scope_depth: 64
log_level: DEBUG
seed: 7
preludes:
  - path: lib/math.fb
  - git: https://example.com/lib.git
    tag: v1.0.0
    file: src/util.fb
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.Echo || !cfg.DumpAST || !cfg.FoldConstants {
		t.Fatalf("flags not decoded: %#v", cfg)
	}
	if cfg.LoopScope != interpreter.LoopScopePerIteration || cfg.MaxScopeDepth != 64 {
		t.Fatalf("unexpected scope settings: %v %d", cfg.LoopScope, cfg.MaxScopeDepth)
	}
	if cfg.LogLevel != "debug" || cfg.Level() != log.DebugLevel {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Fatalf("seed not decoded: %v", cfg.Seed)
	}
	if len(cfg.Preludes) != 2 {
		t.Fatalf("expected 2 preludes, got %d", len(cfg.Preludes))
	}
	if cfg.Preludes[0].Path != "lib/math.fb" || cfg.Preludes[1].Tag != "v1.0.0" {
		t.Fatalf("unexpected preludes %#v %#v", cfg.Preludes[0], cfg.Preludes[1])
	}
	if got := cfg.Preludes[1].Describe(); got != "https://example.com/lib.git@v1.0.0:src/util.fb" {
		t.Fatalf("Describe = %q", got)
	}
	if cfg.Dir() != dir {
		t.Fatalf("Dir = %q, want %q", cfg.Dir(), dir)
	}
	if opts := cfg.InterpreterOptions(); len(opts) != 4 {
		t.Fatalf("expected 4 interpreter options with a seed, got %d", len(opts))
	}
}

func TestLoadConfigEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxScopeDepth != interpreter.DefaultMaxScopeDepth || cfg.LogLevel != "warn" || cfg.Echo {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "echo: true\nverbose: true\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "verbose") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, `
loop_scope: block
max_scope_depth: 1
log_level: loud
preludes:
  - {}
  - path: a.fb
    git: https://example.com/lib.git
  - git: https://example.com/lib.git
    file: x.fb
  - git: https://example.com/lib.git
    rev: abc
    file: ../escape.fb
  - path: b.fb
    tag: v1
`)
	_, err := LoadConfig(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"loop_scope: unknown loop scope \"block\"",
		"max_scope_depth must be at least 2",
		"log_level \"loud\"",
		"preludes[0]: path or git must be provided",
		"preludes[1]: path and git are mutually exclusive",
		"preludes[2]: git preludes require exactly one of rev, tag or branch",
		"preludes[3]: file \"../escape.fb\" must stay inside the repository",
		"preludes[4]: rev, tag, branch and file only apply to git preludes",
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("got %d issues, want %d:\n%s", len(verr.Issues), len(want), verr.Error())
	}
	for idx, fragment := range want {
		if !strings.Contains(verr.Issues[idx], fragment) {
			t.Fatalf("issue %d = %q, want it to contain %q", idx, verr.Issues[idx], fragment)
		}
	}
	if !strings.HasPrefix(verr.Error(), "config validation failed:\n- ") {
		t.Fatalf("unexpected Error() %q", verr.Error())
	}
}

func TestFindConfigWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "echo: true\n")
	script := filepath.Join(root, "src", "nested", "main.fb")
	writeFile(t, script, "print(1)\n")

	found, err := FindConfig(script)
	if err != nil {
		t.Fatalf("FindConfig returned error: %v", err)
	}
	if found != filepath.Join(root, ConfigFileName) {
		t.Fatalf("FindConfig = %q", found)
	}

	nested := filepath.Join(root, "src", ConfigFileName)
	writeFile(t, nested, "")
	found, err = FindConfig(filepath.Dir(script))
	if err != nil || found != nested {
		t.Fatalf("expected nearest config %q, got %q (%v)", nested, found, err)
	}
}
