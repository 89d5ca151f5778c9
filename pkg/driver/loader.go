package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oarkflow/log"

	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/ast"
	"github.com/Aleabro-Bit/Flex-Bison-Compiler/pkg/parser"
)

// CacheEnv overrides the directory git preludes are checked out into.
const CacheEnv = "FBC_CACHE"

// Source is one script ready to parse.
type Source struct {
	Path string
	Text string
}

// Parse turns the source into a module.
func (s *Source) Parse() (*ast.Module, error) {
	mod, err := parser.ParseModule(s.Path, []byte(s.Text))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", s.Path, err)
	}
	return mod, nil
}

// Loader reads entry scripts and resolves configured preludes.
type Loader struct {
	cacheDir string
	logger   *log.Logger
}

// DefaultCacheDir returns $FBC_CACHE, falling back to the user cache dir.
func DefaultCacheDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(CacheEnv)); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("loader: locate cache dir: %w", err)
	}
	return filepath.Join(base, "fbc"), nil
}

func NewLoader(cacheDir string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Loader{cacheDir: cacheDir, logger: logger}
}

// ReadFile loads a script from disk.
func (l *Loader) ReadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return &Source{Path: path, Text: string(data)}, nil
}

// Preludes resolves every prelude in cfg, in configuration order.
func (l *Loader) Preludes(cfg *Config) ([]*Source, error) {
	sources := make([]*Source, 0, len(cfg.Preludes))
	for _, spec := range cfg.Preludes {
		path, err := l.resolvePrelude(cfg.Dir(), spec)
		if err != nil {
			return nil, err
		}
		l.logger.Debug().Str("prelude", spec.Describe()).Str("path", path).Msg("prelude resolved")
		src, err := l.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (l *Loader) resolvePrelude(root string, spec *PreludeSpec) (string, error) {
	if spec.Git == "" {
		if filepath.IsAbs(spec.Path) {
			return spec.Path, nil
		}
		return filepath.Join(root, spec.Path), nil
	}
	if l.cacheDir == "" {
		return "", errors.New("loader: git preludes need a cache directory")
	}
	baseDir := filepath.Join(l.cacheDir, "git", sanitizePathSegment(spec.Git))
	version, commit, err := ensureGitCheckout(baseDir, spec)
	if err != nil {
		return "", fmt.Errorf("prelude %s: %w", spec.Describe(), err)
	}
	l.logger.Info().Str("git", spec.Git).Str("commit", commit).Msg("git prelude pinned")
	return filepath.Join(baseDir, sanitizePathSegment(version), filepath.FromSlash(spec.File)), nil
}

// ensureGitCheckout clones the repository and checks out the requested
// revision under baseDir/<version>, reusing a checkout that already exists.
func ensureGitCheckout(baseDir string, spec *PreludeSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	if spec.Rev != "" {
		if version, commit, ok := findRevCheckout(baseDir, spec.Rev); ok {
			return version, commit, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:  spec.Git,
		Tags: git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}

	hash, descriptor, err := resolveRevision(repo, spec)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

// findRevCheckout looks for an earlier checkout of rev. A full commit hash is
// stored under its own name, anything else under <rev>@<commit>.
func findRevCheckout(baseDir, rev string) (string, string, bool) {
	rev = strings.TrimSpace(rev)
	if isCommitHash(rev) {
		if info, err := os.Stat(filepath.Join(baseDir, rev)); err == nil && info.IsDir() {
			return rev, rev, true
		}
	}
	prefix := sanitizePathSegment(rev) + "@"
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return "", "", false
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		commit := strings.TrimPrefix(name, prefix)
		if isCommitHash(commit) {
			return gitPinnedVersion(rev, commit), commit, true
		}
	}
	return "", "", false
}

func isCommitHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

// resolveRevision tries each candidate revision for the prelude in turn; a
// cloned repository only has local heads for its default branch.
func resolveRevision(repo *git.Repository, spec *PreludeSpec) (*plumbing.Hash, string, error) {
	candidates, descriptor, err := gitRevisionsFromSpec(spec)
	if err != nil {
		return nil, "", err
	}
	var lastErr error
	for _, revision := range candidates {
		hash, err := repo.ResolveRevision(revision)
		if err == nil {
			return hash, descriptor, nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("resolve revision %s: %w", descriptor, lastErr)
}

func gitRevisionsFromSpec(spec *PreludeSpec) ([]plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return []plumbing.Revision{plumbing.Revision(rev)}, rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return []plumbing.Revision{plumbing.Revision("refs/tags/" + tag)}, tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return []plumbing.Revision{
			plumbing.Revision("refs/heads/" + branch),
			plumbing.Revision("refs/remotes/origin/" + branch),
		}, branch, nil
	}
	return nil, "", fmt.Errorf("git preludes require rev, tag, or branch")
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' || r == '@' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
