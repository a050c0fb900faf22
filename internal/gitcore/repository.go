package gitcore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// nowNanos returns the current time as unix nanoseconds, the Commit.Timestamp
// unit.
func nowNanos() int64 { return time.Now().UnixNano() }

// DefaultRepoDirName is the repo-dir's name when not overridden by the
// MVCS_DIR environment variable (read at the CLI layer, not here).
const DefaultRepoDirName = ".mvcs"

// Repository is the open handle to one worktree + repo-dir pair, wiring
// together the object store, ref store, worktree engine, config, and ignore
// predicate. It carries no long-lived in-memory state beyond these handles
// — every top-level operation re-reads whatever files it needs.
type Repository struct {
	WorkDir string
	RepoDir string

	Store    *ObjectStore
	Refs     *RefStore
	Worktree *WorktreeEngine
	Config   *Config
	Ignore   *IgnoreMatcher

	Logger *slog.Logger
}

func (r *Repository) repoDirName() string { return filepath.Base(r.RepoDir) }

func (r *Repository) indexPath() string       { return filepath.Join(r.RepoDir, "index") }
func (r *Repository) configPath() string      { return filepath.Join(r.RepoDir, "config") }
func (r *Repository) descriptionPath() string { return filepath.Join(r.RepoDir, "description") }
func (r *Repository) mergeHeadPath() string   { return filepath.Join(r.RepoDir, "MERGE_HEAD") }
func (r *Repository) rebaseHeadPath() string  { return filepath.Join(r.RepoDir, "REBASE_HEAD") }
func (r *Repository) origHeadPath() string    { return filepath.Join(r.RepoDir, "ORIG_HEAD") }
func (r *Repository) lockPath() string        { return filepath.Join(r.RepoDir, "lock") }

// lock acquires the advisory repository lock: a sentinel file created with
// O_EXCL, so a second concurrent invocation gets ErrLocked instead of
// silently racing on index/HEAD/ref writes. The returned release func
// removes the sentinel and must be deferred by every caller.
func (r *Repository) lock() (release func(), err error) {
	f, err := os.OpenFile(r.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid()) //nolint:errcheck // best-effort diagnostic, not load-bearing
	if err := f.Close(); err != nil {
		os.Remove(r.lockPath()) //nolint:errcheck // already failing; nothing more to report
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	return func() { os.Remove(r.lockPath()) }, nil
}

// FindRepoDir walks up from startDir looking for a subdirectory named
// repoDirName that looks like a repo-dir (contains a HEAD file).
func FindRepoDir(startDir, repoDirName string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, repoDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(candidate, "HEAD")); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s found above %s", ErrNotARepository, repoDirName, startDir)
		}
		dir = parent
	}
}

// Open locates and loads an existing repository by walking up from
// startDir.
func Open(startDir, repoDirName string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repoDir, err := FindRepoDir(startDir, repoDirName)
	if err != nil {
		return nil, err
	}
	workDir := filepath.Dir(repoDir)

	cfg, err := LoadConfig(filepath.Join(repoDir, "config"))
	if err != nil {
		return nil, err
	}

	return &Repository{
		WorkDir:  workDir,
		RepoDir:  repoDir,
		Store:    newObjectStore(repoDir),
		Refs:     newRefStore(repoDir),
		Worktree: newWorktreeEngine(workDir, repoDirName),
		Config:   cfg,
		Ignore:   NewIgnoreMatcher(workDir, repoDir),
		Logger:   logger,
	}, nil
}

// Init creates a fresh repo-dir at workDir/repoDirName: the objects/refs
// subdirectory layout, an empty index, a default config, a description
// stub, HEAD attached to "master", and an empty master branch ref.
func Init(workDir, repoDirName string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repoDir := filepath.Join(workDir, repoDirName)
	if info, err := os.Stat(repoDir); err == nil && info.IsDir() {
		return nil, fmt.Errorf("repository already initialized at %s", repoDir)
	}

	for _, sub := range []string{"objects", "refs", filepath.Join("refs", "heads"), filepath.Join("refs", "tags")} {
		if err := os.MkdirAll(filepath.Join(repoDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", sub, err)
		}
	}

	if err := atomicWriteFile(filepath.Join(repoDir, "index"), nil); err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	if err := atomicWriteFile(filepath.Join(repoDir, "description"), []byte("Unnamed repository\n")); err != nil {
		return nil, fmt.Errorf("creating description: %w", err)
	}

	cfg := &Config{values: map[string]string{}}
	cfg.Set("core.repositoryformatversion", "0")
	if err := cfg.Save(filepath.Join(repoDir, "config")); err != nil {
		return nil, fmt.Errorf("creating config: %w", err)
	}

	refs := newRefStore(repoDir)
	if err := refs.UpdateBranch("master", ""); err != nil {
		return nil, fmt.Errorf("creating master branch: %w", err)
	}
	if err := refs.ChangeHead(true, "master"); err != nil {
		return nil, fmt.Errorf("writing HEAD: %w", err)
	}

	logger.Info("initialized repository", "repo_dir", repoDir)

	return &Repository{
		WorkDir:  workDir,
		RepoDir:  repoDir,
		Store:    newObjectStore(repoDir),
		Refs:     refs,
		Worktree: newWorktreeEngine(workDir, repoDirName),
		Config:   cfg,
		Ignore:   NewIgnoreMatcher(workDir, repoDir),
		Logger:   logger,
	}, nil
}

// ignorePredicate adapts the Ignore matcher (plus the always-ignored
// repo-dir) to the func(relPath string, isDir bool) bool shape the worktree
// engine expects.
func (r *Repository) ignorePredicate() func(string, bool) bool {
	return func(relPath string, isDir bool) bool {
		if relPath == r.repoDirName() {
			return true
		}
		return r.Ignore.IsIgnored(relPath, isDir)
	}
}
