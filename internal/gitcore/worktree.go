package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
)

// WorktreeEngine materializes trees onto disk and clears the worktree
// between checkouts.
type WorktreeEngine struct {
	workDir     string
	repoDirName string // the repo-dir's base name, e.g. ".mvcs" — always ignored
}

func newWorktreeEngine(workDir, repoDirName string) *WorktreeEngine {
	return &WorktreeEngine{workDir: workDir, repoDirName: repoDirName}
}

// Clear recursively deletes every file and then empty directory under the
// worktree except entries the ignore predicate reports as ignored. The
// repo-dir is always ignored. Empty directories left behind by deletion are
// also removed, bottom-up.
func (w *WorktreeEngine) Clear(ignore func(relPath string, isDir bool) bool) error {
	entries, err := os.ReadDir(w.workDir)
	if err != nil {
		return fmt.Errorf("reading worktree: %w", err)
	}
	for _, e := range entries {
		if e.Name() == w.repoDirName {
			continue
		}
		if err := w.clearEntry(e.Name(), ignore); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorktreeEngine) clearEntry(relPath string, ignore func(string, bool) bool) error {
	full := filepath.Join(w.workDir, relPath)
	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", relPath, err)
	}

	if info.IsDir() {
		if ignore != nil && ignore(relPath, true) {
			return nil
		}
		children, err := os.ReadDir(full)
		if err != nil {
			return fmt.Errorf("reading directory %q: %w", relPath, err)
		}
		for _, c := range children {
			if err := w.clearEntry(filepath.Join(relPath, c.Name()), ignore); err != nil {
				return err
			}
		}
		remaining, err := os.ReadDir(full)
		if err != nil {
			return fmt.Errorf("reading directory %q: %w", relPath, err)
		}
		if len(remaining) == 0 {
			if err := os.Remove(full); err != nil {
				return fmt.Errorf("removing empty directory %q: %w", relPath, err)
			}
		}
		return nil
	}

	if ignore != nil && ignore(relPath, false) {
		return nil
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("removing file %q: %w", relPath, err)
	}
	return nil
}

// WalkFiles returns the worktree-relative, '/'-separated paths of every
// regular file under the worktree that the ignore predicate does not
// exclude, skipping the repo-dir entirely.
func (w *WorktreeEngine) WalkFiles(ignore func(string, bool) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.workDir, func(full string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.workDir, full)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == w.repoDirName && filepath.Dir(full) == w.workDir {
				return filepath.SkipDir
			}
			if ignore != nil && ignore(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore != nil && ignore(rel, false) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking worktree: %w", err)
	}
	return paths, nil
}

// Materialize writes tree onto disk rooted at the worktree, recursing into
// sub-trees and creating directories as needed.
func (w *WorktreeEngine) Materialize(store *ObjectStore, tree *Tree) error {
	return w.materializeAt(store, tree, "")
}

func (w *WorktreeEngine) materializeAt(store *ObjectStore, tree *Tree, relDir string) error {
	for _, entry := range tree.Entries {
		relPath := entry.Name
		if relDir != "" {
			relPath = filepath.Join(relDir, entry.Name)
		}
		full := filepath.Join(w.workDir, relPath)

		obj, err := store.Get(entry.Hash)
		if err != nil {
			return fmt.Errorf("materializing %q: %w", relPath, err)
		}

		switch o := obj.(type) {
		case *Blob:
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return fmt.Errorf("creating parent directory for %q: %w", relPath, err)
			}
			if err := os.WriteFile(full, o.Content, 0o644); err != nil {
				return fmt.Errorf("writing %q: %w", relPath, err)
			}
		case *Tree:
			if err := os.MkdirAll(full, 0o755); err != nil {
				return fmt.Errorf("creating directory %q: %w", relPath, err)
			}
			if err := w.materializeAt(store, o, relPath); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: tree entry %q is neither blob nor tree", ErrRepoCorrupt, relPath)
		}
	}
	return nil
}
