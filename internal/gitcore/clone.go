package gitcore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Clone copies an existing repository's repo-dir into a fresh worktree at
// dstWorkDir and materializes HEAD's tree there. There is no remote
// transport anywhere in this system (no packfiles, no network protocol),
// so a clone is a local filesystem copy followed by an ordinary checkout —
// grounded on the same directory-copy shape WorktreeEngine.Materialize uses
// for writing trees onto disk, applied here to the repo-dir itself.
func Clone(srcWorkDir, dstWorkDir, repoDirName string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	srcRepoDir, err := FindRepoDir(srcWorkDir, repoDirName)
	if err != nil {
		return nil, err
	}

	dstRepoDir := filepath.Join(dstWorkDir, repoDirName)
	if info, err := os.Stat(dstRepoDir); err == nil && info.IsDir() {
		return nil, fmt.Errorf("repository already initialized at %s", dstRepoDir)
	}
	if err := os.MkdirAll(dstWorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination worktree: %w", err)
	}

	if err := copyTree(srcRepoDir, dstRepoDir); err != nil {
		return nil, fmt.Errorf("copying repository: %w", err)
	}

	repo, err := Open(dstWorkDir, repoDirName, logger)
	if err != nil {
		return nil, err
	}

	head, err := repo.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	if head == "" {
		logger.Info("cloned empty repository", "src", srcWorkDir, "dst", dstWorkDir)
		return repo, nil
	}

	release, err := repo.lock()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := repo.checkoutCommitContents(head); err != nil {
		return nil, fmt.Errorf("materializing cloned worktree: %w", err)
	}

	logger.Info("cloned repository", "src", srcWorkDir, "dst", dstWorkDir, "head", head.Short())
	return repo, nil
}

// copyTree recursively copies src onto dst, preserving the directory
// structure. Used only by Clone, over repo-dir contents (objects, refs,
// config, HEAD) which are always regular files and directories.
func copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %q: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}
	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // repo-internal path enumerated by copyTree
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst) //nolint:gosec // repo-internal path enumerated by copyTree
	if err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}
	return out.Close()
}
