package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Add stages the given worktree-relative paths. A path naming a directory is
// staged recursively, honoring the ignore predicate; a path naming a single
// file is staged directly. A supplied path the ignore predicate excludes is
// skipped, and a supplied path that no longer exists on disk has its index
// entry removed.
func (r *Repository) Add(paths []string) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return err
	}

	for _, p := range paths {
		full := filepath.Join(r.WorkDir, filepath.FromSlash(p))
		info, err := os.Stat(full)
		if err != nil {
			if os.IsNotExist(err) {
				idx.Remove(filepath.ToSlash(p))
				continue
			}
			return fmt.Errorf("staging %q: %w", p, err)
		}
		if r.Ignore.IsIgnored(filepath.ToSlash(p), info.IsDir()) {
			continue
		}
		if info.IsDir() {
			if err := r.addDir(idx, p); err != nil {
				return err
			}
			continue
		}
		if err := r.addFile(idx, p); err != nil {
			return err
		}
	}

	return idx.Save(r.indexPath())
}

func (r *Repository) addDir(idx *Index, relDir string) error {
	full := filepath.Join(r.WorkDir, filepath.FromSlash(relDir))
	entries, err := os.ReadDir(full)
	if err != nil {
		return fmt.Errorf("reading directory %q: %w", relDir, err)
	}
	for _, e := range entries {
		childRel := filepath.ToSlash(filepath.Join(relDir, e.Name()))
		if e.IsDir() {
			if childRel == r.repoDirName() || r.Ignore.IsIgnored(childRel, true) {
				continue
			}
			if err := r.addDir(idx, childRel); err != nil {
				return err
			}
			continue
		}
		if r.Ignore.IsIgnored(childRel, false) {
			continue
		}
		if err := r.addFile(idx, childRel); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) addFile(idx *Index, relPath string) error {
	full := filepath.Join(r.WorkDir, filepath.FromSlash(relPath))
	content, err := os.ReadFile(full) //nolint:gosec // path derived from a user-supplied worktree-relative arg
	if err != nil {
		return fmt.Errorf("reading %q: %w", relPath, err)
	}
	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("stat %q: %w", relPath, err)
	}

	hash, err := r.Store.Put(&Blob{Content: content})
	if err != nil {
		return fmt.Errorf("staging %q: %w", relPath, err)
	}
	idx.Upsert(IndexEntry{
		MTimeNanos: info.ModTime().UnixNano(),
		Mode:       DefaultMode,
		ObjectHash: hash,
		Path:       filepath.ToSlash(relPath),
	})
	return nil
}

// Rm removes the given paths' entries from the index. It does not touch the
// worktree.
func (r *Repository) Rm(paths []string) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return err
	}
	for _, p := range paths {
		idx.Remove(filepath.ToSlash(p))
	}
	return idx.Save(r.indexPath())
}

// Commit builds a commit object from the current index and advances the
// current branch to it. If a merge was in progress, this is its resolution
// step: the new commit gets two parents and the merge phase is finished
// afterward.
func (r *Repository) Commit(message string) (Hash, error) {
	release, err := r.lock()
	if err != nil {
		return "", err
	}
	defer release()

	headState, err := r.Refs.ReadHead()
	if err != nil {
		return "", err
	}
	if !headState.Attached {
		return "", ErrDetachedHead
	}

	phase, err := r.CurrentPhase()
	if err != nil {
		return "", err
	}
	if phase == PhaseRebase {
		return "", ErrRebaseInProgress
	}

	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return "", err
	}
	treeHash, err := idx.ToTree(r.Store)
	if err != nil {
		return "", err
	}

	head, err := r.Refs.ResolveHead()
	if err != nil {
		return "", err
	}

	var parents []Hash
	if head != "" {
		parents = append(parents, head)
	}
	if phase == PhaseMerge {
		mergeTarget, err := r.readMergeHead()
		if err != nil {
			return "", err
		}
		parents = append(parents, mergeTarget)
	}

	commit := &Commit{
		Tree:      treeHash,
		Author:    r.Config.AuthorString(),
		Message:   message,
		Timestamp: nowNanos(),
		Parent:    parents,
	}
	commitHash, err := r.Store.Put(commit)
	if err != nil {
		return "", err
	}
	if err := r.Refs.UpdateCurrentBranch(commitHash); err != nil {
		return "", err
	}

	if phase == PhaseMerge {
		if err := r.finishPhase(); err != nil {
			return "", err
		}
	}

	r.Logger.Info("created commit", "commit", commitHash.Short(), "parents", len(parents))
	return commitHash, nil
}

// ResetMode selects how far Reset rewinds state beyond the branch pointer.
type ResetMode int

const (
	ResetSoft ResetMode = iota
	ResetMixed
	ResetHard
)

// Reset resolves ref and moves the current branch (or bare HEAD, if
// detached) to it, then optionally rewrites the index (mixed) and the
// worktree (hard).
func (r *Repository) Reset(mode ResetMode, ref string) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	target, ok, err := r.Refs.Resolve(r.Store, ref)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrRefNotFound, ref)
	}

	headState, err := r.Refs.ReadHead()
	if err != nil {
		return err
	}
	if headState.Attached {
		if err := r.Refs.UpdateBranch(headState.Branch, target); err != nil {
			return err
		}
	} else {
		if err := r.Refs.ChangeHead(false, string(target)); err != nil {
			return err
		}
	}

	if mode == ResetSoft {
		return nil
	}

	var idx *Index
	if target == "" {
		idx = &Index{}
	} else {
		commit, err := r.Store.GetCommit(target)
		if err != nil {
			return err
		}
		idx, err = IndexFromCommit(r.Store, commit)
		if err != nil {
			return err
		}
	}
	if err := idx.Save(r.indexPath()); err != nil {
		return err
	}

	if mode == ResetMixed {
		return nil
	}

	return r.checkoutCommitContents(target)
}

// Checkout resolves ref, clears and rematerializes the worktree from it, and
// updates HEAD: attached if ref names a branch, detached if it names a bare
// commit hash. It refuses to run over staged or unstaged changes unless
// force is set.
func (r *Repository) Checkout(ref string, force bool) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	target, ok, err := r.Refs.Resolve(r.Store, ref)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrRefNotFound, ref)
	}

	if !force {
		dirty, err := r.hasUncommittedChanges()
		if err != nil {
			return err
		}
		if dirty {
			return ErrUncommittedChanges
		}
	}

	attached, branch := r.Refs.branchExists(ref), ref
	if ref == "HEAD" {
		headState, err := r.Refs.ReadHead()
		if err != nil {
			return err
		}
		attached, branch = headState.Attached, headState.Branch
	}

	if err := r.checkoutCommitContents(target); err != nil {
		return err
	}
	if attached {
		return r.Refs.ChangeHead(true, branch)
	}
	return r.Refs.ChangeHead(false, string(target))
}

// hasUncommittedChanges reports whether any path carries a staged or
// unstaged change (untracked files don't count — they aren't at risk of
// being silently discarded by a checkout).
func (r *Repository) hasUncommittedChanges() (bool, error) {
	files, err := r.Status()
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if f.Staged != ChangeNone || f.Unstaged != ChangeNone {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch validates name and points it at the current HEAD.
func (r *Repository) CreateBranch(name string) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	head, err := r.Refs.ResolveHead()
	if err != nil {
		return err
	}
	return r.Refs.CreateBranch(name, head)
}

// DeleteBranch removes a branch, forbidden for the currently checked-out one.
func (r *Repository) DeleteBranch(name string) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	return r.Refs.DeleteBranch(name)
}

// Log returns the current HEAD's history, newest first.
func (r *Repository) Log() ([]CommitRef, error) {
	head, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	return HistoryFrom(r.Store, head)
}

// Diff compares two resolved references path-by-path.
func (r *Repository) Diff(from, to string) ([]DiffEntry, error) {
	fromHash, ok, err := r.Refs.Resolve(r.Store, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, from)
	}
	toHash, ok, err := r.Refs.Resolve(r.Store, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, to)
	}

	fromTree, err := commitTreeHash(r.Store, fromHash)
	if err != nil {
		return nil, err
	}
	toTree, err := commitTreeHash(r.Store, toHash)
	if err != nil {
		return nil, err
	}
	return DiffTrees(r.Store, fromTree, toTree)
}

// CatFile reads and returns the raw object stored at hash.
func (r *Repository) CatFile(hash Hash) (Object, error) {
	return r.Store.Get(hash)
}

// LsTree resolves ref to a commit and lists its root tree's direct entries
// (shallow, not recursive).
func (r *Repository) LsTree(ref string) ([]TreeEntry, error) {
	target, ok, err := r.Refs.Resolve(r.Store, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, ref)
	}
	treeHash, err := commitTreeHash(r.Store, target)
	if err != nil {
		return nil, err
	}
	if treeHash == "" {
		return nil, nil
	}
	tree, err := r.Store.GetTree(treeHash)
	if err != nil {
		return nil, err
	}
	return tree.Entries, nil
}

// HashObject hashes content as a blob, optionally writing it to the store.
func (r *Repository) HashObject(content []byte, write bool) (Hash, error) {
	blob := &Blob{Content: content}
	if !write {
		return HashOf(blob), nil
	}

	release, err := r.lock()
	if err != nil {
		return "", err
	}
	defer release()

	return r.Store.Put(blob)
}

// ConfigGet reads a config key.
func (r *Repository) ConfigGet(key string) (string, bool) {
	return r.Config.Get(key)
}

// ConfigSet writes a config key and persists the config file.
func (r *Repository) ConfigSet(key, value string) error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	r.Config.Set(key, value)
	return r.Config.Save(r.configPath())
}
