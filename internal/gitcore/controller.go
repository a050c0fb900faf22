package gitcore

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Phase is the merge/rebase finite-state machine's current state, driven
// entirely by which marker file is present on disk. No in-memory state
// survives between process invocations.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMerge
	PhaseRebase
)

// CurrentPhase inspects MERGE_HEAD/REBASE_HEAD to determine the active
// phase. The two are mutually exclusive by construction (invariant 7).
func (r *Repository) CurrentPhase() (Phase, error) {
	_, mergeErr := os.Stat(r.mergeHeadPath())
	_, rebaseErr := os.Stat(r.rebaseHeadPath())
	mergeExists := mergeErr == nil
	rebaseExists := rebaseErr == nil

	switch {
	case mergeExists && rebaseExists:
		return 0, fmt.Errorf("%w: both MERGE_HEAD and REBASE_HEAD are present", ErrRepoCorrupt)
	case mergeExists:
		return PhaseMerge, nil
	case rebaseExists:
		return PhaseRebase, nil
	default:
		return PhaseIdle, nil
	}
}

// startPhase writes ORIG_HEAD = the current resolved HEAD hash (possibly
// empty) and creates the given phase's marker file.
func (r *Repository) startPhase(phase Phase, origHead Hash) error {
	if current, err := r.CurrentPhase(); err != nil {
		return err
	} else if current != PhaseIdle {
		return fmt.Errorf("%w", ErrMergeInProgress)
	}

	if err := atomicWriteFile(r.origHeadPath(), []byte(origHead)); err != nil {
		return fmt.Errorf("writing ORIG_HEAD: %w", err)
	}

	switch phase {
	case PhaseMerge:
		return atomicWriteFile(r.mergeHeadPath(), nil)
	case PhaseRebase:
		return atomicWriteFile(r.rebaseHeadPath(), nil)
	default:
		return fmt.Errorf("cannot start phase %v", phase)
	}
}

// finishPhase deletes the active phase's marker and ORIG_HEAD.
func (r *Repository) finishPhase() error {
	_ = os.Remove(r.mergeHeadPath())
	_ = os.Remove(r.rebaseHeadPath())
	return os.Remove(r.origHeadPath())
}

// abortPhase resets the current branch to ORIG_HEAD, clears and
// rematerializes the worktree from that commit, rewrites the index, then
// deletes the phase marker and ORIG_HEAD. An empty ORIG_HEAD (the repo had
// no commits yet when the phase started) makes the restore a no-op beyond
// clearing the worktree.
func (r *Repository) abortPhase() error {
	origData, err := os.ReadFile(r.origHeadPath()) //nolint:gosec // repo-internal path
	if err != nil {
		return fmt.Errorf("reading ORIG_HEAD: %w", err)
	}
	origHead := Hash(strings.TrimSpace(string(origData)))

	if err := r.Refs.UpdateCurrentBranch(origHead); err != nil {
		return fmt.Errorf("restoring branch pointer: %w", err)
	}

	if err := r.Worktree.Clear(r.ignorePredicate()); err != nil {
		return fmt.Errorf("clearing worktree during abort: %w", err)
	}

	var idx *Index
	if origHead == "" {
		idx = &Index{}
	} else {
		commit, err := r.Store.GetCommit(origHead)
		if err != nil {
			return fmt.Errorf("reading ORIG_HEAD commit: %w", err)
		}
		tree, err := r.Store.GetTree(commit.Tree)
		if err != nil {
			return fmt.Errorf("reading ORIG_HEAD tree: %w", err)
		}
		if err := r.Worktree.Materialize(r.Store, tree); err != nil {
			return fmt.Errorf("materializing ORIG_HEAD tree: %w", err)
		}
		idx, err = IndexFromCommit(r.Store, commit)
		if err != nil {
			return err
		}
	}
	if err := idx.Save(r.indexPath()); err != nil {
		return fmt.Errorf("rewriting index during abort: %w", err)
	}

	return r.finishPhase()
}

// MergeAbort aborts an in-progress merge.
func (r *Repository) MergeAbort() error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	phase, err := r.CurrentPhase()
	if err != nil {
		return err
	}
	if phase != PhaseMerge {
		return ErrNoMergeInProgress
	}
	return r.abortPhase()
}

// RebaseAbort aborts an in-progress rebase.
func (r *Repository) RebaseAbort() error {
	release, err := r.lock()
	if err != nil {
		return err
	}
	defer release()

	phase, err := r.CurrentPhase()
	if err != nil {
		return err
	}
	if phase != PhaseRebase {
		return ErrNoRebaseInProgress
	}
	return r.abortPhase()
}

// readMergeHead returns the incoming commit hash recorded by an in-progress
// merge, used by the commit operation to build the merge commit's second
// parent.
func (r *Repository) readMergeHead() (Hash, error) {
	data, err := os.ReadFile(r.mergeHeadPath()) //nolint:gosec // repo-internal path
	if err != nil {
		return "", fmt.Errorf("reading MERGE_HEAD: %w", err)
	}
	return Hash(strings.TrimSpace(string(data))), nil
}

func commitTreeHash(store *ObjectStore, commitHash Hash) (Hash, error) {
	if commitHash == "" {
		return "", nil
	}
	commit, err := store.GetCommit(commitHash)
	if err != nil {
		return "", err
	}
	return commit.Tree, nil
}

// MergeResult reports the outcome of MergeBranch.
type MergeResult struct {
	UpToDate    bool
	FastForward bool
	MergeCommit Hash
	Conflicts   []string
}

// MergeBranch merges branch into the current HEAD.
func (r *Repository) MergeBranch(branch string) (*MergeResult, error) {
	release, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer release()

	if phase, err := r.CurrentPhase(); err != nil {
		return nil, err
	} else if phase == PhaseMerge {
		return nil, ErrMergeInProgress
	} else if phase == PhaseRebase {
		return nil, ErrRebaseInProgress
	}

	target, ok, err := r.Refs.Resolve(r.Store, branch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, branch)
	}

	head, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}

	if target == head {
		return &MergeResult{UpToDate: true}, nil
	}

	isFF, err := IsAncestor(r.Store, head, target)
	if err != nil {
		return nil, err
	}
	if isFF {
		if err := r.Refs.UpdateCurrentBranch(target); err != nil {
			return nil, err
		}
		if err := r.checkoutCommitContents(target); err != nil {
			return nil, err
		}
		r.Logger.Info("fast-forward merge", "branch", branch, "to", target.Short())
		return &MergeResult{FastForward: true, MergeCommit: target}, nil
	}

	base, ok, err := CommonAncestor(r.Store, head, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHistoriesDisjoint
	}

	if err := r.startPhase(PhaseMerge, head); err != nil {
		return nil, err
	}
	// MERGE_HEAD carries the incoming commit's hash so a later `commit`
	// invocation (the conflict-resolution step) knows the merge's second
	// parent.
	if err := atomicWriteFile(r.mergeHeadPath(), []byte(target)); err != nil {
		return nil, err
	}

	baseTree, err := commitTreeHash(r.Store, base)
	if err != nil {
		return nil, err
	}
	headCommit, err := r.Store.GetCommit(head)
	if err != nil {
		return nil, err
	}
	targetCommit, err := r.Store.GetCommit(target)
	if err != nil {
		return nil, err
	}

	result, err := mergeTrees(r.Store, baseTree, headCommit.Tree, targetCommit.Tree)
	if err != nil {
		return nil, err
	}

	mergedTree, err := r.Store.GetTree(result.TreeHash)
	if err != nil {
		return nil, err
	}
	if err := r.Worktree.Clear(r.ignorePredicate()); err != nil {
		return nil, err
	}
	if err := r.Worktree.Materialize(r.Store, mergedTree); err != nil {
		return nil, err
	}

	if len(result.Conflicts) > 0 {
		if err := result.StagedWithoutConflicts().Save(r.indexPath()); err != nil {
			return nil, err
		}
		r.Logger.Warn("merge produced conflicts", "branch", branch, "paths", result.Conflicts)
		return &MergeResult{Conflicts: result.Conflicts}, &ConflictError{Paths: result.Conflicts}
	}

	if err := result.Index.Save(r.indexPath()); err != nil {
		return nil, err
	}

	commit := &Commit{
		Tree:      result.TreeHash,
		Author:    r.Config.AuthorString(),
		Message:   fmt.Sprintf("Merge branch '%s'", branch),
		Timestamp: nowNanos(),
		Parent:    []Hash{head, target},
	}
	commitHash, err := r.Store.Put(commit)
	if err != nil {
		return nil, err
	}
	if err := r.Refs.UpdateCurrentBranch(commitHash); err != nil {
		return nil, err
	}
	if err := r.finishPhase(); err != nil {
		return nil, err
	}

	r.Logger.Info("merge commit created", "branch", branch, "commit", commitHash.Short())
	return &MergeResult{MergeCommit: commitHash}, nil
}

// RebaseResult reports the outcome of RebaseOnto/RebaseContinue.
type RebaseResult struct {
	UpToDate  bool
	Conflicts []string
}

// writeHashList persists one hash per line, used for REBASE_HEAD's pending
// commit list.
func writeHashList(path string, hashes []Hash) error {
	var buf strings.Builder
	for _, h := range hashes {
		buf.WriteString(string(h))
		buf.WriteByte('\n')
	}
	return atomicWriteFile(path, []byte(buf.String()))
}

func readHashList(path string) ([]Hash, error) {
	f, err := os.Open(path) //nolint:gosec // repo-internal path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var hashes []Hash
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		hashes = append(hashes, Hash(line))
	}
	return hashes, scanner.Err()
}

// RebaseOnto replays the current branch's commits since its common ancestor
// with newBaseRef on top of newBaseRef.
func (r *Repository) RebaseOnto(newBaseRef string) (*RebaseResult, error) {
	release, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer release()

	if phase, err := r.CurrentPhase(); err != nil {
		return nil, err
	} else if phase == PhaseMerge {
		return nil, ErrMergeInProgress
	} else if phase == PhaseRebase {
		return nil, ErrRebaseInProgress
	}

	headState, err := r.Refs.ReadHead()
	if err != nil {
		return nil, err
	}
	if !headState.Attached {
		return nil, ErrDetachedHead
	}
	if dirty, err := r.hasUncommittedChanges(); err != nil {
		return nil, err
	} else if dirty {
		return nil, ErrUncommittedChanges
	}

	newBase, ok, err := r.Refs.Resolve(r.Store, newBaseRef)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRefNotFound, newBaseRef)
	}

	head, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}

	if head == newBase {
		return &RebaseResult{UpToDate: true}, nil
	}

	base, ok, err := CommonAncestor(r.Store, head, newBase)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHistoriesDisjoint
	}

	var toApply []Hash
	cursor := head
	for cursor != "" && cursor != base {
		commit, err := r.Store.GetCommit(cursor)
		if err != nil {
			return nil, err
		}
		toApply = append(toApply, cursor)
		if len(commit.Parent) == 0 {
			break
		}
		cursor = commit.Parent[0]
	}
	for i, j := 0, len(toApply)-1; i < j; i, j = i+1, j-1 {
		toApply[i], toApply[j] = toApply[j], toApply[i]
	}

	if err := r.Refs.UpdateCurrentBranch(newBase); err != nil {
		return nil, err
	}
	if err := r.startPhase(PhaseRebase, head); err != nil {
		return nil, err
	}

	return r.applyRebaseCommits(toApply)
}

// RebaseContinue resumes a rebase after the user has resolved conflicts and
// staged the result, synthesizing the current step's commit from the staged
// index and continuing with the remaining pending commits.
func (r *Repository) RebaseContinue() (*RebaseResult, error) {
	release, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer release()

	phase, err := r.CurrentPhase()
	if err != nil {
		return nil, err
	}
	if phase != PhaseRebase {
		return nil, ErrNoRebaseInProgress
	}

	pending, err := readHashList(r.rebaseHeadPath())
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: no pending rebase step to continue", ErrRepoCorrupt)
	}
	current := pending[0]

	originalCommit, err := r.Store.GetCommit(current)
	if err != nil {
		return nil, err
	}

	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return nil, err
	}
	treeHash, err := idx.ToTree(r.Store)
	if err != nil {
		return nil, err
	}

	head, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}

	newCommit := &Commit{
		Tree:      treeHash,
		Author:    originalCommit.Author,
		Message:   originalCommit.Message,
		Timestamp: nowNanos(),
		Parent:    []Hash{head},
	}
	newHash, err := r.Store.Put(newCommit)
	if err != nil {
		return nil, err
	}
	if err := r.Refs.UpdateCurrentBranch(newHash); err != nil {
		return nil, err
	}

	return r.applyRebaseCommits(pending[1:])
}

// applyRebaseCommits replays each pending commit (oldest first) onto the
// current HEAD via the full three-way merge algorithm (base = the commit's
// own parent tree, ours = current HEAD tree, theirs = the commit's tree). On
// conflict it stops, persists the remaining list (including the commit that
// conflicted) to REBASE_HEAD, and returns a ConflictError. Once the list is
// exhausted it materializes the final HEAD tree, rewrites the index, and
// finishes the phase.
func (r *Repository) applyRebaseCommits(toApply []Hash) (*RebaseResult, error) {
	for i, commitHash := range toApply {
		commit, err := r.Store.GetCommit(commitHash)
		if err != nil {
			return nil, err
		}

		head, err := r.Refs.ResolveHead()
		if err != nil {
			return nil, err
		}
		headCommit, err := r.Store.GetCommit(head)
		if err != nil {
			return nil, err
		}

		var parentHash Hash
		if len(commit.Parent) > 0 {
			parentHash = commit.Parent[0]
		}
		baseTree, err := commitTreeHash(r.Store, parentHash)
		if err != nil {
			return nil, err
		}

		result, err := mergeTrees(r.Store, baseTree, headCommit.Tree, commit.Tree)
		if err != nil {
			return nil, err
		}

		mergedTree, err := r.Store.GetTree(result.TreeHash)
		if err != nil {
			return nil, err
		}
		if err := r.Worktree.Clear(r.ignorePredicate()); err != nil {
			return nil, err
		}
		if err := r.Worktree.Materialize(r.Store, mergedTree); err != nil {
			return nil, err
		}

		if len(result.Conflicts) > 0 {
			if err := writeHashList(r.rebaseHeadPath(), toApply[i:]); err != nil {
				return nil, err
			}
			if err := result.StagedWithoutConflicts().Save(r.indexPath()); err != nil {
				return nil, err
			}
			r.Logger.Warn("rebase step produced conflicts", "commit", commitHash.Short(), "paths", result.Conflicts)
			return &RebaseResult{Conflicts: result.Conflicts}, &ConflictError{Paths: result.Conflicts}
		}

		if err := result.Index.Save(r.indexPath()); err != nil {
			return nil, err
		}

		newCommit := &Commit{
			Tree:      result.TreeHash,
			Author:    commit.Author,
			Message:   commit.Message,
			Timestamp: nowNanos(),
			Parent:    []Hash{head},
		}
		newHash, err := r.Store.Put(newCommit)
		if err != nil {
			return nil, err
		}
		if err := r.Refs.UpdateCurrentBranch(newHash); err != nil {
			return nil, err
		}
	}

	head, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	if err := r.checkoutCommitContents(head); err != nil {
		return nil, err
	}
	if err := r.finishPhase(); err != nil {
		return nil, err
	}

	r.Logger.Info("rebase finished", "head", head.Short())
	return &RebaseResult{}, nil
}

// checkoutCommitContents clears and rematerializes the worktree from
// commitHash's tree and rewrites the index from it — the shared body of
// fast-forward merge and checkout/reset --hard.
func (r *Repository) checkoutCommitContents(commitHash Hash) error {
	if err := r.Worktree.Clear(r.ignorePredicate()); err != nil {
		return err
	}
	if commitHash == "" {
		return (&Index{}).Save(r.indexPath())
	}
	commit, err := r.Store.GetCommit(commitHash)
	if err != nil {
		return err
	}
	tree, err := r.Store.GetTree(commit.Tree)
	if err != nil {
		return err
	}
	if err := r.Worktree.Materialize(r.Store, tree); err != nil {
		return err
	}
	idx, err := IndexFromCommit(r.Store, commit)
	if err != nil {
		return err
	}
	return idx.Save(r.indexPath())
}
