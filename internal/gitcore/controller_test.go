package gitcore

import (
	"errors"
	"testing"
)

// TestMergeBranchFastForward verifies merging a descendant branch into HEAD
// with no divergent commits performs a fast-forward, not a merge commit.
func TestMergeBranchFastForward(t *testing.T) {
	repo := newTestRepo(t)
	writeRepoFile(t, repo, "a.txt", "v1\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("v1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := repo.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	writeRepoFile(t, repo, "b.txt", "feature work\n")
	if err := repo.Add([]string{"b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("feature commit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("master", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	result, err := repo.MergeBranch("feature")
	if err != nil {
		t.Fatalf("MergeBranch: %v", err)
	}
	if !result.FastForward {
		t.Errorf("MergeResult = %+v, want FastForward", result)
	}
}

// TestMergeBranchThreeWayCreatesMergeCommit verifies divergent branches
// merge via a two-parent merge commit when there's no conflict.
func TestMergeBranchThreeWayCreatesMergeCommit(t *testing.T) {
	repo := newTestRepo(t)
	writeRepoFile(t, repo, "base.txt", "base\n")
	if err := repo.Add([]string{"base.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := repo.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "feature.txt", "feature\n")
	if err := repo.Add([]string{"feature.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("feature work"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("master", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "master.txt", "master\n")
	if err := repo.Add([]string{"master.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	head, err := repo.Commit("master work")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	result, err := repo.MergeBranch("feature")
	if err != nil {
		t.Fatalf("MergeBranch: %v", err)
	}
	if result.MergeCommit == "" {
		t.Fatal("expected a merge commit hash")
	}
	commit, err := repo.Store.GetCommit(result.MergeCommit)
	if err != nil {
		t.Fatalf("GetCommit: %v", err)
	}
	if len(commit.Parent) != 2 || commit.Parent[0] != head {
		t.Errorf("merge commit parents = %v, want [%s, <feature head>]", commit.Parent, head)
	}
}

// TestMergeBranchConflictThenAbort verifies a conflicting merge reports the
// conflicting path and leaves the merge phase active, and MergeAbort fully
// restores the pre-merge state.
func TestMergeBranchConflictThenAbort(t *testing.T) {
	repo := newTestRepo(t)
	writeRepoFile(t, repo, "shared.txt", "base\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := repo.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "shared.txt", "from feature\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("feature edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("master", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "shared.txt", "from master\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("master edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, mergeErr := repo.MergeBranch("feature")
	var conflictErr *ConflictError
	if !errors.As(mergeErr, &conflictErr) {
		t.Fatalf("expected a *ConflictError, got %v", mergeErr)
	}
	if len(conflictErr.Paths) != 1 || conflictErr.Paths[0] != "shared.txt" {
		t.Errorf("conflict paths = %v, want [shared.txt]", conflictErr.Paths)
	}

	phase, err := repo.CurrentPhase()
	if err != nil {
		t.Fatalf("CurrentPhase: %v", err)
	}
	if phase != PhaseMerge {
		t.Errorf("phase = %v, want PhaseMerge", phase)
	}

	if err := repo.MergeAbort(); err != nil {
		t.Fatalf("MergeAbort: %v", err)
	}
	phase, err = repo.CurrentPhase()
	if err != nil {
		t.Fatalf("CurrentPhase: %v", err)
	}
	if phase != PhaseIdle {
		t.Errorf("phase after abort = %v, want PhaseIdle", phase)
	}
	statuses, err := repo.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("expected a clean status after abort, got %+v", statuses)
	}
}

// TestRebaseOntoReplaysCommits verifies a clean rebase replays the current
// branch's commits on top of the target, preserving both histories'
// content without a conflict.
func TestRebaseOntoReplaysCommits(t *testing.T) {
	repo := newTestRepo(t)
	writeRepoFile(t, repo, "base.txt", "base\n")
	if err := repo.Add([]string{"base.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := repo.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "feature.txt", "feature\n")
	if err := repo.Add([]string{"feature.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("feature work"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("master", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "master.txt", "master\n")
	if err := repo.Add([]string{"master.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("master work"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	result, err := repo.RebaseOnto("master")
	if err != nil {
		t.Fatalf("RebaseOnto: %v", err)
	}
	if result.UpToDate {
		t.Error("expected the rebase to do real work, not report up-to-date")
	}

	history, err := repo.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 commits after rebase, got %d: %+v", len(history), history)
	}

	phase, err := repo.CurrentPhase()
	if err != nil {
		t.Fatalf("CurrentPhase: %v", err)
	}
	if phase != PhaseIdle {
		t.Errorf("phase after a clean rebase = %v, want PhaseIdle", phase)
	}
}

// TestRebaseOntoUpToDate verifies rebasing onto the current HEAD itself is a
// no-op reported via UpToDate.
func TestRebaseOntoUpToDate(t *testing.T) {
	repo := newTestRepo(t)
	writeRepoFile(t, repo, "a.txt", "v1\n")
	if err := repo.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("v1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	result, err := repo.RebaseOnto("HEAD")
	if err != nil {
		t.Fatalf("RebaseOnto: %v", err)
	}
	if !result.UpToDate {
		t.Errorf("RebaseResult = %+v, want UpToDate", result)
	}
}

// TestRebaseOntoConflictThenAbort verifies a conflicting rebase step leaves
// REBASE_HEAD set, and RebaseAbort restores the branch to its pre-rebase
// position.
func TestRebaseOntoConflictThenAbort(t *testing.T) {
	repo := newTestRepo(t)
	writeRepoFile(t, repo, "shared.txt", "base\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := repo.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "shared.txt", "from feature\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	featureHead, err := repo.Commit("feature edit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("master", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	writeRepoFile(t, repo, "shared.txt", "from master\n")
	if err := repo.Add([]string{"shared.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Commit("master edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := repo.Checkout("feature", false); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	_, rebaseErr := repo.RebaseOnto("master")
	var conflictErr *ConflictError
	if !errors.As(rebaseErr, &conflictErr) {
		t.Fatalf("expected a *ConflictError, got %v", rebaseErr)
	}

	phase, err := repo.CurrentPhase()
	if err != nil {
		t.Fatalf("CurrentPhase: %v", err)
	}
	if phase != PhaseRebase {
		t.Errorf("phase = %v, want PhaseRebase", phase)
	}

	if err := repo.RebaseAbort(); err != nil {
		t.Fatalf("RebaseAbort: %v", err)
	}

	head, err := repo.Refs.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	if head != featureHead {
		t.Errorf("HEAD after abort = %s, want the pre-rebase feature head %s", head, featureHead)
	}
}
