package gitcore

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the operation-level error kinds named in the design
// docs. Callers branch on these with errors.Is; wrapping with fmt.Errorf's
// %w preserves that, matching the convention already used throughout this
// package's repository-loading code.
var (
	ErrNotARepository     = errors.New("not a repository")
	ErrRefNotFound        = errors.New("ref not found")
	ErrInvalidBranchName  = errors.New("invalid branch name")
	ErrBranchExists       = errors.New("branch already exists")
	ErrBranchMissing      = errors.New("branch does not exist")
	ErrBranchActive       = errors.New("branch is currently checked out")
	ErrDetachedHead       = errors.New("HEAD is detached")
	ErrMergeInProgress    = errors.New("a merge is already in progress")
	ErrRebaseInProgress   = errors.New("a rebase is already in progress")
	ErrNoMergeInProgress  = errors.New("no merge is in progress")
	ErrNoRebaseInProgress = errors.New("no rebase is in progress")
	ErrUncommittedChanges = errors.New("uncommitted changes present")
	ErrHistoriesDisjoint  = errors.New("histories share no common ancestor")
	ErrObjectNotFound     = errors.New("object not found")
	ErrObjectCorrupt      = errors.New("object is corrupt")
	ErrRepoCorrupt        = errors.New("repository is corrupt")
	ErrLocked             = errors.New("repository is locked by another invocation")
)

// ConflictError reports the set of paths that could not be merged
// automatically. It is a structured error (checked with errors.As, not
// errors.Is) because callers need the path list, not just a kind.
type ConflictError struct {
	Paths []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts in %d path(s): %s", len(e.Paths), strings.Join(e.Paths, ", "))
}
