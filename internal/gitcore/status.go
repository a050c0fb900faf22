package gitcore

import (
	"os"
	"path/filepath"
	"sort"
)

// ChangeKind classifies one half (staged or unstaged) of a path's status.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeAdded
	ChangeModified
	ChangeDeleted
)

func (c ChangeKind) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	default:
		return "none"
	}
}

// FileStatus is one path's independent staged/unstaged classification.
type FileStatus struct {
	Path      string
	Staged    ChangeKind
	Unstaged  ChangeKind
	Untracked bool
}

// Status compares the HEAD tree against the index (staged changes) and the
// index against the working tree (unstaged changes plus untracked files).
func (r *Repository) Status() ([]FileStatus, error) {
	head, err := r.Refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	headTree, err := commitTreeHash(r.Store, head)
	if err != nil {
		return nil, err
	}
	headMap, err := flattenTree(r.Store, headTree)
	if err != nil {
		return nil, err
	}

	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return nil, err
	}
	idxMap := idx.PathMap()

	byPath := make(map[string]*FileStatus)
	get := func(p string) *FileStatus {
		s, ok := byPath[p]
		if !ok {
			s = &FileStatus{Path: p}
			byPath[p] = s
		}
		return s
	}

	stagedPaths := make(map[string]struct{}, len(headMap)+len(idxMap))
	for p := range headMap {
		stagedPaths[p] = struct{}{}
	}
	for p := range idxMap {
		stagedPaths[p] = struct{}{}
	}
	for p := range stagedPaths {
		headHash, inHead := headMap[p]
		idxHash, inIdx := idxMap[p]
		switch {
		case inHead && !inIdx:
			get(p).Staged = ChangeDeleted
		case !inHead && inIdx:
			get(p).Staged = ChangeAdded
		case inHead && inIdx && headHash != idxHash:
			get(p).Staged = ChangeModified
		}
	}

	for p, idxHash := range idxMap {
		full := filepath.Join(r.WorkDir, filepath.FromSlash(p))
		content, err := os.ReadFile(full) //nolint:gosec // path derived from a staged repo-relative path
		if err != nil {
			if os.IsNotExist(err) {
				get(p).Unstaged = ChangeDeleted
				continue
			}
			return nil, err
		}
		if HashOf(&Blob{Content: content}) != idxHash {
			get(p).Unstaged = ChangeModified
		}
	}

	worktreeFiles, err := r.Worktree.WalkFiles(r.ignorePredicate())
	if err != nil {
		return nil, err
	}
	for _, p := range worktreeFiles {
		if _, tracked := idxMap[p]; !tracked {
			get(p).Untracked = true
		}
	}

	result := make([]FileStatus, 0, len(byPath))
	for _, s := range byPath {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}
