package gitcore

import (
	"fmt"
	"sort"
)

// flattenTree reads the tree at hash (if any) and returns its full
// path -> blob-hash map, recursing into sub-trees. An empty hash yields an
// empty map (used for the "no common ancestor content" case, i.e. the root
// of an as-yet-empty repository).
func flattenTree(store *ObjectStore, hash Hash) (map[string]Hash, error) {
	m := make(map[string]Hash)
	if hash == "" {
		return m, nil
	}
	if err := flattenTreeInto(store, hash, "", m); err != nil {
		return nil, err
	}
	return m, nil
}

func flattenTreeInto(store *ObjectStore, hash Hash, prefix string, m map[string]Hash) error {
	tree, err := store.GetTree(hash)
	if err != nil {
		return err
	}
	for _, entry := range tree.Entries {
		childPath := entry.Name
		if prefix != "" {
			childPath = prefix + "/" + entry.Name
		}
		obj, err := store.Get(entry.Hash)
		if err != nil {
			return err
		}
		switch obj.(type) {
		case *Blob:
			m[childPath] = entry.Hash
		case *Tree:
			if err := flattenTreeInto(store, entry.Hash, childPath, m); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: tree entry %q is neither blob nor tree", ErrRepoCorrupt, childPath)
		}
	}
	return nil
}

// conflictMarkerBlob builds the synthetic conflict blob's content:
//
//	<<<<<<< HEAD
//	<ours-bytes>
//	=======
//	<theirs-bytes>
//	>>>>>>>
//
// ours/theirs are nil when that side deleted the path.
func conflictMarkerBlob(ours, theirs []byte) []byte {
	var out []byte
	out = append(out, "<<<<<<< HEAD\n"...)
	out = append(out, ours...)
	out = append(out, "\n=======\n"...)
	out = append(out, theirs...)
	out = append(out, "\n>>>>>>>"...)
	return out
}

// threeWayMergeResult is the outcome of mergeTrees: a staging Index holding
// every path of the merged tree (conflicting paths hold the synthetic
// marker blob's hash), the sorted list of conflicting paths, and the
// resulting tree's hash.
type threeWayMergeResult struct {
	Index     *Index
	TreeHash  Hash
	Conflicts []string
}

// StagedWithoutConflicts returns a copy of the merge result's index with
// every conflicting path removed — the "stage every non-conflicting path
// automatically" half of the merge procedure.
func (r *threeWayMergeResult) StagedWithoutConflicts() *Index {
	conflicting := make(map[string]struct{}, len(r.Conflicts))
	for _, p := range r.Conflicts {
		conflicting[p] = struct{}{}
	}
	out := &Index{}
	for _, e := range r.Index.Entries {
		if _, isConflict := conflicting[e.Path]; !isConflict {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// mergeTrees applies the per-path three-way merge algorithm to base/ours/
// theirs tree hashes (any may be empty, meaning "no tree" / all paths
// absent): for every path in base ∪ ours ∪ theirs, if both sides agree keep
// that value, else if one side is unchanged from base take the other side,
// else record a conflict and synthesize a marker blob.
func mergeTrees(store *ObjectStore, base, ours, theirs Hash) (*threeWayMergeResult, error) {
	baseMap, err := flattenTree(store, base)
	if err != nil {
		return nil, err
	}
	oursMap, err := flattenTree(store, ours)
	if err != nil {
		return nil, err
	}
	theirsMap, err := flattenTree(store, theirs)
	if err != nil {
		return nil, err
	}

	allPaths := make(map[string]struct{})
	for p := range baseMap {
		allPaths[p] = struct{}{}
	}
	for p := range oursMap {
		allPaths[p] = struct{}{}
	}
	for p := range theirsMap {
		allPaths[p] = struct{}{}
	}

	idx := &Index{}
	var conflicts []string

	for p := range allPaths {
		baseHash, inBase := baseMap[p]
		oursHash, inOurs := oursMap[p]
		theirsHash, inTheirs := theirsMap[p]

		switch {
		case oursHash == theirsHash && inOurs == inTheirs:
			if inOurs {
				idx.Upsert(IndexEntry{Mode: DefaultMode, ObjectHash: oursHash, Path: p})
			}
			// both absent: nothing to add

		case inOurs == inBase && oursHash == baseHash:
			if inTheirs {
				idx.Upsert(IndexEntry{Mode: DefaultMode, ObjectHash: theirsHash, Path: p})
			}
			// theirs deleted it and ours left it unchanged from base: take the deletion

		case inTheirs == inBase && theirsHash == baseHash:
			if inOurs {
				idx.Upsert(IndexEntry{Mode: DefaultMode, ObjectHash: oursHash, Path: p})
			}

		default:
			var oursContent, theirsContent []byte
			if inOurs {
				blob, err := store.GetBlob(oursHash)
				if err != nil {
					return nil, err
				}
				oursContent = blob.Content
			}
			if inTheirs {
				blob, err := store.GetBlob(theirsHash)
				if err != nil {
					return nil, err
				}
				theirsContent = blob.Content
			}

			markerHash, err := store.Put(&Blob{Content: conflictMarkerBlob(oursContent, theirsContent)})
			if err != nil {
				return nil, err
			}
			idx.Upsert(IndexEntry{Mode: DefaultMode, ObjectHash: markerHash, Path: p})
			conflicts = append(conflicts, p)
		}
	}

	sort.Strings(conflicts)

	treeHash, err := idx.ToTree(store)
	if err != nil {
		return nil, err
	}
	return &threeWayMergeResult{Index: idx, TreeHash: treeHash, Conflicts: conflicts}, nil
}

// DiffStatus is the kind of a path-level difference between two trees
// (added, modified, deleted); there is no line-level content diffing.
type DiffStatus int

const (
	DiffAdded DiffStatus = iota
	DiffModified
	DiffDeleted
)

func (s DiffStatus) String() string {
	switch s {
	case DiffAdded:
		return "added"
	case DiffModified:
		return "modified"
	case DiffDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

type DiffEntry struct {
	Path   string
	Status DiffStatus
	Old    Hash
	New    Hash
}

// DiffTrees compares two tree hashes (either may be empty) path-by-path and
// returns the sorted list of differing paths.
func DiffTrees(store *ObjectStore, from, to Hash) ([]DiffEntry, error) {
	fromMap, err := flattenTree(store, from)
	if err != nil {
		return nil, err
	}
	toMap, err := flattenTree(store, to)
	if err != nil {
		return nil, err
	}

	allPaths := make(map[string]struct{}, len(fromMap)+len(toMap))
	for p := range fromMap {
		allPaths[p] = struct{}{}
	}
	for p := range toMap {
		allPaths[p] = struct{}{}
	}

	var entries []DiffEntry
	for p := range allPaths {
		oldHash, inFrom := fromMap[p]
		newHash, inTo := toMap[p]
		switch {
		case !inFrom && inTo:
			entries = append(entries, DiffEntry{Path: p, Status: DiffAdded, New: newHash})
		case inFrom && !inTo:
			entries = append(entries, DiffEntry{Path: p, Status: DiffDeleted, Old: oldHash})
		case oldHash != newHash:
			entries = append(entries, DiffEntry{Path: p, Status: DiffModified, Old: oldHash, New: newHash})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}
