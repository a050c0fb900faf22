package gitcore

import "testing"

func putBlob(t *testing.T, store *ObjectStore, content string) Hash {
	t.Helper()
	hash, err := store.Put(&Blob{Content: []byte(content)})
	if err != nil {
		t.Fatalf("Put blob: %v", err)
	}
	return hash
}

func putTree(t *testing.T, store *ObjectStore, entries map[string]Hash) Hash {
	t.Helper()
	idx := &Index{}
	for path, hash := range entries {
		idx.Upsert(IndexEntry{Mode: DefaultMode, ObjectHash: hash, Path: path})
	}
	hash, err := idx.ToTree(store)
	if err != nil {
		t.Fatalf("ToTree: %v", err)
	}
	return hash
}

// TestMergeTreesNonConflictingBothSidesAgree verifies a path both sides
// changed identically merges cleanly.
func TestMergeTreesNonConflictingBothSidesAgree(t *testing.T) {
	store := newObjectStore(t.TempDir())
	baseBlob := putBlob(t, store, "base")
	changedBlob := putBlob(t, store, "changed")

	base := putTree(t, store, map[string]Hash{"a.txt": baseBlob})
	ours := putTree(t, store, map[string]Hash{"a.txt": changedBlob})
	theirs := putTree(t, store, map[string]Hash{"a.txt": changedBlob})

	result, err := mergeTrees(store, base, ours, theirs)
	if err != nil {
		t.Fatalf("mergeTrees: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", result.Conflicts)
	}
}

// TestMergeTreesTakesTheirsWhenOursUnchanged verifies a path only theirs
// touched (ours matches base) takes theirs' version.
func TestMergeTreesTakesTheirsWhenOursUnchanged(t *testing.T) {
	store := newObjectStore(t.TempDir())
	baseBlob := putBlob(t, store, "base")
	theirsBlob := putBlob(t, store, "theirs-edit")

	base := putTree(t, store, map[string]Hash{"a.txt": baseBlob})
	ours := putTree(t, store, map[string]Hash{"a.txt": baseBlob})
	theirs := putTree(t, store, map[string]Hash{"a.txt": theirsBlob})

	result, err := mergeTrees(store, base, ours, theirs)
	if err != nil {
		t.Fatalf("mergeTrees: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", result.Conflicts)
	}
	mergedTree, err := store.GetTree(result.TreeHash)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(mergedTree.Entries) != 1 || mergedTree.Entries[0].Hash != theirsBlob {
		t.Errorf("merged tree = %+v, want a.txt -> theirs blob", mergedTree.Entries)
	}
}

// TestMergeTreesConflictingEdits verifies both sides editing the same path
// differently produces a conflict with a synthetic marker blob.
func TestMergeTreesConflictingEdits(t *testing.T) {
	store := newObjectStore(t.TempDir())
	baseBlob := putBlob(t, store, "base")
	oursBlob := putBlob(t, store, "ours-edit")
	theirsBlob := putBlob(t, store, "theirs-edit")

	base := putTree(t, store, map[string]Hash{"a.txt": baseBlob})
	ours := putTree(t, store, map[string]Hash{"a.txt": oursBlob})
	theirs := putTree(t, store, map[string]Hash{"a.txt": theirsBlob})

	result, err := mergeTrees(store, base, ours, theirs)
	if err != nil {
		t.Fatalf("mergeTrees: %v", err)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0] != "a.txt" {
		t.Fatalf("expected a single conflict on a.txt, got %v", result.Conflicts)
	}

	staged := result.StagedWithoutConflicts()
	for _, e := range staged.Entries {
		if e.Path == "a.txt" {
			t.Errorf("expected a.txt to be excluded from the conflict-free staging, got %+v", e)
		}
	}
}

// TestMergeTreesAdditionsFromBothSides verifies paths present only in one
// side (neither in base) merge in without conflict.
func TestMergeTreesAdditionsFromBothSides(t *testing.T) {
	store := newObjectStore(t.TempDir())
	oursOnly := putBlob(t, store, "ours only")
	theirsOnly := putBlob(t, store, "theirs only")

	ours := putTree(t, store, map[string]Hash{"ours.txt": oursOnly})
	theirs := putTree(t, store, map[string]Hash{"theirs.txt": theirsOnly})

	result, err := mergeTrees(store, "", ours, theirs)
	if err != nil {
		t.Fatalf("mergeTrees: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %v", result.Conflicts)
	}
	mergedTree, err := store.GetTree(result.TreeHash)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(mergedTree.Entries) != 2 {
		t.Errorf("expected both added paths present, got %+v", mergedTree.Entries)
	}
}

// TestDiffTreesDetectsAddModifyDelete verifies DiffTrees classifies each
// path correctly against the full set of change kinds.
func TestDiffTreesDetectsAddModifyDelete(t *testing.T) {
	store := newObjectStore(t.TempDir())
	unchanged := putBlob(t, store, "same")
	oldVersion := putBlob(t, store, "old")
	newVersion := putBlob(t, store, "new")
	deletedBlob := putBlob(t, store, "gone")
	addedBlob := putBlob(t, store, "added")

	from := putTree(t, store, map[string]Hash{
		"same.txt":     unchanged,
		"modified.txt": oldVersion,
		"deleted.txt":  deletedBlob,
	})
	to := putTree(t, store, map[string]Hash{
		"same.txt":     unchanged,
		"modified.txt": newVersion,
		"added.txt":    addedBlob,
	})

	entries, err := DiffTrees(store, from, to)
	if err != nil {
		t.Fatalf("DiffTrees: %v", err)
	}

	byPath := make(map[string]DiffEntry)
	for _, e := range entries {
		byPath[e.Path] = e
	}
	if _, ok := byPath["same.txt"]; ok {
		t.Error("did not expect an entry for an unchanged path")
	}
	if e, ok := byPath["modified.txt"]; !ok || e.Status != DiffModified {
		t.Errorf("modified.txt entry = %+v, want Status=DiffModified", e)
	}
	if e, ok := byPath["deleted.txt"]; !ok || e.Status != DiffDeleted {
		t.Errorf("deleted.txt entry = %+v, want Status=DiffDeleted", e)
	}
	if e, ok := byPath["added.txt"]; !ok || e.Status != DiffAdded {
		t.Errorf("added.txt entry = %+v, want Status=DiffAdded", e)
	}
}
