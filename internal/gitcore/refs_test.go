package gitcore

import "testing"

func newTestRefStore(t *testing.T) *RefStore {
	t.Helper()
	return newRefStore(t.TempDir())
}

// TestRefStoreCreateAndReadBranch verifies CreateBranch writes a ref file
// that Resolve can then read back.
func TestRefStoreCreateAndReadBranch(t *testing.T) {
	rs := newTestRefStore(t)
	hash := Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	if err := rs.CreateBranch("master", hash); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	got, ok, err := rs.Resolve(nil, "master")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || got != hash {
		t.Errorf("Resolve(master) = (%q, %v), want (%q, true)", got, ok, hash)
	}
}

// TestRefStoreCreateBranchRejectsDuplicate verifies CreateBranch refuses a
// name that already has a ref file.
func TestRefStoreCreateBranchRejectsDuplicate(t *testing.T) {
	rs := newTestRefStore(t)
	if err := rs.CreateBranch("master", ""); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := rs.CreateBranch("master", ""); err == nil {
		t.Error("expected a duplicate branch creation to fail")
	}
}

// TestRefStoreValidateBranchNameRejectsReserved verifies the naming rule
// rejects HEAD, valid hashes, and names ending in "index".
func TestRefStoreValidateBranchNameRejectsReserved(t *testing.T) {
	rs := newTestRefStore(t)
	tests := []string{
		"HEAD",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"some/index",
		"",
	}
	for _, name := range tests {
		if err := rs.ValidateBranchName(name); err == nil {
			t.Errorf("ValidateBranchName(%q): expected an error", name)
		}
	}
}

// TestRefStoreValidateBranchNamePathConflict verifies a branch name cannot
// collide with an existing branch's ref-file directory in either direction.
func TestRefStoreValidateBranchNamePathConflict(t *testing.T) {
	rs := newTestRefStore(t)
	if err := rs.CreateBranch("release/1.0", ""); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := rs.ValidateBranchName("release"); err == nil {
		t.Error("expected 'release' to conflict with existing 'release/1.0'")
	}
	if err := rs.ValidateBranchName("release/1.0/patch"); err == nil {
		t.Error("expected 'release/1.0/patch' to conflict via its prefix")
	}
}

// TestRefStoreDeleteBranchForbidsCurrent verifies DeleteBranch refuses to
// remove the currently checked-out branch.
func TestRefStoreDeleteBranchForbidsCurrent(t *testing.T) {
	rs := newTestRefStore(t)
	if err := rs.CreateBranch("master", ""); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := rs.ChangeHead(true, "master"); err != nil {
		t.Fatalf("ChangeHead: %v", err)
	}
	if err := rs.DeleteBranch("master"); err == nil {
		t.Error("expected deleting the checked-out branch to fail")
	}
}

// TestRefStoreReadHeadAttached verifies ReadHead parses the "ref: " form.
func TestRefStoreReadHeadAttached(t *testing.T) {
	rs := newTestRefStore(t)
	if err := rs.ChangeHead(true, "master"); err != nil {
		t.Fatalf("ChangeHead: %v", err)
	}
	head, err := rs.ReadHead()
	if err != nil {
		t.Fatalf("ReadHead: %v", err)
	}
	if !head.Attached || head.Branch != "master" {
		t.Errorf("ReadHead = %+v, want attached to master", head)
	}
}

// TestRefStoreReadHeadDetached verifies ReadHead parses a bare hash.
func TestRefStoreReadHeadDetached(t *testing.T) {
	rs := newTestRefStore(t)
	hash := Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if err := rs.ChangeHead(false, string(hash)); err != nil {
		t.Fatalf("ChangeHead: %v", err)
	}
	head, err := rs.ReadHead()
	if err != nil {
		t.Fatalf("ReadHead: %v", err)
	}
	if head.Attached || head.Hash != hash {
		t.Errorf("ReadHead = %+v, want detached at %s", head, hash)
	}
}

// TestRefStoreResolveHeadEmptyBranch verifies ResolveHead returns an empty
// hash, not an error, for a branch that exists but points nowhere yet.
func TestRefStoreResolveHeadEmptyBranch(t *testing.T) {
	rs := newTestRefStore(t)
	if err := rs.CreateBranch("master", ""); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := rs.ChangeHead(true, "master"); err != nil {
		t.Fatalf("ChangeHead: %v", err)
	}
	hash, err := rs.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	if hash != "" {
		t.Errorf("ResolveHead = %q, want empty", hash)
	}
}

// TestRefStoreResolveAncestorSuffix verifies "<ref>~N" walks N first-parent
// hops back from the resolved base.
func TestRefStoreResolveAncestorSuffix(t *testing.T) {
	dir := t.TempDir()
	store := newObjectStore(dir)
	rs := newRefStore(dir)

	first := putCommit(t, store, 100)
	second := putCommit(t, store, 200, first)
	third := putCommit(t, store, 300, second)

	if err := rs.CreateBranch("master", third); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	got, ok, err := rs.Resolve(store, "master~1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || got != second {
		t.Errorf("Resolve(master~1) = (%q, %v), want (%q, true)", got, ok, second)
	}

	got, ok, err = rs.Resolve(store, "master~2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok || got != first {
		t.Errorf("Resolve(master~2) = (%q, %v), want (%q, true)", got, ok, first)
	}

	_, ok, err = rs.Resolve(store, "master~3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("expected master~3 to walk past the root commit and report not-found")
	}
}

// TestRefStoreListBranchesSorted verifies ListBranches returns names in
// sorted order.
func TestRefStoreListBranchesSorted(t *testing.T) {
	rs := newTestRefStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := rs.CreateBranch(name, ""); err != nil {
			t.Fatalf("CreateBranch(%q): %v", name, err)
		}
	}
	names, err := rs.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
