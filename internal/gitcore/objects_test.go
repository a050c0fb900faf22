package gitcore

import "testing"

// TestBlobSerializeIsIdentity verifies a Blob's Serialize/parseBlob round
// trip preserves the content bytes exactly.
func TestBlobSerializeIsIdentity(t *testing.T) {
	want := []byte("package main\n")
	blob := &Blob{Content: want}

	parsed, err := parseBlob(blob.Serialize())
	if err != nil {
		t.Fatalf("parseBlob: %v", err)
	}
	if string(parsed.Content) != string(want) {
		t.Errorf("content = %q, want %q", parsed.Content, want)
	}
}

// TestTreeSerializeSortsEntries verifies that two Trees built with the same
// entries in different orders serialize to identical bytes.
func TestTreeSerializeSortsEntries(t *testing.T) {
	a := &Tree{Entries: []TreeEntry{
		{Mode: DefaultMode, Name: "b.txt", Hash: "bbb"},
		{Mode: DefaultMode, Name: "a.txt", Hash: "aaa"},
	}}
	b := &Tree{Entries: []TreeEntry{
		{Mode: DefaultMode, Name: "a.txt", Hash: "aaa"},
		{Mode: DefaultMode, Name: "b.txt", Hash: "bbb"},
	}}

	if string(a.Serialize()) != string(b.Serialize()) {
		t.Errorf("expected order-independent serialization to match")
	}
}

// TestTreeRoundTrip verifies Serialize/parseTree recovers the same entries.
func TestTreeRoundTrip(t *testing.T) {
	tree := &Tree{Entries: []TreeEntry{
		{Mode: DefaultMode, Name: "a.txt", Hash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
		{Mode: DefaultMode, Name: "sub", Hash: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
	}}

	parsed, err := parseTree(tree.Serialize())
	if err != nil {
		t.Fatalf("parseTree: %v", err)
	}
	if len(parsed.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(parsed.Entries))
	}
	for i, e := range parsed.Entries {
		if e != tree.Entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, tree.Entries[i])
		}
	}
}

// TestCommitRoundTrip verifies a Commit with multiple parents survives
// Serialize/parseCommit.
func TestCommitRoundTrip(t *testing.T) {
	commit := &Commit{
		Tree:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Parent:    []Hash{"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "cccccccccccccccccccccccccccccccccccccccc"},
		Author:    "Test User <test@example.com>",
		Message:   "first line\n\nbody text",
		Timestamp: 1700000000000000000,
	}

	parsed, err := parseCommit(commit.Serialize())
	if err != nil {
		t.Fatalf("parseCommit: %v", err)
	}
	if parsed.Tree != commit.Tree {
		t.Errorf("tree = %q, want %q", parsed.Tree, commit.Tree)
	}
	if len(parsed.Parent) != 2 || parsed.Parent[0] != commit.Parent[0] || parsed.Parent[1] != commit.Parent[1] {
		t.Errorf("parent = %v, want %v", parsed.Parent, commit.Parent)
	}
	if parsed.Author != commit.Author {
		t.Errorf("author = %q, want %q", parsed.Author, commit.Author)
	}
	if parsed.Message != commit.Message {
		t.Errorf("message = %q, want %q", parsed.Message, commit.Message)
	}
	if parsed.Timestamp != commit.Timestamp {
		t.Errorf("timestamp = %d, want %d", parsed.Timestamp, commit.Timestamp)
	}
}

// TestCommitNoParents verifies the root commit of a history (no parents)
// round-trips with an empty parent list, not a single empty-string parent.
func TestCommitNoParents(t *testing.T) {
	commit := &Commit{
		Tree:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Author:    "Test User <test@example.com>",
		Message:   "root",
		Timestamp: 1700000000000000000,
	}
	parsed, err := parseCommit(commit.Serialize())
	if err != nil {
		t.Fatalf("parseCommit: %v", err)
	}
	if len(parsed.Parent) != 0 {
		t.Errorf("expected no parents, got %v", parsed.Parent)
	}
}

// TestIsValidSHA1 checks the hex-digest syntax validator against obviously
// valid and invalid inputs.
func TestIsValidSHA1(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid lowercase hex", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"too short", "aaaa", false},
		{"uppercase rejected", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", false},
		{"non-hex character", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSHA1(tt.in); got != tt.want {
				t.Errorf("IsValidSHA1(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestHashShort verifies Short() truncates to 7 characters, and is a no-op
// on already-short strings.
func TestHashShort(t *testing.T) {
	full := Hash("abcdef0123456789abcdef0123456789abcdef01")
	if got := full.Short(); got != "abcdef0" {
		t.Errorf("Short() = %q, want %q", got, "abcdef0")
	}
	short := Hash("abc")
	if got := short.Short(); got != "abc" {
		t.Errorf("Short() on a short hash = %q, want %q", got, "abc")
	}
}
