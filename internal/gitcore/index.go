package gitcore

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
)

// IndexEntry is one staged path: its content hash, mode, and the mtime (in
// unix nanoseconds) observed when it was last staged. Nanoseconds are used
// uniformly everywhere this field is read or written.
type IndexEntry struct {
	MTimeNanos int64
	Mode       string
	ObjectHash Hash
	Path       string // worktree-relative, '/' separated
}

// Index is the staging area: an ordered list of entries, each path present
// at most once.
type Index struct {
	Entries []IndexEntry
}

// LoadIndex reads path and parses it line by line. A missing file yields an
// empty index, not an error — a freshly init'd repository has no index file
// yet.
func LoadIndex(indexPath string) (*Index, error) {
	f, err := os.Open(indexPath) //nolint:gosec // path is repo-internal
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{}, nil
		}
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer f.Close()

	idx := &Index{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := parseIndexLine(line)
		if err != nil {
			return nil, fmt.Errorf("parsing index: %w", err)
		}
		idx.Entries = append(idx.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return idx, nil
}

func parseIndexLine(line string) (IndexEntry, error) {
	parts := strings.SplitN(line, " ", 4)
	if len(parts) != 4 {
		return IndexEntry{}, fmt.Errorf("malformed index line: %q", line)
	}
	mtime, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("malformed mtime in index line: %q", line)
	}
	return IndexEntry{
		MTimeNanos: mtime,
		Mode:       parts[1],
		ObjectHash: Hash(parts[2]),
		Path:       parts[3],
	}, nil
}

// Save atomically rewrites the entire index file.
func (idx *Index) Save(indexPath string) error {
	var buf strings.Builder
	for _, e := range idx.Entries {
		fmt.Fprintf(&buf, "%d %s %s %s\n", e.MTimeNanos, e.Mode, e.ObjectHash, e.Path)
	}
	return atomicWriteFile(indexPath, []byte(buf.String()))
}

// Upsert replaces the entry with the same path, or appends entry if no such
// path is staged yet.
func (idx *Index) Upsert(entry IndexEntry) {
	for i, e := range idx.Entries {
		if e.Path == entry.Path {
			idx.Entries[i] = entry
			return
		}
	}
	idx.Entries = append(idx.Entries, entry)
}

// Remove deletes the entry for path, if present, and reports whether it was.
func (idx *Index) Remove(p string) bool {
	for i, e := range idx.Entries {
		if e.Path == p {
			idx.Entries = append(idx.Entries[:i], idx.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the entry for path and whether it exists.
func (idx *Index) Get(p string) (IndexEntry, bool) {
	for _, e := range idx.Entries {
		if e.Path == p {
			return e, true
		}
	}
	return IndexEntry{}, false
}

// PathMap flattens the index into path -> blob hash, discarding mtime/mode.
func (idx *Index) PathMap() map[string]Hash {
	m := make(map[string]Hash, len(idx.Entries))
	for _, e := range idx.Entries {
		m[e.Path] = e.ObjectHash
	}
	return m
}

// treeNode is the sum type Leaf(hash) | Fork(map<name, Node>) used to group
// a flat index into nested directories before emitting Tree objects.
// children == nil identifies a leaf; a non-nil children map identifies a
// fork, regardless of whether hash happens to be the zero value.
type treeNode struct {
	hash     Hash
	children map[string]*treeNode
}

func newFork() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

func (n *treeNode) insert(components []string, hash Hash) {
	if len(components) == 1 {
		if n.children == nil {
			n.children = make(map[string]*treeNode)
		}
		n.children[components[0]] = &treeNode{hash: hash}
		return
	}
	child, ok := n.children[components[0]]
	if !ok || child.children == nil {
		child = newFork()
		n.children[components[0]] = child
	}
	child.insert(components[1:], hash)
}

// buildTree recursively hashes sub-trees bottom-up and returns the hash of
// the Tree object representing n.
func buildTree(n *treeNode, store *ObjectStore) (Hash, error) {
	if n.children == nil {
		return n.hash, nil
	}

	tree := &Tree{}
	for name, child := range n.children {
		childHash, err := buildTree(child, store)
		if err != nil {
			return "", err
		}
		tree.Entries = append(tree.Entries, TreeEntry{
			Mode: DefaultMode,
			Name: name,
			Hash: childHash,
		})
	}
	return store.Put(tree)
}

// ToTree groups the index's entries by path component into the in-memory
// prefix tree and emits Tree objects bottom-up, returning the root hash. An
// empty index produces the hash of an empty tree.
func (idx *Index) ToTree(store *ObjectStore) (Hash, error) {
	root := newFork()
	for _, e := range idx.Entries {
		components := strings.Split(e.Path, "/")
		root.insert(components, e.ObjectHash)
	}
	return buildTree(root, store)
}

// IndexFromCommit reads commit's root tree and walks it recursively,
// yielding one entry per blob, using commit's timestamp as every entry's
// mtime (there is no other mtime to recover once materialized from
// history).
func IndexFromCommit(store *ObjectStore, commit *Commit) (*Index, error) {
	idx := &Index{}
	if commit.Tree == "" {
		return idx, nil
	}
	if err := collectTreeEntries(store, commit.Tree, "", commit.Timestamp, idx); err != nil {
		return nil, err
	}
	sort.Slice(idx.Entries, func(i, j int) bool { return idx.Entries[i].Path < idx.Entries[j].Path })
	return idx, nil
}

func collectTreeEntries(store *ObjectStore, treeHash Hash, prefix string, mtime int64, idx *Index) error {
	tree, err := store.GetTree(treeHash)
	if err != nil {
		return err
	}
	for _, entry := range tree.Entries {
		childPath := entry.Name
		if prefix != "" {
			childPath = path.Join(prefix, entry.Name)
		}

		obj, err := store.Get(entry.Hash)
		if err != nil {
			return err
		}
		switch obj.(type) {
		case *Blob:
			idx.Upsert(IndexEntry{
				MTimeNanos: mtime,
				Mode:       entry.Mode,
				ObjectHash: entry.Hash,
				Path:       childPath,
			})
		case *Tree:
			if err := collectTreeEntries(store, entry.Hash, childPath, mtime, idx); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: tree entry %q names neither a blob nor a tree", ErrRepoCorrupt, childPath)
		}
	}
	return nil
}
