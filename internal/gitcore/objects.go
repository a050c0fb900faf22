package gitcore

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Blob holds the raw bytes of one file version. Serialization is the
// identity function — the content bytes are stored verbatim.
type Blob struct {
	Content []byte
}

func (b *Blob) Kind() ObjectKind  { return KindBlob }
func (b *Blob) Serialize() []byte { return b.Content }

func parseBlob(content []byte) (*Blob, error) {
	return &Blob{Content: content}, nil
}

// TreeEntry names one child of a Tree: either a blob or a sub-tree,
// distinguished only by looking Hash up in the object store.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// Tree is a sorted listing of children representing one directory snapshot.
type Tree struct {
	Entries []TreeEntry
}

func (t *Tree) Kind() ObjectKind { return KindTree }

// Serialize emits one record per entry, `<mode> <name>\0<hash-hex>\n`,
// sorted lexicographically by name regardless of the order Entries holds
// them in — two trees with identical children always produce identical
// bytes and therefore identical hashes.
func (t *Tree) Serialize() []byte {
	entries := make([]TreeEntry, len(t.Entries))
	copy(entries, t.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.WriteString(string(e.Hash))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func parseTree(content []byte) (*Tree, error) {
	tree := &Tree{}
	r := bytes.NewReader(content)

	for {
		var modeBuf strings.Builder
		for {
			b, err := r.ReadByte()
			if err == io.EOF {
				if modeBuf.Len() == 0 {
					return tree, nil
				}
				return nil, fmt.Errorf("%w: truncated tree record (mode %q)", ErrObjectCorrupt, modeBuf.String())
			}
			if err != nil {
				return nil, fmt.Errorf("%w: reading mode: %v", ErrObjectCorrupt, err)
			}
			if b == ' ' {
				break
			}
			modeBuf.WriteByte(b)
		}

		var nameBuf strings.Builder
		for {
			b, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: reading name: %v", ErrObjectCorrupt, err)
			}
			if b == 0 {
				break
			}
			nameBuf.WriteByte(b)
		}

		var hashBuf strings.Builder
		for {
			b, err := r.ReadByte()
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("%w: reading hash: %v", ErrObjectCorrupt, err)
			}
			if err == io.EOF || b == '\n' {
				break
			}
			hashBuf.WriteByte(b)
		}

		if hashBuf.Len() != 40 {
			return nil, fmt.Errorf("%w: malformed hash in tree record for %q", ErrObjectCorrupt, nameBuf.String())
		}

		tree.Entries = append(tree.Entries, TreeEntry{
			Mode: modeBuf.String(),
			Name: nameBuf.String(),
			Hash: Hash(hashBuf.String()),
		})
	}
}

// Commit is a snapshot: a pointer to a root tree plus author, message,
// timestamp, and zero or more parent commits.
type Commit struct {
	Tree      Hash
	Author    string
	Message   string
	Timestamp int64 // unix nanoseconds
	Parent    []Hash
}

func (c *Commit) Kind() ObjectKind { return KindCommit }

// Serialize emits fixed-order lines: tree, author, message, timestamp, then
// each parent. A value containing newlines is written with every subsequent
// line prefixed by a single space (a continuation line); parse strips that
// leading space back off. Field order and continuation encoding are fixed
// so that two commits with identical fields always hash identically.
func (c *Commit) Serialize() []byte {
	var buf bytes.Buffer
	writeCommitField(&buf, "tree", string(c.Tree))
	writeCommitField(&buf, "author", c.Author)
	writeCommitField(&buf, "message", c.Message)
	writeCommitField(&buf, "timestamp", strconv.FormatInt(c.Timestamp, 10))
	for _, p := range c.Parent {
		writeCommitField(&buf, "parent", string(p))
	}
	return buf.Bytes()
}

func writeCommitField(buf *bytes.Buffer, key, value string) {
	lines := strings.Split(value, "\n")
	buf.WriteString(key)
	buf.WriteByte(' ')
	buf.WriteString(lines[0])
	buf.WriteByte('\n')
	for _, line := range lines[1:] {
		buf.WriteByte(' ')
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}

// readCommitValue reads one key's value starting at content, honoring
// continuation lines (any line beginning with a single space belongs to the
// same value, with that leading space stripped). It returns the key, the
// joined value, and the unconsumed remainder of content.
func readCommitValue(content string) (key, value, remainder string, err error) {
	sp := strings.IndexByte(content, ' ')
	if sp < 0 {
		return "", "", "", fmt.Errorf("%w: commit line missing key/value separator", ErrObjectCorrupt)
	}
	key = content[:sp]
	rest := content[sp+1:]

	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		nl = len(rest)
	}
	value = rest[:nl]
	rest = rest[min(nl+1, len(rest)):]

	for strings.HasPrefix(rest, " ") {
		rest = rest[1:]
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			nl = len(rest)
		}
		value += "\n" + rest[:nl]
		rest = rest[min(nl+1, len(rest)):]
	}

	return key, value, rest, nil
}

func parseCommit(content []byte) (*Commit, error) {
	remainder := string(content)
	c := &Commit{}

	order := []string{"tree", "author", "message", "timestamp"}
	for _, want := range order {
		if remainder == "" {
			return nil, fmt.Errorf("%w: commit missing required field %q", ErrObjectCorrupt, want)
		}
		key, value, rest, err := readCommitValue(remainder)
		if err != nil {
			return nil, err
		}
		if key != want {
			return nil, fmt.Errorf("%w: expected commit field %q, got %q", ErrObjectCorrupt, want, key)
		}
		switch key {
		case "tree":
			c.Tree = Hash(value)
		case "author":
			c.Author = value
		case "message":
			c.Message = value
		case "timestamp":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid commit timestamp %q: %v", ErrObjectCorrupt, value, err)
			}
			c.Timestamp = ts
		}
		remainder = rest
	}

	for remainder != "" {
		key, value, rest, err := readCommitValue(remainder)
		if err != nil {
			return nil, err
		}
		if key != "parent" {
			return nil, fmt.Errorf("%w: unexpected commit field %q after timestamp", ErrObjectCorrupt, key)
		}
		c.Parent = append(c.Parent, Hash(value))
		remainder = rest
	}

	return c, nil
}
