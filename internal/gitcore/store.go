package gitcore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// ObjectStore reads and writes content-addressed objects under
// <repo-dir>/objects/<xx>/<rest>. Grounded on 0xlemi-microprolly's
// pkg/cas.FileCAS: same sharding, same dedupe-on-exists, same
// temp-file-then-rename write path.
type ObjectStore struct {
	dir string // <repo-dir>/objects
}

func newObjectStore(repoDir string) *ObjectStore {
	return &ObjectStore{dir: filepath.Join(repoDir, "objects")}
}

func (s *ObjectStore) objectPath(h Hash) string {
	str := string(h)
	return filepath.Join(s.dir, str[:2], str[2:])
}

// Exists reports whether an object with the given hash is already stored.
func (s *ObjectStore) Exists(h Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put computes the on-disk bytes "<kind> <len>\0<content>", hashes them, and
// writes the object if not already present. The store is append-only: a
// writer that computes an existing hash is a no-op, matching invariant 2
// (object files are immutable once created).
func (s *ObjectStore) Put(obj Object) (Hash, error) {
	content := obj.Serialize()
	data := encodeObject(obj.Kind(), content)
	hash := NewHash(data)

	if s.Exists(hash) {
		return hash, nil
	}

	path := s.objectPath(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating object shard directory: %w", err)
	}
	if err := atomicWriteFile(path, data); err != nil {
		return "", fmt.Errorf("writing object %s: %w", hash, err)
	}
	return hash, nil
}

// Get reads and parses the object with the given hash.
func (s *ObjectStore) Get(h Hash) (Object, error) {
	data, err := os.ReadFile(s.objectPath(h)) //nolint:gosec // path is derived from a validated hash
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
		}
		return nil, fmt.Errorf("reading object %s: %w", h, err)
	}

	kindWord, length, content, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: object %s: %v", ErrObjectCorrupt, h, err)
	}
	if length != len(content) {
		return nil, fmt.Errorf("%w: object %s declares length %d, has %d", ErrObjectCorrupt, h, length, len(content))
	}

	kind, err := objectKindFromWord(kindWord)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}

	switch kind {
	case KindBlob:
		return parseBlob(content)
	case KindTree:
		return parseTree(content)
	case KindCommit:
		return parseCommit(content)
	default:
		return nil, fmt.Errorf("%w: object %s has unknown kind", ErrObjectCorrupt, h)
	}
}

// GetTree is a convenience wrapper asserting the object at h is a Tree.
func (s *ObjectStore) GetTree(h Hash) (*Tree, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	tree, ok := obj.(*Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a tree", ErrRepoCorrupt, h)
	}
	return tree, nil
}

// GetCommit is a convenience wrapper asserting the object at h is a Commit.
func (s *ObjectStore) GetCommit(h Hash) (*Commit, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	commit, ok := obj.(*Commit)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a commit", ErrRepoCorrupt, h)
	}
	return commit, nil
}

// GetBlob is a convenience wrapper asserting the object at h is a Blob.
func (s *ObjectStore) GetBlob(h Hash) (*Blob, error) {
	obj, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	blob, ok := obj.(*Blob)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a blob", ErrRepoCorrupt, h)
	}
	return blob, nil
}

// hashOf computes an object's content hash without writing it to disk,
// mirroring the hashing half of Put. Used where callers need to compare
// candidate content against a stored hash (e.g. status's working-tree scan).
func HashOf(obj Object) Hash {
	return NewHash(encodeObject(obj.Kind(), obj.Serialize()))
}

func encodeObject(kind ObjectKind, content []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(kind.String())
	buf.WriteByte(' ')
	fmt.Fprintf(&buf, "%d", len(content))
	buf.WriteByte(0)
	buf.Write(content)
	return buf.Bytes()
}

// decodeObject splits raw on-disk bytes into the type word, declared
// length, and content, per "<type> <len>\0<content>".
func decodeObject(data []byte) (kindWord string, length int, content []byte, err error) {
	sp := bytes.IndexByte(data, ' ')
	if sp < 0 {
		return "", 0, nil, fmt.Errorf("missing type/length separator")
	}
	kindWord = string(data[:sp])

	nul := bytes.IndexByte(data[sp+1:], 0)
	if nul < 0 {
		return "", 0, nil, fmt.Errorf("missing length/content separator")
	}
	lengthStr := string(data[sp+1 : sp+1+nul])
	length = 0
	for _, c := range lengthStr {
		if c < '0' || c > '9' {
			return "", 0, nil, fmt.Errorf("non-decimal length field %q", lengthStr)
		}
		length = length*10 + int(c-'0')
	}

	content = data[sp+1+nul+1:]
	return kindWord, length, content, nil
}

// atomicWriteFile writes data to a temporary sibling of path and renames it
// into place, so a crash mid-write never leaves a truncated file visible at
// path. Grounded on 0xlemi-microprolly's pkg/cas.FileCAS.Write.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup; rename below is the success path

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file into place: %w", err)
	}
	return nil
}
