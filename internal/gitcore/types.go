// Package gitcore implements the content-addressed object model, staging
// index, ref store, and history/merge machinery of the version-control
// system. It holds no CLI or presentation concerns — see cmd/mvcs for those.
package gitcore

import (
	"crypto/sha1" //nolint:gosec // content hashing, not a security boundary
	"encoding/hex"
	"fmt"
)

// Hash is a 40-character lowercase hex SHA-1 object identifier.
type Hash string

// NewHash computes the Hash of raw bytes (the complete on-disk object
// representation, i.e. "<type> <len>\0<content>", not the content alone).
func NewHash(data []byte) Hash {
	sum := sha1.Sum(data) //nolint:gosec // content-addressing, not a security boundary
	return Hash(hex.EncodeToString(sum[:]))
}

// Short returns the first 7 characters of the hash, or the full hash if
// shorter (used only for log/status display, never for lookups).
func (h Hash) Short() string {
	if len(h) < 7 {
		return string(h)
	}
	return string(h)[:7]
}

// IsValidSHA1 reports whether s is a syntactically valid SHA-1 hex digest:
// exactly 40 characters, every one a lowercase hex digit.
func IsValidSHA1(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// ObjectKind tags the concrete type of an Object without requiring virtual
// dispatch: the store decodes the leading type word and returns the matching
// concrete pointer type, and callers type-switch on it.
type ObjectKind int

const (
	KindBlob ObjectKind = iota
	KindTree
	KindCommit
)

func (k ObjectKind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	default:
		return "unknown"
	}
}

func objectKindFromWord(word string) (ObjectKind, error) {
	switch word {
	case "blob":
		return KindBlob, nil
	case "tree":
		return KindTree, nil
	case "commit":
		return KindCommit, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized object type %q", ErrObjectCorrupt, word)
	}
}

// Object is the tagged-variant interface implemented by Blob, Tree, and
// Commit. Serialize returns only the content bytes; the
// "<type> <len>\0" envelope is added by the Store.
type Object interface {
	Kind() ObjectKind
	Serialize() []byte
}

// DefaultMode is the sole file mode this system ever records for a tree
// entry, whether the entry names a blob or a sub-tree. There is no
// executable bit, no symlink mode, no mode preservation at all — an entry's
// actual kind is discovered by looking up its hash in the object store, not
// by inspecting this field.
const DefaultMode = "100644"
