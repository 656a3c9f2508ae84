// Package refs manages mutable named pointers into the object store,
// analogous to git refs. Objects never move; refs do.
//
// Concurrent writers to the same ref race under last-write-wins. That is a
// documented weak-consistency policy: callers needing atomic multi-ref
// updates serialize at the repository layer.
package refs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRefNotFound means no ref exists under the requested name.
var ErrRefNotFound = errors.New("ref not found")

// Head points at the most recently created verification across all claims.
const Head = "HEAD"

// Ref is a named pointer to an object hash.
type Ref struct {
	Name   string
	Target string
}

// Manager stores the flat name→hash map.
type Manager interface {
	// SetRef overwrites name unconditionally. The write is atomic per
	// name: no reader observes a half-updated association.
	SetRef(name, target string) error

	// GetRef resolves name, failing with ErrRefNotFound if absent.
	GetRef(name string) (string, error)

	// DeleteRef removes name. Deleting an absent ref is not an error.
	DeleteRef(name string) error

	// ListRefs returns all refs whose name starts with prefix, sorted by
	// name. An empty prefix lists everything.
	ListRefs(prefix string) ([]Ref, error)
}

// Consensus names the ref holding a claim's most recent verification.
func Consensus(claimHash string) string {
	return "consensus/" + claimHash
}

// Perspective names the ref holding one validator's most recent judgment of
// a claim, wrapped as a single-result verification.
func Perspective(validator, claimHash string) string {
	return "perspectives/" + validator + "/" + claimHash
}

// Stage names the ref marking a claim as awaiting verification.
func Stage(claimHash string) string {
	return "stage/" + claimHash
}

// ValidName rejects names that would escape the ref namespace when mapped
// onto a directory tree.
func ValidName(name string) error {
	if name == "" {
		return fmt.Errorf("empty ref name")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return fmt.Errorf("ref name %q must not start or end with a slash", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("ref name %q contains an invalid path segment", name)
		}
	}
	return nil
}
