// Package store provides content-addressed, immutable persistence for truth
// objects. Two backends are available: a git-style sharded directory tree
// (the default) and a Badger key-value database for server deployments.
package store

import (
	"errors"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

var (
	// ErrNotFound means no object lives at the requested address.
	ErrNotFound = errors.New("object not found")

	// ErrCorrupt means stored bytes no longer hash to their address.
	ErrCorrupt = errors.New("object corrupt")
)

// Store persists immutable objects keyed by their content hash.
//
// Put is idempotent: writing identical content returns the same hash without
// a second write. Get recomputes the identity hash of the decoded object and
// fails with ErrCorrupt on mismatch, so silent storage corruption surfaces
// on read.
type Store interface {
	// Put stores the object and returns its hash.
	Put(obj object.Object) (string, error)

	// Get loads the object stored at hash.
	Get(t object.Type, hash string) (object.Object, error)

	// Exists reports whether an object of the given type is stored at hash.
	Exists(t object.Type, hash string) (bool, error)

	// Walk calls fn for every stored hash of the given type. Enumeration
	// order is not guaranteed. Walk restarts from scratch on every call;
	// returning an error from fn stops the walk and propagates the error.
	Walk(t object.Type, fn func(hash string) error) error

	// Close releases backend resources.
	Close() error
}

// verifyAddress decodes stored bytes and checks they still hash to the
// address they were read from.
func verifyAddress(t object.Type, hash string, data []byte) (object.Object, error) {
	obj, err := object.Decode(t, data)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	recomputed, err := obj.Hash()
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	if recomputed != hash {
		return nil, ErrCorrupt
	}
	return obj, nil
}
