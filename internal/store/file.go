package store

import (
	"fmt"
	"os"
	"path/filepath"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// FileStore keeps objects under <root>/objects/<type>/<hh>/<rest>, where hh
// is the first two hex characters of the hash. Writes go through a
// stage-then-rename sequence so a reader never observes a partial object.
//
// Objects are immutable, so the in-memory read cache never needs
// invalidation.
type FileStore struct {
	root  string
	cache *gocache.Cache
}

// NewFileStore opens (or lays out) a file-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	for _, t := range object.Types() {
		if err := os.MkdirAll(filepath.Join(dir, "objects", string(t)), 0o755); err != nil {
			return nil, fmt.Errorf("create object dir: %w", err)
		}
	}
	return &FileStore{
		root:  dir,
		cache: gocache.New(gocache.NoExpiration, 0),
	}, nil
}

// Put writes the object unless an identical one is already stored.
func (s *FileStore) Put(obj object.Object) (string, error) {
	hash, err := obj.Hash()
	if err != nil {
		return "", err
	}
	path := s.objectPath(obj.Type(), hash)
	if _, err := os.Stat(path); err == nil {
		// Content addressing makes re-puts of identical content no-ops.
		return hash, nil
	}

	data, err := object.Encode(obj)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create shard dir: %w", err)
	}

	// Stage in the same directory so the rename is atomic on every
	// mainstream filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".stage-*")
	if err != nil {
		return "", fmt.Errorf("stage object: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close staged object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publish object: %w", err)
	}

	s.cache.Set(cacheKey(obj.Type(), hash), data, gocache.NoExpiration)
	return hash, nil
}

// Get loads and integrity-checks the object at hash.
func (s *FileStore) Get(t object.Type, hash string) (object.Object, error) {
	if len(hash) < 3 {
		return nil, fmt.Errorf("%s %q: %w", t, hash, ErrNotFound)
	}
	if cached, ok := s.cache.Get(cacheKey(t, hash)); ok {
		obj, err := verifyAddress(t, hash, cached.([]byte))
		if err != nil {
			// Same context as the disk path below.
			return nil, fmt.Errorf("%s %s: %w", t, hash, err)
		}
		return obj, nil
	}

	data, err := os.ReadFile(s.objectPath(t, hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %s: %w", t, hash, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s %s: %w", t, hash, err)
	}

	obj, err := verifyAddress(t, hash, data)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t, hash, err)
	}
	s.cache.Set(cacheKey(t, hash), data, gocache.NoExpiration)
	return obj, nil
}

// Exists reports whether hash is stored, without decoding it.
func (s *FileStore) Exists(t object.Type, hash string) (bool, error) {
	if len(hash) < 3 {
		return false, nil
	}
	if _, ok := s.cache.Get(cacheKey(t, hash)); ok {
		return true, nil
	}
	if _, err := os.Stat(s.objectPath(t, hash)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s %s: %w", t, hash, err)
	}
	return true, nil
}

// Walk enumerates stored hashes of one type by scanning the shard dirs.
func (s *FileStore) Walk(t object.Type, fn func(hash string) error) error {
	typeDir := filepath.Join(s.root, "objects", string(t))
	shards, err := os.ReadDir(typeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list %s objects: %w", t, err)
	}
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != 2 {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(typeDir, shard.Name()))
		if err != nil {
			return fmt.Errorf("list shard %s: %w", shard.Name(), err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if err := fn(shard.Name() + e.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) objectPath(t object.Type, hash string) string {
	return filepath.Join(s.root, "objects", string(t), hash[:2], hash[2:])
}

func cacheKey(t object.Type, hash string) string {
	return string(t) + ":" + hash
}
