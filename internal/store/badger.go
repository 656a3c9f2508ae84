package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/refs"
)

const (
	objPrefix = "obj/"
	refPrefix = "ref/"
)

// BadgerStore keeps objects and refs in a single Badger database. It
// implements both Store and refs.Manager, which lets a server deployment
// run off one embedded KV store instead of a directory tree.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(obj object.Object) (string, error) {
	hash, err := obj.Hash()
	if err != nil {
		return "", err
	}
	key := objKey(obj.Type(), hash)

	exists, err := s.has(key)
	if err != nil {
		return "", err
	}
	if exists {
		return hash, nil
	}

	data, err := object.Encode(obj)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return "", fmt.Errorf("put %s %s: %w", obj.Type(), hash, err)
	}
	return hash, nil
}

func (s *BadgerStore) Get(t object.Type, hash string) (object.Object, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objKey(t, hash))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%s %s: %w", t, hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", t, hash, err)
	}
	obj, err := verifyAddress(t, hash, data)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t, hash, err)
	}
	return obj, nil
}

func (s *BadgerStore) Exists(t object.Type, hash string) (bool, error) {
	return s.has(objKey(t, hash))
}

func (s *BadgerStore) Walk(t object.Type, fn func(hash string) error) error {
	prefix := objKey(t, "")
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hash := string(it.Item().Key()[len(prefix):])
			if err := fn(hash); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// SetRef implements refs.Manager. Badger transactions already give the
// per-name atomicity the ref contract requires.
func (s *BadgerStore) SetRef(name, target string) error {
	if err := refs.ValidName(name); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(refPrefix+name), []byte(target))
	})
	if err != nil {
		return fmt.Errorf("set ref %s: %w", name, err)
	}
	return nil
}

func (s *BadgerStore) GetRef(name string) (string, error) {
	if err := refs.ValidName(name); err != nil {
		return "", err
	}
	var target []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(refPrefix + name))
		if err != nil {
			return err
		}
		target, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return "", fmt.Errorf("%s: %w", name, refs.ErrRefNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get ref %s: %w", name, err)
	}
	return string(target), nil
}

func (s *BadgerStore) DeleteRef(name string) error {
	if err := refs.ValidName(name); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(refPrefix + name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	return nil
}

func (s *BadgerStore) ListRefs(prefix string) ([]refs.Ref, error) {
	scan := []byte(refPrefix + prefix)
	var out []refs.Ref
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), refPrefix)
			target, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, refs.Ref{Name: name, Target: string(target)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs %q: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *BadgerStore) has(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", key, err)
	}
	return true, nil
}

func objKey(t object.Type, hash string) []byte {
	return []byte(objPrefix + string(t) + "/" + hash)
}
