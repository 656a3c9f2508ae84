package refs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileManager stores each ref as a small file under <root>/refs, with
// slashes in the ref name mapped to subdirectories. Updates are staged and
// renamed into place so a concurrent reader sees either the old or the new
// target, never a torn write.
type FileManager struct {
	dir string
}

// NewFileManager opens (or creates) a ref tree rooted at dir.
func NewFileManager(dir string) (*FileManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &FileManager{dir: dir}, nil
}

func (m *FileManager) SetRef(name, target string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	path := m.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ref dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ref-*")
	if err != nil {
		return fmt.Errorf("stage ref %s: %w", name, err)
	}
	if _, err := tmp.WriteString(target + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ref %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close ref %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish ref %s: %w", name, err)
	}
	return nil
}

func (m *FileManager) GetRef(name string) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", name, ErrRefNotFound)
		}
		return "", fmt.Errorf("read ref %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (m *FileManager) DeleteRef(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if err := os.Remove(m.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	return nil
}

func (m *FileManager) ListRefs(prefix string) ([]Ref, error) {
	var out []Ref
	err := filepath.WalkDir(m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".ref-") {
			return nil
		}
		rel, err := filepath.Rel(m.dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// Ref deleted mid-walk; skip it.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		out = append(out, Ref{Name: name, Target: strings.TrimSpace(string(data))})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs %q: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *FileManager) path(name string) string {
	return filepath.Join(m.dir, filepath.FromSlash(name))
}
