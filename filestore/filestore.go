// Package filestore persists small content collections as JSON files.
package filestore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Collection is an ordered list of T stored in a single JSON array file.
// idOf and withID read and assign the string ID of an element.
type Collection[T any] struct {
	mu     sync.Mutex
	path   string
	idOf   func(T) string
	withID func(T, string) T
}

func NewCollection[T any](dir, name string, idOf func(T) string, withID func(T, string) T) *Collection[T] {
	return &Collection[T]{
		path:   filepath.Join(dir, name+".json"),
		idOf:   idOf,
		withID: withID,
	}
}

func (c *Collection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// save writes to a temp file and renames it over the target.
func (c *Collection[T]) save(items []T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

func (c *Collection[T]) List() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, err
	}
	for _, it := range items {
		if c.idOf(it) == id {
			return it, nil
		}
	}
	return zero, ErrNotFound
}

// Create assigns a new ID to item and appends it.
func (c *Collection[T]) Create(item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return item, err
	}
	item = c.withID(item, uuid.NewString())
	if err := c.save(append(items, item)); err != nil {
		return item, err
	}
	return item, nil
}

// Update replaces the element with the given id, keeping its position.
func (c *Collection[T]) Update(id string, item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return item, err
	}
	item = c.withID(item, id)
	for i := range items {
		if c.idOf(items[i]) == id {
			items[i] = item
			return item, c.save(items)
		}
	}
	return item, ErrNotFound
}

func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load()
	if err != nil {
		return err
	}
	for i := range items {
		if c.idOf(items[i]) == id {
			return c.save(append(items[:i], items[i+1:]...))
		}
	}
	return ErrNotFound
}
