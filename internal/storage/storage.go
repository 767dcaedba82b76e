package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/nikbrunner/tagsense/internal/model"
)

// ErrNotFound is returned when a bookmark ID does not exist.
var ErrNotFound = errors.New("bookmark not found")

// Store defines the bookmark store consumed by the engine. AddLabels
// must be safe to call repeatedly with the same label set.
type Store interface {
	Get(id string) (*model.Bookmark, error)
	List() ([]model.Bookmark, error)
	Add(b model.Bookmark) error
	AddLabels(id string, labels []model.Label) error
	Close() error
}

// JSONStore implements Store on a single JSON file. Each mutation
// rewrites the whole file; fine for personal-scale collections.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSONStore with the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the storage file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Get returns the bookmark with the given ID.
func (s *JSONStore) Get(id string) (*model.Bookmark, error) {
	bookmarks, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range bookmarks {
		if bookmarks[i].ID == id {
			return &bookmarks[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns all bookmarks.
func (s *JSONStore) List() ([]model.Bookmark, error) {
	return s.load()
}

// Add appends a bookmark.
func (s *JSONStore) Add(b model.Bookmark) error {
	bookmarks, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(bookmarks, b))
}

// AddLabels attaches labels to a bookmark, skipping (name, category)
// pairs the bookmark already carries.
func (s *JSONStore) AddLabels(id string, labels []model.Label) error {
	bookmarks, err := s.load()
	if err != nil {
		return err
	}

	for i := range bookmarks {
		if bookmarks[i].ID != id {
			continue
		}
		for _, l := range labels {
			if !bookmarks[i].HasLabel(l.Name, l.Category) {
				bookmarks[i].Labels = append(bookmarks[i].Labels, l)
			}
		}
		return s.save(bookmarks)
	}
	return ErrNotFound
}

// Close is a no-op for file-backed storage.
func (s *JSONStore) Close() error {
	return nil
}

// load reads the bookmark list, returning an empty list if the file
// doesn't exist yet.
func (s *JSONStore) load() ([]model.Bookmark, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Bookmark{}, nil
		}
		return nil, err
	}

	var bookmarks []model.Bookmark
	if err := json.Unmarshal(data, &bookmarks); err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}
	return bookmarks, nil
}

// save writes the bookmark list, creating the directory if needed.
func (s *JSONStore) save(bookmarks []model.Bookmark) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bookmarks, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// DefaultJSONPath returns the default JSON store path:
// ~/.config/tagsense/bookmarks.json
func DefaultJSONPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "tagsense", "bookmarks.json"), nil
}

// OpenStore opens the appropriate storage backend. Prefers SQLite if
// the database file exists, otherwise falls back to JSON.
func OpenStore() (Store, error) {
	sqlitePath, err := DefaultSQLitePath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteStore(sqlitePath)
	}

	jsonPath, err := DefaultJSONPath()
	if err != nil {
		return nil, err
	}
	return NewJSONStore(jsonPath), nil
}
