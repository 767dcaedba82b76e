package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/tagsense/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a SQLiteStore with the given database path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys and set pragmas for performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema. The labels table's primary key
// makes AddLabels idempotent: re-adding an existing (bookmark, name,
// category) triple is a no-op.
func (s *SQLiteStore) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		CREATE TABLE IF NOT EXISTS labels (
			bookmark_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			source TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (bookmark_id, name, category),
			FOREIGN KEY (bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_labels_name ON labels(name, category);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the bookmark with the given ID, labels included.
func (s *SQLiteStore) Get(id string) (*model.Bookmark, error) {
	row := s.db.QueryRow(
		"SELECT id, title, url, description, created_at FROM bookmarks WHERE id = ?", id)

	b, err := scanBookmark(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	labels, err := s.loadLabels(b.ID)
	if err != nil {
		return nil, err
	}
	b.Labels = labels
	return b, nil
}

// List returns all bookmarks with their labels.
func (s *SQLiteStore) List() ([]model.Bookmark, error) {
	rows, err := s.db.Query(
		"SELECT id, title, url, description, created_at FROM bookmarks ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range bookmarks {
		labels, err := s.loadLabels(bookmarks[i].ID)
		if err != nil {
			return nil, err
		}
		bookmarks[i].Labels = labels
	}

	return bookmarks, nil
}

// Add inserts a bookmark and its labels.
func (s *SQLiteStore) Add(b model.Bookmark) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO bookmarks (id, title, url, description, created_at) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.Title, b.URL, b.Description, b.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for _, l := range b.Labels {
		if err := insertLabel(tx, b.ID, l); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AddLabels attaches labels to a bookmark. Existing (name, category)
// pairs are left untouched.
func (s *SQLiteStore) AddLabels(id string, labels []model.Label) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, l := range labels {
		if err := insertLabel(tx, id, l); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertLabel(tx *sql.Tx, bookmarkID string, l model.Label) error {
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO labels (bookmark_id, name, category, source, confidence) VALUES (?, ?, ?, ?, ?)",
		bookmarkID, l.Name, string(l.Category), l.Source, l.Confidence)
	return err
}

func (s *SQLiteStore) loadLabels(bookmarkID string) ([]model.Label, error) {
	rows, err := s.db.Query(
		"SELECT name, category, source, confidence FROM labels WHERE bookmark_id = ? ORDER BY name, category",
		bookmarkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []model.Label{}
	for rows.Next() {
		var l model.Label
		var category string
		if err := rows.Scan(&l.Name, &category, &l.Source, &l.Confidence); err != nil {
			return nil, err
		}
		l.Category = model.Category(category)
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row scanner) (*model.Bookmark, error) {
	var b model.Bookmark
	var createdAt string
	if err := row.Scan(&b.ID, &b.Title, &b.URL, &b.Description, &createdAt); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = ts
	return &b, nil
}

// DefaultSQLitePath returns the default database path:
// ~/.config/tagsense/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "tagsense", "bookmarks.db"), nil
}
