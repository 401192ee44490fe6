package dataset

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Store caches an annotation index in SQLite so category queries do not
// require re-parsing the annotation file.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenStore opens (creating if needed) the index database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "open index database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate index database")
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		supercategory TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY,
		file_name TEXT NOT NULL,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS annotations (
		id INTEGER PRIMARY KEY,
		image_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		x REAL DEFAULT 0,
		y REAL DEFAULT 0,
		width REAL DEFAULT 0,
		height REAL DEFAULT 0,
		area REAL DEFAULT 0,
		iscrowd INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_category_id ON annotations(category_id);
	CREATE INDEX IF NOT EXISTS idx_annotations_image_id ON annotations(image_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Import replaces the stored index with idx in a single transaction.
func (s *Store) Import(ctx context.Context, idx *Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin import")
	}
	defer tx.Rollback()

	for _, table := range []string{"annotations", "images", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}

	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (id, name, supercategory) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare categories")
	}
	defer catStmt.Close()
	for _, c := range idx.Categories() {
		if _, err := catStmt.ExecContext(ctx, c.ID, c.Name, c.Supercategory); err != nil {
			return errors.Wrapf(err, "insert category %d", c.ID)
		}
	}

	imgStmt, err := tx.PrepareContext(ctx, `INSERT INTO images (id, file_name, width, height) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare images")
	}
	defer imgStmt.Close()
	annStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotations (id, image_id, category_id, x, y, width, height, area, iscrowd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "prepare annotations")
	}
	defer annStmt.Close()

	for _, id := range idx.ImageIDs() {
		img, _ := idx.Image(id)
		if _, err := imgStmt.ExecContext(ctx, img.ID, img.FileName, img.Width, img.Height); err != nil {
			return errors.Wrapf(err, "insert image %d", img.ID)
		}
		for _, a := range idx.Annotations(id) {
			if _, err := annStmt.ExecContext(ctx, a.ID, a.ImageID, a.CategoryID,
				a.BBox[0], a.BBox[1], a.BBox[2], a.BBox[3], a.Area, a.IsCrowd); err != nil {
				return errors.Wrapf(err, "insert annotation %d", a.ID)
			}
		}
	}

	return tx.Commit()
}

// ImageIDs returns, in ascending order, up to limit ids of images containing
// the named category. A limit of 0 returns every match.
func (s *Store) ImageIDs(ctx context.Context, category string, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT a.image_id
		FROM annotations a JOIN categories c ON c.id = a.category_id
		WHERE lower(c.name) = lower(?)
		ORDER BY a.image_id
		LIMIT ?
	`, category, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query image ids")
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan image id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored images.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count images")
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
