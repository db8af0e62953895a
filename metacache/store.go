// Package metacache persists catalog metadata for game tokens so previews
// render immediately on the next launch, without waiting on the daemon's
// catalog proxy.
package metacache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"idlectl/api"
)

// Store layers an in-memory map over a sqlite file. All methods are safe
// for concurrent use; the TUI reads from the map while fetch commands
// write through from their own goroutines.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	mem  map[string]api.AppMeta
	path string
}

// Open loads the cache at path, creating the file and schema on first use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db, mem: make(map[string]api.AppMeta), path: path}
	if err := s.warm(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory returns a map-only store. Used when the sqlite file cannot be
// opened; the session still works, previews just do not persist.
func OpenMemory() *Store {
	return &Store{mem: make(map[string]api.AppMeta)}
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS apps (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			capsule_image TEXT NOT NULL DEFAULT '',
			header_image TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("metacache migration failed: %w", err)
		}
	}
	return nil
}

func (s *Store) warm() error {
	rows, err := s.db.Query(`SELECT id, name, capsule_image, header_image, icon FROM apps`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var meta api.AppMeta
		if err := rows.Scan(&id, &meta.Name, &meta.CapsuleImage, &meta.HeaderImage, &meta.Icon); err != nil {
			return err
		}
		s.mem[id] = meta
	}
	return rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns cached metadata for id.
func (s *Store) Get(id string) (api.AppMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.mem[id]
	return meta, ok
}

// Put caches metadata in memory and writes it through to sqlite.
func (s *Store) Put(id string, meta api.AppMeta) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[id] = meta
	if s.db == nil {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO apps (id, name, capsule_image, header_image, icon)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name,
		   capsule_image=excluded.capsule_image,
		   header_image=excluded.header_image,
		   icon=excluded.icon,
		   fetched_at=CURRENT_TIMESTAMP`,
		id, meta.Name, meta.CapsuleImage, meta.HeaderImage, meta.Icon,
	)
	return err
}

// Missing filters ids down to those without cached metadata, deduplicated,
// order preserved.
func (s *Store) Missing(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(ids))
	var missing []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, cached := s.mem[id]; !cached {
			missing = append(missing, id)
		}
	}
	return missing
}

// Snapshot copies the current memory map for rendering.
func (s *Store) Snapshot() map[string]api.AppMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]api.AppMeta, len(s.mem))
	for id, meta := range s.mem {
		out[id] = meta
	}
	return out
}
