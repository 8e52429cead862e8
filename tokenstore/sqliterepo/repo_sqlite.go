package sqliterepo

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/myfintrack/fintrack-go/tokenstore"
)

var _ tokenstore.Repo = (*Repo)(nil)

// Repo is a SQLite-backed key-value store. A single kv table keeps the
// schema trivial; the token store only ever holds a handful of keys.
type Repo struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at dbPath.
func New(dbPath string) (*Repo, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "[sqliterepo.New] create store directory")
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "[sqliterepo.New] open database")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "[sqliterepo.New] create kv table")
	}

	return &Repo{db: db}, nil
}

func (r *Repo) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[Repo.Get] query")
	}
	return value, true, nil
}

func (r *Repo) Set(key, value string) error {
	_, err := r.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrap(err, "[Repo.Set] upsert")
}

func (r *Repo) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return errors.Wrap(err, "[Repo.Delete] delete")
}

func (r *Repo) Close() error {
	return r.db.Close()
}
