package sqlite

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations.sql
var migrations string

const DefaultPath = "./storage/teman-cerita.db"

// New opens the SQLite database at path, creating its directory, and applies
// the schema. ":memory:" opens a private in-memory database.
func New(path string) (*sqlx.DB, error) {
	if path == "" {
		path = DefaultPath
	}

	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// One connection keeps ":memory:" databases from splitting per conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Debugf("SQLite database ready at %s", path)

	return db, nil
}

// FormatDSN turns a file path into the DSN whatsmeow expects, with foreign
// keys enabled.
func FormatDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_foreign_keys=on"
}
