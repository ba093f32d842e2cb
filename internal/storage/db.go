// Package storage provides the database layer for Ontime.
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/nvoss/ontime/internal/errors"
)

const (
	// AppName is the application name used for data directories.
	AppName = "ontime"
)

// DB wraps a Badger database connection.
type DB struct {
	db *badger.DB
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// DefaultPath returns the default database path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "db")
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options

	if opts.InMemory || opts.Path == "" {
		// In-memory mode for testing
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		if isCorruptionError(err) {
			return nil, errors.Wrap(errors.ErrDatabaseCorrupted, err.Error())
		}
		return nil, err
	}

	return &DB{db: db}, nil
}

// isCorruptionError reports whether an open failure means the store
// itself is unreadable, as opposed to an environmental problem like a
// held lock or missing permissions.
func isCorruptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"manifest", "checksum", "corrupt", "truncate"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
