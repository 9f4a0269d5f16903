// Package dbtest opens a throwaway, fully migrated database for tests.
package dbtest

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"quiz-admin/internal/config"
	"quiz-admin/internal/database"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
)

// New returns a SQLite backed Database living in t.TempDir(). It is closed on cleanup.
func New(t testing.TB) *database.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), config.DatabaseConfig{
		MaxOpenConns: 1,
		QueryTimeout: 5 * time.Second,
	}, Logger())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// Logger discards output so test runs stay quiet.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
