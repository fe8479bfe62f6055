package test

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/adapter/database/sqlite"
)

var rootOnce = sync.OnceValue(func() string {
	_, filename, _, _ := runtime.Caller(0)

	for dir := filepath.Dir(filename); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("locate module root: %v", err)
	}

	return wd
})

// MigrationsPath returns db/migrations/<set> under the module root, where set
// is one of sqlite, postgres or mobile.
func MigrationsPath(set string) string {
	return filepath.Join(rootOnce(), "db", "migrations", set)
}

// InitTestDB opens a private in-memory sqlite database with the server
// schema applied. Callers close it.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.Open(sqlite.Options{
		DSN:            ":memory:",
		MigrationsPath: MigrationsPath("sqlite"),
	})
	if err != nil {
		log.Fatalf("open test database: %v", err)
	}

	return db
}
