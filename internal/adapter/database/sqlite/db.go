package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	gosqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"

	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg"
	"github.com/Kaybarax/todo-list-turborepo-sub002/pkg/config"
)

// DriverName is go-sqlite3 with unicode_lower(text) registered on every
// connection. The built-in LOWER only folds ASCII.
const DriverName = "sqlite3_unicode"

func init() {
	sql.Register(DriverName, &gosqlite3.SQLiteDriver{
		ConnectHook: func(conn *gosqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

type Options struct {
	DSN            string
	MigrationsPath string
	LogQueries     bool
}

// New opens the configured database file and brings its schema up to date.
func New(cfg config.DatabaseConfig, app config.AppConfig) (*DB, error) {
	return Open(Options{
		DSN:            cfg.Path,
		MigrationsPath: filepath.Join(pkg.ResolvePath(cfg.MigrationsPath), "sqlite"),
		LogQueries:     app.IsDevelopment(),
	})
}

func Open(opts Options) (*DB, error) {
	memory := isMemory(opts.DSN)

	dsn := opts.DSN
	if !memory && !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_journal_mode=WAL"
	}

	sqlDB, err := otelsql.Open(DriverName, dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("todos"),
	)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is a separate database.
	if memory {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if opts.MigrationsPath != "" {
		if err := RunMigrations(sqlDB, opts.MigrationsPath); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	if opts.LogQueries && !memory {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logged := sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger),
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
		)

		sqlDB.Close()
		sqlDB = logged
	}

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
