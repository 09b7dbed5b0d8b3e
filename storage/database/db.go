package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Umairism/Teachers-Club/core"
)

// Database engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

func postgresURL(dbName string, admin bool, conf *core.Config) string {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func isMemory(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

// Open connects to the configured database: PostgreSQL (through lib/pq) or a pure-Go SQLite.
func Open(conf *core.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.Database.Engine {
	case EnginePostgres:
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres", // lib/pq
			DSN:        postgresURL(conf.Database.Name, false, conf),
		})
	case EngineSQLite:
		dialector = sqlite.Open(conf.Database.SQLitePath)
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}

	logLevel := gormlogger.Silent
	if conf.Database.LogQueries {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log.New(os.Stdout, "", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
		DisableForeignKeyConstraintWhenMigrating: true, // users are referenced by id only
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = registerShutdownCallbacks(db); err != nil {
		return nil, errors.Wrap(err, "registering callbacks")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "getting database handle")
	}
	if conf.Database.Engine == EngineSQLite {
		// sqlite allows one writer; an in-memory database only lives as long as its connection
		sqlDB.SetMaxOpenConns(1)
		if isMemory(conf.Database.SQLitePath) {
			sqlDB.SetConnMaxLifetime(0)
			sqlDB.SetMaxIdleConns(1)
		}
	} else {
		if conf.Database.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(conf.Database.MaxOpenConns)
		}
		if conf.Database.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(conf.Database.MaxIdleConns)
		}
	}

	if err = ping(sqlDB); err != nil {
		return nil, err
	}
	return db, nil
}

// registerShutdownCallbacks turns errors raised by a closed connection pool into core.ShutdownError.
func registerShutdownCallbacks(db *gorm.DB) error {
	mark := func(tx *gorm.DB) {
		if tx.Error == nil || core.IsShutdown(tx.Error) {
			return
		}
		if errors.Is(tx.Error, sql.ErrConnDone) || strings.Contains(tx.Error.Error(), "database is closed") {
			tx.Error = core.NewShutdownError(tx.Error)
		}
	}

	cb := db.Callback()
	for _, register := range []func() error{
		func() error { return cb.Create().After("gorm:create").Register("app:shutdown", mark) },
		func() error { return cb.Query().After("gorm:query").Register("app:shutdown", mark) },
		func() error { return cb.Update().After("gorm:update").Register("app:shutdown", mark) },
		func() error { return cb.Delete().After("gorm:delete").Register("app:shutdown", mark) },
		func() error { return cb.Row().After("gorm:row").Register("app:shutdown", mark) },
		func() error { return cb.Raw().After("gorm:raw").Register("app:shutdown", mark) },
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func createAppUser(db *sql.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	var exists bool
	err := db.QueryRow("SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "checking app user")
	}
	if !exists {
		q := fmt.Sprintf("CREATE USER %q CREATEDB ENCRYPTED PASSWORD '%s'", conf.Database.User, strings.ReplaceAll(conf.Database.Password, "'", "''"))
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sql.DB, conf *core.Config) error {
	var exists bool
	err := db.QueryRow("SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the PostgreSQL app user & database when missing. It is a no-op for SQLite.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine != EnginePostgres {
		return nil
	}

	// connect as admin
	db, err := sql.Open("postgres", postgresURL("postgres", true, conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return err
	}

	// create DB as app user
	appDB, err := sql.Open("postgres", postgresURL("postgres", false, conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()
	return createDB(appDB, conf)
}
