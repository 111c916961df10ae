package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// NewDB opens a connection pool for driver and applies the schema.
func NewDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case DriverSQLite:
		// One connection keeps :memory: databases shared and serialises writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("database ready", "driver", driver)
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36)  NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		display_name  VARCHAR(100) NULL,
		role          VARCHAR(32)  NOT NULL DEFAULT 'customer',
		created_at    DATETIME     NOT NULL,
		updated_at    DATETIME     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS auth_tokens (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		token      VARCHAR(512) NOT NULL UNIQUE,
		user_id    VARCHAR(36)  NOT NULL,
		expires_at DATETIME     NOT NULL,
		created_at DATETIME     NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          VARCHAR(36)   NOT NULL PRIMARY KEY,
		owner_id    VARCHAR(36)   NOT NULL,
		title       VARCHAR(200)  NOT NULL,
		description VARCHAR(2000) NULL,
		due_date    DATETIME      NULL,
		priority    VARCHAR(16)   NOT NULL DEFAULT 'medium',
		status      VARCHAR(16)   NOT NULL DEFAULT 'todo',
		created_at  DATETIME      NOT NULL,
		updated_at  DATETIME      NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id            VARCHAR(36)  NOT NULL PRIMARY KEY,
		name          VARCHAR(200) NULL,
		email         VARCHAR(255) NOT NULL,
		selected_plan VARCHAR(100) NULL,
		created_at    DATETIME     NOT NULL
	)`,
}

// MySQL creates indexes for foreign keys itself and lacks CREATE INDEX IF NOT EXISTS.
var sqliteIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_auth_tokens_user_id ON auth_tokens(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := schema
	if driver == DriverSQLite {
		stmts = append(append([]string(nil), schema...), sqliteIndexes...)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// isDuplicateEntryError reports unique constraint violations for both drivers.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// timestamp normalises times to UTC with second precision, matching DATETIME.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: timestamp(*t), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

type rowScanner interface {
	Scan(dest ...any) error
}
