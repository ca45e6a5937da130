package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               VARCHAR(36)  NOT NULL PRIMARY KEY,
		email            VARCHAR(255) NULL UNIQUE,
		signup_code      VARCHAR(16)  NULL UNIQUE,
		pin_hash         VARCHAR(255) NOT NULL,
		role_id          VARCHAR(64)  NOT NULL DEFAULT '',
		role_name        VARCHAR(64)  NOT NULL DEFAULT '',
		first_name       VARCHAR(255) NOT NULL DEFAULT '',
		last_name        VARCHAR(255) NOT NULL DEFAULT '',
		full_name        VARCHAR(255) NOT NULL DEFAULT '',
		profile_image_id VARCHAR(255) NOT NULL DEFAULT '',
		created_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id          VARCHAR(36)   NOT NULL PRIMARY KEY,
		profile_id  VARCHAR(36)   NOT NULL,
		title       TEXT          NOT NULL,
		description TEXT          NOT NULL,
		image_id    VARCHAR(255)  NULL,
		image_url   VARCHAR(1024) NULL,
		created_at  BIGINT        NOT NULL,
		updated_at  BIGINT        NOT NULL,
		INDEX idx_notes_profile_created (profile_id, created_at)
	)`,
}

// NewDB creates a new MySQL database connection pool with the given DSN.
// Updates report matched rows rather than changed rows so an unchanged note still counts as found.
func NewDB(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		slog.Warn("database ping failed", "error", err)
	}

	return db, nil
}

// EnsureSchema creates the users and notes tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
