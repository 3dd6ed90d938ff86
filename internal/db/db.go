// Package db opens the sqlite file that holds the classification history.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tlanclos/isthemountainout/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// historyPragmas are appended to every file DSN. WAL lets mountainctl read
// while the server appends; FULL sync makes a returned append durable, which
// the last-notable walk depends on.
var historyPragmas = []string{
	"_busy_timeout=5000",
	"_journal_mode=WAL",
	"_synchronous=FULL",
}

const pingTimeout = 5 * time.Second

// Open returns a pool over the history database that has answered a ping.
func Open(cfg config.Config) (*sql.DB, error) {
	dsn, err := historyDSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.SQLiteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	limitPool(conn, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	return conn, nil
}

// Close tolerates a nil pool so deferred cleanup after a failed Open is safe.
func Close(conn *sql.DB) error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// limitPool keeps the service a single writer: with one open connection the
// read-decide-append sequence cannot interleave with another append.
func limitPool(conn *sql.DB, cfg config.Config) {
	if cfg.SQLiteMaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		conn.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}
}

// historyDSN prefers SQLITE_DSN verbatim. Otherwise SQLITE_PATH may be a bare
// path or a file: URI with its own query; the pragmas are added either way and
// the parent directory is created for on-disk files.
func historyDSN(cfg config.Config) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	uri := cfg.SQLitePath
	if !strings.HasPrefix(uri, "file:") {
		uri = "file:" + uri
	}
	file, query, _ := strings.Cut(strings.TrimPrefix(uri, "file:"), "?")
	if err := ensureParentDir(file); err != nil {
		return "", err
	}

	pragmas := strings.Join(historyPragmas, "&")
	if query == "" {
		return "file:" + file + "?" + pragmas, nil
	}
	return "file:" + file + "?" + query + "&" + pragmas, nil
}

func ensureParentDir(file string) error {
	if file == "" || file == ":memory:" {
		return nil
	}
	dir := filepath.Dir(file)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history db dir %s: %w", dir, err)
	}
	return nil
}
