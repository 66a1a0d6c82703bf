// Package msglog persists log events in a SQLite message log.
//
// Each event is stored with the session that produced it, its category and a
// coarse level (info, warning, error). Open renders the most recent window of
// messages as a table, which is what "show the message log" means outside an
// editor. The store also echoes appended events to the console, so callers
// that log to the message log skip their own console write.
//
// Schema changes bump schemaVersion; users delete the database to adopt the
// new schema.
package msglog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"dbglog/internal/event"
	"dbglog/internal/severity"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Echo receives a copy of each appended event.
type Echo interface {
	Write(category string, sev severity.Severity, loc event.Location, message string) error
}

// Options configures the store.
type Options struct {
	Path      string
	SessionID string
	// Window receives the table printed by Open. Defaults to os.Stdout.
	Window io.Writer
	// WindowLimit caps the rows printed by Open.
	WindowLimit int
	Echo        Echo
}

// Store is the message log sink.
type Store struct {
	db      *sql.DB
	path    string
	session string
	limit   int
	echo    Echo

	mu     sync.Mutex
	window io.Writer
	clock  func() time.Time
}

// Open initializes or connects to the message database.
func Open(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("message log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create message log directory: %w", err)
	}
	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{
		db:      db,
		path:    opts.Path,
		session: opts.SessionID,
		limit:   opts.WindowLimit,
		echo:    opts.Echo,
		window:  opts.Window,
		clock:   time.Now,
	}
	if s.limit <= 0 {
		s.limit = 50
	}
	if s.window == nil {
		s.window = os.Stdout
	}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Append stores one event and echoes it to the console.
func (s *Store) Append(category string, sev severity.Severity, message string) error {
	ts := s.clock().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO messages (session_id, created_at, category, severity, level, message)
         VALUES (?, ?, ?, ?, ?, ?)`,
		s.session, ts, category, int(sev), LevelFor(sev), message,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if s.echo != nil {
		if err := s.echo.Write(category, sev, event.Location{}, message); err != nil {
			return fmt.Errorf("echo message: %w", err)
		}
	}
	return nil
}

// Open prints the most recent messages at or above the level of sev.
func (s *Store) Open(sev severity.Severity) error {
	entries, err := s.Query(context.Background(), Filter{Limit: s.limit, MinSeverity: minSeverityFor(sev)})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = io.WriteString(s.window, RenderWindow(entries, s.clock())+"\n")
	return err
}

// LevelFor maps a severity onto the message log's coarse level.
func LevelFor(sev severity.Severity) string {
	switch sev {
	case severity.Warning:
		return "warning"
	case severity.Error, severity.Fatal:
		return "error"
	default:
		return "info"
	}
}

func minSeverityFor(sev severity.Severity) severity.Severity {
	switch LevelFor(sev) {
	case "warning":
		return severity.Warning
	case "error":
		return severity.Error
	default:
		return severity.Verbose
	}
}
