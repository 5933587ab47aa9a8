package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/shared"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS access_requests (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		visitor_id TEXT NOT NULL,
		session_key TEXT NOT NULL,
		persona_id TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_access_requests_created ON access_requests(created_at);
	CREATE INDEX IF NOT EXISTS idx_access_requests_visitor ON access_requests(visitor_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// SaveAccessRequest inserts req, assigning an id and timestamp when unset.
func (s *SQLiteStore) SaveAccessRequest(ctx context.Context, req *domain.AccessRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO access_requests (id, email, visitor_id, session_key, persona_id, language, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		req.ID, req.Email, req.VisitorID, req.SessionKey,
		req.PersonaID, req.Language, req.CreatedAt.Unix(),
	)
	if err != nil {
		return classify(fmt.Errorf("insert access request: %w", err))
	}
	return nil
}

// ListAccessRequests returns the newest requests first.
func (s *SQLiteStore) ListAccessRequests(ctx context.Context, limit int) ([]*domain.AccessRequest, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, email, visitor_id, session_key, persona_id, language, created_at
		FROM access_requests
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("query access requests: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.AccessRequest
	for rows.Next() {
		var req domain.AccessRequest
		var createdAt int64
		if err := rows.Scan(
			&req.ID, &req.Email, &req.VisitorID, &req.SessionKey,
			&req.PersonaID, &req.Language, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		req.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access requests: %w", err)
	}
	return out, nil
}

// CountAccessRequestsByVisitor returns how many requests a visitor made.
func (s *SQLiteStore) CountAccessRequestsByVisitor(ctx context.Context, visitorID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_requests WHERE visitor_id = ?`, visitorID,
	).Scan(&n)
	if err != nil {
		return 0, classify(fmt.Errorf("count access requests: %w", err))
	}
	return n, nil
}

// classify tags SQLite lock contention with ErrBusy.
func classify(err error) error {
	if shared.IsSQLiteConflictError(err) {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return err
}
