// Package sqlite implements storage.Store on an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/exascience/parpat/internal/logger"
	"github.com/exascience/parpat/storage"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS session (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		host TEXT NOT NULL DEFAULT '',
		os TEXT NOT NULL DEFAULT '',
		arch TEXT NOT NULL DEFAULT '',
		cores INTEGER NOT NULL DEFAULT 0,
		go_version TEXT NOT NULL DEFAULT '',
		run_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS result (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES session(id),
		method TEXT NOT NULL,
		mean_ms REAL NOT NULL,
		std_dev_ms REAL NOT NULL,
		n INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_result_session ON result (session_id)`,
}

// Datastore provides an SQLite based implementation of [storage.Store].
type Datastore struct {
	stbl   sq.StatementBuilderType
	db     *sql.DB
	logger logger.Logger
}

var _ storage.Store = (*Datastore)(nil)

// PrepareDSN adds defaults for journal mode and busy timeout to a raw
// data source name, and enables foreign keys.
func PrepareDSN(uri string) (string, error) {
	query := url.Values{}
	var err error

	if i := strings.Index(uri, "?"); i != -1 {
		query, err = url.ParseQuery(uri[i+1:])
		if err != nil {
			return uri, fmt.Errorf("error parsing dsn: %w", err)
		}
		uri = uri[:i]
	}

	foundJournalMode := false
	foundBusyTimeout := false
	for _, val := range query["_pragma"] {
		if strings.HasPrefix(val, "journal_mode") {
			foundJournalMode = true
		} else if strings.HasPrefix(val, "busy_timeout") {
			foundBusyTimeout = true
		}
	}

	if !foundJournalMode {
		query.Add("_pragma", "journal_mode(WAL)")
	}
	if !foundBusyTimeout {
		query.Add("_pragma", "busy_timeout(100)")
	}
	query.Add("_pragma", "foreign_keys(1)")

	if !query.Has("_txlock") {
		query.Set("_txlock", "immediate")
	}

	return uri + "?" + query.Encode(), nil
}

// New opens the database at uri and creates the schema if needed.
func New(ctx context.Context, uri string, log logger.Logger) (*Datastore, error) {
	uri, err := PrepareDSN(uri)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite connection: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", HandleSQLError(err))
		}
	}

	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Datastore{
		stbl:   sq.StatementBuilder.RunWith(db),
		db:     db,
		logger: log,
	}, nil
}

// Close see [storage.Store].Close.
func (s *Datastore) Close() error {
	return s.db.Close()
}

// CreateSession see [storage.Store].CreateSession.
func (s *Datastore) CreateSession(ctx context.Context, session storage.Session) (storage.Session, error) {
	if session.Task == "" {
		return storage.Session{}, fmt.Errorf("session without task: %w", storage.ErrInvalidResult)
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.RunAt.IsZero() {
		session.RunAt = time.Now()
	}
	session.RunAt = session.RunAt.Truncate(time.Millisecond)

	_, err := s.stbl.
		Insert("session").
		Columns("id", "task", "description", "host", "os", "arch", "cores", "go_version", "run_at").
		Values(session.ID, session.Task, session.Description, session.Host, session.OS,
			session.Arch, session.Cores, session.GoVersion, session.RunAt.UnixMilli()).
		ExecContext(ctx)
	if err != nil {
		return storage.Session{}, HandleSQLError(err)
	}

	s.logger.DebugWithContext(ctx, "session created",
		zap.String("session", session.ID),
		zap.String("task", session.Task))
	return session, nil
}

func (s *Datastore) sessionExists(ctx context.Context, runner sq.BaseRunner, sessionID string) error {
	var id string
	err := s.stbl.
		Select("id").
		From("session").
		Where(sq.Eq{"id": sessionID}).
		RunWith(runner).
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		return HandleSQLError(err)
	}
	return nil
}

// WriteResults see [storage.Store].WriteResults.
func (s *Datastore) WriteResults(ctx context.Context, sessionID string, results []storage.Result) (err error) {
	for _, result := range results {
		if result.Method == "" {
			return fmt.Errorf("result without method: %w", storage.ErrInvalidResult)
		}
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleSQLError(err)
	}
	defer func() {
		if err != nil {
			_ = txn.Rollback()
		}
	}()

	if err = s.sessionExists(ctx, txn, sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	if len(results) > 0 {
		insertBuilder := s.stbl.
			Insert("result").
			Columns("session_id", "method", "mean_ms", "std_dev_ms", "n", "comment")
		for _, result := range results {
			insertBuilder = insertBuilder.Values(sessionID, result.Method, result.MeanMs,
				result.StdDevMs, result.N, result.Comment)
		}
		if _, err = insertBuilder.RunWith(txn).ExecContext(ctx); err != nil {
			return HandleSQLError(err)
		}
	}

	if err = txn.Commit(); err != nil {
		return HandleSQLError(err)
	}

	s.logger.DebugWithContext(ctx, "results written",
		zap.String("session", sessionID),
		zap.Int("count", len(results)))
	return nil
}

// ListSessions see [storage.Store].ListSessions.
func (s *Datastore) ListSessions(ctx context.Context, limit int) ([]storage.Session, error) {
	sb := s.stbl.
		Select("id", "task", "description", "host", "os", "arch", "cores", "go_version", "run_at").
		From("session").
		OrderBy("run_at DESC", "rowid DESC")
	if limit > 0 {
		sb = sb.Limit(uint64(limit))
	}

	rows, err := sb.QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var sessions []storage.Session
	for rows.Next() {
		var session storage.Session
		var runAt int64
		err := rows.Scan(&session.ID, &session.Task, &session.Description, &session.Host,
			&session.OS, &session.Arch, &session.Cores, &session.GoVersion, &runAt)
		if err != nil {
			return nil, HandleSQLError(err)
		}
		session.RunAt = time.UnixMilli(runAt)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return sessions, nil
}

// ReadResults see [storage.Store].ReadResults.
func (s *Datastore) ReadResults(ctx context.Context, sessionID string) ([]storage.Result, error) {
	if err := s.sessionExists(ctx, s.db, sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	rows, err := s.stbl.
		Select("method", "mean_ms", "std_dev_ms", "n", "comment").
		From("result").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("id").
		QueryContext(ctx)
	if err != nil {
		return nil, HandleSQLError(err)
	}
	defer rows.Close()

	var results []storage.Result
	for rows.Next() {
		var result storage.Result
		if err := rows.Scan(&result.Method, &result.MeanMs, &result.StdDevMs, &result.N, &result.Comment); err != nil {
			return nil, HandleSQLError(err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, HandleSQLError(err)
	}
	return results, nil
}

// HandleSQLError processes an SQL error and converts it into a more
// appropriate error type.
func HandleSQLError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code()&0xFF == sqlite3.SQLITE_CONSTRAINT {
			return storage.ErrCollision
		}
	}

	return fmt.Errorf("sql error: %w", err)
}
