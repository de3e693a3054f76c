package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It is
// suitable for single-instance deployments where drafts must survive
// process restarts.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent read
// performance.
type SQLiteStore struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once

	getStmt     *sql.Stmt
	putStmt     *sql.Stmt
	deleteStmt  *sql.Stmt
	expiredStmt *sql.Stmt
}

// NewSQLiteStore opens (or creates) a SQLite-backed draft store at the
// given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

// initSchema creates the drafts table if it does not exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		token TEXT PRIMARY KEY,
		survey_version TEXT NOT NULL,
		respondent TEXT NOT NULL DEFAULT '',
		answers TEXT NOT NULL,
		revision INTEGER NOT NULL,
		last_section TEXT NOT NULL DEFAULT '',
		last_field TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		last_heartbeat INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_drafts_last_heartbeat ON drafts(last_heartbeat);
	`
	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the statements used on every operation.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`
		SELECT token, survey_version, respondent, answers, revision,
		       last_section, last_field, started_at, last_heartbeat
		FROM drafts WHERE token = ?`)
	if err != nil {
		return err
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO drafts (token, survey_version, respondent, answers, revision,
			last_section, last_field, started_at, last_heartbeat)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			survey_version = excluded.survey_version,
			respondent = excluded.respondent,
			answers = excluded.answers,
			revision = excluded.revision,
			last_section = excluded.last_section,
			last_field = excluded.last_field,
			last_heartbeat = excluded.last_heartbeat`)
	if err != nil {
		return err
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM drafts WHERE token = ?`)
	if err != nil {
		return err
	}

	s.expiredStmt, err = s.db.Prepare(`SELECT token FROM drafts WHERE last_heartbeat < ?`)
	return err
}

// Get retrieves a draft by token. Returns nil if no draft exists.
func (s *SQLiteStore) Get(ctx context.Context, token string) (*Draft, error) {
	if token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	row := s.getStmt.QueryRowContext(ctx, token)

	var draft Draft
	var answersJSON string
	var startedAt, lastHeartbeat int64
	err := row.Scan(
		&draft.Token, &draft.SurveyVersion, &draft.Respondent, &answersJSON,
		&draft.Revision, &draft.LastSection, &draft.LastField,
		&startedAt, &lastHeartbeat,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	if err := json.Unmarshal([]byte(answersJSON), &draft.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode draft answers: %w", err)
	}
	draft.StartedAt = time.UnixMilli(startedAt).UTC()
	draft.LastHeartbeat = time.UnixMilli(lastHeartbeat).UTC()

	return &draft, nil
}

// Put persists a draft, replacing any existing draft for its token.
func (s *SQLiteStore) Put(ctx context.Context, draft *Draft) error {
	if draft == nil {
		return fmt.Errorf("draft cannot be nil")
	}
	if draft.Token == "" {
		return fmt.Errorf("draft token cannot be empty")
	}

	answersJSON, err := json.Marshal(draft.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode draft answers: %w", err)
	}

	_, err = s.putStmt.ExecContext(ctx,
		draft.Token, draft.SurveyVersion, draft.Respondent, string(answersJSON),
		draft.Revision, draft.LastSection, draft.LastField,
		draft.StartedAt.UnixMilli(), draft.LastHeartbeat.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Delete removes a draft. No-op if the token is unknown.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if _, err := s.deleteStmt.ExecContext(ctx, token); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Expired returns the tokens of drafts whose last heartbeat is before the
// cutoff.
func (s *SQLiteStore) Expired(ctx context.Context, olderThan time.Time) ([]string, error) {
	rows, err := s.expiredStmt.QueryContext(ctx, olderThan.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list expired drafts: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan expired draft: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// Close releases the database handle and prepared statements.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.getStmt, s.putStmt, s.deleteStmt, s.expiredStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
