package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink implements Sink using SQLite. Responses are append-only;
// uniqueness per session token is enforced by the schema, so duplicate
// finalization attempts fail at the database rather than by convention.
type SQLiteSink struct {
	db        *sql.DB
	path      string
	closeOnce sync.Once

	archiveStmt *sql.Stmt
	auditStmt   *sql.Stmt
}

// NewSQLiteSink opens (or creates) a SQLite-backed archive at the given
// path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("archive path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	sink := &SQLiteSink{db: db, path: path}

	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	if err := sink.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare archive statements: %w", err)
	}

	return sink, nil
}

// initSchema creates the responses and audit tables if they do not exist.
func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		session_token TEXT NOT NULL UNIQUE,
		survey_version TEXT NOT NULL,
		respondent TEXT NOT NULL DEFAULT '',
		answers TEXT NOT NULL,
		visible_fields TEXT NOT NULL,
		submitted_at INTEGER NOT NULL,
		completion_seconds INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_responses_survey_version ON responses(survey_version);
	CREATE INDEX IF NOT EXISTS idx_responses_submitted_at ON responses(submitted_at);

	CREATE TABLE IF NOT EXISTS audit_facts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		object TEXT NOT NULL,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_facts_at ON audit_facts(at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the write statements.
func (s *SQLiteSink) prepareStatements() error {
	var err error

	s.archiveStmt, err = s.db.Prepare(`
		INSERT INTO responses
			(id, session_token, survey_version, respondent, answers,
			 visible_fields, submitted_at, completion_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	s.auditStmt, err = s.db.Prepare(`
		INSERT INTO audit_facts (actor, action, object, at)
		VALUES (?, ?, ?, ?)`)
	return err
}

// Archive stores a finalized response. A second response for the same
// session token violates the UNIQUE constraint and is reported as such.
func (s *SQLiteSink) Archive(ctx context.Context, response *FinalizedResponse) error {
	if response == nil {
		return fmt.Errorf("response cannot be nil")
	}
	if response.SessionToken == "" {
		return fmt.Errorf("response session token cannot be empty")
	}

	answersJSON, err := json.Marshal(response.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	visibleJSON, err := json.Marshal(response.VisibleFields)
	if err != nil {
		return fmt.Errorf("failed to encode visible fields: %w", err)
	}

	_, err = s.archiveStmt.ExecContext(ctx,
		response.ID, response.SessionToken, response.SurveyVersion,
		response.Respondent, string(answersJSON), string(visibleJSON),
		response.SubmittedAt.UnixMilli(), response.CompletionSeconds,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("response already archived for session %q", response.SessionToken)
		}
		return fmt.Errorf("failed to archive response: %w", err)
	}
	return nil
}

// Audit stores one audit fact.
func (s *SQLiteSink) Audit(ctx context.Context, fact *AuditFact) error {
	if fact == nil {
		return fmt.Errorf("fact cannot be nil")
	}

	_, err := s.auditStmt.ExecContext(ctx, fact.Actor, string(fact.Action), fact.Object, fact.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record audit fact: %w", err)
	}
	return nil
}

// Response loads the archived response for a session token, or nil if no
// response exists. This is a convenience for verification and tooling; the
// engine itself never reads the archive.
func (s *SQLiteSink) Response(ctx context.Context, token string) (*FinalizedResponse, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_token, survey_version, respondent, answers,
		       visible_fields, submitted_at, completion_seconds
		FROM responses WHERE session_token = ?`, token)

	var resp FinalizedResponse
	var answersJSON, visibleJSON string
	var submittedAt int64
	err := row.Scan(
		&resp.ID, &resp.SessionToken, &resp.SurveyVersion, &resp.Respondent,
		&answersJSON, &visibleJSON, &submittedAt, &resp.CompletionSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}

	if err := json.Unmarshal([]byte(answersJSON), &resp.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if err := json.Unmarshal([]byte(visibleJSON), &resp.VisibleFields); err != nil {
		return nil, fmt.Errorf("failed to decode visible fields: %w", err)
	}
	resp.SubmittedAt = time.UnixMilli(submittedAt).UTC()

	return &resp, nil
}

// Close releases the database handle and prepared statements.
func (s *SQLiteSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.archiveStmt, s.auditStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
