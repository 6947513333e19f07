package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id        TEXT PRIMARY KEY,
	personal_context  TEXT NOT NULL,
	mode              TEXT NOT NULL,
	settings          TEXT NOT NULL,
	user_turns        INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_history (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	entry_json    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS session_messages (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	role          TEXT NOT NULL,
	content       TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_history_session ON session_history(session_id, id);
CREATE INDEX IF NOT EXISTS idx_messages_session ON session_messages(session_id, id);
`
// #endregion schema

// #region store-struct
// SQLiteStore keeps sessions in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}
// #endregion store-struct

// #region constructor
// NewSQLiteStore opens a SQLite database and runs migrations. Foreign keys
// are enabled through the DSN so every pooled connection enforces them.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := addTurnsColumn(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)"
}

// addTurnsColumn upgrades databases created before sessions.user_turns existed.
func addTurnsColumn(db *sql.DB) error {
	rows, err := db.Query(`SELECT name FROM pragma_table_info('sessions')`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == "user_turns" {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_, err = db.Exec(`ALTER TABLE sessions ADD COLUMN user_turns INTEGER NOT NULL DEFAULT 0`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}
// #endregion constructor

// #region create
// CreateSession inserts an empty session in normal mode.
func (s *SQLiteStore) CreateSession(ctx context.Context, settings prompt.TherapySettings) (Session, error) {
	now := s.now().UTC()
	sess := Session{
		ID:        uuid.New().String(),
		History:   []trend.Entry{},
		Messages:  []textsignal.Message{},
		Mode:      protocol.ModeNormal,
		Settings:  settings.Normalize(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	pcJSON, err := json.Marshal(sess.PersonalContext)
	if err != nil {
		return Session{}, fmt.Errorf("marshal context: %w", err)
	}
	settingsJSON, err := json.Marshal(sess.Settings)
	if err != nil {
		return Session{}, fmt.Errorf("marshal settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, personal_context, mode, settings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, string(pcJSON), string(sess.Mode), string(settingsJSON),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}
// #endregion create

// #region load
// LoadSession reads a session with its retained history and messages.
func (s *SQLiteStore) LoadSession(ctx context.Context, id string) (Session, error) {
	var (
		sess                   Session
		pcJSON, settingsJSON   string
		mode                   string
		createdStr, updatedStr string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, personal_context, mode, settings, user_turns, created_at, updated_at
		 FROM sessions WHERE session_id = ?`, id,
	).Scan(&sess.ID, &pcJSON, &mode, &settingsJSON, &sess.Turns, &createdStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}

	if err := json.Unmarshal([]byte(pcJSON), &sess.PersonalContext); err != nil {
		return Session{}, fmt.Errorf("unmarshal context: %w", err)
	}
	if err := json.Unmarshal([]byte(settingsJSON), &sess.Settings); err != nil {
		return Session{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	sess.Mode = protocol.ParseMode(mode)
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)

	if sess.History, err = s.loadHistory(ctx, id); err != nil {
		return Session{}, err
	}
	if sess.Messages, err = s.loadMessages(ctx, id); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLiteStore) loadHistory(ctx context.Context, id string) ([]trend.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_json FROM session_history WHERE session_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []trend.Entry{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var e trend.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) loadMessages(ctx context.Context, id string) ([]textsignal.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM session_messages WHERE session_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []textsignal.Message{}
	for rows.Next() {
		var m textsignal.Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
// #endregion load

// #region updates
// SaveContext replaces the stored personal context.
func (s *SQLiteStore) SaveContext(ctx context.Context, id string, pc textsignal.PersonalContext) error {
	pcJSON, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	return s.updateSession(ctx, id, `personal_context = ?`, string(pcJSON))
}

// SetMode records the crisis lifecycle mode.
func (s *SQLiteStore) SetMode(ctx context.Context, id string, mode protocol.Mode) error {
	return s.updateSession(ctx, id, `mode = ?`, string(protocol.ParseMode(string(mode))))
}

// AppendHistory adds entries and trims the session to the last MaxHistory.
func (s *SQLiteStore) AppendHistory(ctx context.Context, id string, entries ...trend.Entry) error {
	return s.appendCapped(ctx, id, "session_history", MaxHistory, len(entries), 0, func(tx *sql.Tx, i int) error {
		raw, err := json.Marshal(entries[i])
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_history (session_id, entry_json) VALUES (?, ?)`, id, string(raw))
		return err
	})
}

// AppendMessages adds messages, trims the session to the last MaxMessages
// and counts the user messages into Turns.
func (s *SQLiteStore) AppendMessages(ctx context.Context, id string, msgs ...textsignal.Message) error {
	return s.appendCapped(ctx, id, "session_messages", MaxMessages, len(msgs), countUserMessages(msgs), func(tx *sql.Tx, i int) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_messages (session_id, role, content) VALUES (?, ?, ?)`,
			id, msgs[i].Role, msgs[i].Content)
		return err
	})
}

func (s *SQLiteStore) updateSession(ctx context.Context, id, set string, value any) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET `+set+`, updated_at = ? WHERE session_id = ?`,
		value, s.now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// appendCapped inserts n rows through insert, adds turns to user_turns and
// deletes all but the newest limit rows of table for the session, in one
// transaction.
func (s *SQLiteStore) appendCapped(ctx context.Context, id, table string, limit, n, turns int, insert func(*sql.Tx, int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ?, user_turns = user_turns + ? WHERE session_id = ?`,
		s.now().UTC().Format(time.RFC3339Nano), turns, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSessionNotFound
	}

	for i := 0; i < n; i++ {
		if err := insert(tx, i); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE session_id = ? AND id NOT IN (
			SELECT id FROM `+table+` WHERE session_id = ? ORDER BY id DESC LIMIT ?)`,
		id, id, limit)
	if err != nil {
		return fmt.Errorf("trim %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
// #endregion updates

var _ SessionStore = (*SQLiteStore)(nil)
