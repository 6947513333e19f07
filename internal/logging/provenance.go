package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
// Schema creates the assessment_log table. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS assessment_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id       TEXT,
	turn_id          TEXT NOT NULL,
	crisis_level     TEXT NOT NULL,
	classification   TEXT NOT NULL,
	mental_stability TEXT NOT NULL,
	mode             TEXT NOT NULL,
	stability_index  REAL NOT NULL,
	rule_set         TEXT NOT NULL,
	record_json      TEXT,
	reply_source     TEXT,
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessment_session ON assessment_log(session_id, id);
`

// Migrate creates the assessment_log table on db.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("migrate assessment_log: %w", err)
	}
	return nil
}

// Open opens a SQLite database for the assessment log and migrates it.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
// #endregion schema

// #region log-assessment
// LogAssessment writes an entry to the assessment_log table.
func LogAssessment(db *sql.DB, entry AssessmentEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO assessment_log (session_id, turn_id, crisis_level, classification, mental_stability, mode,
		                             stability_index, rule_set, record_json, reply_source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.SessionID),
		entry.TurnID,
		entry.CrisisLevel,
		entry.Classification,
		entry.MentalStability,
		entry.Mode,
		entry.StabilityIndex,
		entry.RuleSet,
		nullIfEmpty(entry.RecordJSON),
		nullIfEmpty(entry.ReplySource),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log assessment: %w", err)
	}
	return nil
}

// EntryFromRecord builds the row for rec, embedding rec as JSON.
func EntryFromRecord(sessionID, mode string, rec AssessmentRecord) (AssessmentEntry, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return AssessmentEntry{}, fmt.Errorf("marshal record: %w", err)
	}
	return AssessmentEntry{
		SessionID:       sessionID,
		TurnID:          rec.TurnID,
		CrisisLevel:     rec.CrisisLevel,
		Classification:  rec.Classification,
		MentalStability: rec.MentalStability,
		Mode:            mode,
		StabilityIndex:  rec.StabilityIndex,
		RuleSet:         rec.RuleSet,
		RecordJSON:      string(raw),
	}, nil
}
// #endregion log-assessment

// #region list-assessments
// ListAssessments returns the newest entries for sessionID, oldest first.
// limit <= 0 returns every entry.
func ListAssessments(db *sql.DB, sessionID string, limit int) ([]AssessmentEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(
		`SELECT id, session_id, turn_id, crisis_level, classification, mental_stability, mode,
		        stability_index, rule_set, record_json, reply_source, created_at
		 FROM (SELECT * FROM assessment_log WHERE session_id = ? ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	entries := []AssessmentEntry{}
	for rows.Next() {
		var (
			e                       AssessmentEntry
			session, record, source sql.NullString
			created                 string
		)
		if err := rows.Scan(&e.ID, &session, &e.TurnID, &e.CrisisLevel, &e.Classification, &e.MentalStability,
			&e.Mode, &e.StabilityIndex, &e.RuleSet, &record, &source, &created); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		e.SessionID = session.String
		e.RecordJSON = record.String
		e.ReplySource = source.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-assessments

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
