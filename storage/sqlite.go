package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"jarvis/model"
)

const sqliteHistoryFile = "history.db"

// SQLite stores the snapshot as rows of a messages table, in conversation order
type SQLite struct {
	db   *sql.DB
	path string
}

func NewSQLite(dataDir string) (*SQLite, error) {
	dbPath := filepath.Join(dataDir, sqliteHistoryFile)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLite{db: db, path: dbPath}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *SQLite) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) Load() ([]model.Message, error) {
	rows, err := s.db.Query(`SELECT id, role, content, timestamp FROM messages ORDER BY position`)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var (
			msg  model.Message
			role string
			ts   string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts); err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		msg.Role = model.Role(role)
		msg.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: fmt.Errorf("bad timestamp for %s: %w", msg.ID, err)}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	if err := validate(messages); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	return messages, nil
}

// Save replaces every row with messages in a single transaction
func (s *SQLite) Save(messages []model.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (position, id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer stmt.Close()

	for i, msg := range messages {
		if _, err := stmt.Exec(i, msg.ID, string(msg.Role), msg.Content, msg.Timestamp.Format(time.RFC3339Nano)); err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLite) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM messages`); err != nil {
		return &PersistenceError{Op: "clear", Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
