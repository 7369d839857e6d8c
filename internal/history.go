package internal

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// History is the opt-in sqlite archive of chat threads. It is a
// write-behind snapshot for later browsing and export; the in-memory
// Store remains the source of truth for a running session.
type History struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS threads (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	saved_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	thread_id TEXT NOT NULL,
	idx       INTEGER NOT NULL,
	role      TEXT NOT NULL,
	body      TEXT NOT NULL,
	PRIMARY KEY (thread_id, idx)
);`

// DefaultHistoryPath is ~/.dataware-chatbot/history.db
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", &HistoryError{Op: "open", Err: err}
	}
	return filepath.Join(home, ".dataware-chatbot", "history.db"), nil
}

// OpenHistory opens (creating if needed) the archive at path
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &HistoryError{Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &HistoryError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &HistoryError{Op: "open", Err: err}
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, &HistoryError{Op: "open", Err: err}
	}
	return &History{db: db}, nil
}

// Close releases the underlying database
func (h *History) Close() error {
	return h.db.Close()
}

// SaveThread archives a snapshot of the thread, replacing any earlier
// snapshot with the same id. Empty threads are skipped.
func (h *History) SaveThread(t *ChatThread) error {
	if t == nil || len(t.Messages) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return &HistoryError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO threads (id, title, created_at, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, saved_at = excluded.saved_at`,
		t.ID, t.Title, t.CreatedAt.Format(time.RFC3339), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return &HistoryError{Op: "save", Err: err}
	}
	if _, err := tx.Exec(`DELETE FROM messages WHERE thread_id = ?`, t.ID); err != nil {
		return &HistoryError{Op: "save", Err: err}
	}

	for i, msg := range t.Messages {
		body, err := json.Marshal(msg)
		if err != nil {
			return &HistoryError{Op: "save", Err: err}
		}
		_, err = tx.Exec(
			`INSERT INTO messages (thread_id, idx, role, body) VALUES (?, ?, ?, ?)`,
			t.ID, i, string(msg.Role), string(body),
		)
		if err != nil {
			return &HistoryError{Op: "save", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &HistoryError{Op: "save", Err: err}
	}
	return nil
}

// ThreadSummary is one row of the archive listing
type ThreadSummary struct {
	ID           string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	SavedAt      time.Time
}

// ListThreads returns archive summaries, most recently saved first
func (h *History) ListThreads() ([]ThreadSummary, error) {
	rows, err := h.db.Query(`
		SELECT t.id, t.title, t.created_at, t.saved_at, COUNT(m.idx)
		FROM threads t LEFT JOIN messages m ON m.thread_id = t.id
		GROUP BY t.id ORDER BY t.saved_at DESC`)
	if err != nil {
		return nil, &HistoryError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []ThreadSummary
	for rows.Next() {
		var s ThreadSummary
		var created, saved string
		if err := rows.Scan(&s.ID, &s.Title, &created, &saved, &s.MessageCount); err != nil {
			return nil, &HistoryError{Op: "list", Err: err}
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, created)
		s.SavedAt, _ = time.Parse(time.RFC3339, saved)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &HistoryError{Op: "list", Err: err}
	}
	return out, nil
}

// LoadThread restores one archived thread, or nil when the id is unknown
func (h *History) LoadThread(id string) (*ChatThread, error) {
	var title, created string
	err := h.db.QueryRow(`SELECT title, created_at FROM threads WHERE id = ?`, id).
		Scan(&title, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &HistoryError{Op: "load", Err: err}
	}

	t := &ChatThread{ID: id, Title: title}
	t.CreatedAt, _ = time.Parse(time.RFC3339, created)

	rows, err := h.db.Query(`SELECT body FROM messages WHERE thread_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, &HistoryError{Op: "load", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, &HistoryError{Op: "load", Err: err}
		}
		var msg Message
		if err := json.Unmarshal([]byte(body), &msg); err != nil {
			return nil, &HistoryError{Op: "load", Err: err}
		}
		t.Messages = append(t.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &HistoryError{Op: "load", Err: err}
	}
	return t, nil
}
