package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNotFound is returned by mutating operations whose target row does not
// exist or is not owned by the given user.
var ErrNotFound = errors.New("store: not found")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	if !strings.Contains(dataSourceName, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dataSourceName, "?") {
			sep = "&"
		}
		dataSourceName += sep + "_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS chat_sessions (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY, -- UUID
        session_id TEXT NOT NULL,
        user_text TEXT NOT NULL,
        assistant_text TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (session_id) REFERENCES chat_sessions (id) ON DELETE CASCADE
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE external_user_id = ?", externalUserID).
		Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash) VALUES (?, ?)", externalUserID, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Session methods

func (s *SQLiteStore) CreateSession(userID int64, title string) (*ChatSession, error) {
	sessionID := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec("INSERT INTO chat_sessions (id, user_id, title, created_at) VALUES (?, ?, ?, ?)",
		sessionID, userID, title, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat session: %w", err)
	}
	return &ChatSession{ID: sessionID, UserID: userID, Title: title, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetSessionByID(sessionID string, userID int64) (*ChatSession, error) {
	var session ChatSession
	err := s.db.QueryRow("SELECT id, user_id, title, created_at FROM chat_sessions WHERE id = ? AND user_id = ?",
		sessionID, userID).
		Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &session, nil
}

func (s *SQLiteStore) GetSessionsByUserID(userID int64) ([]ChatSession, error) {
	rows, err := s.db.Query("SELECT id, user_id, title, created_at FROM chat_sessions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ChatSession
	for rows.Next() {
		var session ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// GetLatestSession returns the most recently created session for the user,
// or nil when the user has none yet.
func (s *SQLiteStore) GetLatestSession(userID int64) (*ChatSession, error) {
	var session ChatSession
	err := s.db.QueryRow("SELECT id, user_id, title, created_at FROM chat_sessions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1", userID).
		Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest chat session: %w", err)
	}
	return &session, nil
}

func (s *SQLiteStore) UpdateSessionTitle(sessionID string, userID int64, title string) error {
	res, err := s.db.Exec("UPDATE chat_sessions SET title = ? WHERE id = ? AND user_id = ?", title, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes the session and all of its messages. The message
// delete is explicit so the cascade does not depend on the foreign_keys
// pragma being active on the pooled connection.
func (s *SQLiteStore) DeleteSession(sessionID string, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM chat_sessions WHERE id = ? AND user_id = ?", sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}

	return tx.Commit()
}

// Message methods

func (s *SQLiteStore) CreateMessage(msg *Message) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec("INSERT INTO messages (id, session_id, user_text, assistant_text, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.SessionID, msg.UserText, msg.AssistantText, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessagesBySessionID(sessionID string) ([]Message, error) {
	rows, err := s.db.Query("SELECT id, session_id, user_text, assistant_text, created_at FROM messages WHERE session_id = ? ORDER BY created_at ASC, rowid ASC", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserText, &msg.AssistantText, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetLastNMessagesBySessionID returns the newest n exchanges in ascending
// creation order.
func (s *SQLiteStore) GetLastNMessagesBySessionID(sessionID string, n int) ([]Message, error) {
	rows, err := s.db.Query(`
        SELECT id, session_id, user_text, assistant_text, created_at
        FROM messages
        WHERE session_id = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserText, &msg.AssistantText, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Flip back to ascending order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// UpdateMessageResponse corrects a stored assistant reply. Ownership is
// checked through the session the message belongs to.
func (s *SQLiteStore) UpdateMessageResponse(messageID string, userID int64, newText string) error {
	res, err := s.db.Exec(`
        UPDATE messages SET assistant_text = ?
        WHERE id = ? AND session_id IN (SELECT id FROM chat_sessions WHERE user_id = ?)`,
		newText, messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to update message response: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
