package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"linechat/internal/auth"
)

// SQLite is the sqlite-backed Store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the chat database at path, creating the schema on first
// use.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows a single writer; one pooled connection also keeps
	// ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// createTables creates the necessary tables in the database
func (s *SQLite) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT UNIQUE,
			password TEXT,
			name TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender TEXT,
			recipient TEXT,
			text TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}
	return nil
}

// VerifyOrRegister checks login and password against the stored credential.
// An unseen login is registered with the digest of the password and the
// login as its display name. A stored legacy plaintext credential that
// matches literally is rewritten to digest form, once.
func (s *SQLite) VerifyOrRegister(login, password string) (bool, error) {
	var stored string
	err := s.db.QueryRow("SELECT password FROM users WHERE login = ?", login).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec(
			"INSERT INTO users (login, password, name) VALUES (?, ?, ?)",
			login, auth.Digest(login, password), login,
		)
		if err != nil {
			return false, fmt.Errorf("failed to register user: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	digest := auth.Digest(login, password)
	if auth.IsDigest(stored) {
		return stored == digest, nil
	}

	// Legacy plaintext credential: compare literally and migrate in place.
	if stored != password {
		return false, nil
	}
	if _, err := s.db.Exec("UPDATE users SET password = ? WHERE login = ?", digest, login); err != nil {
		return false, fmt.Errorf("failed to migrate credential: %w", err)
	}
	return true, nil
}

// AddMessage appends a message; an empty recipient is stored as NULL.
func (s *SQLite) AddMessage(sender, recipient, text string) error {
	var rcpt any
	if recipient != "" {
		rcpt = recipient
	}
	_, err := s.db.Exec(
		"INSERT INTO messages (sender, recipient, text) VALUES (?, ?, ?)",
		sender, rcpt, text,
	)
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// Messages returns every stored message in insertion order.
func (s *SQLite) Messages() ([]Message, error) {
	rows, err := s.db.Query("SELECT id, sender, COALESCE(recipient, ''), text FROM messages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Text); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Logins returns every registered login in ascending order.
func (s *SQLite) Logins() ([]string, error) {
	rows, err := s.db.Query("SELECT login FROM users ORDER BY login")
	if err != nil {
		return nil, fmt.Errorf("failed to list logins: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var login string
		if err := rows.Scan(&login); err != nil {
			return nil, fmt.Errorf("failed to scan login: %w", err)
		}
		out = append(out, login)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}
