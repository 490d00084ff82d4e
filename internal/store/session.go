package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session is the stored summary of a finished capture session.
type Session struct {
	ID             string
	StartedAt      time.Time
	FrameCount     int
	ElapsedSeconds float64
	FPS            float64
	Config         json.RawMessage
	CreatedAt      time.Time
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	config := string(sess.Config)
	if config == "" {
		config = "{}"
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, frame_count, elapsed_seconds, fps, config, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.StartedAt, sess.FrameCount, sess.ElapsedSeconds, sess.FPS, config, sess.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var config string

	err := r.db.QueryRow(
		`SELECT id, started_at, frame_count, elapsed_seconds, fps, config, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.StartedAt, &sess.FrameCount, &sess.ElapsedSeconds, &sess.FPS, &config, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Config = json.RawMessage(config)
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, frame_count, elapsed_seconds, fps, config, created_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var config string

		err := rows.Scan(&sess.ID, &sess.StartedAt, &sess.FrameCount, &sess.ElapsedSeconds, &sess.FPS, &config, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}

		sess.Config = json.RawMessage(config)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and its track points.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
