package store

import (
	"database/sql"
)

// TrackPoint is one stored position of a session's track.
type TrackPoint struct {
	Seq      int     `json:"seq"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Detected bool    `json:"detected"`
}

// PointRepository stores the track of each session.
type PointRepository struct {
	db *sql.DB
}

// Points returns the track point repository for this store.
func (s *Store) Points() *PointRepository {
	return &PointRepository{db: s.db}
}

// Create inserts the points of a session in a single transaction.
// Seq is taken from the slice index.
func (r *PointRepository) Create(sessionID string, points []TrackPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO track_points (session_id, seq, x, y, detected) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.Exec(sessionID, i, p.X, p.Y, p.Detected); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves the points of a session ordered by sequence.
func (r *PointRepository) GetBySessionID(sessionID string) ([]TrackPoint, error) {
	rows, err := r.db.Query(
		`SELECT seq, x, y, detected
		 FROM track_points
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TrackPoint
	for rows.Next() {
		var p TrackPoint
		if err := rows.Scan(&p.Seq, &p.X, &p.Y, &p.Detected); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}
