package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps history queries without an explicit limit.
const DefaultListLimit = 100

// LabelEvent records a stable label committed on a stream.
type LabelEvent struct {
	ID          string    `json:"id"`
	Stream      string    `json:"stream"`
	Kind        string    `json:"kind"`
	Label       string    `json:"label"`
	CommittedAt time.Time `json:"committed_at"`
}

// LabelRepository stores label history.
type LabelRepository struct {
	db *sql.DB
}

// Labels returns the label history repository for this store.
func (s *Store) Labels() *LabelRepository {
	return &LabelRepository{db: s.db}
}

// Record inserts an event, assigning its ID and timestamp when empty.
func (r *LabelRepository) Record(e *LabelEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CommittedAt.IsZero() {
		e.CommittedAt = time.Now()
	}
	e.CommittedAt = e.CommittedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO label_events (id, stream, kind, label, committed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Stream, e.Kind, e.Label, e.CommittedAt,
	)
	return err
}

// List returns the newest events first. An empty stream lists all streams.
func (r *LabelRepository) List(stream string, limit int) ([]*LabelEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, stream, kind, label, committed_at
		 FROM label_events
		 WHERE ? = '' OR stream = ?
		 ORDER BY committed_at DESC, rowid DESC
		 LIMIT ?`,
		stream, stream, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*LabelEvent
	for rows.Next() {
		e := &LabelEvent{}
		if err := rows.Scan(&e.ID, &e.Stream, &e.Kind, &e.Label, &e.CommittedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Latest returns the most recent event of a stream.
func (r *LabelRepository) Latest(stream string) (*LabelEvent, error) {
	e := &LabelEvent{}
	err := r.db.QueryRow(
		`SELECT id, stream, kind, label, committed_at
		 FROM label_events WHERE stream = ?
		 ORDER BY committed_at DESC, rowid DESC LIMIT 1`,
		stream,
	).Scan(&e.ID, &e.Stream, &e.Kind, &e.Label, &e.CommittedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Clear deletes the history of a stream, or of every stream when stream is
// empty, and returns the number of rows removed.
func (r *LabelRepository) Clear(stream string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM label_events WHERE ? = '' OR stream = ?`, stream, stream)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
