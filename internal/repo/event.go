package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"kalenderium/internal/pagination"
)

type Event struct {
	ID        string
	UserID    int64
	Name      string
	Details   string
	Start     time.Time
	End       time.Time
	Color     string
	CreatedAt time.Time
}

type Events struct {
	DB DBTX
}

func NewEvents(db DBTX) *Events {
	return &Events{DB: db}
}

func (r *Events) Create(ctx context.Context, e *Event) error {
	e.CreatedAt = time.Now()
	_, err := r.DB.Exec(ctx,
		`INSERT INTO events (id, user_id, name, details, start_at, end_at, color, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.Name, e.Details, e.Start, e.End, e.Color, e.CreatedAt)
	return errors.Wrap(err, "insert event")
}

// ListByUser returns one page of the user's events ordered by start time and
// the total number of events the user owns.
func (r *Events) ListByUser(ctx context.Context, userID int64, p pagination.Pager) ([]Event, int, error) {
	var total int
	err := r.DB.QueryRow(ctx, "SELECT count(*) FROM events WHERE user_id = $1", userID).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count events")
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id::text, user_id, name, details, start_at, end_at, color, created_at
		   FROM events
		  WHERE user_id = $1
		  ORDER BY start_at ASC, id ASC
		  LIMIT $2 OFFSET $3`,
		userID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	list := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Details, &e.Start, &e.End, &e.Color, &e.CreatedAt); err != nil {
			return nil, 0, errors.Wrap(err, "scan event")
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterate events")
	}
	return list, total, nil
}

// Delete removes an event the user owns.
func (r *Events) Delete(ctx context.Context, id string, userID int64) error {
	tag, err := r.DB.Exec(ctx, "DELETE FROM events WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return errors.Wrap(err, "delete event")
	}
	switch n := tag.RowsAffected(); {
	case n == 0:
		return ErrRecordNotFound
	case n > 1:
		return errors.Errorf("expected to affect 1 row, affected %d", n)
	}
	return nil
}

func (r *Events) Ping(ctx context.Context) error {
	var one int
	return r.DB.QueryRow(ctx, "SELECT 1").Scan(&one)
}
