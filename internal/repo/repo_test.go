package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalenderium/internal/pagination"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type fakeDB struct {
	row  fakeRow
	rows *fakeRows
	tag  pgconn.CommandTag
	err  error
	sqls []string
	args [][]any
}

// fakeRows replays events as result rows.
type fakeRows struct {
	events  []Event
	pos     int
	scanErr error
	closed  bool
}

func (r *fakeRows) Close() { r.closed = true }
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.events) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	e := r.events[r.pos-1]
	*dest[0].(*string) = e.ID
	*dest[1].(*int64) = e.UserID
	*dest[2].(*string) = e.Name
	*dest[3].(*string) = e.Details
	*dest[4].(*time.Time) = e.Start
	*dest[5].(*time.Time) = e.End
	*dest[6].(*string) = e.Color
	*dest[7].(*time.Time) = e.CreatedAt
	return nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return f.tag, f.err
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sqls = append(f.sqls, sql)
	f.args = append(f.args, args)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sqls = append(f.sqls, sql)
	return f.row
}

func errRow(err error) fakeRow {
	return fakeRow{scan: func(...any) error { return err }}
}

func TestUsersCreate(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*int64) = 11
		return nil
	}}}
	u := &User{Email: "jane@example.com", PasswordHash: []byte("hash")}
	require.NoError(t, NewUsers(db).Create(context.Background(), u))
	assert.Equal(t, int64(11), u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	db.row = errRow(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	err := NewUsers(db).Create(context.Background(), &User{Email: "jane@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicateEmail))

	db.row = errRow(&pgconn.PgError{Code: "23505", ConstraintName: "other"})
	err = NewUsers(db).Create(context.Background(), &User{Email: "jane@example.com"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateEmail))
}

func TestUsersGetByEmail(t *testing.T) {
	db := &fakeDB{row: errRow(pgx.ErrNoRows)}
	_, err := NewUsers(db).GetByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, ErrRecordNotFound))

	db.row = fakeRow{scan: func(dest ...any) error {
		*dest[0].(*int64) = 3
		*dest[1].(*string) = "jane@example.com"
		return nil
	}}
	u, err := NewUsers(db).GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
}

func TestUsersUpdateLastLogin(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	assert.NoError(t, NewUsers(db).UpdateLastLogin(context.Background(), 1, time.Now()))

	db.err = errors.New("boom")
	assert.Error(t, NewUsers(db).UpdateLastLogin(context.Background(), 1, time.Now()))
}

func TestEventsDelete(t *testing.T) {
	tests := []struct {
		tag     string
		wantErr error
		ok      bool
	}{
		{"DELETE 1", nil, true},
		{"DELETE 0", ErrRecordNotFound, false},
		{"DELETE 2", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			db := &fakeDB{tag: pgconn.NewCommandTag(tt.tag)}
			err := NewEvents(db).Delete(context.Background(), "id", 1)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}

func TestEventsCreate(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("INSERT 0 1")}
	e := &Event{ID: "6f1c2d7e-0000-4000-8000-000000000000", UserID: 1}
	require.NoError(t, NewEvents(db).Create(context.Background(), e))
	assert.False(t, e.CreatedAt.IsZero())
	assert.Len(t, db.sqls, 1)
}

func TestEventsListByUser(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := &fakeRows{events: []Event{
		{ID: "a", UserID: 4, Name: "Standup", Start: start, End: start.Add(15 * time.Minute), Color: "#112233"},
		{ID: "b", UserID: 4, Name: "Review", Details: "quarterly", Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), Color: "#445566"},
	}}
	db := &fakeDB{
		row: fakeRow{scan: func(dest ...any) error {
			*dest[0].(*int) = 12
			return nil
		}},
		rows: rows,
	}

	list, total, err := NewEvents(db).ListByUser(context.Background(), 4, pagination.NewPager(0, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Standup", list[0].Name)
	assert.Equal(t, "quarterly", list[1].Details)
	assert.True(t, list[1].Start.Equal(start.Add(time.Hour)))
	assert.True(t, rows.closed)

	require.Len(t, db.args, 1)
	assert.Equal(t, []any{int64(4), 5, 5}, db.args[0], "user, limit, offset")
}

func TestEventsListByUserErrors(t *testing.T) {
	_, _, err := NewEvents(&fakeDB{row: errRow(errors.New("count failed"))}).
		ListByUser(context.Background(), 1, pagination.NewPager(0, 1, 10))
	assert.ErrorContains(t, err, "count events")

	okCount := fakeRow{scan: func(dest ...any) error { return nil }}
	_, _, err = NewEvents(&fakeDB{row: okCount, err: errors.New("select failed")}).
		ListByUser(context.Background(), 1, pagination.NewPager(0, 1, 10))
	assert.ErrorContains(t, err, "select events")

	rows := &fakeRows{events: []Event{{ID: "a"}}, scanErr: errors.New("bad column")}
	_, _, err = NewEvents(&fakeDB{row: okCount, rows: rows}).
		ListByUser(context.Background(), 1, pagination.NewPager(0, 1, 10))
	assert.ErrorContains(t, err, "scan event")
	assert.True(t, rows.closed)
}
