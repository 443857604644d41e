package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

type Users struct {
	DB DBTX
}

func NewUsers(db DBTX) *Users {
	return &Users{DB: db}
}

// Create inserts the user and fills in ID and CreatedAt.
func (r *Users) Create(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now()
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		u.Email, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrDuplicateEmail
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx,
		`SELECT id, email, password_hash, last_login_at, created_at
		   FROM users
		  WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.LastLoginAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "select user")
	}
	return &u, nil
}

func (r *Users) UpdateLastLogin(ctx context.Context, id int64, loggedAt time.Time) error {
	_, err := r.DB.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", loggedAt, id)
	return errors.Wrap(err, "update last login")
}
