package account

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kalenderium/internal/repo"
	"kalenderium/internal/store"
	"kalenderium/internal/token"
	"kalenderium/internal/validator"
)

const bcryptCost = 12

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = repo.ErrDuplicateEmail
	ErrInvalidToken       = store.ErrInvalidToken
)

// ValidationError carries the field errors of a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	v := validator.Validator{Errors: e.Fields}
	return "validation failed: " + v.First("email", "password")
}

type UserRepository interface {
	Create(ctx context.Context, u *repo.User) error
	GetByEmail(ctx context.Context, email string) (*repo.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type TokenStore interface {
	Save(ctx context.Context, tok *token.Token) error
	UserID(ctx context.Context, plaintext string) (int64, error)
	Delete(ctx context.Context, plaintext string) error
	Ping(ctx context.Context) error
}

type Service struct {
	users  UserRepository
	tokens TokenStore
	ttl    time.Duration
	log    *zap.Logger
	cost   int
}

func NewService(users UserRepository, tokens TokenStore, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, tokens: tokens, ttl: ttl, log: log, cost: bcryptCost}
}

// SignUp registers a user and opens a session for it.
func (s *Service) SignUp(ctx context.Context, email, password string) (int64, *token.Token, error) {
	email = normalizeEmail(email)
	v := validator.New()
	ValidateEmail(v, email)
	ValidatePassword(v, password)
	if !v.Valid() {
		return 0, nil, &ValidationError{Fields: v.Errors}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, nil, errors.Wrap(err, "hash password")
	}

	u := &repo.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return 0, nil, err
	}

	tok, err := s.issue(ctx, u.ID)
	if err != nil {
		return 0, nil, err
	}
	s.log.Info("user signed up", zap.Int64("user_id", u.ID))
	return u.ID, tok, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (int64, *token.Token, error) {
	email = normalizeEmail(email)
	v := validator.New()
	ValidateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return 0, nil, &ValidationError{Fields: v.Errors}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrRecordNotFound) {
			return 0, nil, ErrInvalidCredentials
		}
		return 0, nil, err
	}

	ok, err := matches(u.PasswordHash, password)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, ErrInvalidCredentials
	}

	tok, err := s.issue(ctx, u.ID)
	if err != nil {
		return 0, nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, u.ID, time.Now()); err != nil {
		s.log.Warn("failed to record last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return u.ID, tok, nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, plaintext string) error {
	if plaintext == "" {
		return nil
	}
	return s.tokens.Delete(ctx, plaintext)
}

// Authenticate resolves a live token to its user.
func (s *Service) Authenticate(ctx context.Context, plaintext string) (int64, error) {
	v := validator.New()
	token.ValidatePlaintext(v, plaintext)
	if !v.Valid() {
		return 0, ErrInvalidToken
	}
	return s.tokens.UserID(ctx, plaintext)
}

func (s *Service) ServiceStatus(ctx context.Context) error {
	return s.tokens.Ping(ctx)
}

func (s *Service) issue(ctx context.Context, userID int64) (*token.Token, error) {
	tok, err := token.Generate(userID, s.ttl, token.ScopeAuthentication)
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}
	if err := s.tokens.Save(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func matches(hash []byte, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
}

// ValidatePassword enforces bcrypt's 72 byte input limit.
func ValidatePassword(v *validator.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) >= 8, "password", "must be at least 8 bytes long")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}
