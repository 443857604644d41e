package store

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"kalenderium/internal/token"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Tokens keeps issued session tokens in redis, keyed by their hash, until
// they expire or are revoked.
type Tokens struct {
	client *redis.Client
}

func NewTokens(client *redis.Client) *Tokens {
	return &Tokens{client: client}
}

// Connect opens a client and checks that redis answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(ErrRedisUnavailable, err.Error())
	}
	return client, nil
}

func (s *Tokens) Save(ctx context.Context, tok *token.Token) error {
	ttl := time.Until(tok.Expiry)
	if ttl <= 0 {
		return errors.New("token already expired")
	}
	err := s.client.Set(ctx, token.Key(tok.Plaintext), strconv.FormatInt(tok.UserID, 10), ttl).Err()
	if err != nil {
		return errors.Wrap(err, "failed to save token to redis")
	}
	return nil
}

// UserID returns the owner of a live token.
func (s *Tokens) UserID(ctx context.Context, plaintext string) (int64, error) {
	value, err := s.client.Get(ctx, token.Key(plaintext)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, errors.Wrap(err, "failed to read token from redis")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidToken, "corrupt token value %q", value)
	}
	return id, nil
}

// Delete revokes a token. Deleting an unknown token is not an error.
func (s *Tokens) Delete(ctx context.Context, plaintext string) error {
	if err := s.client.Del(ctx, token.Key(plaintext)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete token from redis")
	}
	return nil
}

func (s *Tokens) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
