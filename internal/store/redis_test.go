package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalenderium/internal/token"
)

func newTokensTest(t *testing.T) (*Tokens, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokens(rdb), mr
}

func TestTokensRoundTrip(t *testing.T) {
	s, mr := newTokensTest(t)
	ctx := context.Background()

	tok, err := token.Generate(42, time.Hour, token.ScopeAuthentication)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, tok))

	id, err := s.UserID(ctx, tok.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.False(t, mr.Exists(tok.Plaintext), "plaintext must not be a key")
	assert.True(t, mr.Exists(token.Key(tok.Plaintext)))

	require.NoError(t, s.Delete(ctx, tok.Plaintext))
	require.NoError(t, s.Delete(ctx, tok.Plaintext))

	_, err = s.UserID(ctx, tok.Plaintext)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokensExpire(t *testing.T) {
	s, mr := newTokensTest(t)
	ctx := context.Background()

	tok, err := token.Generate(1, time.Minute, token.ScopeAuthentication)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, tok))

	mr.FastForward(2 * time.Minute)

	_, err = s.UserID(ctx, tok.Plaintext)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestSaveRejectsExpiredToken(t *testing.T) {
	s, _ := newTokensTest(t)
	tok, err := token.Generate(1, -time.Second, token.ScopeAuthentication)
	require.NoError(t, err)
	assert.Error(t, s.Save(context.Background(), tok))
}

func TestCorruptValue(t *testing.T) {
	s, mr := newTokensTest(t)
	require.NoError(t, mr.Set(token.Key("x"), "not-a-number"))

	_, err := s.UserID(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := Connect(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, NewTokens(client).Ping(context.Background()))

	mr.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.True(t, errors.Is(err, ErrRedisUnavailable))
}
