package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"time"

	"kalenderium/internal/validator"
)

const (
	ScopeAuthentication = "authentication"

	// PlaintextLength is the encoded length of 16 random bytes in unpadded base32.
	PlaintextLength = 26
)

type Token struct {
	Plaintext string    `json:"token"`
	Hash      []byte    `json:"-"`
	UserID    int64     `json:"-"`
	Expiry    time.Time `json:"expiry"`
	Scope     string    `json:"-"`
}

func Generate(userID int64, ttl time.Duration, scope string) (*Token, error) {
	tok := &Token{
		UserID: userID,
		Expiry: time.Now().Add(ttl),
		Scope:  scope,
	}

	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, err
	}

	tok.Plaintext = base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	tok.Hash = Hash(tok.Plaintext)
	return tok, nil
}

func Hash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}

// Key is the storage key for a plaintext token. Plaintext tokens are never stored.
func Key(plaintext string) string {
	return "token:" + hex.EncodeToString(Hash(plaintext))
}

func ValidatePlaintext(v *validator.Validator, plaintext string) {
	v.Check(plaintext != "", "token", "must be provided")
	v.Check(len(plaintext) == PlaintextLength, "token", "must be 26 bytes long")
}
