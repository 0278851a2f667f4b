package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

const (
	// SecretSize is the byte length of a session's rotating plaintext secret.
	SecretSize = 32

	refreshTokenRawSize = 16 + SecretSize
)

// ErrBadToken is returned for refresh tokens that fail structural decoding.
var ErrBadToken = errors.New("malformed refresh token")

// NewSessionID returns a random v4 UUID in canonical string form.
func NewSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewRotatingSecret generates a fresh high-entropy session secret.
func NewRotatingSecret() ([SecretSize]byte, error) {
	var secret [SecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

// HashRotatingSecret is the one-way mapping from plaintext secret to the
// value persisted in the credential store. The plaintext is never stored.
func HashRotatingSecret(secret [SecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

// EncodeSecret renders a plaintext secret as the opaque cookie value handed
// to clients.
func EncodeSecret(secret [SecretSize]byte) string {
	return base64.RawURLEncoding.EncodeToString(secret[:])
}

// DecodeSecret reverses [EncodeSecret].
func DecodeSecret(value string) ([SecretSize]byte, error) {
	var secret [SecretSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return secret, ErrBadToken
	}
	if len(raw) != SecretSize {
		return secret, ErrBadToken
	}

	copy(secret[:], raw)
	return secret, nil
}

// EncodeRefreshToken packs a session ID and its current plaintext secret into
// a single opaque base64url token. Used by bearer-style clients; browser
// clients receive the two values as separate cookies instead.
func EncodeRefreshToken(sessionID string, secret [SecretSize]byte) (string, error) {
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return "", err
	}

	var raw [refreshTokenRawSize]byte
	copy(raw[:16], sid[:])
	copy(raw[16:], secret[:])

	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// DecodeRefreshToken splits an opaque refresh token back into session ID and
// plaintext secret.
func DecodeRefreshToken(token string) (string, [SecretSize]byte, error) {
	var secret [SecretSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", secret, ErrBadToken
	}
	if len(raw) != refreshTokenRawSize {
		return "", secret, ErrBadToken
	}

	var sid uuid.UUID
	copy(sid[:], raw[:16])
	copy(secret[:], raw[16:])

	return sid.String(), secret, nil
}
