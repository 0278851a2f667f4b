package session

// Session is one durable credential-store row: a single long-lived login
// secured by a rotating one-use secret. Only the secret's hash is persisted.
type Session struct {
	SessionID string
	UserID    string
	Role      string

	SecretHash [32]byte

	UserAgent string
	ClientIP  string

	CreatedAt int64
	UpdatedAt int64
	ExpiresAt int64
}
