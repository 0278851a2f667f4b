package auth

import "context"

// Identity is the authenticated principal attached to a request after the
// gate admits it. Role is live for the cookie path and a short-lived
// snapshot for the bearer path.
type Identity struct {
	ID        string
	Role      string
	SessionID string
}

// UserRecord is the directory's view of one user. PasswordHash is a PHC
// format argon2id string.
type UserRecord struct {
	UserID       string
	Identifier   string
	Role         string
	PasswordHash string
}

// UserDirectory is the application-supplied account lookup. Implementations
// return [ErrUserNotFound] for unknown users and must be safe for concurrent
// use.
type UserDirectory interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (*UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (*UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// LoginResult carries everything a transport needs after a successful login:
// the access token for Authorization headers, the combined refresh token for
// bearer-style clients, and the session ID and secret as separate values for
// cookie-based browser clients.
type LoginResult struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
	SessionID    string
	Secret       string
}

// RotateResult is the outcome of a successful rotation: a fresh access token
// and the replacement secret. The previous secret is dead the moment this is
// returned.
type RotateResult struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
	SessionID    string
	Secret       string
}
