package auth

import "errors"

// Service-level error taxonomy. Every operation resolves to one of these
// sentinels (possibly wrapped); callers branch with errors.Is and map them
// to transport responses.
var (
	// ErrInvalidCredentials covers a failed login: unknown identifier or
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidSession covers an unusable session reference: unknown ID,
	// malformed secret, or a secret that no longer matches the store. When
	// a mismatch is detected against a live session, the session has been
	// destroyed by the time this error is returned.
	ErrInvalidSession = errors.New("invalid session")

	// ErrExpired covers credentials that were valid but have timed out:
	// an access token past its expiry or a session past its lifetime.
	ErrExpired = errors.New("credentials expired")

	// ErrUnauthenticated is the gate-level rejection: no usable credential
	// was presented on the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but its role is not
	// in the allowed set.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound is returned by [UserDirectory] implementations for
	// unknown users. The service never surfaces it to callers directly.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotReady is returned by operations invoked after Close.
	ErrNotReady = errors.New("service closed")

	// ErrLoginRateLimited and ErrRotateRateLimited report exhausted
	// attempt budgets on the two throttled operations.
	ErrLoginRateLimited  = errors.New("login rate limited")
	ErrRotateRateLimited = errors.New("rotation rate limited")
)
