package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/lumenweb/auth/internal"
	"github.com/lumenweb/auth/session"
	"github.com/lumenweb/auth/token"
)

// VerifyAccess checks a bearer access token with no store round trip. The
// role in the returned identity is the snapshot minted into the token.
func (s *Service) VerifyAccess(tokenStr string) (*Identity, error) {
	if s.closed.Load() {
		return nil, ErrNotReady
	}

	claims, err := s.tokens.ParseAccess(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrExpired
		}
		return nil, ErrUnauthenticated
	}

	return &Identity{
		ID:        claims.UID,
		Role:      claims.Role,
		SessionID: claims.SID,
	}, nil
}

// ResolveSession authenticates a session ID + secret pair, the cookie
// fallback path. Unlike the bearer path it costs a store read, and the
// returned role is live. A secret that fails the hash comparison destroys
// the session before [ErrInvalidSession] is returned.
func (s *Service) ResolveSession(ctx context.Context, sessionID, secret string) (*Identity, error) {
	if s.closed.Load() {
		return nil, ErrNotReady
	}

	providedSecret, err := internal.DecodeSecret(secret)
	if err != nil {
		return nil, ErrInvalidSession
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			return nil, ErrInvalidSession
		case errors.Is(err, session.ErrSessionExpired):
			return nil, ErrExpired
		case errors.Is(err, session.ErrSessionCorrupt):
			return nil, ErrInvalidSession
		default:
			return nil, err
		}
	}

	providedHash := internal.HashRotatingSecret(providedSecret)
	if subtle.ConstantTimeCompare(providedHash[:], sess.SecretHash[:]) != 1 {
		_ = s.store.Delete(ctx, sessionID)
		s.metricInc(MetricSessionRevoked)
		s.emitAudit(ctx, AuditReuseDetected, sess.UserID, sessionID, false, "secret mismatch")
		return nil, ErrInvalidSession
	}

	user, err := s.directory.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = s.store.Delete(ctx, sessionID)
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return &Identity{
		ID:        user.UserID,
		Role:      user.Role,
		SessionID: sessionID,
	}, nil
}

// ActiveSessions lists the session IDs a user currently holds.
func (s *Service) ActiveSessions(ctx context.Context, userID string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrNotReady
	}
	return s.store.ActiveSessionIDs(ctx, userID)
}
