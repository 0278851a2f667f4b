package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenweb/auth/internal"
	"github.com/lumenweb/auth/internal/rate"
	"github.com/lumenweb/auth/session"
)

// Rotate exchanges a session's current secret for a fresh one and mints a
// new access token carrying the user's live role. The swap is atomic in the
// store: of N concurrent attempts with the same secret, exactly one wins.
// Presenting a secret the store has already rotated away destroys the
// session and returns [ErrInvalidSession].
func (s *Service) Rotate(ctx context.Context, sessionID, secret string) (*RotateResult, error) {
	if s.closed.Load() {
		return nil, ErrNotReady
	}

	if err := s.limiter.CheckRotate(ctx, sessionID); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			s.metricInc(MetricRotateRateLimited)
			s.emitAudit(ctx, AuditRotate, "", sessionID, false, "rate limited")
			return nil, ErrRotateRateLimited
		}
		return nil, err
	}

	providedSecret, err := internal.DecodeSecret(secret)
	if err != nil {
		s.metricInc(MetricRotateFailure)
		return nil, ErrInvalidSession
	}

	nextSecret, err := internal.NewRotatingSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess, err := s.store.Rotate(ctx, sessionID,
		internal.HashRotatingSecret(providedSecret),
		internal.HashRotatingSecret(nextSecret),
		now, now.Add(s.sessionLifetime()))
	if err != nil {
		return nil, s.mapRotateError(ctx, sessionID, err)
	}

	// Role comes from the directory, not the session row, so a demotion
	// takes effect on the next rotation.
	user, err := s.directory.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = s.store.Delete(ctx, sessionID)
			s.metricInc(MetricRotateFailure)
			s.emitAudit(ctx, AuditRotate, sess.UserID, sessionID, false, "user gone")
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	access, err := s.tokens.CreateAccess(user.UserID, user.Role, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := internal.EncodeRefreshToken(sessionID, nextSecret)
	if err != nil {
		return nil, fmt.Errorf("encode refresh token: %w", err)
	}

	s.metricInc(MetricRotateSuccess)
	s.emitAudit(ctx, AuditRotate, user.UserID, sessionID, true, "")

	return &RotateResult{
		Identity: Identity{
			ID:        user.UserID,
			Role:      user.Role,
			SessionID: sessionID,
		},
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
		Secret:       internal.EncodeSecret(nextSecret),
	}, nil
}

// RotateToken is the bearer-style variant of [Rotate]: it takes the packed
// refresh token minted at login or by the previous rotation.
func (s *Service) RotateToken(ctx context.Context, refreshToken string) (*RotateResult, error) {
	sessionID, secret, err := internal.DecodeRefreshToken(refreshToken)
	if err != nil {
		s.metricInc(MetricRotateFailure)
		return nil, ErrInvalidSession
	}
	return s.Rotate(ctx, sessionID, internal.EncodeSecret(secret))
}

func (s *Service) mapRotateError(ctx context.Context, sessionID string, err error) error {
	switch {
	case errors.Is(err, redis.Nil):
		s.metricInc(MetricRotateFailure)
		s.emitAudit(ctx, AuditRotate, "", sessionID, false, "unknown session")
		return ErrInvalidSession
	case errors.Is(err, session.ErrSessionExpired):
		s.metricInc(MetricRotateFailure)
		s.emitAudit(ctx, AuditRotate, "", sessionID, false, "expired")
		return ErrExpired
	case errors.Is(err, session.ErrSecretMismatch):
		// The store already destroyed the session. Either a stale client
		// retried after losing a race, or a stolen secret was replayed.
		s.metricInc(MetricRotateReuseDetected)
		s.metricInc(MetricSessionRevoked)
		s.emitAudit(ctx, AuditReuseDetected, "", sessionID, false, "secret mismatch")
		return ErrInvalidSession
	case errors.Is(err, session.ErrSessionCorrupt):
		s.metricInc(MetricRotateFailure)
		return ErrInvalidSession
	default:
		return err
	}
}
