package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumenweb/auth/internal"
	"github.com/lumenweb/auth/internal/rate"
	"github.com/lumenweb/auth/session"
)

// dummyHash keeps the directory-miss path doing the same argon2 work as a
// real verification, so response timing does not reveal whether the
// identifier exists.
const dummyHash = "$argon2id$v=19$m=8192,t=1,p=1$QUFBQUFBQUFBQUFBQUFBQQ==$QUFBQUFBQUFBQUFBQUFBQQ=="

// Login authenticates an identifier+password pair and creates a session.
// Unknown identifier and wrong password both return [ErrInvalidCredentials].
// The returned secret is the only copy; the store keeps its hash.
func (s *Service) Login(ctx context.Context, identifier, pass string) (*LoginResult, error) {
	if s.closed.Load() {
		return nil, ErrNotReady
	}

	ip := ClientIPFromContext(ctx)

	if err := s.limiter.CheckLogin(ctx, identifier, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			s.metricInc(MetricLoginRateLimited)
			s.emitAudit(ctx, AuditLogin, "", "", false, "rate limited")
			return nil, ErrLoginRateLimited
		}
		return nil, err
	}

	user, err := s.directory.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = s.hasher.Verify(pass, dummyHash)
			return nil, s.failLogin(ctx, identifier, ip, "unknown identifier")
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		// A hash that no longer parses is indistinguishable from a wrong
		// password to the caller.
		return nil, s.failLogin(ctx, identifier, ip, "unverifiable password hash")
	}
	if !ok {
		return nil, s.failLogin(ctx, identifier, ip, "wrong password")
	}

	if up, err := s.hasher.NeedsUpgrade(user.PasswordHash); err == nil && up {
		// Best effort: a failed upgrade write never blocks the login.
		if rehashed, err := s.hasher.Hash(pass); err == nil {
			_ = s.directory.UpdatePasswordHash(ctx, user.UserID, rehashed)
		}
	}

	_ = s.limiter.ResetLogin(ctx, identifier, ip)

	result, err := s.createSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metricInc(MetricLoginSuccess)
	s.metricInc(MetricSessionCreated)
	s.emitAudit(ctx, AuditLogin, user.UserID, result.SessionID, true, "")

	return result, nil
}

func (s *Service) failLogin(ctx context.Context, identifier, ip, reason string) error {
	if err := s.limiter.IncrementLogin(ctx, identifier, ip); errors.Is(err, rate.ErrRateLimited) {
		s.metricInc(MetricLoginRateLimited)
		s.emitAudit(ctx, AuditLogin, "", "", false, "rate limited")
		return ErrLoginRateLimited
	}

	s.metricInc(MetricLoginFailure)
	s.emitAudit(ctx, AuditLogin, "", "", false, reason)
	return ErrInvalidCredentials
}

func (s *Service) createSession(ctx context.Context, user *UserRecord) (*LoginResult, error) {
	sessionID, err := internal.NewSessionID()
	if err != nil {
		return nil, err
	}
	secret, err := internal.NewRotatingSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &session.Session{
		SessionID:  sessionID,
		UserID:     user.UserID,
		Role:       user.Role,
		SecretHash: internal.HashRotatingSecret(secret),
		UserAgent:  UserAgentFromContext(ctx),
		ClientIP:   ClientIPFromContext(ctx),
		CreatedAt:  now.Unix(),
		UpdatedAt:  now.Unix(),
		ExpiresAt:  now.Add(s.sessionLifetime()).Unix(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	access, err := s.tokens.CreateAccess(user.UserID, user.Role, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := internal.EncodeRefreshToken(sessionID, secret)
	if err != nil {
		return nil, fmt.Errorf("encode refresh token: %w", err)
	}

	return &LoginResult{
		Identity: Identity{
			ID:        user.UserID,
			Role:      user.Role,
			SessionID: sessionID,
		},
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
		Secret:       internal.EncodeSecret(secret),
	}, nil
}
