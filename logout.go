package auth

import (
	"context"
	"errors"
)

// Logout destroys one session. Logging out an already-dead session is a
// success; the desired end state holds either way.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if s.closed.Load() {
		return ErrNotReady
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.metricInc(MetricLogout)
	s.metricInc(MetricSessionRevoked)
	s.emitAudit(ctx, AuditLogout, "", sessionID, true, "")
	return nil
}

// RevokeAll destroys every session belonging to a user. Used on password
// change, account compromise, and administrative lockout.
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	if s.closed.Load() {
		return ErrNotReady
	}

	if err := s.store.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}

	s.metricInc(MetricRevokeAll)
	s.emitAudit(ctx, AuditRevokeAll, userID, "", true, "")
	return nil
}

// ChangePassword verifies the old password, stores a hash of the new one,
// and revokes every session the user holds. Outstanding access tokens stay
// valid until their short TTL runs out; sessions die immediately.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPass, newPass string) error {
	if s.closed.Load() {
		return ErrNotReady
	}

	user, err := s.directory.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	ok, err := s.hasher.Verify(oldPass, user.PasswordHash)
	if err != nil || !ok {
		s.emitAudit(ctx, AuditPasswordChange, userID, "", false, "wrong old password")
		return ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPass)
	if err != nil {
		return err
	}
	if err := s.directory.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}

	if err := s.RevokeAll(ctx, userID); err != nil {
		return err
	}

	s.metricInc(MetricPasswordChange)
	s.emitAudit(ctx, AuditPasswordChange, userID, "", true, "")
	return nil
}
