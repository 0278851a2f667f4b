package auth

import (
	"context"
	"errors"
	"testing"
)

func TestLogoutDestroysSession(t *testing.T) {
	svc, dir := newTestService(t)
	res := loginTestUser(t, svc, dir)

	ctx := context.Background()
	if err := svc.Logout(ctx, res.SessionID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := svc.ResolveSession(ctx, res.SessionID, res.Secret); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("session usable after logout: %v", err)
	}
	if _, err := svc.Rotate(ctx, res.SessionID, res.Secret); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("rotation possible after logout: %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, dir := newTestService(t)
	res := loginTestUser(t, svc, dir)

	ctx := context.Background()
	if err := svc.Logout(ctx, res.SessionID); err != nil {
		t.Fatalf("first Logout failed: %v", err)
	}
	if err := svc.Logout(ctx, res.SessionID); err != nil {
		t.Fatalf("repeated Logout failed: %v", err)
	}
	if err := svc.Logout(ctx, "never-existed"); err != nil {
		t.Fatalf("Logout of unknown session failed: %v", err)
	}
}

func TestRevokeAllKillsEverySession(t *testing.T) {
	svc, dir := newTestService(t)
	addUser(t, svc, dir, "u1", "alice@example.com", "member", "correct horse battery")

	ctx := context.Background()
	var sessions []*LoginResult
	for i := 0; i < 3; i++ {
		res, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
		sessions = append(sessions, res)
	}

	if err := svc.RevokeAll(ctx, "u1"); err != nil {
		t.Fatalf("RevokeAll failed: %v", err)
	}

	for i, res := range sessions {
		if _, err := svc.ResolveSession(ctx, res.SessionID, res.Secret); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("session %d survived revocation: %v", i, err)
		}
		if _, err := svc.Rotate(ctx, res.SessionID, res.Secret); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("session %d still rotates: %v", i, err)
		}
	}

	ids, err := svc.ActiveSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("index not cleared: %v", ids)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, dir := newTestService(t)
	res := loginTestUser(t, svc, dir)

	ctx := context.Background()
	if err := svc.ChangePassword(ctx, "u1", "correct horse battery", "brand new passphrase"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	// Old sessions are dead.
	if _, err := svc.ResolveSession(ctx, res.SessionID, res.Secret); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("session survived password change: %v", err)
	}

	// Old password no longer logs in; the new one does.
	if _, err := svc.Login(ctx, "alice@example.com", "correct horse battery"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "brand new passphrase"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	svc, dir := newTestService(t)
	res := loginTestUser(t, svc, dir)

	ctx := context.Background()
	err := svc.ChangePassword(ctx, "u1", "not the password", "brand new passphrase")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Nothing was revoked.
	if _, err := svc.ResolveSession(ctx, res.SessionID, res.Secret); err != nil {
		t.Fatalf("session harmed by failed password change: %v", err)
	}
}
