package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	svc, dir := newTestService(t)
	addUser(t, svc, dir, "u1", "alice@example.com", "admin", "correct horse battery")

	res, err := svc.Login(context.Background(), "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if res.Identity.ID != "u1" || res.Identity.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", res.Identity)
	}
	if res.AccessToken == "" || res.RefreshToken == "" || res.SessionID == "" || res.Secret == "" {
		t.Fatalf("incomplete login result: %+v", res)
	}

	// The minted access token verifies and names the same session.
	identity, err := svc.VerifyAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if identity.ID != "u1" || identity.SessionID != res.SessionID {
		t.Fatalf("access token claims mismatch: %+v", identity)
	}

	// The session exists in the store.
	ids, err := svc.ActiveSessions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != res.SessionID {
		t.Fatalf("unexpected active sessions: %v", ids)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, dir := newTestService(t)
	addUser(t, svc, dir, "u1", "alice@example.com", "member", "correct horse battery")

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong password 12345")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "correct horse battery")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Security.MaxLoginAttempts = 3

	dir := newMockDirectory()
	svc, err := New().
		WithConfig(cfg).
		WithRedis(newTestRedis(t)).
		WithUserDirectory(dir).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	addUser(t, svc, dir, "u1", "alice@example.com", "member", "correct horse battery")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Login(ctx, "alice@example.com", "wrong password 12345"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	// The attempt that pushes the counter past the budget reports the
	// throttle instead of bad credentials.
	if _, err := svc.Login(ctx, "alice@example.com", "wrong password 12345"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}

	// Budget exhausted: even the correct password is refused now.
	if _, err := svc.Login(ctx, "alice@example.com", "correct horse battery"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	svc, dir := newTestService(t)

	// Seed a hash produced with weaker-than-configured parameters. The
	// service config in testConfig uses the minimums, so fabricate a
	// stronger service instead.
	cfg := testConfig()
	cfg.Password.Memory = 16 * 1024
	strong, err := New().
		WithConfig(cfg).
		WithRedis(newTestRedis(t)).
		WithUserDirectory(dir).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(strong.Close)

	addUser(t, svc, dir, "u1", "alice@example.com", "member", "correct horse battery")
	before, _ := dir.GetUserByID(context.Background(), "u1")

	if _, err := strong.Login(context.Background(), "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	after, _ := dir.GetUserByID(context.Background(), "u1")
	if after.PasswordHash == before.PasswordHash {
		t.Fatal("weak hash was not upgraded on login")
	}
	if !strings.Contains(after.PasswordHash, "m=16384") {
		t.Fatalf("upgraded hash does not carry new parameters: %s", after.PasswordHash)
	}

	// The upgraded hash still verifies on the next login.
	if _, err := strong.Login(context.Background(), "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Login after upgrade failed: %v", err)
	}
}

func TestLoginsCreateIndependentSessions(t *testing.T) {
	svc, dir := newTestService(t)
	addUser(t, svc, dir, "u1", "alice@example.com", "member", "correct horse battery")

	ctx := context.Background()
	a, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	b, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if a.SessionID == b.SessionID {
		t.Fatal("two logins produced the same session")
	}

	// Logging out one session leaves the other usable.
	if err := svc.Logout(ctx, a.SessionID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.ResolveSession(ctx, b.SessionID, b.Secret); err != nil {
		t.Fatalf("surviving session unusable: %v", err)
	}
}
