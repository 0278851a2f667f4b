package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lumenweb/auth/password"
	"github.com/lumenweb/auth/token"
)

type mockDirectory struct {
	mu    sync.Mutex
	users map[string]*UserRecord // keyed by user ID
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{users: map[string]*UserRecord{}}
}

func (d *mockDirectory) add(u UserRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := u
	d.users[u.UserID] = &copied
}

func (d *mockDirectory) remove(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, userID)
}

func (d *mockDirectory) setRole(userID, role string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[userID]; ok {
		u.Role = role
	}
}

func (d *mockDirectory) GetUserByIdentifier(_ context.Context, identifier string) (*UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Identifier == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *mockDirectory) GetUserByID(_ context.Context, userID string) (*UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (d *mockDirectory) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func newTestRedis(t testing.TB) redis.UniversalClient {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.SigningMethod = token.MethodHS256
	cfg.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.AccessTTL = time.Minute
	cfg.Session.Lifetime = time.Hour
	// Cheapest legal argon2 parameters so the suite stays fast.
	cfg.Password = password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	return cfg
}

func newTestService(t testing.TB) (*Service, *mockDirectory) {
	t.Helper()

	dir := newMockDirectory()
	svc, err := New().
		WithConfig(testConfig()).
		WithRedis(newTestRedis(t)).
		WithUserDirectory(dir).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)

	return svc, dir
}

// addUser registers a user whose password is hashed with the service's own
// hasher and returns the user ID.
func addUser(t testing.TB, svc *Service, dir *mockDirectory, userID, identifier, role, pass string) {
	t.Helper()

	hash, err := svc.hasher.Hash(pass)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	dir.add(UserRecord{
		UserID:       userID,
		Identifier:   identifier,
		Role:         role,
		PasswordHash: hash,
	})
}

func TestServiceCloseRejectsOperations(t *testing.T) {
	svc, dir := newTestService(t)
	addUser(t, svc, dir, "u1", "alice@example.com", "member", "correct horse battery")

	svc.Close()

	if _, err := svc.Login(context.Background(), "alice@example.com", "correct horse battery"); err != ErrNotReady {
		t.Fatalf("Login after Close: %v", err)
	}
	if _, err := svc.Rotate(context.Background(), "sess", "secret"); err != ErrNotReady {
		t.Fatalf("Rotate after Close: %v", err)
	}
	if err := svc.Logout(context.Background(), "sess"); err != ErrNotReady {
		t.Fatalf("Logout after Close: %v", err)
	}

	// Close is idempotent.
	svc.Close()
}

func TestServicePing(t *testing.T) {
	svc, _ := newTestService(t)

	latency, err := svc.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if latency < 0 {
		t.Fatalf("negative latency %v", latency)
	}
}
