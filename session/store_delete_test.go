package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	hash := randomHash(t)
	seedSession(t, store, "sess-1", "u1", hash, time.Hour)

	if err := store.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := store.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if err := store.Delete(context.Background(), "never-existed"); err != nil {
		t.Fatalf("Delete of unknown session failed: %v", err)
	}
}

func TestDeleteRemovesIndexEntry(t *testing.T) {
	store, _ := newTestStore(t)
	hash := randomHash(t)
	seedSession(t, store, "sess-1", "u1", hash, time.Hour)
	seedSession(t, store, "sess-2", "u1", randomHash(t), time.Hour)

	if err := store.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	ids, err := store.ActiveSessionIDs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ActiveSessionIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "sess-2" {
		t.Fatalf("unexpected surviving sessions: %v", ids)
	}
}

func TestDeleteAllForUser(t *testing.T) {
	store, _ := newTestStore(t)
	seedSession(t, store, "sess-1", "u1", randomHash(t), time.Hour)
	seedSession(t, store, "sess-2", "u1", randomHash(t), time.Hour)
	seedSession(t, store, "other", "u2", randomHash(t), time.Hour)

	if err := store.DeleteAllForUser(context.Background(), "u1"); err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}

	for _, id := range []string{"sess-1", "sess-2"} {
		if _, err := store.Get(context.Background(), id); !errors.Is(err, redis.Nil) {
			t.Fatalf("expected %s to be gone, got %v", id, err)
		}
	}

	// Other users are untouched.
	if _, err := store.Get(context.Background(), "other"); err != nil {
		t.Fatalf("unrelated session was removed: %v", err)
	}
}

func TestGetExpiredSessionEvicted(t *testing.T) {
	store, mr := newTestStore(t)
	hash := randomHash(t)
	seedSession(t, store, "sess-1", "u1", hash, time.Hour)

	// Move miniredis past the stored expiry. The row is still present in
	// Redis but logically dead.
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(context.Background(), "sess-1")
	if err == nil {
		t.Fatal("expected an error for expired session")
	}
	if !errors.Is(err, ErrSessionExpired) && !errors.Is(err, redis.Nil) {
		t.Fatalf("expected expiry or eviction, got %v", err)
	}
}
