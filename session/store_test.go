package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "abase:"), mr
}

func testSnapshot() *Snapshot {
	now := time.Now().UTC().Truncate(time.Second)
	return &Snapshot{
		UserID:    "u1",
		Email:     "u@x.com",
		FullName:  "User One",
		Active:    true,
		Roles:     []string{"AGENTE"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.PutSession(ctx, "u1", testSnapshot(), time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	snap, err := store.GetSession(ctx, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot")
	}
	if snap.Email != "u@x.com" || !snap.Active {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(snap.Roles) != 1 || snap.Roles[0] != "AGENTE" {
		t.Fatalf("roles = %v, want [AGENTE]", snap.Roles)
	}
}

func TestGetSessionMissReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	snap, err := store.GetSession(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.PutSession(ctx, "u1", testSnapshot(), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	snap, err := store.GetSession(ctx, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snap != nil {
		t.Fatal("expected session to expire")
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.PutSession(ctx, "u1", testSnapshot(), time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.DeleteSession(ctx, "u1"); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := store.DeleteSession(ctx, "u1"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}

func TestRefreshBinding(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.BindRefresh(ctx, "rt-1", "u1", time.Hour); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	owner, err := store.ResolveRefresh(ctx, "rt-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if owner != "u1" {
		t.Fatalf("owner = %q, want u1", owner)
	}

	if err := store.UnbindRefresh(ctx, "rt-1"); err != nil {
		t.Fatalf("unbind failed: %v", err)
	}
	owner, err = store.ResolveRefresh(ctx, "rt-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if owner != "" {
		t.Fatalf("expected empty owner after unbind, got %q", owner)
	}
}

func TestRefreshBindingOverwrite(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.BindRefresh(ctx, "rt-1", "u1", time.Hour); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if err := store.BindRefresh(ctx, "rt-1", "u2", time.Hour); err != nil {
		t.Fatalf("rebind failed: %v", err)
	}

	owner, err := store.ResolveRefresh(ctx, "rt-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if owner != "u2" {
		t.Fatalf("owner = %q, want u2 after overwrite", owner)
	}
}

func TestBlacklist(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Blacklist(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("blacklist failed: %v", err)
	}

	listed, err := store.IsBlacklisted(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !listed {
		t.Fatal("expected jti-1 to be blacklisted")
	}

	mr.FastForward(2 * time.Minute)

	listed, err = store.IsBlacklisted(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if listed {
		t.Fatal("expected blacklist entry to expire with the token")
	}
}

func TestBlacklistZeroTTLIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Blacklist(ctx, "jti-expired", 0); err != nil {
		t.Fatalf("blacklist failed: %v", err)
	}

	listed, err := store.IsBlacklisted(ctx, "jti-expired")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if listed {
		t.Fatal("expired token must not create a blacklist entry")
	}
}
