package abase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ghitflux/abasev2/password"
)

// memoryDirectory is an in-memory UserDirectory that counts calls, so tests
// can assert which lookups a flow performed.
type memoryDirectory struct {
	mu     sync.Mutex
	users  map[string]UserRecord
	nextID int

	getByIDCalls    int
	getByEmailCalls int
	createCalls     int
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]UserRecord{}}
}

func (d *memoryDirectory) add(t *testing.T, email, plainPassword string, active bool, roles ...string) UserRecord {
	t.Helper()

	hash, err := password.Hash(plainPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	user := UserRecord{
		ID:           strconv.Itoa(d.nextID),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Active:       active,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	d.users[user.ID] = user
	return user
}

func (d *memoryDirectory) GetUserByID(_ context.Context, id string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getByIDCalls++

	user, ok := d.users[id]
	if !ok {
		return UserRecord{}, fmt.Errorf("%w: id %s", ErrUserNotFound, id)
	}
	return user, nil
}

func (d *memoryDirectory) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getByEmailCalls++

	for _, user := range d.users {
		if user.Email == email {
			return user, nil
		}
	}
	return UserRecord{}, fmt.Errorf("%w: email %s", ErrUserNotFound, email)
}

func (d *memoryDirectory) CreateUser(_ context.Context, input CreateUserInput) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.createCalls++

	d.nextID++
	user := UserRecord{
		ID:           strconv.Itoa(d.nextID),
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: input.PasswordHash,
		Active:       true,
		Roles:        input.Roles,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	d.users[user.ID] = user
	return user, nil
}

func (d *memoryDirectory) emailLookups() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getByEmailCalls
}

func (d *memoryDirectory) creations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createCalls
}

func testConfig() Config {
	return Config{
		JWT: JWTConfig{Secret: []byte("test-secret-0123456789")},
	}
}

// newTestManager builds a manager on miniredis with the in-memory
// directory. mutate, when non-nil, adjusts the config before Build.
func newTestManager(t *testing.T, mutate func(*Config)) (*Manager, *memoryDirectory, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	directory := newMemoryDirectory()
	mgr, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDirectory(directory).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(mgr.Close)

	return mgr, directory, mr
}

// newTestManagerWithSink is newTestManager with auditing enabled and wired
// to the given sink.
func newTestManagerWithSink(t *testing.T, sink AuditSink) (*Manager, *memoryDirectory, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.Audit.Enabled = true

	directory := newMemoryDirectory()
	mgr, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDirectory(directory).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(mgr.Close)

	return mgr, directory, mr
}

func localCreds(email, pass string) Credentials {
	return Credentials{
		Provider: ProviderLocal,
		Metadata: map[string]string{"email": email, "password": pass},
	}
}
