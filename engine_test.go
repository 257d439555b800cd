package sessionauth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]UserRecord // keyed by id
	byID  map[string]string     // email -> id

	findErr   error
	updateErr error

	findByEmailCalls    int
	findByIDCalls       int
	updatePasswordCalls int
}

func newMockUserStore(users ...UserRecord) *mockUserStore {
	m := &mockUserStore{
		users: map[string]UserRecord{},
		byID:  map[string]string{},
	}
	for _, u := range users {
		m.users[u.ID] = u
		m.byID[u.Email] = u.ID
	}
	return m
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByEmailCalls++

	if m.findErr != nil {
		return UserRecord{}, m.findErr
	}
	id, ok := m.byID[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return m.users[id], nil
}

func (m *mockUserStore) FindByID(_ context.Context, id string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByIDCalls++

	if m.findErr != nil {
		return UserRecord{}, m.findErr
	}
	u, ok := m.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStore) UpdatePassword(_ context.Context, userID, currentDigest, newDigest string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePasswordCalls++

	if m.updateErr != nil {
		return false, m.updateErr
	}
	u, ok := m.users[userID]
	if !ok || u.Password != currentDigest {
		return false, nil
	}
	u.Password = newDigest
	m.users[userID] = u
	return true, nil
}

func (m *mockUserStore) add(u UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.byID[u.Email] = u.ID
}

func (m *mockUserStore) digest(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Password
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("test-hmac-secret-0123456789abcdef")
	cfg.Cipher.Key = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, store UserStore) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// seedUser registers a user in store whose stored password digest matches
// plaintext under the test cipher key.
func seedUser(t *testing.T, engine *Engine, store *mockUserStore, id, email, plaintext string) UserRecord {
	t.Helper()

	digest, err := engine.PasswordDigest(plaintext)
	if err != nil {
		t.Fatalf("PasswordDigest failed: %v", err)
	}
	rec := UserRecord{ID: id, Email: email, Password: digest}
	store.add(rec)
	return rec
}

func TestBuilderRequiresDependencies(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	if _, err := New().WithConfig(testConfig()).WithUserStore(newMockUserStore()).Build(); err == nil {
		t.Fatal("expected error without redis client")
	}
	if _, err := New().WithConfig(testConfig()).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without user store")
	}

	cfg := testConfig()
	cfg.Cipher.Key = []byte("short")
	if _, err := New().WithConfig(cfg).WithRedis(rdb).WithUserStore(newMockUserStore()).Build(); err == nil {
		t.Fatal("expected error for bad cipher key length")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithUserStore(newMockUserStore())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestEngineNotReady(t *testing.T) {
	var engine *Engine
	if _, err := engine.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := engine.VerifyToken(context.Background(), "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}
