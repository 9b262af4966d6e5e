package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]string{}}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockKeyer struct{}

func (mockKeyer) AccessSessionKey(accessID string) string { return "test:session:" + accessID }

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: mockKeyer{}, ttl: time.Hour}, store
}

func TestGenerateAndHasSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	token, err := m.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	ok, err := m.HasSession(ctx, "access-1")
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	ok, err = m.HasSession(ctx, "access-missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("missing session reported live")
	}
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	token, err := m.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	newID, newToken, err := m.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if newID == "access-1" || newToken == token {
		t.Fatal("rotation did not produce new credentials")
	}

	if ok, _ := m.HasSession(ctx, "access-1"); ok {
		t.Fatal("old session still live after rotation")
	}
	if ok, _ := m.HasSession(ctx, newID); !ok {
		t.Fatal("new session not live")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if _, err := m.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, _, err := m.Rotate(ctx, "access-1", "forged")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if _, err := m.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := m.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if ok, _ := m.HasSession(ctx, "access-1"); ok {
		t.Fatal("session live after revoke")
	}
}
