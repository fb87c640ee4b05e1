package taskauth

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// mockStore is a minimal in-memory UserStore for engine tests. The stores
// subpackage ships the real implementations; this one exists so the root
// package tests stay self-contained.
type mockStore struct {
	mu    sync.Mutex
	users map[string]*User

	createErr error
	updateErr error
}

func newMockStore() *mockStore {
	return &mockStore{users: map[string]*User{}}
}

func (s *mockStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *mockStore) GetByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *mockStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *mockStore) GetByResetToken(_ context.Context, token string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetToken != "" && u.ResetToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *mockStore) Update(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// get returns the stored record without the clone-out, for white-box
// assertions on persisted fields.
func (s *mockStore) get(id string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// testClock is a mutable time source safe for use from the throttle's sweep
// goroutine.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type mockMailer struct {
	mu    sync.Mutex
	sent  []string
	links []string
	err   error
}

func (m *mockMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	m.links = append(m.links, link)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = bytes.Repeat([]byte("s"), 32)
	cfg.Password.Cost = bcrypt.MinCost
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, store UserStore) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithUserStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func registerTestUser(t *testing.T, engine *Engine, email, pass string) *PublicUser {
	t.Helper()

	pub, err := engine.Register(context.Background(), RegisterInput{
		Email:           email,
		Password:        pass,
		PasswordConfirm: pass,
		Name:            "test user",
		Age:             30,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return pub
}
