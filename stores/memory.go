package stores

import (
	"context"
	"strings"
	"sync"

	"github.com/taskhive/taskauth"
)

// MemoryStore is an in-memory [taskauth.UserStore] for tests and examples.
// All lookups return copies; callers never share record memory with the
// store.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*taskauth.User
	byEmail map[string]string
	byToken map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*taskauth.User),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, user *taskauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(user.Email)
	if _, taken := s.byEmail[lower]; taken {
		return taskauth.ErrEmailTaken
	}

	clone := *user
	s.byID[user.ID] = &clone
	s.byEmail[lower] = user.ID
	if user.ResetToken != "" {
		s.byToken[user.ResetToken] = user.ID
	}
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*taskauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*taskauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, taskauth.ErrUserNotFound
	}
	return s.getLocked(id)
}

func (s *MemoryStore) GetByResetToken(ctx context.Context, token string) (*taskauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok || token == "" {
		return nil, taskauth.ErrUserNotFound
	}
	return s.getLocked(id)
}

func (s *MemoryStore) Update(ctx context.Context, user *taskauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[user.ID]
	if !ok {
		return taskauth.ErrUserNotFound
	}

	newLower := strings.ToLower(user.Email)
	oldLower := strings.ToLower(current.Email)
	if newLower != oldLower {
		if owner, taken := s.byEmail[newLower]; taken && owner != user.ID {
			return taskauth.ErrEmailTaken
		}
		delete(s.byEmail, oldLower)
		s.byEmail[newLower] = user.ID
	}

	if current.ResetToken != user.ResetToken {
		if current.ResetToken != "" {
			delete(s.byToken, current.ResetToken)
		}
		if user.ResetToken != "" {
			s.byToken[user.ResetToken] = user.ID
		}
	}

	clone := *user
	s.byID[user.ID] = &clone
	return nil
}

func (s *MemoryStore) getLocked(id string) (*taskauth.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, taskauth.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}
