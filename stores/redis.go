package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/taskhive/taskauth"
)

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("user store redis unavailable")

// RedisStore is a Redis-backed [taskauth.UserStore]. Records are binary
// encoded under one key per user; the email and reset-token indexes are
// plain keys holding the user id.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore with the given key prefix. An empty
// prefix defaults to "tu".
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tu"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) userKey(id string) string {
	return s.prefix + ":user:" + id
}

func (s *RedisStore) emailKey(email string) string {
	return s.prefix + ":email:" + strings.ToLower(email)
}

func (s *RedisStore) resetKey(token string) string {
	return s.prefix + ":reset:" + token
}

// Create persists a new user. The email index is claimed with SETNX first,
// which makes case-insensitive uniqueness atomic under concurrent
// registrations for one address.
func (s *RedisStore) Create(ctx context.Context, user *taskauth.User) error {
	encoded, err := encodeUserRecord(user)
	if err != nil {
		return err
	}

	claimed, err := s.redis.SetNX(ctx, s.emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !claimed {
		return taskauth.ErrEmailTaken
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.userKey(user.ID), encoded, 0)
		if user.ResetToken != "" {
			pipe.Set(ctx, s.resetKey(user.ResetToken), user.ID, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// GetByID loads a user record.
func (s *RedisStore) GetByID(ctx context.Context, id string) (*taskauth.User, error) {
	data, err := s.redis.Get(ctx, s.userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, taskauth.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeUserRecord(data)
}

// GetByEmail resolves the lowercased email index and loads the record.
func (s *RedisStore) GetByEmail(ctx context.Context, email string) (*taskauth.User, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, taskauth.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.GetByID(ctx, id)
}

// GetByResetToken resolves the reset-token index and loads the record. A
// stale index entry whose record no longer carries the token reports a miss.
func (s *RedisStore) GetByResetToken(ctx context.Context, token string) (*taskauth.User, error) {
	if token == "" {
		return nil, taskauth.ErrUserNotFound
	}

	id, err := s.redis.Get(ctx, s.resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, taskauth.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ResetToken != token {
		return nil, taskauth.ErrUserNotFound
	}
	return user, nil
}

// Update rewrites a user record and maintains both indexes. The record
// write is last-write-wins, which is the arbiter for concurrent updates to
// one user.
func (s *RedisStore) Update(ctx context.Context, user *taskauth.User) error {
	current, err := s.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	if !strings.EqualFold(current.Email, user.Email) {
		claimed, err := s.redis.SetNX(ctx, s.emailKey(user.Email), user.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if !claimed {
			return taskauth.ErrEmailTaken
		}
	}

	emailChanged := !strings.EqualFold(current.Email, user.Email)

	encoded, err := encodeUserRecord(user)
	if err != nil {
		if emailChanged {
			s.redis.Del(ctx, s.emailKey(user.Email))
		}
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.userKey(user.ID), encoded, 0)
		if emailChanged {
			pipe.Del(ctx, s.emailKey(current.Email))
		}
		if current.ResetToken != user.ResetToken {
			if current.ResetToken != "" {
				pipe.Del(ctx, s.resetKey(current.ResetToken))
			}
			if user.ResetToken != "" {
				pipe.Set(ctx, s.resetKey(user.ResetToken), user.ID, 0)
			}
		}
		return nil
	})
	if err != nil {
		// Release the claimed address or it stays blocked forever.
		if emailChanged {
			s.redis.Del(ctx, s.emailKey(user.Email))
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}
