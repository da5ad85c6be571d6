package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"compas/internal/models"
)

// The tariff table changes rarely and is read on every quote; memberships
// change on approval and payment. Both get explicit invalidation on write.
const (
	tariffTableKey = "tariff:table"
	tariffTTL      = time.Hour
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds a namespaced cache key.
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Tariff table caching

func (s *CacheService) CacheTariffs(ctx context.Context, entries []models.TariffEntry) error {
	return s.SetWithTTL(ctx, tariffTableKey, entries, tariffTTL)
}

func (s *CacheService) GetTariffs(ctx context.Context) ([]models.TariffEntry, bool, error) {
	var entries []models.TariffEntry
	found, err := s.Get(ctx, tariffTableKey, &entries)
	if err != nil || !found {
		return nil, false, err
	}
	return entries, true, nil
}

func (s *CacheService) InvalidateTariffs(ctx context.Context) error {
	return s.Delete(ctx, tariffTableKey)
}

// Membership caching

func (s *CacheService) CacheMembership(ctx context.Context, m *models.Membership) error {
	if m == nil {
		return errors.New("cannot cache nil membership")
	}
	return s.Set(ctx, s.GenerateKey("membership", "student", m.StudentID), m)
}

func (s *CacheService) GetMembership(ctx context.Context, studentID uint) (*models.Membership, error) {
	var m models.Membership
	found, err := s.Get(ctx, s.GenerateKey("membership", "student", studentID), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (s *CacheService) InvalidateMembership(ctx context.Context, studentID uint) error {
	return s.Delete(ctx, s.GenerateKey("membership", "student", studentID))
}

// User caching

func (s *CacheService) CacheUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	keys := []string{
		s.GenerateKey("user", "id", user.ID),
		s.GenerateKey("user", "email", user.Email),
	}
	for _, key := range keys {
		if err := s.Set(ctx, key, user); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheService) GetUser(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	found, err := s.Get(ctx, key, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("user not found in cache")
	}
	return &user, nil
}

func (s *CacheService) InvalidateUser(ctx context.Context, userID uint) error {
	user, err := s.GetUser(ctx, s.GenerateKey("user", "id", userID))
	if err != nil {
		// Only the id key can be cleared without the email.
		return s.Delete(ctx, s.GenerateKey("user", "id", userID))
	}

	return s.Delete(ctx,
		s.GenerateKey("user", "id", userID),
		s.GenerateKey("user", "email", user.Email),
	)
}

// Ping checks Redis connectivity.
func (s *CacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// FlushAll flushes all keys from the cache.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
