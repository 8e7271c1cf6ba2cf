package redis

// Package redis provides Redis-based adapters for the storefront.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/onepos/storefront/internal/ports"
)

// CredentialStore persists tokens and identity fragments in Redis. It is
// the durable secret store: entries have no TTL and survive restarts,
// which is what startup reconciliation depends on.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient) *CredentialStore {
	return &CredentialStore{
		client: client,
		prefix: "credential:",
	}
}

// NewCredentialStoreWithPrefix creates a credential store with a custom key prefix.
func NewCredentialStoreWithPrefix(client redis.UniversalClient, prefix string) *CredentialStore {
	return &CredentialStore{
		client: client,
		prefix: prefix,
	}
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ports.ErrCredentialNotFound
	}

	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrCredentialNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("credential key cannot be empty")
	}
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+key).Err()
}
