package partnerauth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps issued partner tokens in Redis so logins can be revoked
// server-side before the JWT expiry.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) tokenKey(partnerID string) string {
	return fmt.Sprintf("partner:token:%s", partnerID)
}

// Save records the active token for a partner with the token TTL.
func (s *Store) Save(ctx context.Context, partnerID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.tokenKey(partnerID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store partner token: %w", err)
	}
	return nil
}

// IsActive reports whether the presented token is the one on record.
func (s *Store) IsActive(ctx context.Context, partnerID, token string) (bool, error) {
	stored, err := s.client.Get(ctx, s.tokenKey(partnerID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read partner token: %w", err)
	}
	return stored == token, nil
}

// Revoke drops the active token for a partner.
func (s *Store) Revoke(ctx context.Context, partnerID string) error {
	return s.client.Del(ctx, s.tokenKey(partnerID)).Err()
}
