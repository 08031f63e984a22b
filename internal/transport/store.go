package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/models"
)

// Store keeps results in Redis for a limited time and hands out opaque tokens for them.
type Store struct {
	client   redis.Cmdable
	ttl      time.Duration
	prefix   string
	newToken func() string
}

func NewStore(client redis.Cmdable, ttl time.Duration, prefix string) *Store {
	return &Store{
		client:   client,
		ttl:      ttl,
		prefix:   prefix,
		newToken: uuid.NewString,
	}
}

// Save stores result and returns its token.
func (s *Store) Save(ctx context.Context, result *models.PlanResult) (string, error) {
	if result == nil {
		return "", apperrors.NewResultStoreError("save", fmt.Errorf("nil plan result"))
	}
	payload := *result
	payload.EnsureRecommendations()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewResultStoreError("save", err)
	}

	token := s.newToken()
	if err := s.client.Set(ctx, s.key(token), data, s.ttl).Err(); err != nil {
		return "", apperrors.NewResultStoreError("save", err)
	}
	return token, nil
}

// Load returns the result for token. Unknown or expired tokens are NO_PAYLOAD;
// malformed tokens and corrupt values are PAYLOAD_DECODE_FAILED.
func (s *Store) Load(ctx context.Context, token string) (*models.PlanResult, error) {
	if token == "" {
		return nil, apperrors.NewNoPayloadError("token is empty")
	}
	if _, err := uuid.Parse(token); err != nil {
		return nil, apperrors.NewPayloadDecodeError(fmt.Errorf("invalid token: %w", err))
	}

	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewNoPayloadError("result expired or unknown")
	}
	if err != nil {
		return nil, apperrors.NewResultStoreError("load", err)
	}
	return decodeJSON(data)
}

// Ping reports whether the backing Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(token string) string {
	return s.prefix + token
}
