package oauth2

import (
	"context"
	stderrors "errors"
	"time"

	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/redis"
)

const (
	// DefaultRedisKey is where the session blob lives in Redis
	DefaultRedisKey = "hubspot:oauth2:token"
	// DefaultRedisTTL bounds how long an abandoned session survives
	DefaultRedisTTL = 30 * 24 * time.Hour
)

// RedisInterface is the subset of the Redis client the repository needs
type RedisInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RepositoryOption configures a persistent repository
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	key       string
	ttl       time.Duration
	encryptor Encryptor
}

// WithEncryptor encrypts the stored blob
func WithEncryptor(encryptor Encryptor) RepositoryOption {
	return func(o *repositoryOptions) {
		o.encryptor = encryptor
	}
}

// WithKey overrides the storage key
func WithKey(key string) RepositoryOption {
	return func(o *repositoryOptions) {
		o.key = key
	}
}

// WithTTL overrides the Redis expiration
func WithTTL(ttl time.Duration) RepositoryOption {
	return func(o *repositoryOptions) {
		o.ttl = ttl
	}
}

// RedisRepository shares the token state between instances through Redis
type RedisRepository struct {
	client RedisInterface
	key    string
	ttl    time.Duration
	codec  blobCodec
}

// NewRedisRepository creates a Redis-backed repository
func NewRedisRepository(client RedisInterface, opts ...RepositoryOption) *RedisRepository {
	options := repositoryOptions{key: DefaultRedisKey, ttl: DefaultRedisTTL}
	for _, opt := range opts {
		opt(&options)
	}
	return &RedisRepository{
		client: client,
		key:    options.key,
		ttl:    options.ttl,
		codec:  blobCodec{encryptor: options.encryptor},
	}
}

// Load reads the state, returning nil when the key is missing
func (r *RedisRepository) Load(ctx context.Context) (*TokenState, error) {
	blob, err := r.client.Get(ctx, r.key)
	if err != nil {
		if stderrors.Is(err, redis.ErrNil) {
			return nil, nil
		}
		return nil, errors.ConnectionError("failed to load token from redis", err)
	}
	return r.codec.decode(blob)
}

// Save writes the state with the configured TTL
func (r *RedisRepository) Save(ctx context.Context, state *TokenState) error {
	blob, err := r.codec.encode(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, blob, r.ttl); err != nil {
		return errors.ConnectionError("failed to save token to redis", err)
	}
	return nil
}

// Clear deletes the key
func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.client.Delete(ctx, r.key); err != nil {
		return errors.ConnectionError("failed to delete token from redis", err)
	}
	return nil
}
