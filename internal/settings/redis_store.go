package settings

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisPrefix = "weekends-helper:"

// RedisStore implements Store on top of a redis string key per record
type RedisStore struct {
	client redis.Cmdable
	prefix string
	logger *zap.Logger
}

// RedisOptions configures NewRedisClient
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// NewRedisClient creates a go-redis client for the settings store
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
}

// NewRedisStore creates a new RedisStore. An empty prefix uses the default one.
func NewRedisStore(client redis.Cmdable, prefix string, logger *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Get returns the record stored under key
func (rs *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := rs.client.Get(ctx, rs.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound("redisstore.get", key)
		}
		return nil, &OpError{Op: "redisstore.get", Kind: KindStorage, Key: key, Err: err}
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, &OpError{Op: "redisstore.get", Kind: KindInvalidRecord, Key: key, Err: err}
	}
	return record, nil
}

// Put replaces the record stored under key
func (rs *RedisStore) Put(ctx context.Context, key string, record Record) error {
	data, err := encodeRecord(record)
	if err != nil {
		return &OpError{Op: "redisstore.put", Kind: KindInvalidRecord, Key: key, Err: err}
	}

	if err := rs.client.Set(ctx, rs.prefix+key, data, 0).Err(); err != nil {
		return &OpError{Op: "redisstore.put", Kind: KindStorage, Key: key, Err: err}
	}

	rs.logger.Debug("Settings record saved to redis",
		zap.String("key", rs.prefix+key))

	return nil
}

// Close closes the underlying client if it can be closed
func (rs *RedisStore) Close() error {
	if c, ok := rs.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
