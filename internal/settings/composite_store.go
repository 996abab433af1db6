package settings

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// CompositeStore implements Store with fallback strategy
// Primary: usually RedisStore
// Fallback: usually FileStore (local file)
type CompositeStore struct {
	primary  Store
	fallback Store
	logger   *zap.Logger
}

// NewCompositeStore creates a new CompositeStore
func NewCompositeStore(primary, fallback Store, logger *zap.Logger) *CompositeStore {
	return &CompositeStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Get returns the record from the primary store, falling back on storage errors.
// A record missing from the primary store is looked up in the fallback too.
func (cs *CompositeStore) Get(ctx context.Context, key string) (*Record, error) {
	// Try primary first
	record, err := cs.primary.Get(ctx, key)
	if err == nil {
		return record, nil
	}

	if IsKind(err, KindNotFound) {
		cs.logger.Debug("Record not in primary store, checking fallback",
			zap.String("key", key))
	} else {
		cs.logger.Warn("Primary store failed, falling back",
			zap.String("key", key),
			zap.Error(err))
	}

	// Fallback
	return cs.fallback.Get(ctx, key)
}

// Put writes the record to the primary store and mirrors it to the fallback.
// The put succeeds if at least one of the stores accepted the record.
func (cs *CompositeStore) Put(ctx context.Context, key string, record Record) error {
	primaryErr := cs.primary.Put(ctx, key, record)
	if primaryErr != nil {
		cs.logger.Warn("Primary store failed, writing to fallback only",
			zap.String("key", key),
			zap.Error(primaryErr))
	}

	fallbackErr := cs.fallback.Put(ctx, key, record)
	if fallbackErr != nil {
		if primaryErr != nil {
			return fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", primaryErr, fallbackErr)
		}
		cs.logger.Warn("Failed to mirror record to fallback store",
			zap.String("key", key),
			zap.Error(fallbackErr))
	}

	return nil
}

// Close closes both stores where they hold connections
func (cs *CompositeStore) Close() error {
	var errs []error
	for _, store := range []Store{cs.primary, cs.fallback} {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
