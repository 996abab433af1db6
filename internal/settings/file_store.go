package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// FileStore implements Store using a local JSON document file.
// All records live in one file as a key → record object.
type FileStore struct {
	filePath string
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewFileStore creates a new FileStore instance
func NewFileStore(filePath string, logger *zap.Logger) *FileStore {
	return &FileStore{
		filePath: filePath,
		logger:   logger,
	}
}

// Path returns the backing file path
func (fs *FileStore) Path() string {
	return fs.filePath
}

// Get returns the record stored under key
func (fs *FileStore) Get(ctx context.Context, key string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	docs, err := fs.load()
	if err != nil {
		return nil, err
	}

	raw, ok := docs[key]
	if !ok {
		return nil, notFound("filestore.get", key)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return nil, &OpError{Op: "filestore.get", Kind: KindInvalidRecord, Key: key, Err: err}
	}
	return record, nil
}

// Put replaces the record stored under key, keeping other records intact
func (fs *FileStore) Put(ctx context.Context, key string, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	docs, err := fs.load()
	if err != nil {
		if !IsKind(err, KindInvalidRecord) {
			return err
		}
		fs.logger.Warn("Settings file is corrupted, rewriting it",
			zap.String("file", fs.filePath),
			zap.Error(err))
		docs = make(map[string]json.RawMessage)
	}

	raw, err := encodeRecord(record)
	if err != nil {
		return &OpError{Op: "filestore.put", Kind: KindInvalidRecord, Key: key, Err: err}
	}
	docs[key] = raw

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return &OpError{Op: "filestore.put", Kind: KindStorage, Key: key, Err: err}
	}

	if err := fs.write(data); err != nil {
		return &OpError{Op: "filestore.put", Kind: KindStorage, Key: key, Err: err}
	}

	fs.logger.Debug("Settings record saved",
		zap.String("file", fs.filePath),
		zap.String("key", key))

	return nil
}

func (fs *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist yet - will be created on first put
			return make(map[string]json.RawMessage), nil
		}
		return nil, &OpError{Op: "filestore.read", Kind: KindStorage, Err: err}
	}

	docs := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, &OpError{
			Op:   "filestore.read",
			Kind: KindInvalidRecord,
			Err:  fmt.Errorf("%w: %v", ErrInvalidRecord, err),
		}
	}
	return docs, nil
}

// write replaces the file through a temporary file and a rename
func (fs *FileStore) write(data []byte) error {
	if dir := filepath.Dir(fs.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings dir: %w", err)
		}
	}

	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, fs.filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
