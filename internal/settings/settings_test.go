package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/weekends-helper/internal/calendar"
	"github.com/username/weekends-helper/pkg/dateutil"
	"go.uber.org/zap"
)

// memStore is an in-memory Store with injectable failures
type memStore struct {
	mu      sync.Mutex
	records map[string]Record
	getErr  error
	putErr  error
	puts    int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (s *memStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	r, ok := s.records[key]
	if !ok {
		return nil, notFound("memstore.get", key)
	}
	return &r, nil
}

func (s *memStore) Put(_ context.Context, key string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.records[key] = record
	s.puts++
	return nil
}

var (
	fixedNow  = func() time.Time { return time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC) }
	fixedDate = dateutil.New(2025, time.August, 2)
)

func storageErr(op string) error {
	return &OpError{Op: op, Kind: KindStorage, Err: errors.New("connection refused")}
}

func TestManager_LoadWithoutRecordStoresDefaults(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, zap.NewNop(), WithNow(fixedNow))

	require.NoError(t, m.Load(context.Background()))

	assert.Equal(t, DefaultFirstSingleWeek, m.Current().FirstSingleWeek)
	assert.Equal(t, SchemaVersion, m.Current().Version)

	saved := store.records[ConfigKey]
	assert.Equal(t, DefaultFirstSingleWeek, saved.FirstSingleWeek)
	assert.Equal(t, SchemaVersion, saved.Version)
	assert.Equal(t, "2025-08-01T09:30:00Z", saved.LastUpdated)
}

func TestManager_LoadMatchingVersion(t *testing.T) {
	store := newMemStore()
	store.records[ConfigKey] = Record{FirstSingleWeek: "2024-01-08", Version: SchemaVersion, LastUpdated: "2024-01-08T10:00:00.000Z"}
	m := NewManager(store, zap.NewNop())

	require.NoError(t, m.Load(context.Background()))

	assert.Equal(t, "2024-01-08", m.Current().FirstSingleWeek)
	assert.Zero(t, store.puts, "matching record must not be rewritten")
}

func TestManager_LoadVersionMismatchResets(t *testing.T) {
	store := newMemStore()
	store.records[ConfigKey] = Record{FirstSingleWeek: "2024-01-08", Version: "1.0.0"}
	m := NewManager(store, zap.NewNop(), WithNow(fixedNow))

	require.NoError(t, m.Load(context.Background()))

	assert.Equal(t, DefaultFirstSingleWeek, m.Current().FirstSingleWeek)
	assert.Equal(t, SchemaVersion, store.records[ConfigKey].Version)
	assert.Equal(t, DefaultFirstSingleWeek, store.records[ConfigKey].FirstSingleWeek)
}

func TestManager_LoadEmptyAnchorUsesDefault(t *testing.T) {
	store := newMemStore()
	store.records[ConfigKey] = Record{Version: SchemaVersion}
	m := NewManager(store, zap.NewNop())

	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, DefaultFirstSingleWeek, m.Current().FirstSingleWeek)
}

func TestManager_LoadFailureKeepsDefaults(t *testing.T) {
	store := newMemStore()
	store.getErr = storageErr("memstore.get")
	m := NewManager(store, zap.NewNop())

	err := m.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))
	assert.Equal(t, DefaultFirstSingleWeek, m.Current().FirstSingleWeek)
}

func TestManager_LoadFailureKeepsLastSnapshot(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, zap.NewNop())
	ctx := context.Background()

	_, err := m.Save(ctx, "2025-08-04")
	require.NoError(t, err)

	store.getErr = storageErr("memstore.get")
	err = m.Load(ctx)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))
	assert.Equal(t, "2025-08-04", m.Current().FirstSingleWeek)
	assert.Equal(t, calendar.WeekTypeSingle, m.Classifier().WeekType(dateutil.New(2025, time.August, 9)))
}

func TestManager_LoadInvalidRecordStillLoads(t *testing.T) {
	store := newMemStore()
	store.records[ConfigKey] = Record{FirstSingleWeek: "someday", Version: SchemaVersion}
	m := NewManager(store, zap.NewNop())

	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, "someday", m.Current().FirstSingleWeek)
}

func TestManager_Save(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, zap.NewNop(), WithNow(fixedNow))

	cfg, err := m.Save(context.Background(), " 2025-9-1 ")
	require.NoError(t, err)

	assert.Equal(t, "2025-09-01", cfg.FirstSingleWeek)
	assert.Equal(t, cfg, m.Current())
	assert.Equal(t, Record{
		FirstSingleWeek: "2025-09-01",
		Version:         SchemaVersion,
		LastUpdated:     "2025-08-01T09:30:00Z",
	}, store.records[ConfigKey])
}

func TestManager_SaveRejectsEmptyAndMalformed(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, zap.NewNop())
	before := m.Current()

	_, err := m.Save(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrAnchorRequired)

	_, err = m.Save(context.Background(), "next monday")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	assert.Equal(t, before, m.Current())
	assert.Empty(t, store.records)
}

func TestManager_SaveFailureKeepsSnapshot(t *testing.T) {
	store := newMemStore()
	store.putErr = storageErr("memstore.put")
	m := NewManager(store, zap.NewNop())

	_, err := m.Save(context.Background(), "2025-09-01")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))
	assert.Equal(t, DefaultFirstSingleWeek, m.Current().FirstSingleWeek)
}

func TestManager_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cfg := m.Current()
				if cfg.Version != SchemaVersion {
					t.Errorf("torn snapshot: %+v", cfg)
					return
				}
				_ = m.Classifier().WeekType(fixedDate)
			}
		}()
	}

	for _, d := range []string{"2025-09-01", "2025-09-08", "2025-09-15"} {
		_, err := m.Save(context.Background(), d)
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	fs := NewFileStore(path, zap.NewNop())
	ctx := context.Background()

	_, err := fs.Get(ctx, ConfigKey)
	require.ErrorIs(t, err, ErrNotFound)

	record := Record{FirstSingleWeek: "2025-07-28", Version: SchemaVersion, LastUpdated: "2025-07-28T00:00:00Z"}
	require.NoError(t, fs.Put(ctx, ConfigKey, record))
	require.NoError(t, fs.Put(ctx, "other", Record{FirstSingleWeek: "2020-01-06", Version: "x"}))

	got, err := fs.Get(ctx, ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, record, *got)

	// Other keys survive a rewrite
	other, err := fs.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "2020-01-06", other.FirstSingleWeek)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")
}

func TestFileStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	fs := NewFileStore(path, zap.NewNop())
	ctx := context.Background()

	_, err := fs.Get(ctx, ConfigKey)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidRecord))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	// Put recovers by rewriting the file
	require.NoError(t, fs.Put(ctx, ConfigKey, Record{FirstSingleWeek: "2025-07-28", Version: SchemaVersion}))
	got, err := fs.Get(ctx, ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-28", got.FirstSingleWeek)
}

func TestFileStore_ReadsMillisecondTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	doc := `{"weekends_config": {"firstSingleWeek": "2025-07-28", "version": "1.0.1", "lastUpdated": "2025-07-28T08:00:00.000Z"}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	got, err := NewFileStore(path, zap.NewNop()).Get(context.Background(), ConfigKey)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, "2025-07-28T08:00:00.000Z", got.LastUpdated)
}

func TestFileStore_CanceledContext(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "settings.json"), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Get(ctx, ConfigKey)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, fs.Put(ctx, ConfigKey, Record{}), context.Canceled)
}

func TestCompositeStore_FallbackOnPrimaryFailure(t *testing.T) {
	primary := newMemStore()
	fallback := newMemStore()
	cs := NewCompositeStore(primary, fallback, zap.NewNop())
	ctx := context.Background()

	record := Record{FirstSingleWeek: "2025-07-28", Version: SchemaVersion}
	require.NoError(t, cs.Put(ctx, ConfigKey, record))
	assert.Equal(t, record, primary.records[ConfigKey])
	assert.Equal(t, record, fallback.records[ConfigKey], "fallback must mirror the primary")

	primary.getErr = storageErr("memstore.get")
	got, err := cs.Get(ctx, ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, record, *got)
}

func TestCompositeStore_MissingInPrimary(t *testing.T) {
	primary := newMemStore()
	fallback := newMemStore()
	fallback.records[ConfigKey] = Record{FirstSingleWeek: "2024-12-30", Version: SchemaVersion}
	cs := NewCompositeStore(primary, fallback, zap.NewNop())

	got, err := cs.Get(context.Background(), ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-30", got.FirstSingleWeek)
}

func TestCompositeStore_PutFailures(t *testing.T) {
	primary := newMemStore()
	fallback := newMemStore()
	cs := NewCompositeStore(primary, fallback, zap.NewNop())
	ctx := context.Background()
	record := Record{FirstSingleWeek: "2025-07-28", Version: SchemaVersion}

	primary.putErr = storageErr("memstore.put")
	require.NoError(t, cs.Put(ctx, ConfigKey, record), "fallback alone is enough")

	fallback.putErr = storageErr("memstore.put")
	err := cs.Put(ctx, ConfigKey, record)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := NewRedisClient(RedisOptions{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	defer client.Close()
	rs := NewRedisStore(client, "", zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := rs.Get(ctx, ConfigKey)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))

	err = rs.Put(ctx, ConfigKey, Record{FirstSingleWeek: "2025-07-28", Version: SchemaVersion})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStorage))
}

func TestRedisStore_Close(t *testing.T) {
	rs := NewRedisStore(NewRedisClient(RedisOptions{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond}), "", zap.NewNop())

	require.NoError(t, rs.Close())

	_, err := rs.Get(context.Background(), ConfigKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.ErrClosed)
}

type closingStore struct {
	*memStore
	closed int
}

func (s *closingStore) Close() error {
	s.closed++
	return nil
}

func TestCompositeStore_Close(t *testing.T) {
	primary := &closingStore{memStore: newMemStore()}
	cs := NewCompositeStore(primary, newMemStore(), zap.NewNop())

	require.NoError(t, cs.Close())
	assert.Equal(t, 1, primary.closed)
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"valid", Record{FirstSingleWeek: "2025-07-28", Version: "1.0.1", LastUpdated: "2025-07-28T00:00:00Z"}, false},
		{"no timestamp", Record{FirstSingleWeek: "2025-07-28", Version: "1.0.1"}, false},
		{"missing anchor", Record{Version: "1.0.1"}, true},
		{"unpadded anchor", Record{FirstSingleWeek: "2025-7-28", Version: "1.0.1"}, true},
		{"missing version", Record{FirstSingleWeek: "2025-07-28"}, true},
		{"bad timestamp", Record{FirstSingleWeek: "2025-07-28", Version: "1.0.1", LastUpdated: "yesterday"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpError(t *testing.T) {
	err := &OpError{Op: "filestore.get", Kind: KindNotFound, Key: ConfigKey, Err: ErrNotFound}

	assert.Equal(t, "filestore.get: not_found (key=weekends_config): record not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}
