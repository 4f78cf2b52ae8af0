// Package store persists saved card batches and generator settings in an
// encrypted zstore. Each batch and each settings value is its own
// encrypted record.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zcard/internal/card"
)

const (
	batchesCollection = "batches"
	configCollection  = "config"
	generatorKey      = "generator"
	saltFile          = "salt"
)

// configEnvelope wraps a JSON-encoded config value so heterogeneous
// settings can share one collection.
type configEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// Store holds the open zstore and its collections.
type Store struct {
	zs      *zstore.Store
	batches *zstore.Collection[card.Batch]
	configs *zstore.Collection[configEnvelope]
}

// IsFirstRun reports whether no store has been initialized in dir.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/" + saltFile)
	return err != nil
}

// Open opens or initializes the store in dir. The password slice is
// erased before Open returns. A wrong password yields an error matching
// zstore.ErrWrongPassword.
func Open(dir string, password []byte) (*Store, error) {
	defer zcrypto.Erase(password)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("open store: create data dir: %w", err)
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	zs, err := zstore.Open(fsys, password)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	batches, err := zstore.NewCollection[card.Batch](zs, batchesCollection)
	if err != nil {
		zs.Close()
		return nil, fmt.Errorf("open store: %s: %w", batchesCollection, err)
	}

	configs, err := zstore.NewCollection[configEnvelope](zs, configCollection)
	if err != nil {
		zs.Close()
		return nil, fmt.Errorf("open store: %s: %w", configCollection, err)
	}

	return &Store{zs: zs, batches: batches, configs: configs}, nil
}

// SaveBatch writes b under its ID, replacing any existing batch.
func (s *Store) SaveBatch(b card.Batch) error {
	if b.ID == "" {
		return fmt.Errorf("save batch: empty id")
	}
	if err := s.batches.Put(b.ID, b); err != nil {
		return fmt.Errorf("save batch %s: %w", b.ID, err)
	}
	return nil
}

// GetBatch returns the batch stored under id.
func (s *Store) GetBatch(id string) (card.Batch, error) {
	b, err := s.batches.Get(id)
	if err != nil {
		return card.Batch{}, fmt.Errorf("get batch %s: %w", id, err)
	}
	return b, nil
}

// ListBatches returns all saved batches, newest first.
func (s *Store) ListBatches() ([]card.Batch, error) {
	bs, err := s.batches.List()
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	// zstore does not guarantee order
	sort.Slice(bs, func(i, j int) bool {
		return bs[i].CreatedAt.After(bs[j].CreatedAt)
	})

	return bs, nil
}

// DeleteBatch removes the batch stored under id.
func (s *Store) DeleteBatch(id string) error {
	if err := s.batches.Delete(id); err != nil {
		return fmt.Errorf("delete batch %s: %w", id, err)
	}
	return nil
}

// LoadConfig returns the stored generator config. A missing or invalid
// value yields card.DefaultConfig.
func (s *Store) LoadConfig() card.Config {
	cfg, err := loadConfig[card.Config](s.configs, generatorKey)
	if err != nil || cfg.Validate() != nil {
		return card.DefaultConfig()
	}
	return cfg
}

// SaveConfig validates and persists the generator config.
func (s *Store) SaveConfig(cfg card.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := saveConfig(s.configs, generatorKey, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Close closes the underlying zstore and drops its key.
func (s *Store) Close() {
	s.zs.Close()
}

// loadConfig reads a typed config from the envelope collection.
func loadConfig[T any](col *zstore.Collection[configEnvelope], key string) (T, error) {
	var v T

	env, err := col.Get(key)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return v, nil
}

// saveConfig persists a typed config into the envelope collection.
func saveConfig[T any](col *zstore.Collection[configEnvelope], key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return col.Put(key, configEnvelope{Data: data})
}
