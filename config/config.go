// Package config loads the tile pipeline's tunables from the environment,
// in the style of cyto-viewer's internal/config: a struct of typed fields
// with defaults, populated by small getEnv*/defaultValue helpers. No config
// file format or flag library is introduced — nothing in the retrieval pack
// uses one.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every tunable of the tile delivery pipeline: cache
// capacities, worker pool sizing, and the on-disk tile store root.
type Config struct {
	BitmapCache  CacheConfig
	TextureCache CacheConfig
	Workers      WorkerConfig
	Store        StoreConfig
}

// CacheConfig sizes one of the two cache.Cache instances.
type CacheConfig struct {
	Capacity int
}

// WorkerConfig sizes the worker pool that procures tiles.
type WorkerConfig struct {
	NumWorkers    int
	QueueCapacity int
}

// StoreConfig points at the on-disk tile tree.
type StoreConfig struct {
	Root string
}

// Load reads Config from the environment, applying the defaults below for
// anything unset or unparsable.
func Load() (*Config, error) {
	cfg := &Config{
		BitmapCache: CacheConfig{
			Capacity: getEnvInt("SLIPPYMAP_BITMAP_CACHE_CAPACITY", 512),
		},
		TextureCache: CacheConfig{
			Capacity: getEnvInt("SLIPPYMAP_TEXTURE_CACHE_CAPACITY", 256),
		},
		Workers: WorkerConfig{
			NumWorkers:    getEnvInt("SLIPPYMAP_WORKER_COUNT", 4),
			QueueCapacity: getEnvInt("SLIPPYMAP_WORKER_QUEUE_CAPACITY", 64),
		},
		Store: StoreConfig{
			Root: getEnv("SLIPPYMAP_TILE_STORE_ROOT", "./tiles"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.BitmapCache.Capacity < 1 {
		return fmt.Errorf("bitmap cache capacity must be >= 1, got %d", c.BitmapCache.Capacity)
	}
	if c.TextureCache.Capacity < 1 {
		return fmt.Errorf("texture cache capacity must be >= 1, got %d", c.TextureCache.Capacity)
	}
	if c.Workers.NumWorkers < 1 {
		return fmt.Errorf("worker count must be >= 1, got %d", c.Workers.NumWorkers)
	}
	if c.Workers.QueueCapacity < 1 {
		return fmt.Errorf("worker queue capacity must be >= 1, got %d", c.Workers.QueueCapacity)
	}
	if c.Store.Root == "" {
		return fmt.Errorf("tile store root must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
