package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BitmapCache.Capacity != 512 {
		t.Errorf("BitmapCache.Capacity = %d, want 512", cfg.BitmapCache.Capacity)
	}
	if cfg.TextureCache.Capacity != 256 {
		t.Errorf("TextureCache.Capacity = %d, want 256", cfg.TextureCache.Capacity)
	}
	if cfg.Workers.NumWorkers != 4 {
		t.Errorf("Workers.NumWorkers = %d, want 4", cfg.Workers.NumWorkers)
	}
	if cfg.Workers.QueueCapacity != 64 {
		t.Errorf("Workers.QueueCapacity = %d, want 64", cfg.Workers.QueueCapacity)
	}
	if cfg.Store.Root != "./tiles" {
		t.Errorf("Store.Root = %q, want %q", cfg.Store.Root, "./tiles")
	}
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("SLIPPYMAP_BITMAP_CACHE_CAPACITY", "1000")
	t.Setenv("SLIPPYMAP_WORKER_COUNT", "8")
	t.Setenv("SLIPPYMAP_TILE_STORE_ROOT", "/var/tiles")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BitmapCache.Capacity != 1000 {
		t.Errorf("BitmapCache.Capacity = %d, want 1000", cfg.BitmapCache.Capacity)
	}
	if cfg.Workers.NumWorkers != 8 {
		t.Errorf("Workers.NumWorkers = %d, want 8", cfg.Workers.NumWorkers)
	}
	if cfg.Store.Root != "/var/tiles" {
		t.Errorf("Store.Root = %q, want %q", cfg.Store.Root, "/var/tiles")
	}
}

func TestLoadRejectsInvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero bitmap capacity", "SLIPPYMAP_BITMAP_CACHE_CAPACITY", "0"},
		{"negative texture capacity", "SLIPPYMAP_TEXTURE_CACHE_CAPACITY", "-1"},
		{"zero worker count", "SLIPPYMAP_WORKER_COUNT", "0"},
		{"zero queue capacity", "SLIPPYMAP_WORKER_QUEUE_CAPACITY", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatal("Load() error = nil, want error for invalid override")
			}
		})
	}
}

func TestValidateRejectsEmptyStoreRoot(t *testing.T) {
	cfg := &Config{
		BitmapCache:  CacheConfig{Capacity: 1},
		TextureCache: CacheConfig{Capacity: 1},
		Workers:      WorkerConfig{NumWorkers: 1, QueueCapacity: 1},
		Store:        StoreConfig{Root: ""},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for empty store root")
	}
}
