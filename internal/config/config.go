// Package config loads the distributed executor's accelerator layout
// from file/environment via viper, in the style of the load/default/
// override pattern used elsewhere in the example pack.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/viper"
)

// Config is the distributed scheduler's ambient configuration.
type Config struct {
	// Accelerators maps a device name to how many logical pieces
	// (device multiplicity) it hosts, e.g. {"GPU:0": 2, "GPU:1": 2} puts
	// 4 logical pieces on 2 physical devices. D, the number of logical
	// pieces the state vector is partitioned into, is the sum of the
	// map's values (not its key count) and must be a power of two.
	Accelerators map[string]int `mapstructure:"accelerators"`

	// MemoryDevice names the accelerator used to host the merged full
	// state during Special-Gate Bridge operations.
	MemoryDevice string `mapstructure:"memory_device"`

	// DefaultShots is the measurement sample count used when a request
	// doesn't specify one.
	DefaultShots int `mapstructure:"default_shots"`

	// Workers is the configured worker pool size. The Parallel Dispatcher
	// does not read it: it always runs one goroutine per device name.
	Workers int `mapstructure:"workers"`

	// Debug toggles the HTTP server's debug logging/gin mode.
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns the scheduler's built-in defaults: a single
// two-device layout, matching the smallest valid partition (spec's
// minimum N = log2(D)+1 boundary).
func DefaultConfig() *Config {
	return &Config{
		Accelerators: map[string]int{"device0": 1, "device1": 1},
		MemoryDevice: "device0",
		DefaultShots: 1024,
		Workers:      0,
	}
}

// Load reads distributed.yaml (if present) from the given search paths,
// falling back to defaults. DIST_-prefixed environment variables override
// the fields a config file sets; DIST_MEMORY_DEVICE and DIST_DEBUG are
// applied whether or not a file is found. Without a file, no other
// environment variable is read.
func Load(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("distributed")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("DIST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: error reading config file: %w", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: error unmarshaling config: %w", err)
	}

	if md := os.Getenv("DIST_MEMORY_DEVICE"); md != "" {
		cfg.MemoryDevice = md
	}
	if dbg := os.Getenv("DIST_DEBUG"); dbg != "" {
		cfg.Debug = dbg == "true" || dbg == "1"
	}

	return cfg, nil
}

// DeviceCount returns D, the total number of logical pieces across all
// configured accelerators: the sum of Accelerators' values, not its
// number of distinct device names (a single physical device can host
// more than one logical piece).
func (c *Config) DeviceCount() int {
	d := 0
	for _, n := range c.Accelerators {
		d += n
	}
	return d
}

// DeviceNames returns the configured accelerator names in sorted order,
// giving deterministic piece-id assignment regardless of Go's
// randomized map iteration order.
func (c *Config) DeviceNames() []string {
	names := make([]string, 0, len(c.Accelerators))
	for name := range c.Accelerators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetBool looks up a named boolean setting. Only "debug" is currently
// backed by a field; any other key reports false.
func (c *Config) GetBool(key string) bool {
	if key == "debug" {
		return c.Debug
	}
	return false
}
