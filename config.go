package lfsdfs

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Default engine geometry, matching a 1 MiB flash region of 4 KiB sectors.
const (
	DefaultBlockSize  = 4096
	DefaultBlockCount = 256
)

// Config holds the storage engine configuration.
type Config struct {
	// Type is the driver name: "local", "billy", "absfs", "rclone", etc.
	Type string `json:"type" yaml:"type"`

	// BasePath is the root directory (or rclone remote) backing the engine.
	// An empty BasePath selects an in-memory backend where the driver has one.
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`

	// BlockSize and BlockCount describe the emulated flash geometry.
	// Zero selects DefaultBlockSize and DefaultBlockCount.
	BlockSize  uint32 `json:"blockSize,omitempty" yaml:"blockSize,omitempty"`
	BlockCount uint32 `json:"blockCount,omitempty" yaml:"blockCount,omitempty"`

	// Options holds driver-specific configuration.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Geometry returns the configured block size and count with defaults applied.
func (c *Config) Geometry() (blockSize, blockCount uint32) {
	blockSize, blockCount = c.BlockSize, c.BlockCount
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if blockCount == 0 {
		blockCount = DefaultBlockCount
	}
	return blockSize, blockCount
}

// StringOption returns Options[key] if it is a string.
func (c *Config) StringOption(key string) (string, bool) {
	v, ok := c.Options[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ParseConfig decodes a YAML engine configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("lfsdfs: parse config: %w", err)
	}
	if cfg.Type == "" {
		return nil, fmt.Errorf("lfsdfs: config has no driver type")
	}
	return &cfg, nil
}

// LoadConfig reads and decodes the YAML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lfsdfs: read config: %w", err)
	}
	return ParseConfig(data)
}

// Factory is a function that creates an [Engine] from a [Config].
type Factory func(cfg *Config) (Engine, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes an engine driver available by the provided name.
// This is typically called from the driver package's init() function.
// It panics if called twice with the same name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("lfsdfs: driver %q already registered", name))
	}
	factories[name] = factory
}

// Drivers returns a sorted list of all registered driver names.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List is an alias for [Drivers].
func List() []string {
	return Drivers()
}

// Open creates a new [Engine] using the registered driver specified in cfg.Type.
func Open(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lfsdfs: config must not be nil")
	}

	mu.RLock()
	factory, ok := factories[cfg.Type]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("lfsdfs: unknown driver %q (forgotten import?)", cfg.Type)
	}

	return factory(cfg)
}

// MustOpen is like [Open] but panics on error.
func MustOpen(cfg *Config) Engine {
	engine, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}
