package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileNames lists the project config files looked up by Load, in order.
var FileNames = []string{"ntmtrace.yaml", "ntmtrace.yml", "ntmtrace.json"}

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the project configuration (ntmtrace.yaml).
type Config struct {
	MaxDepth   int         `yaml:"max_depth" json:"max_depth" validate:"gte=0"`
	OutputDir  string      `yaml:"output_dir" json:"output_dir"`
	WriteFiles bool        `yaml:"write_files" json:"write_files"`
	Store      string      `yaml:"store" json:"store" validate:"oneof=memory file redis"`
	StoreDir   string      `yaml:"store_dir" json:"store_dir"`
	Redis      RedisConfig `yaml:"redis" json:"redis"`
	HTTP       HTTPConfig  `yaml:"http" json:"http"`
	Log        LogConfig   `yaml:"log" json:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" json:"-"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" validate:"required_if=Enabled true"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"`

	// Enabled is derived from Store; it is not read from the file.
	Enabled bool `yaml:"-" json:"-"`
}

type HTTPConfig struct {
	Port int `yaml:"port" json:"port" validate:"gte=0,lte=65535"`
	// DepthLimit caps max_depth in HTTP and MCP requests; 0 disables it.
	DepthLimit int `yaml:"depth_limit" json:"depth_limit" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `yaml:"json" json:"json"`
	File  string `yaml:"file" json:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MaxDepth:   100,
		OutputDir:  "output",
		WriteFiles: true,
		Store:      StoreMemory,
		StoreDir:   filepath.Join(".ntmtrace", "runs"),
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "ntmtrace:run:",
		},
		HTTP: HTTPConfig{Port: 8080, DepthLimit: 1000},
		Log:  LogConfig{Level: "info"},
	}
}

var validate = validator.New()

// Load reads the first config file found in dir. A directory without one
// yields Default(). Fields absent from the file keep their defaults.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

// LoadFile reads a YAML or JSON config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(c.Store)
	c.Redis.Enabled = c.Store == StoreRedis
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.RedisTTL(); err != nil {
		return err
	}
	return nil
}

// RedisTTL parses redis.ttl; empty means no expiration.
func (c *Config) RedisTTL() (time.Duration, error) {
	if c.Redis.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Redis.TTL)
	if err != nil {
		return 0, fmt.Errorf("redis.ttl: %w", err)
	}
	return d, nil
}
