package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Upload   UploadConfig   `toml:"upload"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Pages    PagesConfig    `toml:"pages"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	OpenBrowser bool   `toml:"open_browser"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UploadConfig contains settings shared by the upload client and the upload endpoint.
type UploadConfig struct {
	Endpoint          string   `toml:"endpoint"`
	Path              string   `toml:"path"`
	TimeoutMS         int      `toml:"timeout_ms"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	MaxMemoryMB       int64    `toml:"max_memory_mb"`
	MaxSizeMB         int64    `toml:"max_size_mb"`
	ProgressHz        float64  `toml:"progress_hz"`
}

// URL joins the endpoint and path into the fixed upload URL.
func (u UploadConfig) URL() string {
	return strings.TrimRight(u.Endpoint, "/") + "/" + strings.TrimLeft(u.Path, "/")
}

// Timeout returns the request timeout, falling back to 60 seconds.
func (u UploadConfig) Timeout() time.Duration {
	if u.TimeoutMS <= 0 {
		return 60 * time.Second
	}
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

// MaxMemory returns the multipart in-memory threshold in bytes.
func (u UploadConfig) MaxMemory() int64 {
	if u.MaxMemoryMB <= 0 {
		return 32 << 20
	}
	return u.MaxMemoryMB << 20
}

// MaxSize returns the largest accepted request body in bytes.
func (u UploadConfig) MaxSize() int64 {
	if u.MaxSizeMB <= 0 {
		return 64 << 20
	}
	return u.MaxSizeMB << 20
}

// StorageConfig contains the upload storage location.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PagesConfig points at content rendered by the page handlers.
type PagesConfig struct {
	Readme string `toml:"readme"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the process environment.
//
// Missing files are not an error; variables already set are left untouched.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values with MSX_* environment variables.
func ApplyEnv(c *Config) error {
	if v := os.Getenv("MSX_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MSX_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MSX_SERVER_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MSX_UPLOAD_ENDPOINT"); v != "" {
		c.Upload.Endpoint = v
	}
	if v := os.Getenv("MSX_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("MSX_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	return nil
}
