package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./msx.db" {
			t.Errorf("expected database path ./msx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Upload.TimeoutMS != 60000 {
			t.Errorf("expected upload timeout 60000, got %d", config.Upload.TimeoutMS)
		}

		if len(config.Upload.AllowedExtensions) != 1 || config.Upload.AllowedExtensions[0] != ".docx" {
			t.Errorf("expected allowed extensions [.docx], got %v", config.Upload.AllowedExtensions)
		}
	})

	t.Run("Upload helpers", func(t *testing.T) {
		u := UploadConfig{Endpoint: "http://localhost:3000/", Path: "/upload"}
		if got := u.URL(); got != "http://localhost:3000/upload" {
			t.Errorf("URL() = %s, want http://localhost:3000/upload", got)
		}
		if got := u.Timeout(); got != 60*time.Second {
			t.Errorf("Timeout() = %v, want 60s", got)
		}

		u.TimeoutMS = 1500
		if got := u.Timeout(); got != 1500*time.Millisecond {
			t.Errorf("Timeout() = %v, want 1.5s", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[upload]
endpoint = "http://example.com"
timeout_ms = 5000
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Upload.Path != "/upload" {
			t.Errorf("expected default upload path to survive, got %s", config.Upload.Path)
		}
		if config.Upload.TimeoutMS != 5000 {
			t.Errorf("expected timeout 5000, got %d", config.Upload.TimeoutMS)
		}
	})

	t.Run("LoadConfig with invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("MSX_SERVER_PORT", "9090")
		t.Setenv("MSX_STORAGE_DIR", "/tmp/msx-uploads")
		t.Setenv("MSX_UPLOAD_ENDPOINT", "http://upload.local")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
		if config.Storage.Dir != "/tmp/msx-uploads" {
			t.Errorf("expected storage dir override, got %s", config.Storage.Dir)
		}
		if config.Upload.Endpoint != "http://upload.local" {
			t.Errorf("expected endpoint override, got %s", config.Upload.Endpoint)
		}
	})

	t.Run("ApplyEnv rejects non-numeric port", func(t *testing.T) {
		t.Setenv("MSX_SERVER_PORT", "eighty")

		if err := ApplyEnv(DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadEnv ignores missing files", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("LoadEnv() error = %v", err)
		}
	})

	t.Run("LoadEnv reads dotenv file", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("MSX_DATABASE_PATH=/tmp/from-env.db\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("MSX_DATABASE_PATH", "")
		os.Unsetenv("MSX_DATABASE_PATH")

		if err := LoadEnv(envPath); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}
		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if config.Database.Path != "/tmp/from-env.db" {
			t.Errorf("expected database path from env file, got %s", config.Database.Path)
		}
	})
}
