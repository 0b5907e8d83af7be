// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("QUICKPOLL_API_URL", "")
	t.Setenv("QUICKPOLL_WS_URL", "")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("STORAGE_URL", "")
	t.Setenv("QUICKPOLL_CONFIG", "")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.WSURL != DefaultWSURL {
		t.Errorf("expected default WS URL, got %s", cfg.WSURL)
	}
	if cfg.StorageType != StorageSQLite {
		t.Errorf("expected sqlite storage, got %s", cfg.StorageType)
	}
	if !strings.HasSuffix(cfg.StorageURL, "quickpoll.db") {
		t.Errorf("expected sqlite file path, got %s", cfg.StorageURL)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("QUICKPOLL_API_URL", "http://localhost:8000/api")
	t.Setenv("QUICKPOLL_WS_URL", "ws://localhost:8000")
	t.Setenv("STORAGE_TYPE", "memory")
	t.Setenv("STORAGE_URL", "")
	t.Setenv("QUICKPOLL_CONFIG", "")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != "http://localhost:8000/api" {
		t.Errorf("expected env API URL, got %s", cfg.APIURL)
	}
	if cfg.StorageType != StorageMemory {
		t.Errorf("expected memory storage, got %s", cfg.StorageType)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("QUICKPOLL_API_URL", "http://env-host/api")
	t.Setenv("STORAGE_TYPE", "memory")
	t.Setenv("QUICKPOLL_CONFIG", "")

	cfg, err := ParseFlags([]string{"--api", "http://flag-host/api", "-s", "sqlite", "-d", "file:test.db"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.APIURL != "http://flag-host/api" {
		t.Errorf("CLI should override env: got %s", cfg.APIURL)
	}
	if cfg.StorageType != StorageSQLite || cfg.StorageURL != "file:test.db" {
		t.Errorf("unexpected storage config: %s %s", cfg.StorageType, cfg.StorageURL)
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	t.Setenv("QUICKPOLL_API_URL", "")
	t.Setenv("QUICKPOLL_WS_URL", "ws://env-host")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("STORAGE_URL", "")

	path := filepath.Join(t.TempDir(), "quickpoll.yaml")
	yml := "api_url: http://file-host/api\nws_url: ws://file-host\nstorage_type: redis\nstorage_url: localhost:6379\nverbose: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUICKPOLL_CONFIG", path)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != "http://file-host/api" {
		t.Errorf("expected file API URL, got %s", cfg.APIURL)
	}
	// env beats file
	if cfg.WSURL != "ws://env-host" {
		t.Errorf("expected env WS URL, got %s", cfg.WSURL)
	}
	if cfg.StorageType != StorageRedis || cfg.StorageURL != "localhost:6379" {
		t.Errorf("unexpected storage config: %s %s", cfg.StorageType, cfg.StorageURL)
	}
	if !cfg.Verbose {
		t.Error("expected verbose from config file")
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	t.Setenv("QUICKPOLL_API_URL", "")
	t.Setenv("QUICKPOLL_WS_URL", "")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("STORAGE_URL", "")
	t.Setenv("QUICKPOLL_CONFIG", "")

	tests := []struct {
		name string
		args []string
	}{
		{"bad api scheme", []string{"--api", "ftp://host"}},
		{"ws url with http scheme", []string{"--ws", "https://host"}},
		{"unknown storage", []string{"-s", "mongo"}},
		{"postgres without url", []string{"-s", "postgres"}},
		{"redis without address", []string{"-s", "redis"}},
		{"missing config file", []string{"-c", "/nonexistent/quickpoll.yaml"}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFlags(tt.args); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}
