package cliparse

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL = "https://quickpoll-backend-production.up.railway.app/api"
	DefaultWSURL  = "wss://quickpoll-backend-production.up.railway.app"
)

// Storage backends for the persisted session
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

var StorageTypes = []string{StorageSQLite, StoragePostgres, StorageRedis, StorageMemory}

type Config struct {
	APIURL      string `yaml:"api_url"`
	WSURL       string `yaml:"ws_url"`
	StorageType string `yaml:"storage_type"`
	StorageURL  string `yaml:"storage_url"`
	Verbose     bool   `yaml:"verbose"`
	ConfigFile  string `yaml:"-"`
}

// RegisterFlags binds the global flags onto fs. Values left empty are
// filled in by Resolve.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.APIURL, "api", "", "Backend API base URL")
	fs.StringVar(&cfg.WSURL, "ws", "", "Live channel base URL")
	fs.StringVarP(&cfg.StorageType, "storage", "s", "", "Session storage (sqlite, postgres, redis, memory)")
	fs.StringVarP(&cfg.StorageURL, "storage-url", "d", "", "Session storage location (file, DSN or redis address)")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", "", "YAML config file")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Debug logging")
}

// ParseFlags parses args and resolves the result
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("quickpoll", pflag.ContinueOnError)
	RegisterFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return Resolve(cfg)
}

// Resolve fills unset fields from the environment, a .env file, the YAML
// config file and finally defaults, in that order, then validates.
func Resolve(cfg Config) (Config, error) {
	// A missing .env is fine; godotenv never overrides real env vars.
	_ = godotenv.Load()

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = os.Getenv("QUICKPOLL_CONFIG")
	}

	var file Config
	if cfg.ConfigFile != "" {
		data, err := os.ReadFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.APIURL = firstNonEmpty(cfg.APIURL, os.Getenv("QUICKPOLL_API_URL"), file.APIURL, DefaultAPIURL)
	cfg.WSURL = firstNonEmpty(cfg.WSURL, os.Getenv("QUICKPOLL_WS_URL"), file.WSURL, DefaultWSURL)
	cfg.StorageType = firstNonEmpty(cfg.StorageType, os.Getenv("STORAGE_TYPE"), file.StorageType, StorageSQLite)
	cfg.StorageURL = firstNonEmpty(cfg.StorageURL, os.Getenv("STORAGE_URL"), file.StorageURL)
	if !cfg.Verbose {
		cfg.Verbose = file.Verbose
	}

	if err := checkURL(cfg.APIURL, "http", "https"); err != nil {
		return Config{}, fmt.Errorf("invalid API URL: %w", err)
	}
	if err := checkURL(cfg.WSURL, "ws", "wss"); err != nil {
		return Config{}, fmt.Errorf("invalid live channel URL: %w", err)
	}

	if !slices.Contains(StorageTypes, cfg.StorageType) {
		return Config{}, fmt.Errorf("invalid storage type %q: must be one of %v", cfg.StorageType, StorageTypes)
	}

	if cfg.StorageURL == "" {
		switch cfg.StorageType {
		case StorageSQLite:
			cfg.StorageURL = defaultSQLitePath()
		case StoragePostgres:
			return Config{}, errors.New("postgres storage requires a URL (use -d or STORAGE_URL env)")
		case StorageRedis:
			return Config{}, errors.New("redis storage requires an address (use -d or STORAGE_URL env)")
		}
	}

	return cfg, nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Errorf("scheme %q not one of %v", u.Scheme, schemes)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quickpoll.db"
	}
	return filepath.Join(dir, "quickpoll", "quickpoll.db")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
