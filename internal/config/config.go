package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/studiowebux/studentcrud/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultBaseURL is the origin of the public student collection
	DefaultBaseURL = "https://68861e2cf52d34140f6b7041.mockapi.io"
	// DefaultResource is the collection path appended to the base URL
	DefaultResource = "crud"
	// DefaultTimeout is the HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMockAddr is where `studentcrud serve` listens
	DefaultMockAddr = "localhost:8080"
	// DefaultHistoryLimit caps how many history entries the UI loads
	DefaultHistoryLimit = 200

	// HomeEnv overrides the configuration directory
	HomeEnv = "STUDENTCRUD_HOME"
)

var (
	// ConfigDir is the global configuration directory (~/.studentcrud)
	ConfigDir string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// DatabasePath is the SQLite database for the activity history
	DatabasePath string

	// MockDatabasePath is the SQLite database used by the local mock backend
	MockDatabasePath string

	// LogFile receives structured logs while the terminal UI owns stdout
	LogFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string
)

// Config is the root configuration. Every value can come from the YAML file
// and be overridden by the environment variable named in its env tag.
type Config struct {
	API     API     `yaml:"api"`
	UI      UI      `yaml:"ui"`
	Log     Log     `yaml:"log"`
	History History `yaml:"history"`
	Mock    Mock    `yaml:"mock"`
}

// API configures the remote student collection
type API struct {
	BaseURL  string          `yaml:"base_url" env:"STUDENTCRUD_BASE_URL" env-default:"https://68861e2cf52d34140f6b7041.mockapi.io" validate:"required,url"`
	Resource string          `yaml:"resource" env:"STUDENTCRUD_RESOURCE" env-default:"crud" validate:"required"`
	Timeout  time.Duration   `yaml:"timeout" env:"STUDENTCRUD_TIMEOUT" validate:"gte=0"`
	TLS      types.TLSConfig `yaml:"tls,omitempty"`
}

// UI configures the terminal interface
type UI struct {
	// KeepStalePage disables clamping the current page after the filtered set shrinks
	KeepStalePage bool `yaml:"keep_stale_page" env:"STUDENTCRUD_KEEP_STALE_PAGE"`
}

// Log configures the file logger
type Log struct {
	Level string `yaml:"level" env:"STUDENTCRUD_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	File  string `yaml:"file,omitempty" env:"STUDENTCRUD_LOG_FILE"`
}

// History configures the local activity log of mutations
type History struct {
	Disabled bool `yaml:"disabled" env:"STUDENTCRUD_HISTORY_DISABLED"`
	// Limit caps the entries the UI loads; 0 loads every entry
	Limit    int  `yaml:"limit" env:"STUDENTCRUD_HISTORY_LIMIT" validate:"gte=0"`
}

// Mock configures the local development backend
type Mock struct {
	Addr         string `yaml:"addr" env:"STUDENTCRUD_MOCK_ADDR" env-default:"localhost:8080"`
	DatabasePath string `yaml:"database_path,omitempty" env:"STUDENTCRUD_MOCK_DB"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		API: API{
			BaseURL:  DefaultBaseURL,
			Resource: DefaultResource,
			Timeout:  DefaultTimeout,
		},
		Log: Log{
			Level: "info",
		},
		History: History{
			Limit: DefaultHistoryLimit,
		},
		Mock: Mock{
			Addr: DefaultMockAddr,
		},
	}
}

// Initialize sets up the configuration directory and files
// It creates ~/.studentcrud/ and a default config.yaml if they don't exist
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".studentcrud")
	}

	SetConfigDir(dir)

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := Save(Default(), ConfigFile); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// SetConfigDir points every global path at dir
func SetConfigDir(dir string) {
	ConfigDir = dir
	ConfigFile = filepath.Join(dir, "config.yaml")
	DatabasePath = filepath.Join(dir, "studentcrud.db")
	MockDatabasePath = filepath.Join(dir, "mock.db")
	LogFile = filepath.Join(dir, "studentcrud.log")
	KeybindsFile = filepath.Join(dir, "keybinds.json")
}

// Load reads the configuration file at path and applies environment overrides.
// An empty path falls back to ConfigFile; a missing file means defaults plus env.
// Fields where zero is meaningful (api.timeout, history.limit) are seeded from
// Default so an explicit 0 in the file or environment is kept.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFile
	}

	cfg := *Default()
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	cfg.API.Resource = strings.Trim(cfg.API.Resource, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg as YAML to path
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MockDatabase returns the database path for the mock backend
func (c *Config) MockDatabase() string {
	if c.Mock.DatabasePath != "" {
		return c.Mock.DatabasePath
	}
	return MockDatabasePath
}

// LogPath returns the file the logger writes to
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return LogFile
}
