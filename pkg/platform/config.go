package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in StorageConfig.Backend.
const (
	BackendMemory     = "memory"
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Config is the application configuration.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig configures the text-generation service.
type GeneratorConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Timeout     string  `yaml:"timeout"`
	Temperature float32 `yaml:"temperature"`
}

// StorageConfig selects and configures the catalog backend.
type StorageConfig struct {
	Backend     string           `yaml:"backend"`
	SQLitePath  string           `yaml:"sqlite_path"`
	PostgresDSN string           `yaml:"postgres_dsn"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
}

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns defaults for a single-user local install.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     "60s",
			Temperature: 0.2,
		},
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			SQLitePath: "data/smartpricing.db",
			ClickHouse: ClickHouseConfig{
				Host:     "localhost",
				Port:     9000,
				Database: "smartpricing",
				Username: "default",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file, then applies .env and
// environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if key := GetEnv("GEMINI_API_KEY", ""); key != "" {
		c.Generator.APIKey = key
	} else if key := GetEnv("API_KEY", ""); key != "" {
		c.Generator.APIKey = key
	}
	c.Generator.Model = GetEnv("SMARTPRICING_MODEL", c.Generator.Model)
	c.Generator.Timeout = GetEnv("SMARTPRICING_TIMEOUT", c.Generator.Timeout)

	c.Storage.Backend = GetEnv("SMARTPRICING_BACKEND", c.Storage.Backend)
	c.Storage.SQLitePath = GetEnv("SMARTPRICING_SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.PostgresDSN = GetEnv("SMARTPRICING_POSTGRES_DSN", c.Storage.PostgresDSN)

	ch := &c.Storage.ClickHouse
	ch.Host = GetEnv("CLICKHOUSE_HOST", ch.Host)
	ch.Port = GetEnvInt("CLICKHOUSE_PORT", ch.Port)
	ch.Database = GetEnv("CLICKHOUSE_DATABASE", ch.Database)
	ch.Username = GetEnv("CLICKHOUSE_USER", ch.Username)
	ch.Password = GetEnv("CLICKHOUSE_PASSWORD", ch.Password)

	c.Logging.Level = GetEnv("SMARTPRICING_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = GetEnv("SMARTPRICING_LOG_FORMAT", c.Logging.Format)
	if GetEnvBool("SMARTPRICING_LOG_JSON", false) {
		c.Logging.Format = "json"
	}
}

// GeneratorTimeout parses the configured timeout.
func (c *Config) GeneratorTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Generator.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid generator timeout %q: %w", c.Generator.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("generator timeout must be positive, got %s", d)
	}
	return d, nil
}

// Validate checks the settings needed to open the selected backend.
// The API key is checked by the commands that call the generator.
func (c *Config) Validate() error {
	if _, err := c.GeneratorTimeout(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	case BackendClickHouse:
		if c.Storage.ClickHouse.Host == "" || c.Storage.ClickHouse.Port == 0 {
			return fmt.Errorf("storage.clickhouse host and port are required for the clickhouse backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// GetEnv reads an env var, falling back to defaultVal when unset.
func GetEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func GetEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func GetEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		if strings.ToLower(val) == "true" || val == "1" {
			return true
		}
		return false
	}
	return defaultVal
}
