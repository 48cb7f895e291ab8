package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"csv"`
	DataPath      string `env:"DATA_PATH" envDefault:"data/students_data.csv"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/students.db"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"studentdb"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	UploadDir   string   `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadMB int64    `env:"MAX_UPLOAD_MB" envDefault:"100"`

	BackupCron string `env:"BACKUP_CRON"`
	BackupDir  string `env:"BACKUP_DIR" envDefault:"data/backups"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from environment variables and a .env file (if present).
func Load() (*Config, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// MaxUploadBytes is the request body limit for CSV uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// PostgresDSN builds the connection string from the DB_* variables.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverCSV, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}
