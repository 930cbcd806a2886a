package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Tasks    TasksConfig
	Backup   BackupConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	Timezone        string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AuthConfig holds token issuing configuration
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string
}

// TasksConfig selects how background work is dispatched
type TasksConfig struct {
	Mode  string // sync or amqp
	AMQP  AMQPConfig
	Queue string
}

// AMQPConfig holds RabbitMQ connection configuration
type AMQPConfig struct {
	URL string
}

// BackupConfig holds backup storage configuration
type BackupConfig struct {
	Provider      string // local or azure
	Dir           string
	EncryptionKey string // hex encoded 32 bytes, optional
	Azure         AzureStorageConfig
}

// AzureStorageConfig holds Azure Blob Storage configuration
type AzureStorageConfig struct {
	AccountName string
	AccountKey  string
	Container   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)
	v.SetDefault("server.timezone", "Local")

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)
	v.SetDefault("database.automigrate", true)

	// Auth defaults
	v.SetDefault("auth.tokenttl", 24*time.Hour)
	v.SetDefault("auth.adminusername", "admin")

	// Task defaults
	v.SetDefault("tasks.mode", "sync")
	v.SetDefault("tasks.queue", "nutrifast-tasks")

	// Backup defaults
	v.SetDefault("backup.provider", "local")
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.azure.container", "nutrifast-backups")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.timezone", "TZ_NAME")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.automigrate", "DATABASE_AUTO_MIGRATE")

	// Auth
	v.BindEnv("auth.jwtsecret", "JWT_SECRET")
	v.BindEnv("auth.tokenttl", "JWT_TTL")
	v.BindEnv("auth.adminusername", "ADMIN_USERNAME")
	v.BindEnv("auth.adminpasswordhash", "ADMIN_PASSWORD_HASH")

	// Tasks
	v.BindEnv("tasks.mode", "TASKS_MODE")
	v.BindEnv("tasks.queue", "TASKS_QUEUE")
	v.BindEnv("tasks.amqp.url", "AMQP_URL")

	// Backup
	v.BindEnv("backup.provider", "BACKUP_PROVIDER")
	v.BindEnv("backup.dir", "BACKUP_DIR")
	v.BindEnv("backup.encryptionkey", "BACKUP_ENCRYPTION_KEY")
	v.BindEnv("backup.azure.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("backup.azure.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("backup.azure.container", "AZURE_STORAGE_CONTAINER")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtsecret is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwtsecret must be at least 32 characters")
	}

	if c.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("auth.adminpasswordhash is required")
	}

	switch c.Tasks.Mode {
	case "sync":
	case "amqp":
		if c.Tasks.AMQP.URL == "" {
			return fmt.Errorf("tasks.amqp.url is required when tasks.mode is amqp")
		}
	default:
		return fmt.Errorf("tasks.mode must be sync or amqp, got %q", c.Tasks.Mode)
	}

	switch c.Backup.Provider {
	case "local":
		if c.Backup.Dir == "" {
			return fmt.Errorf("backup.dir is required for the local backup provider")
		}
	case "azure":
		if c.Backup.Azure.AccountName == "" || c.Backup.Azure.AccountKey == "" {
			return fmt.Errorf("azure storage credentials are required (account name + key)")
		}
	default:
		return fmt.Errorf("backup.provider must be local or azure, got %q", c.Backup.Provider)
	}

	if c.Backup.EncryptionKey != "" {
		if _, err := c.Backup.DecodeEncryptionKey(); err != nil {
			return err
		}
	}

	return nil
}

// DecodeEncryptionKey returns the raw backup encryption key, or nil if unset
func (b BackupConfig) DecodeEncryptionKey() ([]byte, error) {
	if b.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(b.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("backup.encryptionkey must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("backup.encryptionkey must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Location resolves the configured timezone used for calendar days
func (s ServerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}
