package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	API       APIConfig       `yaml:"api"`
	Providers ProvidersConfig `yaml:"providers"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid dispatch settings
type EmailConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// APIConfig contains settings for the HTTP API surface
type APIConfig struct {
	TokenSecret string `yaml:"token_secret"`
}

// ProvidersConfig contains payment provider credentials and endpoints
type ProvidersConfig struct {
	Paystack       ProviderConfig `yaml:"paystack"`
	BankPartner    ProviderConfig `yaml:"bank_partner"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
}

// ProviderConfig contains one provider's endpoint and credentials
type ProviderConfig struct {
	BaseURL   string `yaml:"base_url"`
	SecretKey string `yaml:"secret_key"`
}

// StorageConfig contains attachment storage settings
type StorageConfig struct {
	Type        string `yaml:"type"`       // "mock" or "s3"
	UploadDir   string `yaml:"upload_dir"` // For mock storage
	BaseURL     string `yaml:"base_url"`   // Server base URL for mock URLs
	MaxFileSize int64  `yaml:"max_file_size_mb"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CollectDuePayments   string `yaml:"collect_due_payments"`
	SendPaymentReminders string `yaml:"send_payment_reminders"`
	ReconcilePending     string `yaml:"reconcile_pending"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}

	// API
	if val := os.Getenv("API_TOKEN_SECRET"); val != "" {
		c.API.TokenSecret = val
	}

	// Providers
	if val := os.Getenv("PAYSTACK_SECRET_KEY"); val != "" {
		c.Providers.Paystack.SecretKey = val
	}
	if val := os.Getenv("PAYSTACK_BASE_URL"); val != "" {
		c.Providers.Paystack.BaseURL = val
	}
	if val := os.Getenv("BANK_PARTNER_SECRET_KEY"); val != "" {
		c.Providers.BankPartner.SecretKey = val
	}
	if val := os.Getenv("BANK_PARTNER_BASE_URL"); val != "" {
		c.Providers.BankPartner.BaseURL = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Email validation
	if c.Email.APIKey == "" {
		return fmt.Errorf("sendgrid api key is required")
	}
	if c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}

	// API validation
	if c.API.TokenSecret == "" {
		return fmt.Errorf("api token secret is required")
	}
	if len(c.API.TokenSecret) < 32 {
		return fmt.Errorf("api token secret must be at least 32 characters")
	}

	// Provider validation
	if c.Providers.Paystack.BaseURL == "" {
		c.Providers.Paystack.BaseURL = "https://api.paystack.co"
	}
	if c.Providers.Paystack.SecretKey == "" {
		return fmt.Errorf("paystack secret key is required")
	}
	if c.Providers.BankPartner.BaseURL == "" {
		return fmt.Errorf("bank partner base url is required")
	}
	if c.Providers.BankPartner.SecretKey == "" {
		return fmt.Errorf("bank partner secret key is required")
	}
	if c.Providers.TimeoutSeconds <= 0 {
		c.Providers.TimeoutSeconds = 30
	}

	// Storage validation
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	// Scheduler defaults
	if c.Scheduler.CollectDuePayments == "" {
		c.Scheduler.CollectDuePayments = "0 0 6 * * *" // 6 AM UTC
	}
	if c.Scheduler.SendPaymentReminders == "" {
		c.Scheduler.SendPaymentReminders = "0 0 9 * * *" // 9 AM UTC
	}
	if c.Scheduler.ReconcilePending == "" {
		c.Scheduler.ReconcilePending = "0 */30 * * * *" // every 30 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ProviderTimeout returns the bounded timeout applied to gateway calls
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}
