// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Matching      MatchingConfig     `mapstructure:"matching"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MatchingConfig holds scoring and ranking settings.
type MatchingConfig struct {
	HandRaiseBoost int `mapstructure:"hand_raise_boost"` // added to score when the patient requested the provider
	TopN           int `mapstructure:"top_n"`            // matches notified per open slot
}

// NotificationConfig holds settings for scheduling and dispatch.
type NotificationConfig struct {
	SendTimeout  int `mapstructure:"send_timeout"`  // milliseconds, per channel send
	PollInterval int `mapstructure:"poll_interval"` // milliseconds, delay-queue worker

	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`

	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`

	Push struct {
		Enabled    bool   `mapstructure:"enabled"`
		GatewayURL string `mapstructure:"gateway_url"`
		APIKey     string `mapstructure:"api_key"`
	} `mapstructure:"push"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`

	Templates struct {
		RegistryPath string `mapstructure:"registry_path"` // optional JSON overrides
	} `mapstructure:"templates"`

	QuietHours struct {
		DefaultTimezone string `mapstructure:"default_timezone"`
	} `mapstructure:"quiet_hours"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
