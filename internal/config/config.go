package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL     string `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnectTimeout  string `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Auth struct {
		MaxLoginAttempts int    `yaml:"max_login_attempts" env:"AUTH_MAX_LOGIN_ATTEMPTS"`
		LockoutDuration  string `yaml:"lockout_duration" env:"AUTH_LOCKOUT_DURATION"`
	} `yaml:"auth"`

	Storage struct {
		MaxBannersPerPoint int   `yaml:"max_banners_per_point" env:"STORAGE_MAX_BANNERS_PER_POINT"`
		MaxBannerBytes     int64 `yaml:"max_banner_bytes" env:"STORAGE_MAX_BANNER_BYTES"`
		BannerMinWidth     int   `yaml:"banner_min_width" env:"STORAGE_BANNER_MIN_WIDTH"`
		BannerMaxWidth     int   `yaml:"banner_max_width" env:"STORAGE_BANNER_MAX_WIDTH"`
		BannerMinHeight    int   `yaml:"banner_min_height" env:"STORAGE_BANNER_MIN_HEIGHT"`
		BannerMaxHeight    int   `yaml:"banner_max_height" env:"STORAGE_BANNER_MAX_HEIGHT"`
	} `yaml:"storage"`

	Notifications struct {
		Workers        int    `yaml:"workers" env:"NOTIFY_WORKERS"`
		QueueSize      int    `yaml:"queue_size" env:"NOTIFY_QUEUE_SIZE"`
		MaxRetries     int    `yaml:"max_retries" env:"NOTIFY_MAX_RETRIES"`
		EnqueueTimeout string `yaml:"enqueue_timeout" env:"NOTIFY_ENQUEUE_TIMEOUT"`
		DrainTimeout   string `yaml:"drain_timeout" env:"NOTIFY_DRAIN_TIMEOUT"`
	} `yaml:"notifications"`

	Monitoring struct {
		Schedule                 string `yaml:"schedule" env:"MONITORING_SCHEDULE"`
		ConventionExpirySchedule string `yaml:"convention_expiry_schedule" env:"MONITORING_CONVENTION_EXPIRY_SCHEDULE"`
		TokenCleanupSchedule     string `yaml:"token_cleanup_schedule" env:"MONITORING_TOKEN_CLEANUP_SCHEDULE"`
		AbsenceThreshold         int    `yaml:"absence_threshold" env:"MONITORING_ABSENCE_THRESHOLD"`
		NoteThreshold            int    `yaml:"note_threshold" env:"MONITORING_NOTE_THRESHOLD"`
		// AcademicYear is the starting year of the current school year; 0 derives it from the clock.
		AcademicYear int `yaml:"academic_year" env:"MONITORING_ACADEMIC_YEAR"`
	} `yaml:"monitoring"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "agora"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnectTimeout = "30s"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "agora.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Agora"
	config.SMTP.FromEmail = "no-reply@agora.app"

	config.Auth.MaxLoginAttempts = 3
	config.Auth.LockoutDuration = "15m"

	config.Storage.MaxBannersPerPoint = 5
	config.Storage.MaxBannerBytes = 5 * 1024 * 1024
	config.Storage.BannerMinWidth = 300
	config.Storage.BannerMaxWidth = 1920
	config.Storage.BannerMinHeight = 150
	config.Storage.BannerMaxHeight = 1080

	config.Notifications.Workers = 4
	config.Notifications.QueueSize = 256
	config.Notifications.MaxRetries = 3
	config.Notifications.EnqueueTimeout = "200ms"
	config.Notifications.DrainTimeout = "10s"

	config.Monitoring.Schedule = "0 2 * * *"
	config.Monitoring.ConventionExpirySchedule = "15 0 * * *"
	config.Monitoring.TokenCleanupSchedule = "@daily"
	config.Monitoring.AbsenceThreshold = 5
	config.Monitoring.NoteThreshold = 3

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"database connect timeout":     config.Database.ConnectTimeout,
		"auth lockout duration":        config.Auth.LockoutDuration,
		"notification enqueue timeout": config.Notifications.EnqueueTimeout,
		"notification drain timeout":   config.Notifications.DrainTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Auth.MaxLoginAttempts < 1 {
		return fmt.Errorf("auth max login attempts must be positive")
	}

	if config.Storage.MaxBannersPerPoint < 1 {
		return fmt.Errorf("max banners per point must be positive")
	}
	if config.Storage.BannerMinWidth > config.Storage.BannerMaxWidth ||
		config.Storage.BannerMinHeight > config.Storage.BannerMaxHeight {
		return fmt.Errorf("banner dimension bounds are inverted")
	}

	if config.Notifications.Workers < 1 || config.Notifications.QueueSize < 1 {
		return fmt.Errorf("notification workers and queue size must be positive")
	}
	if config.Notifications.MaxRetries < 0 {
		return fmt.Errorf("notification max retries cannot be negative")
	}

	if config.Monitoring.AbsenceThreshold < 0 || config.Monitoring.NoteThreshold < 0 {
		return fmt.Errorf("monitoring thresholds cannot be negative")
	}

	for _, spec := range []string{
		config.Monitoring.Schedule,
		config.Monitoring.ConventionExpirySchedule,
		config.Monitoring.TokenCleanupSchedule,
	} {
		if _, err := CronParser.Parse(spec); err != nil {
			return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
		}
	}

	return nil
}

// CronParser is the schedule parser shared by config validation and the scheduler
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// PublicBaseURL returns the externally reachable base URL of the API
func (c *Config) PublicBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	return "http://localhost:" + c.Server.Port
}

// CurrentAcademicYear returns the configured academic year or derives it from now.
// School years start on September 1st.
func (c *Config) CurrentAcademicYear(now time.Time) int {
	if c.Monitoring.AcademicYear > 0 {
		return c.Monitoring.AcademicYear
	}
	if now.Month() >= time.September {
		return now.Year()
	}
	return now.Year() - 1
}
