package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/amanksolutions/galleryguard/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App         AppSettings         `yaml:"app"`
	Server      ServerSettings      `yaml:"server"`
	Logging     LoggingSettings     `yaml:"logging"`
	Redis       RedisSettings       `yaml:"redis"`
	Session     SessionSettings     `yaml:"session"`
	Gallery     GallerySettings     `yaml:"gallery"`
	Watermark   WatermarkSettings   `yaml:"watermark"`
	ManagerAuth ManagerAuthSettings `yaml:"manager_auth"`
	Mail        MailSettings        `yaml:"mail"`
	CORS        CORSSettings        `yaml:"cors"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// RedisSettings contains the session cache connection settings.
// An empty Addr selects the built-in in-memory cache, which is sufficient
// for a single-process deployment.
type RedisSettings struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// SessionSettings controls viewing session lifetimes and budgets
type SessionSettings struct {
	TTL             time.Duration `yaml:"ttl" env:"SESSION_TTL"`
	MaxRequests     int           `yaml:"max_requests" env:"SESSION_MAX_REQUESTS"`
	RateLimit       int           `yaml:"rate_limit" env:"SESSION_RATE_LIMIT"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window" env:"SESSION_RATE_WINDOW"`
}

// GallerySettings locates the protected image tree and the public URL space
// image links are minted under
type GallerySettings struct {
	Root          string `yaml:"root" env:"GALLERY_ROOT"`
	PublicBaseURL string `yaml:"public_base_url" env:"GALLERY_PUBLIC_BASE_URL"`
}

// WatermarkSettings controls the overlay applied to served images
type WatermarkSettings struct {
	Text      string `yaml:"text" env:"WATERMARK_TEXT"`
	AssetPath string `yaml:"asset_path" env:"WATERMARK_ASSET"`
	Quality   int    `yaml:"quality" env:"WATERMARK_QUALITY"`
}

// ManagerAuthSettings contains the token settings for gallery management
// endpoints (upload and delete)
type ManagerAuthSettings struct {
	Secret string        `yaml:"secret" env:"MANAGER_JWT_SECRET"`
	Issuer string        `yaml:"issuer" env:"MANAGER_JWT_ISSUER"`
	Expiry time.Duration `yaml:"expiry" env:"MANAGER_JWT_EXPIRY"`
}

// MailSettings contains the contact form relay settings. An empty APIKey
// disables outbound mail; submissions are still accepted and logged.
type MailSettings struct {
	APIKey      string `yaml:"api_key" env:"SENDGRID_API_KEY"`
	FromAddress string `yaml:"from_address" env:"MAIL_FROM_ADDRESS"`
	FromName    string `yaml:"from_name" env:"MAIL_FROM_NAME"`
	ToAddress   string `yaml:"to_address" env:"MAIL_TO_ADDRESS"`
}

// CORSSettings contains CORS configuration
type CORSSettings struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// UseInMemoryCache reports whether the in-process cache should be used
// instead of Redis
func (rs *RedisSettings) UseInMemoryCache() bool {
	return rs.Addr == ""
}

// MailEnabled reports whether contact form submissions should be relayed
func (ms *MailSettings) MailEnabled() bool {
	return ms.APIKey != "" && ms.ToAddress != ""
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

var (
	// cfg holds the current application configuration
	cfg *AppConfig
)

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	// Set defaults for missing values
	setDefaults(config)

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Save the configuration globally
	cfg = config

	// Log the configuration (but hide sensitive values)
	logConfig(config)

	return config, nil
}

// Get returns the current application configuration
func Get() *AppConfig {
	if cfg == nil {
		log.Fatal().Msg("configuration not loaded")
	}
	return cfg
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	// App defaults
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = "galleryguard"
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = constants.DefaultIdleTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	// Session defaults
	if config.Session.TTL == 0 {
		config.Session.TTL = constants.DefaultSessionTTL
	}
	if config.Session.MaxRequests == 0 {
		config.Session.MaxRequests = constants.DefaultSessionMaxRequests
	}
	if config.Session.RateLimit == 0 {
		config.Session.RateLimit = constants.DefaultSessionRateLimit
	}
	if config.Session.RateLimitWindow == 0 {
		config.Session.RateLimitWindow = constants.DefaultRateLimitWindow
	}

	// Gallery defaults
	if config.Gallery.Root == "" {
		config.Gallery.Root = "./galleries"
	}

	// Watermark defaults
	if config.Watermark.Text == "" {
		config.Watermark.Text = constants.DefaultWatermarkText
	}
	if config.Watermark.Quality == 0 {
		config.Watermark.Quality = constants.JPEGEncodeQuality
	}

	// Manager auth defaults
	if config.ManagerAuth.Issuer == "" {
		config.ManagerAuth.Issuer = constants.DefaultManagerTokenIssuer
	}
	if config.ManagerAuth.Expiry == 0 {
		config.ManagerAuth.Expiry = constants.DefaultManagerTokenExpiry
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	// CORS defaults
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"*"}
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	// Validate environment
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	// In production, management endpoints must not run with a guessable secret
	if config.App.IsProduction() && (config.ManagerAuth.Secret == "" || config.ManagerAuth.Secret == "changeme") {
		return fmt.Errorf("manager auth secret must be set in production")
	}

	if config.Gallery.Root == "" {
		return fmt.Errorf("gallery root must be set")
	}

	if config.Session.MaxRequests < 1 {
		return fmt.Errorf("session max_requests must be positive")
	}
	if config.Session.RateLimit < 1 {
		return fmt.Errorf("session rate_limit must be positive")
	}

	// Validate log level
	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	// Create a copy of the config to mask sensitive values
	logCfg := *config

	// Mask sensitive information
	if logCfg.Redis.Password != "" {
		logCfg.Redis.Password = constants.LogRedactedValue
	}
	if logCfg.ManagerAuth.Secret != "" {
		logCfg.ManagerAuth.Secret = constants.LogRedactedValue
	}
	if logCfg.Mail.APIKey != "" {
		logCfg.Mail.APIKey = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", logCfg.App.Environment).
		Str("version", logCfg.App.Version).
		Str("server", logCfg.Server.ServerAddress()).
		Str("gallery_root", logCfg.Gallery.Root).
		Bool("redis", !logCfg.Redis.UseInMemoryCache()).
		Bool("mail", logCfg.Mail.MailEnabled()).
		Str("log_level", logCfg.Logging.Level).
		Msg("Configuration loaded")
}
