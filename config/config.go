package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	PhotoStorage  PhotoStorageConfig
	Auth          AuthConfig
	EventTriggers EventTriggerConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
	RatingFlow    RatingFlowConfig
	DinerSession  DinerSessionConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type PhotoStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type AuthConfig struct {
	InternalAPIToken string
}

type EventTriggerConfig struct {
	VisitRecordedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	RestaurantTTLSeconds    int  // Restaurant list cache TTL in seconds
	DisableRestaurantsCache bool // Experimental: disable cache and read from DB on every request
}

// RatingFlowConfig controls rating-flow session lifetime and the submission
// failure policy. The policy defaults mirror the original product behavior:
// visit-record failure aborts the submission, feedback and points failures
// are logged but do not block completion.
type RatingFlowConfig struct {
	SessionTTLMinutes int
	FeedbackSaveFatal bool
	PointsAwardFatal  bool
	MaxSelectedDishes int
}

type DinerSessionConfig struct {
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	CookieDomain    string
	CookieSecure    bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://tastebud.app")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://tastebud.app,https://www.tastebud.app")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "alloy:4318") // OTLP over HTTP
	v.SetDefault("O11Y_SERVICE_NAME", "tastebud-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "tastebud")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "tastebud-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("RESTAURANT_CACHE_TTL", 600) // 10 minutes in seconds
	v.SetDefault("DISABLE_RESTAURANTS_CACHE", false)

	// Rating flow defaults preserve the original submission severity split
	v.SetDefault("RATING_FLOW_SESSION_TTL_MINUTES", 30)
	v.SetDefault("RATING_FLOW_FEEDBACK_SAVE_FATAL", false)
	v.SetDefault("RATING_FLOW_POINTS_AWARD_FATAL", false)
	v.SetDefault("RATING_FLOW_MAX_SELECTED_DISHES", 20)

	// Diner session defaults
	v.SetDefault("JWT_ISSUER", "tastebud-api")
	v.SetDefault("SESSION_TTL_HOURS", 720)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 20,
			MinConns: 2,
		},
		PhotoStorage: PhotoStorageConfig{
			AccessKeyID:     v.GetString("PHOTO_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("PHOTO_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("PHOTO_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("PHOTO_STORAGE_ENDPOINT"),
			Region:          v.GetString("PHOTO_STORAGE_REGION"),
		},
		Auth: AuthConfig{
			InternalAPIToken: v.GetString("INTERNAL_API_TOKEN"),
		},
		EventTriggers: EventTriggerConfig{
			VisitRecordedTriggerURL: v.GetString("VISIT_RECORDED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			RestaurantTTLSeconds:    v.GetInt("RESTAURANT_CACHE_TTL"),
			DisableRestaurantsCache: v.GetBool("DISABLE_RESTAURANTS_CACHE"),
		},
		RatingFlow: RatingFlowConfig{
			SessionTTLMinutes: v.GetInt("RATING_FLOW_SESSION_TTL_MINUTES"),
			FeedbackSaveFatal: v.GetBool("RATING_FLOW_FEEDBACK_SAVE_FATAL"),
			PointsAwardFatal:  v.GetBool("RATING_FLOW_POINTS_AWARD_FATAL"),
			MaxSelectedDishes: v.GetInt("RATING_FLOW_MAX_SELECTED_DISHES"),
		},
		DinerSession: DinerSessionConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Database configuration
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Authentication tokens
	if c.Auth.InternalAPIToken == "" {
		return fmt.Errorf("INTERNAL_API_TOKEN is required")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	if c.DinerSession.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.RatingFlow.SessionTTLMinutes <= 0 {
		return fmt.Errorf("RATING_FLOW_SESSION_TTL_MINUTES must be positive")
	}
	if c.RatingFlow.MaxSelectedDishes <= 0 {
		return fmt.Errorf("RATING_FLOW_MAX_SELECTED_DISHES must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
