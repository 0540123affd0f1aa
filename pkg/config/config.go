package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Record source kinds.
const (
	RecordSourcePostgres = "postgres"
	RecordSourceREST     = "rest"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	Analytics    AnalyticsConfig
	RecordSource RecordSourceConfig
	Imports      ImportsConfig
	Reports      ReportsConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig controls the zap logger. File enables a rotating file sink next to stderr.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AnalyticsConfig governs feature flagging, cache behaviour and calendar settings for analytics.
type AnalyticsConfig struct {
	Enabled           bool
	CacheTTL          time.Duration
	Timezone          string
	PassThreshold     float64
	DefaultSeriesDays int
	MaxSeriesDays     int
	RefreshCron       string
}

// RecordSourceConfig selects where raw training records are read from.
type RecordSourceConfig struct {
	Kind    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ImportsConfig controls bulk trainee imports.
type ImportsConfig struct {
	Enabled         bool
	MaxUploadBytes  int64
	HeaderAliasFile string
}

// ReportsConfig controls report exports.
type ReportsConfig struct {
	Enabled       bool
	DefaultFormat string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       v.GetString("DB_DRIVER"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:           v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL:          parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		Timezone:          v.GetString("ANALYTICS_TIMEZONE"),
		PassThreshold:     v.GetFloat64("ANALYTICS_PASS_THRESHOLD"),
		DefaultSeriesDays: v.GetInt("ANALYTICS_DEFAULT_SERIES_DAYS"),
		MaxSeriesDays:     v.GetInt("ANALYTICS_MAX_SERIES_DAYS"),
		RefreshCron:       v.GetString("ANALYTICS_REFRESH_CRON"),
	}

	cfg.RecordSource = RecordSourceConfig{
		Kind:    strings.ToLower(v.GetString("RECORD_SOURCE")),
		BaseURL: v.GetString("RECORD_SOURCE_URL"),
		APIKey:  v.GetString("RECORD_SOURCE_API_KEY"),
		Timeout: parseDuration(v.GetString("RECORD_SOURCE_TIMEOUT"), 10*time.Second),
	}

	maxUpload := v.GetInt64("IMPORTS_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Imports = ImportsConfig{
		Enabled:         v.GetBool("ENABLE_IMPORTS"),
		MaxUploadBytes:  maxUpload,
		HeaderAliasFile: v.GetString("IMPORTS_HEADER_ALIAS_FILE"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:       v.GetBool("ENABLE_REPORTS"),
		DefaultFormat: strings.ToLower(v.GetString("REPORTS_DEFAULT_FORMAT")),
	}

	return cfg, nil
}

// Location resolves the analytics timezone, falling back to UTC when unknown.
func (c AnalyticsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "training_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 16)
	v.SetDefault("LOG_MAX_BACKUPS", 8)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("ANALYTICS_TIMEZONE", "Asia/Seoul")
	v.SetDefault("ANALYTICS_PASS_THRESHOLD", 60)
	v.SetDefault("ANALYTICS_DEFAULT_SERIES_DAYS", 30)
	v.SetDefault("ANALYTICS_MAX_SERIES_DAYS", 366)
	v.SetDefault("ANALYTICS_REFRESH_CRON", "")

	v.SetDefault("RECORD_SOURCE", RecordSourcePostgres)
	v.SetDefault("RECORD_SOURCE_URL", "")
	v.SetDefault("RECORD_SOURCE_API_KEY", "")
	v.SetDefault("RECORD_SOURCE_TIMEOUT", "10s")

	v.SetDefault("ENABLE_IMPORTS", true)
	v.SetDefault("IMPORTS_MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("IMPORTS_HEADER_ALIAS_FILE", "")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_DEFAULT_FORMAT", "csv")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
