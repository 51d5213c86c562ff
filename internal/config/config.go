package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Cache     CacheConfig
	Extractor ExtractorConfig
	Guard     GuardConfig
	Upload    UploadConfig
	Log       LogConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the upload archive.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// CacheConfig holds temporary document cache settings. Provider is "redis"
// or "memory"; TTL bounds the lifetime of a test-upload handle.
type CacheConfig struct {
	Provider string        `mapstructure:"provider"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ExtractorConfig holds AI structured-extraction collaborator settings.
type ExtractorConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// Timeout returns the upper-bound duration for one collaborator call.
func (e *ExtractorConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// GuardConfig holds duplicate-detection and confidence-review policy.
type GuardConfig struct {
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold"`
	DuplicateFields     []string `mapstructure:"duplicate_fields"`
}

// UploadConfig holds file upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the INVOFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVOFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoflow")
	v.SetDefault("db.password", "invoflow_secret")
	v.SetDefault("db.name", "invoflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invoflow-uploads")
	v.SetDefault("s3.endpoint", "")

	// Cache defaults
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "5m")

	// Extractor defaults
	v.SetDefault("extractor.provider", "claude")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "")
	v.SetDefault("extractor.timeout_secs", 120)

	// Guard defaults
	v.SetDefault("guard.confidence_threshold", 0.7)
	v.SetDefault("guard.duplicate_fields", "invoice_number,total_amount")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "INVOFLOW_SERVER_PORT",
		"server.read_timeout":        "INVOFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "INVOFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":         "INVOFLOW_SERVER_ENVIRONMENT",
		"db.host":                    "INVOFLOW_DB_HOST",
		"db.port":                    "INVOFLOW_DB_PORT",
		"db.user":                    "INVOFLOW_DB_USER",
		"db.password":                "INVOFLOW_DB_PASSWORD",
		"db.name":                    "INVOFLOW_DB_NAME",
		"db.sslmode":                 "INVOFLOW_DB_SSLMODE",
		"db.max_open":                "INVOFLOW_DB_MAX_OPEN",
		"db.max_idle":                "INVOFLOW_DB_MAX_IDLE",
		"s3.region":                  "INVOFLOW_S3_REGION",
		"s3.bucket":                  "INVOFLOW_S3_BUCKET",
		"s3.endpoint":                "INVOFLOW_S3_ENDPOINT",
		"s3.access_key":              "INVOFLOW_S3_ACCESS_KEY",
		"s3.secret_key":              "INVOFLOW_S3_SECRET_KEY",
		"cache.provider":             "INVOFLOW_CACHE_PROVIDER",
		"cache.addr":                 "INVOFLOW_CACHE_ADDR",
		"cache.password":             "INVOFLOW_CACHE_PASSWORD",
		"cache.db":                   "INVOFLOW_CACHE_DB",
		"cache.ttl":                  "INVOFLOW_CACHE_TTL",
		"extractor.provider":         "INVOFLOW_EXTRACTOR_PROVIDER",
		"extractor.api_key":          "INVOFLOW_EXTRACTOR_API_KEY",
		"extractor.default_model":    "INVOFLOW_EXTRACTOR_DEFAULT_MODEL",
		"extractor.timeout_secs":     "INVOFLOW_EXTRACTOR_TIMEOUT_SECS",
		"guard.confidence_threshold": "INVOFLOW_GUARD_CONFIDENCE_THRESHOLD",
		"guard.duplicate_fields":     "INVOFLOW_GUARD_DUPLICATE_FIELDS",
		"upload.max_file_size_mb":    "INVOFLOW_UPLOAD_MAX_FILE_SIZE_MB",
		"log.level":                  "INVOFLOW_LOG_LEVEL",
		"log.format":                 "INVOFLOW_LOG_FORMAT",
		"cors.allowed_origins":       "INVOFLOW_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOFLOW_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Cache = CacheConfig{
		Provider: v.GetString("cache.provider"),
		Addr:     v.GetString("cache.addr"),
		Password: v.GetString("cache.password"),
		DB:       v.GetInt("cache.db"),
		TTL:      v.GetDuration("cache.ttl"),
	}
	cfg.Extractor = ExtractorConfig{
		Provider:     v.GetString("extractor.provider"),
		APIKey:       v.GetString("extractor.api_key"),
		DefaultModel: v.GetString("extractor.default_model"),
		TimeoutSecs:  v.GetInt("extractor.timeout_secs"),
	}
	cfg.Guard = GuardConfig{
		ConfidenceThreshold: v.GetFloat64("guard.confidence_threshold"),
		DuplicateFields:     splitCSV(v.GetString("guard.duplicate_fields")),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
