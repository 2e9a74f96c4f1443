package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Image     ImageConfig     `mapstructure:"image"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Clamd     ClamdConfig     `mapstructure:"clamd"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// APIConfig contains HTTP server settings. AllowOrigin is a comma separated
// list of CORS origins, "*" allows any.
type APIConfig struct {
	Port        int    `mapstructure:"port"`
	AllowOrigin string `mapstructure:"allow_origin"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Debug    bool   `mapstructure:"debug"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// OpenAIConfig 描述 chat completion 服务的接入参数。
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ImageConfig selects and configures the profile image backend.
type ImageConfig struct {
	Provider    string        `mapstructure:"provider"`
	PublicKey   string        `mapstructure:"public_key"`
	PrivateKey  string        `mapstructure:"private_key"`
	URLEndpoint string        `mapstructure:"url_endpoint"`
	Folder      string        `mapstructure:"folder"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxBytes    int64         `mapstructure:"max_bytes"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ClamdConfig 为空地址时跳过病毒扫描。
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// AuthConfig 指向 RS256 密钥文件。
type AuthConfig struct {
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// RateLimitConfig limits anonymous AI enhancement calls per client IP.
// Zero disables the limiter.
type RateLimitConfig struct {
	AIRequestsPerHour int `mapstructure:"ai_requests_per_hour"`
}

const (
	ImageProviderImageKit = "imagekit"
	ImageProviderMinIO    = "minio"
)

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// AllowOrigins splits the comma separated CORS origin list.
func (a APIConfig) AllowOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.AllowOrigin, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Addr returns host:port for go-redis.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Image.Provider = strings.ToLower(strings.TrimSpace(cfg.Image.Provider))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 3000)
	v.SetDefault("api.allow_origin", "*")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resume_builder")
	v.SetDefault("database.user", "resume_builder")
	v.SetDefault("database.password", "resume_builder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.debug", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("image.provider", ImageProviderImageKit)
	v.SetDefault("image.folder", "user-resumes")
	v.SetDefault("image.timeout", 30*time.Second)
	v.SetDefault("image.max_bytes", 5<<20)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resume-images")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.private_key_path", "keys/jwt_private.pem")
	v.SetDefault("auth.public_key_path", "keys/jwt_public.pem")
	v.SetDefault("auth.access_token_ttl", 7*24*time.Hour)
	v.SetDefault("ratelimit.ai_requests_per_hour", 30)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                       "API_PORT",
		"api.allow_origin":               "API_ALLOW_ORIGIN",
		"database.host":                  "DATABASE_HOST",
		"database.port":                  "DATABASE_PORT",
		"database.name":                  "POSTGRES_DB",
		"database.user":                  "POSTGRES_USER",
		"database.password":              "POSTGRES_PASSWORD",
		"database.sslmode":               "DATABASE_SSLMODE",
		"database.debug":                 "DATABASE_DEBUG",
		"redis.host":                     "REDIS_HOST",
		"redis.port":                     "REDIS_PORT",
		"openai.api_key":                 "OPENAI_API_KEY",
		"openai.base_url":                "OPENAI_BASE_URL",
		"openai.model":                   "OPENAI_MODEL",
		"image.provider":                 "IMAGE_PROVIDER",
		"image.public_key":               "IMAGEKIT_PUBLIC_KEY",
		"image.private_key":              "IMAGEKIT_PRIVATE_KEY",
		"image.url_endpoint":             "IMAGEKIT_URL_ENDPOINT",
		"image.folder":                   "IMAGE_FOLDER",
		"image.timeout":                  "IMAGE_TIMEOUT",
		"image.max_bytes":                "IMAGE_MAX_BYTES",
		"minio.endpoint":                 "MINIO_ENDPOINT",
		"minio.public_endpoint":          "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":            "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":        "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                  "MINIO_USE_SSL",
		"minio.bucket":                   "MINIO_BUCKET",
		"minio.region":                   "MINIO_REGION",
		"minio.bucket_lookup":            "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":       "MINIO_AUTO_CREATE_BUCKET",
		"clamd.addr":                     "CLAMD_ADDR",
		"auth.private_key_path":          "JWT_PRIVATE_KEY_PATH",
		"auth.public_key_path":           "JWT_PUBLIC_KEY_PATH",
		"auth.access_token_ttl":          "JWT_ACCESS_TOKEN_TTL",
		"ratelimit.ai_requests_per_hour": "AI_REQUESTS_PER_HOUR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	for _, origin := range cfg.API.AllowOrigins() {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid cors origin %q", origin)
		}
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.OpenAI.APIKey == "" {
		return errors.New("openai api key is required")
	}
	if cfg.OpenAI.Model == "" {
		return errors.New("openai model is required")
	}
	if cfg.Auth.PrivateKeyPath == "" || cfg.Auth.PublicKeyPath == "" {
		return errors.New("jwt key paths are required")
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		return errors.New("jwt access token ttl must be positive")
	}
	if cfg.RateLimit.AIRequestsPerHour < 0 {
		return errors.New("ai requests per hour must not be negative")
	}

	switch cfg.Image.Provider {
	case ImageProviderImageKit:
		if cfg.Image.PrivateKey == "" {
			return errors.New("imagekit private key is required")
		}
		if cfg.Image.PublicKey == "" {
			return errors.New("imagekit public key is required")
		}
		if cfg.Image.URLEndpoint == "" {
			return errors.New("imagekit url endpoint is required")
		}
	case ImageProviderMinIO:
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unknown image provider %q", cfg.Image.Provider)
	}
	if cfg.Image.MaxBytes <= 0 {
		return errors.New("image max bytes must be positive")
	}
	if cfg.Image.Folder == "" {
		return errors.New("image folder is required")
	}
	return nil
}
