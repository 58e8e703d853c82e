// Package config loads the service configuration from the environment,
// an optional .env file and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Matching MatchingConfig `mapstructure:"matching"`
	Files    FilesConfig    `mapstructure:"files"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors-origins"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" validate:"required"`
}

// RedisConfig is optional. An empty address disables the workflow event bus.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type AgentConfig struct {
	URL            string `mapstructure:"url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout" validate:"min=1"`
	Enabled        bool   `mapstructure:"enabled"`
	Version        string `mapstructure:"version"`
}

func (c AgentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MatchingConfig holds the two independent resume policies: the per-workflow
// cap applied to batch runs and the stored-resume cap applied to uploads.
type MatchingConfig struct {
	MaxResumesPerWorkflow int `mapstructure:"max-resumes-per-workflow" validate:"min=1"`
	ResumeFetchCap        int `mapstructure:"resume-fetch-cap" validate:"min=1"`
	MaxStoredResumes      int `mapstructure:"max-stored-resumes" validate:"min=0"`
	ResolveConcurrency    int `mapstructure:"resolve-concurrency" validate:"min=1"`
}

type FilesConfig struct {
	MaxFileSizeMB int `mapstructure:"max-file-size-mb" validate:"min=1"`
}

func (c FilesConfig) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt-secret" validate:"required"`
	TokenExpireMinutes int    `mapstructure:"token-expire-minutes" validate:"min=1"`
	BcryptCost         int    `mapstructure:"bcrypt-cost" validate:"min=4,max=31"`
	MinPasswordLength  int    `mapstructure:"min-password-length" validate:"min=1"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	Path  string `mapstructure:"path"`
}

var envBindings = map[string]string{
	"server.port":                       "PORT",
	"server.cors-origins":               "CORS_ORIGINS",
	"database.dsn":                      "DATABASE_URL",
	"redis.addr":                        "REDIS_ADDR",
	"agent.url":                         "AI_AGENT_URL",
	"agent.timeout":                     "AI_AGENT_TIMEOUT",
	"agent.enabled":                     "AI_AGENT_ENABLED",
	"agent.version":                     "AI_AGENT_VERSION",
	"matching.max-resumes-per-workflow": "MATCHING_MAX_RESUMES_PER_WORKFLOW",
	"matching.resume-fetch-cap":         "MATCHING_RESUME_FETCH_CAP",
	"matching.max-stored-resumes":       "MATCHING_MAX_STORED_RESUMES",
	"matching.resolve-concurrency":      "MATCHING_RESOLVE_CONCURRENCY",
	"files.max-file-size-mb":            "MAX_FILE_SIZE_MB",
	"auth.jwt-secret":                   "JWT_SECRET_KEY",
	"auth.token-expire-minutes":         "JWT_ACCESS_TOKEN_EXPIRE_MINUTES",
	"auth.bcrypt-cost":                  "BCRYPT_COST",
	"auth.min-password-length":          "MIN_PASSWORD_LENGTH",
	"log.level":                         "LOG_LEVEL",
	"log.json":                          "LOG_JSON",
	"log.path":                          "LOG_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors-origins", []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"})
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=hr_comparator port=5432 sslmode=disable")
	v.SetDefault("redis.addr", "")
	v.SetDefault("agent.url", "http://localhost:9000")
	v.SetDefault("agent.timeout", 1800)
	v.SetDefault("agent.enabled", true)
	v.SetDefault("agent.version", "v1.0.0")
	v.SetDefault("matching.max-resumes-per-workflow", 10)
	v.SetDefault("matching.resume-fetch-cap", 1000)
	v.SetDefault("matching.max-stored-resumes", 0)
	v.SetDefault("matching.resolve-concurrency", 4)
	v.SetDefault("files.max-file-size-mb", 5)
	v.SetDefault("auth.jwt-secret", "your-secret-key-change-this")
	v.SetDefault("auth.token-expire-minutes", 1440)
	v.SetDefault("auth.bcrypt-cost", 12)
	v.SetDefault("auth.min-password-length", 6)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.path", "")
}

// Load builds the configuration. Values resolve in the order: environment,
// config file (when path is not empty), defaults. A .env file in the working
// directory is loaded into the environment first if it exists.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Server.CORSOrigins = splitOrigins(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// splitOrigins accepts both list values and a single comma separated string
// as delivered by the CORS_ORIGINS variable.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
