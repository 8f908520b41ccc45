// Package config loads server settings from defaults, an optional config file,
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/and161185/pocketfile/internal/storage"
)

// Config is the resolved server configuration.
type Config struct {
	Addr          string
	Debug         bool
	Database      DatabaseConfig
	JWTSecret     string
	TokenTTL      time.Duration
	Storage       storage.Options
	PublicBaseURL string // overrides the request host in share links when set
	CORSOrigins   []string
	// TrustedProxies may set X-Forwarded-For; empty means the peer address is the client IP.
	TrustedProxies []string
	RateLimit      bool
}

// DatabaseConfig holds PostgreSQL connection parameters. URL wins over the parts when set.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DSN returns a postgres:// connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, fmt.Sprint(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// env maps config keys to the environment variables that set them.
var env = map[string]string{
	"port":                         "PORT",
	"debug":                        "DEBUG",
	"database.url":                 "DATABASE_URL",
	"database.host":                "DB_HOST",
	"database.port":                "DB_PORT",
	"database.name":                "DB_NAME",
	"database.user":                "DB_USER",
	"database.password":            "DB_PASSWORD",
	"database.sslmode":             "DB_SSLMODE",
	"auth.jwt_secret":              "JWT_SECRET",
	"auth.token_ttl":               "TOKEN_TTL",
	"auth.rate_limit":              "LOGIN_RATE_LIMIT",
	"storage.type":                 "STORAGE_TYPE",
	"storage.uploads_dir":          "UPLOADS_DIR",
	"storage.s3.bucket":            "S3_BUCKET",
	"storage.s3.prefix":            "S3_PREFIX",
	"storage.s3.region":            "S3_REGION",
	"storage.s3.endpoint":          "S3_ENDPOINT",
	"storage.s3.access_key_id":     "S3_ACCESS_KEY_ID",
	"storage.s3.secret_access_key": "S3_SECRET_ACCESS_KEY",
	"storage.s3.path_style":        "S3_PATH_STYLE",
	"public_base_url":              "PUBLIC_BASE_URL",
	"cors.origins":                 "CORS_ORIGINS",
	"trusted_proxies":              "TRUSTED_PROXIES",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 3001)
	v.SetDefault("debug", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "pocketfile")
	v.SetDefault("database.user", "pocketfile")
	v.SetDefault("database.password", "pocketfile_password")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.rate_limit", true)
	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("cors.origins", []string{"*"})

	for key, name := range env {
		_ = v.BindEnv(key, name)
	}
}

// Load reads the optional config file and resolves the final Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := readFile(v, file); err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:      ":" + v.GetString("port"),
		Debug:     v.GetBool("debug"),
		Database:  database(v),
		JWTSecret: v.GetString("auth.jwt_secret"),
		TokenTTL:  v.GetDuration("auth.token_ttl"),
		RateLimit: v.GetBool("auth.rate_limit"),
		Storage: storage.Options{
			Type: v.GetString("storage.type"),
			Dir:  v.GetString("storage.uploads_dir"),
			S3: storage.S3Options{
				Bucket:          v.GetString("storage.s3.bucket"),
				Prefix:          v.GetString("storage.s3.prefix"),
				Region:          v.GetString("storage.s3.region"),
				Endpoint:        v.GetString("storage.s3.endpoint"),
				AccessKeyID:     v.GetString("storage.s3.access_key_id"),
				SecretAccessKey: v.GetString("storage.s3.secret_access_key"),
				UsePathStyle:    v.GetBool("storage.s3.path_style"),
			},
		},
		PublicBaseURL:  strings.TrimRight(v.GetString("public_base_url"), "/"),
		CORSOrigins:    splitList(v.GetStringSlice("cors.origins")),
		TrustedProxies: splitList(v.GetStringSlice("trusted_proxies")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase resolves only the connection settings, for commands that need
// nothing else.
func LoadDatabase(v *viper.Viper, file string) (DatabaseConfig, error) {
	if err := readFile(v, file); err != nil {
		return DatabaseConfig{}, err
	}
	return database(v), nil
}

func readFile(v *viper.Viper, file string) error {
	if file == "" {
		return nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", file, err)
	}
	return nil
}

func database(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		URL:      v.GetString("database.url"),
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		Name:     v.GetString("database.name"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		SSLMode:  v.GetString("database.sslmode"),
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	var problems []error
	if c.JWTSecret == "" {
		problems = append(problems, errors.New("auth.jwt_secret (JWT_SECRET) is required"))
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, errors.New("auth.token_ttl must be positive"))
	}
	switch c.Storage.Type {
	case "filesystem", "memory":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			problems = append(problems, errors.New("storage.s3.bucket (S3_BUCKET) is required for s3 storage"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown storage.type %q", c.Storage.Type))
	}
	if c.PublicBaseURL != "" {
		if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Errorf("public_base_url %q must be an absolute URL", c.PublicBaseURL))
		}
	}
	return errors.Join(problems...)
}

// splitList accepts both list values and a single comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
