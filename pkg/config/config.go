package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Duration reads "10s", "5m" or a bare number of seconds.
type Duration time.Duration

func (d *Duration) SetValue(data string) error {
	v, err := parseDuration(data)
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)

	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}

	return d, nil
}

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
	Mobile    MobileConfig
}

type AppConfig struct {
	Env          string `env:"APP_ENV" env-default:"development"`
	Version      string `env:"VERSION" env-default:"dev"`
	Port         string `env:"PORT" env-default:"3001"`
	EnforceHTTPS bool   `env:"ENFORCE_HTTPS" env-default:"false"`
	CORSOrigins  string `env:"CORS_ORIGINS" env-default:"*"`
}

func (a AppConfig) IsDevelopment() bool { return a.Env == "development" }

func (a AppConfig) IsTest() bool { return a.Env == "test" }

type DatabaseConfig struct {
	Driver         string `env:"DB_DRIVER" env-default:"sqlite"`
	Path           string `env:"DATABASE_PATH" env-default:"database.db"`
	URL            string `env:"DATABASE_URL"`
	MongoURI       string `env:"MONGODB_URI"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"db/migrations"`
}

type CacheConfig struct {
	Driver   string `env:"CACHE_DRIVER" env-default:"memory"`
	URL      string `env:"REDIS_URL"`
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type AuthConfig struct {
	Secret     string   `env:"JWT_SECRET"`
	AccessTTL  Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL Duration `env:"JWT_REFRESH_TTL" env-default:"168h"`
}

type TelemetryConfig struct {
	Enabled      bool   `env:"TELEMETRY_ENABLED" env-default:"false"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" env-default:"todo-api"`
	MetricsPort  string `env:"METRICS_PORT" env-default:"9090"`
}

type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" env-default:"true"`
}

type MobileConfig struct {
	StoragePath string   `env:"MOBILE_STORAGE_PATH" env-default:"mobile.db"`
	DelayScale  float64  `env:"MOBILE_DELAY_SCALE" env-default:"1"`
	PollEvery   Duration `env:"MOBILE_POLL_INTERVAL" env-default:"2s"`
}

func Load() (Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if cfg.Database.URL == "" && cfg.Database.MongoURI != "" {
		cfg.Database.URL = cfg.Database.MongoURI
	}

	if cfg.Cache.URL != "" {
		addr, password, db, err := parseRedisURL(cfg.Cache.URL)
		if err != nil {
			return Config{}, fmt.Errorf("REDIS_URL: %w", err)
		}

		cfg.Cache.Addr = addr
		cfg.Cache.Password = password
		cfg.Cache.DB = db
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadMobile reads the same environment for the terminal client, which runs
// without the server's store, cache or secrets.
func LoadMobile() (Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if cfg.Mobile.DelayScale < 0 {
		return Config{}, fmt.Errorf("MOBILE_DELAY_SCALE must not be negative")
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER %q", c.Cache.Driver)
	}

	if c.Auth.Secret == "" && !c.App.IsTest() {
		return fmt.Errorf("JWT_SECRET is required")
	}

	return nil
}

// parseRedisURL extracts host:port, password and DB from a redis:// or rediss:// URL.
func parseRedisURL(s string) (addr, password string, db int, err error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", "", 0, err
	}

	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return "", "", 0, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}

	addr = u.Host
	if addr == "" {
		return "", "", 0, fmt.Errorf("missing host in Redis URL")
	}

	if u.User != nil {
		password, _ = u.User.Password()
	}

	if len(u.Path) > 1 {
		db, _ = strconv.Atoi(strings.TrimPrefix(u.Path, "/"))
	}

	return addr, password, db, nil
}
