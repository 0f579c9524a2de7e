package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// devSecret signs sessions in development when JWT_SECRET is unset.
const devSecret = "feedback-board-dev-secret"

type Config struct {
	Port      string `env:"PORT,      default=8000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	Session  SessionConfig
	HTTP     HTTPConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Seed     SeedConfig
	Dispatch DispatchConfig
}

type SessionConfig struct {
	TTL    time.Duration `env:"SESSION_TTL,    default=24h"`
	Cookie string        `env:"SESSION_COOKIE, default=fb_session"`
}

type HTTPConfig struct {
	CORSOrigins    []string `env:"CORS_ORIGINS,     default=*"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS,   default=0.5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST, default=3"`
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means clients are identified by the connection address only.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// TrustedProxyNets parses TrustedProxies. A bare IP is taken as a single host.
func (h HTTPConfig) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(h.TrustedProxies))
	for _, raw := range h.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", raw)
			}
			bits := 8 * len(ip.To16())
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// StoreConfig selects the persistence driver: file, mongo, sql or memory.
type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER, default=file"`
	DataDir     string `env:"DATA_DIR,     default=./data"`
	DatabaseURL string `env:"DATABASE_URL, default=sqlite://feedback.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=feedback_board"`
}

// RedisConfig leaves Addr empty to keep session revocations in memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type SeedConfig struct {
	DemoUsers     bool   `env:"SEED_DEMO_USERS, default=true"`
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

type DispatchConfig struct {
	Workers int `env:"DISPATCH_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate fills development defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = devSecret
	}
	switch c.Store.Driver {
	case "file", "mongo", "sql", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.HTTP.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be at least 1")
	}
	if _, err := c.HTTP.TrustedProxyNets(); err != nil {
		return err
	}
	return nil
}
