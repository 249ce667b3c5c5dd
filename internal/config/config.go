package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds application level configuration aggregated from flags, env and config files.
type Config struct {
	Server struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}
	Database struct {
		Path string
	}
	Auth struct {
		Secret       string
		TokenTTL     time.Duration
		CookieName   string
		CookieSecure bool
		Provider     string
		ClientID     string
		ClientSecret string
		RedirectURL  string
		Issuer       string
		APIURL       string
		HTTPTimeout  time.Duration
	}
	Cache struct {
		Driver string
		TTL    time.Duration
		Redis  struct {
			Addr     string
			Password string
			DB       int
		}
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from command-line args, environment variables and
// optional config files, in that order of precedence.
func Load(args []string) (Config, error) {
	// a missing .env is fine; existing env vars win
	_ = gotenv.Load()

	fs := pflag.NewFlagSet("blog", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config file")
	fs.String("addr", "", "listen address")
	fs.String("db", "", "sqlite database path")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.readheadertimeout", 5*time.Second)
	v.SetDefault("server.readtimeout", 15*time.Second)
	v.SetDefault("server.writetimeout", 30*time.Second)
	v.SetDefault("server.idletimeout", 60*time.Second)
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("database.path", "data/blog.db")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.tokenttl", 24*time.Hour)
	v.SetDefault("auth.cookiename", "blog_session")
	v.SetDefault("auth.cookiesecure", false)
	v.SetDefault("auth.provider", "github")
	v.SetDefault("auth.clientid", "")
	v.SetDefault("auth.clientsecret", "")
	v.SetDefault("auth.redirecturl", "http://localhost:8080/auth/callback")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.apiurl", "https://api.github.com")
	v.SetDefault("auth.httptimeout", 10*time.Second)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "blog")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for key, flag := range map[string]string{
		"server.addr":   "addr",
		"database.path": "db",
		"log.level":     "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("auth.secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.tokenttl must be positive"))
	}
	if c.Auth.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("auth.httptimeout must be positive"))
	}
	if c.Server.ReadHeaderTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.readheadertimeout and server.writetimeout must be positive"))
	}
	if c.Auth.ClientID == "" || c.Auth.ClientSecret == "" {
		errs = append(errs, errors.New("auth.clientid and auth.clientsecret are required"))
	}

	switch c.Auth.Provider {
	case "github":
	case "oidc":
		if c.Auth.Issuer == "" {
			errs = append(errs, errors.New("auth.issuer is required for the oidc provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.provider %q", c.Auth.Provider))
	}

	switch c.Cache.Driver {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}

	return errors.Join(errs...)
}
