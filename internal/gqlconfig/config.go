// Package gqlconfig loads runtime configuration the same way the
// teacher's framework did: godotenv for local .env files, viper for
// layered file/env-var config, with defaults set before the config
// file is read so a missing file still produces a usable Config.
package gqlconfig

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every knob the GraphQL runtime itself reads. Concerns
// that belong to a specific deployment (database credentials, session
// cookies, JWT secrets) are not this runtime's business — a host
// application wires its own config and hands this package only what
// the engine, transports, and tracing actually consume.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Execution  ExecutionConfig  `mapstructure:"execution"`
	Federation FederationConfig `mapstructure:"federation"`
}

// AppConfig holds application-identity configuration.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	IdleTimeout  int      `mapstructure:"idle_timeout"`
	GraphiQL     bool     `mapstructure:"graphiql"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig holds the persisted-query store backend, if any
// (gqlpersisted.MemoryStorage is the in-memory default; this config
// picks a Redis-backed one for multi-instance deployments).
type CacheConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "redis"
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	DB     int    `mapstructure:"db"`
}

// TracingConfig mirrors gqltrace.Config's fields so a host can build
// one straight from parsed config without re-deriving defaults.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Sampler        string  `mapstructure:"sampler"`
	Ratio          float64 `mapstructure:"ratio"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ZipkinEndpoint string  `mapstructure:"zipkin_endpoint"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
}

// ExecutionConfig bounds what a single request is allowed to cost
// (gqlexec.Analyzer's MaxDepth/MaxComplexity).
type ExecutionConfig struct {
	MaxDepth      int `mapstructure:"max_depth"`
	MaxComplexity int `mapstructure:"max_complexity"`
}

// FederationConfig toggles the _service/_entities subgraph contract.
type FederationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from defaults, an optional config.yaml, an
// optional .env file, and environment variables, in that ascending order
// of precedence: .env values are copied into the process environment
// (without replacing variables already set) and are then read like any
// other environment variable, so they override config.yaml.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./configs")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	overrideWithEnv(&config)
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "gqlrt")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", true)

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)
	viper.SetDefault("server.graphiql", true)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("cache.driver", "memory")
	viper.SetDefault("cache.host", "localhost")
	viper.SetDefault("cache.port", 6379)
	viper.SetDefault("cache.db", 0)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sampler", "always_on")
	viper.SetDefault("tracing.ratio", 1.0)

	viper.SetDefault("execution.max_depth", 15)
	viper.SetDefault("execution.max_complexity", 1000)

	viper.SetDefault("federation.enabled", false)
}

func overrideWithEnv(config *Config) {
	if val := os.Getenv("APP_NAME"); val != "" {
		config.App.Name = val
	}
	if val := os.Getenv("APP_ENV"); val != "" {
		config.App.Environment = val
	}
	if val := os.Getenv("APP_DEBUG"); val != "" {
		if debug, err := strconv.ParseBool(val); err == nil {
			config.App.Debug = debug
		}
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		config.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Server.Port = port
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		config.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}

	if val := os.Getenv("CACHE_HOST"); val != "" {
		config.Cache.Host = val
	}
	if val := os.Getenv("CACHE_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Cache.Port = port
		}
	}

	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.Tracing.Enabled = enabled
		}
	}
	if val := os.Getenv("OTLP_ENDPOINT"); val != "" {
		config.Tracing.OTLPEndpoint = val
	}

	if val := os.Getenv("FEDERATION_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.Federation.Enabled = enabled
		}
	}
}

// IsProduction returns true if the environment is production.
func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

// IsDevelopment returns true if the environment is development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// RequestTimeout converts the configured write timeout into a
// time.Duration for handlers that need one directly.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}
