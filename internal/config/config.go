package config

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys. Each key is also read from the environment variable of
// the same name in upper case.
const (
	KeyPort             = "port"
	KeyRelayPath        = "relay_path"
	KeyPassThroughArgs  = "relay_passthrough_args"
	KeyMessageInterval  = "message_interval"
	KeyStatusInterval   = "status_interval"
	KeySettingsInterval = "settings_interval"
	KeyHistoryLimit     = "history_limit"
	KeyInitTimeout      = "ws_init_timeout"
	KeyKeepAlive        = "ws_keepalive"
	KeyLogFormat        = "log_format"
	KeyLogLevel         = "log_level"
	KeyBusMirror        = "bus_mirror"
	KeyTracingEnabled   = "tracing_enabled"
	KeyTracingService   = "tracing_service_name"
	KeyZipkinURL        = "zipkin_url"
	KeyShutdownTimeout  = "shutdown_timeout"
	KeyHTTPRateLimit    = "http_rate_limit"
	KeyHTTPRateBurst    = "http_rate_burst"
)

// Provider is the read-only view of the configuration used by the server.
type Provider interface {
	GetPort() int
	GetAddr() string
	GetRelayPath() string
	GetPassThroughArgs() bool
	GetMessageInterval() time.Duration
	GetStatusInterval() time.Duration
	GetSettingsInterval() time.Duration
	GetHistoryLimit() int
	GetInitTimeout() time.Duration
	GetKeepAlive() time.Duration
	GetLogFormat() string
	GetLogLevel() string
	GetBusMirror() bool
	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetZipkinURL() string
	GetShutdownTimeout() time.Duration
	GetHTTPRateLimit() float64
	GetHTTPRateBurst() int
}

// Config holds all configuration for the application.
type Config struct {
	Port             int           `mapstructure:"port" validate:"min=1,max=65535"`
	RelayPath        string        `mapstructure:"relay_path" validate:"required,startswith=/"`
	PassThroughArgs  bool          `mapstructure:"relay_passthrough_args"`
	MessageInterval  time.Duration `mapstructure:"message_interval" validate:"gt=0"`
	StatusInterval   time.Duration `mapstructure:"status_interval" validate:"gt=0"`
	SettingsInterval time.Duration `mapstructure:"settings_interval" validate:"gt=0"`
	HistoryLimit     int           `mapstructure:"history_limit" validate:"min=1"`
	InitTimeout      time.Duration `mapstructure:"ws_init_timeout" validate:"gt=0"`
	KeepAlive        time.Duration `mapstructure:"ws_keepalive" validate:"gte=0"`
	LogFormat        string        `mapstructure:"log_format" validate:"oneof=text json"`
	LogLevel         string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	BusMirror        bool          `mapstructure:"bus_mirror"`
	TracingEnabled   bool          `mapstructure:"tracing_enabled"`
	TracingService   string        `mapstructure:"tracing_service_name"`
	ZipkinURL        string        `mapstructure:"zipkin_url" validate:"omitempty,url"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	HTTPRateLimit    float64       `mapstructure:"http_rate_limit" validate:"gte=0"`
	HTTPRateBurst    int           `mapstructure:"http_rate_burst" validate:"gte=0"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 4000)
	v.SetDefault(KeyRelayPath, "/graphql")
	v.SetDefault(KeyPassThroughArgs, false)
	v.SetDefault(KeyMessageInterval, 5*time.Second)
	v.SetDefault(KeyStatusInterval, 7*time.Second)
	v.SetDefault(KeySettingsInterval, 9*time.Second)
	v.SetDefault(KeyHistoryLimit, 100)
	v.SetDefault(KeyInitTimeout, 10*time.Second)
	v.SetDefault(KeyKeepAlive, 15*time.Second)
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyBusMirror, true)
	v.SetDefault(KeyTracingEnabled, false)
	v.SetDefault(KeyTracingService, "relay")
	v.SetDefault(KeyZipkinURL, "http://localhost:9411/api/v2/spans")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyHTTPRateLimit, 20.0)
	v.SetDefault(KeyHTTPRateBurst, 40)
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet.
		log.Println("No .env file found, relying on environment variables")
	}
}

// New reads the configuration from v, which may carry bound flags, and the
// environment. The result is validated.
func New(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) GetPort() int                       { return c.Port }
func (c *Config) GetAddr() string                    { return ":" + strconv.Itoa(c.Port) }
func (c *Config) GetRelayPath() string               { return c.RelayPath }
func (c *Config) GetPassThroughArgs() bool           { return c.PassThroughArgs }
func (c *Config) GetMessageInterval() time.Duration  { return c.MessageInterval }
func (c *Config) GetStatusInterval() time.Duration   { return c.StatusInterval }
func (c *Config) GetSettingsInterval() time.Duration { return c.SettingsInterval }
func (c *Config) GetHistoryLimit() int               { return c.HistoryLimit }
func (c *Config) GetInitTimeout() time.Duration      { return c.InitTimeout }
func (c *Config) GetKeepAlive() time.Duration        { return c.KeepAlive }
func (c *Config) GetLogFormat() string               { return c.LogFormat }
func (c *Config) GetLogLevel() string                { return c.LogLevel }
func (c *Config) GetBusMirror() bool                 { return c.BusMirror }
func (c *Config) GetTracingEnabled() bool            { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string      { return c.TracingService }
func (c *Config) GetZipkinURL() string               { return c.ZipkinURL }
func (c *Config) GetShutdownTimeout() time.Duration  { return c.ShutdownTimeout }
func (c *Config) GetHTTPRateLimit() float64          { return c.HTTPRateLimit }
func (c *Config) GetHTTPRateBurst() int              { return c.HTTPRateBurst }
