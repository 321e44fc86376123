package devcli

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FEEDPAGER_BASE_URL.
const EnvPrefix = "FEEDPAGER"

// Reasonable defaults for production-grade operation.
const (
	DefaultBaseURL     = "https://api.example.com"
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 3
	DefaultBackoffInit = 500 * time.Millisecond
	DefaultBackoffMax  = 8 * time.Second
	DefaultLogLevel    = "info"
	DefaultCheckpoint  = 7 * 24 * time.Hour
)

// Settings captures CLI-wide settings. Each field maps to a persistent flag
// of the same name, an environment variable and an optional config file key.
type Settings struct {
	BaseURL     string `mapstructure:"base-url" validate:"required,url"`
	BearerToken string `mapstructure:"bearer-token"`
	GuestToken  string `mapstructure:"guest-token"`

	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries     int           `mapstructure:"retries" validate:"min=0,max=10"`
	BackoffInit time.Duration `mapstructure:"backoff-init" validate:"gt=0"`
	BackoffMax  time.Duration `mapstructure:"backoff-max" validate:"gtefield=BackoffInit"`

	LogLevel string `mapstructure:"log-level" validate:"oneof=none trace debug info warn error"`

	RedisAddr     string        `mapstructure:"redis-addr"`
	CheckpointTTL time.Duration `mapstructure:"checkpoint-ttl" validate:"min=0"`
	MetricsAddr   string        `mapstructure:"metrics-addr"`
	OTLPEndpoint  string        `mapstructure:"otlp-endpoint"`
}

// BindFlags registers the persistent flags backing Settings.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "optional config file (yaml, json or toml)")
	fs.String("base-url", DefaultBaseURL, "API base URL")
	fs.String("bearer-token", "", "bearer token sent as Authorization header")
	fs.String("guest-token", "", "guest token sent as x-guest-token")
	fs.Duration("timeout", DefaultTimeout, "per-request timeout")
	fs.Int("retries", DefaultRetries, "max retries on 429/5xx")
	fs.Duration("backoff-init", DefaultBackoffInit, "initial retry backoff")
	fs.Duration("backoff-max", DefaultBackoffMax, "max retry backoff")
	fs.String("log-level", DefaultLogLevel, "none, trace, debug, info, warn or error")
	fs.String("redis-addr", "", "redis address for cursor checkpoints (memory when empty)")
	fs.Duration("checkpoint-ttl", DefaultCheckpoint, "expiry of saved checkpoints")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	fs.String("otlp-endpoint", "", "export traces to this OTLP gRPC endpoint")
}

var validate = validator.New()

// LoadSettings resolves Settings from flags, FEEDPAGER_* environment
// variables and the file named by --config, in that order of precedence.
func LoadSettings(fs *pflag.FlagSet) (Settings, error) {
	vp := viper.New()
	if err := vp.BindPFlags(fs); err != nil {
		return Settings{}, err
	}
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()

	if file := vp.GetString("config"); file != "" {
		vp.SetConfigFile(file)
		if err := vp.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error while processing config file: %w", err)
		}
	}

	var s Settings
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := vp.Unmarshal(&s, hook); err != nil {
		return Settings{}, fmt.Errorf("could not unmarshal config: %w", err)
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}
