// Package config loads the settings a host process needs to stand up a
// provider with swrcache: which store, how values are encoded, how keys are
// hashed and where environment events come from.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: SWRCACHE_PROVIDER_KIND=redis.
const EnvPrefix = "SWRCACHE"

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	GenStore GenStoreConfig `mapstructure:"genstore"`
	Codec    string         `mapstructure:"codec"`           // json, cbor, msgpack, structpb, bytes, string
	MaxValue int            `mapstructure:"max_value_bytes"` // byte providers drop larger entries; 0 = unlimited
	Hasher   string         `mapstructure:"hasher"`          // cbor, msgpack
	Env      EnvConfig      `mapstructure:"env"`
	Log      LogConfig      `mapstructure:"log"`
}

type ProviderConfig struct {
	Kind      string          `mapstructure:"kind"` // memory, ristretto, bigcache, redis
	Ristretto RistrettoConfig `mapstructure:"ristretto"`
	Bigcache  BigcacheConfig  `mapstructure:"bigcache"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type RistrettoConfig struct {
	NumCounters int64         `mapstructure:"num_counters"`
	MaxCost     int64         `mapstructure:"max_cost"`
	BufferItems int64         `mapstructure:"buffer_items"`
	TTL         time.Duration `mapstructure:"ttl"`
	Metrics     bool          `mapstructure:"metrics"`
}

type BigcacheConfig struct {
	LifeWindow         time.Duration `mapstructure:"life_window"`
	CleanWindow        time.Duration `mapstructure:"clean_window"`
	Shards             int           `mapstructure:"shards"`
	MaxEntrySize       int           `mapstructure:"max_entry_size"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

type GenStoreConfig struct {
	Kind            string        `mapstructure:"kind"` // local, redis
	TTL             time.Duration `mapstructure:"ttl"`  // redis only
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Retention       time.Duration `mapstructure:"retention"`
}

// EnvConfig names the sources of focus and reconnect events. Leaving both
// fields of a source empty disables it; Headless disables everything.
type EnvConfig struct {
	Headless  bool         `mapstructure:"headless"`
	Focus     SourceConfig `mapstructure:"focus"`
	Reconnect SourceConfig `mapstructure:"reconnect"`
}

type SourceConfig struct {
	Signals []string `mapstructure:"signals"` // e.g. [SIGUSR1]
	File    string   `mapstructure:"file"`    // e.g. /etc/resolv.conf
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text, json
	File       string `mapstructure:"file"`   // empty => stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.kind", "memory")
	v.SetDefault("provider.ristretto.num_counters", 100_000)
	v.SetDefault("provider.ristretto.max_cost", 10_000)
	v.SetDefault("provider.ristretto.buffer_items", 64)
	v.SetDefault("provider.bigcache.life_window", "10m")
	v.SetDefault("provider.bigcache.shards", 1024)
	v.SetDefault("provider.redis.addr", "127.0.0.1:6379")
	v.SetDefault("provider.redis.prefix", "swr:")
	v.SetDefault("provider.redis.op_timeout", "2s")
	v.SetDefault("genstore.kind", "local")
	v.SetDefault("codec", "json")
	v.SetDefault("max_value_bytes", 0)
	v.SetDefault("hasher", "cbor")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
}

// Default returns the configuration Load produces without a file.
func Default() *Config {
	c, err := Load("")
	if err != nil {
		panic(err) // defaults always decode and validate
	}
	return c
}

// Load reads path (any format viper knows by extension), applies defaults
// and SWRCACHE_* environment overrides, then validates. An empty path loads
// defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", v.ConfigFileUsed(), err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	lower := func(s *string) { *s = strings.ToLower(strings.TrimSpace(*s)) }
	lower(&c.Provider.Kind)
	lower(&c.GenStore.Kind)
	lower(&c.Codec)
	lower(&c.Hasher)
	lower(&c.Log.Level)
	lower(&c.Log.Format)
	for _, s := range []*SourceConfig{&c.Env.Focus, &c.Env.Reconnect} {
		for i := range s.Signals {
			s.Signals[i] = strings.ToUpper(strings.TrimSpace(s.Signals[i]))
		}
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider.Kind {
	case "memory", "bigcache":
	case "ristretto":
		r := c.Provider.Ristretto
		if r.NumCounters <= 0 || r.MaxCost <= 0 || r.BufferItems <= 0 {
			errs = append(errs, errors.New("provider.ristretto: num_counters, max_cost and buffer_items must be > 0"))
		}
	case "redis":
		if c.Provider.Redis.Addr == "" {
			errs = append(errs, errors.New("provider.redis.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("provider.kind: unknown provider %q", c.Provider.Kind))
	}
	if c.Provider.Kind == "bigcache" && c.Provider.Bigcache.LifeWindow <= 0 {
		errs = append(errs, errors.New("provider.bigcache.life_window must be > 0"))
	}

	switch c.GenStore.Kind {
	case "local":
	case "redis":
		if c.Provider.Kind != "redis" {
			errs = append(errs, errors.New("genstore.kind=redis requires provider.kind=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("genstore.kind: unknown genstore %q", c.GenStore.Kind))
	}

	switch c.Codec {
	case "json", "cbor", "msgpack", "structpb", "protobuf", "bytes", "string":
	default:
		errs = append(errs, fmt.Errorf("codec: unknown codec %q", c.Codec))
	}
	if c.MaxValue < 0 {
		errs = append(errs, errors.New("max_value_bytes must be >= 0"))
	}
	switch c.Hasher {
	case "cbor", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("hasher: unknown hasher %q", c.Hasher))
	}

	for name, s := range map[string]SourceConfig{"focus": c.Env.Focus, "reconnect": c.Env.Reconnect} {
		for _, sig := range s.Signals {
			if _, err := lookupSignal(sig); err != nil {
				errs = append(errs, fmt.Errorf("env.%s.signals: %w", name, err))
			}
		}
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
