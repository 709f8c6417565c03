// Package config loads esq settings from defaults, an optional file and
// ESQ_ prefixed environment variables, in increasing priority.
package config

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. ESQ_ELASTICSEARCH_ADDRESSES.
const EnvPrefix = "ESQ"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root configuration.
type Config struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Breaker       BreakerConfig       `mapstructure:"breaker"`
	Log           LogConfig           `mapstructure:"log"`
	Search        SearchConfig        `mapstructure:"search"`
}

// ElasticsearchConfig holds the cluster connection.
type ElasticsearchConfig struct {
	Addresses   []string      `mapstructure:"addresses"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	APIKey      string        `mapstructure:"api_key"`
	BearerToken string        `mapstructure:"bearer_token"`
	IndexPrefix string        `mapstructure:"index_prefix"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// BreakerConfig configures the circuit breaker around searches.
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	DefaultTake int `mapstructure:"default_take"`
}

// Load reads configuration. path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config: unable to decode")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.api_key", "")
	v.SetDefault("elasticsearch.bearer_token", "")
	v.SetDefault("elasticsearch.index_prefix", "")
	v.SetDefault("elasticsearch.timeout", 30*time.Second)
	v.SetDefault("elasticsearch.max_retries", 3)
	v.SetDefault("elasticsearch.retry_delay", 500*time.Millisecond)

	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", time.Minute)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.failure_ratio", 0.6)
	v.SetDefault("breaker.min_requests", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("search.default_take", 10)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	if len(c.Elasticsearch.Addresses) == 0 {
		problems = append(problems, "elasticsearch.addresses is empty")
	}
	if c.Elasticsearch.Timeout < 0 {
		problems = append(problems, "elasticsearch.timeout is negative")
	}
	if c.Elasticsearch.MaxRetries < 0 {
		problems = append(problems, "elasticsearch.max_retries is negative")
	}
	if c.Breaker.Enabled && (c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1) {
		problems = append(problems, "breaker.failure_ratio must be in (0, 1]")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level "+err.Error())
	}
	if c.Search.DefaultTake < 0 {
		problems = append(problems, "search.default_take is negative")
	}
	if len(problems) > 0 {
		return errors.Wrap(ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// NewLogger builds a console logger writing to w at the configured level.
func (c LogConfig) NewLogger(w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(err, "config: log level")
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	opts := []zap.Option{}
	if c.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		opts = append(opts, zap.AddCaller(), zap.Development())
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core, opts...), nil
}
