package docexpr

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nonibytes/docexpr/docexpr/mapping"
)

// LogConfig configures the zap logger built by Build
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// MongoConfig locates the collection the CLI executes against
type MongoConfig struct {
	URI          string `mapstructure:"uri"`
	Database     string `mapstructure:"database"`
	WriteConcern string `mapstructure:"write_concern"` // majority or a node count
}

// Config is the file and environment configuration of the tooling around a
// Translator
type Config struct {
	Naming    string      `mapstructure:"naming"`
	MaxDepth  int         `mapstructure:"max_depth"`
	Trace     []string    `mapstructure:"trace"`
	Schema    string      `mapstructure:"schema"`
	Canonical bool        `mapstructure:"canonical"`
	Log       LogConfig   `mapstructure:"log"`
	Mongo     MongoConfig `mapstructure:"mongo"`
}

// LoadConfig reads configuration from an optional file (yaml, json or toml,
// by extension) and DOCEXPR_* environment variables, e.g. DOCEXPR_LOG_LEVEL.
// Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("naming", string(DefaultNaming))
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("trace", []string{})
	v.SetDefault("schema", "")
	v.SetDefault("canonical", false)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "")
	v.SetDefault("mongo.write_concern", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ConfigError("read config "+path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, ConfigError("failed to unmarshal config", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if _, err := mapping.ParseNameConvention(c.Naming); err != nil {
		return ConfigError("naming", err)
	}
	if c.MaxDepth < 0 {
		return NewError(ErrConfig, "max_depth must not be negative")
	}
	if _, err := ParseTraceLevel(c.Trace); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return ConfigError("log.level", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return NewError(ErrConfig, "log.format must be console or json, got "+c.Log.Format)
	}
	return nil
}

// Options converts the configuration into translator options logging to
// logger
func (c *Config) Options(logger *zap.Logger) (Options, error) {
	naming, err := mapping.ParseNameConvention(c.Naming)
	if err != nil {
		return Options{}, ConfigError("naming", err)
	}
	trace, err := ParseTraceLevel(c.Trace)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Logger:   logger,
		Trace:    trace,
		Naming:   naming,
		MaxDepth: c.MaxDepth,
	}.withDefaults(), nil
}

// Build creates a logger writing to stderr
func (l LogConfig) Build() (*zap.Logger, error) {
	return l.BuildWithOutput(zapcore.Lock(os.Stderr))
}

// BuildWithOutput creates a logger writing to output
func (l LogConfig) BuildWithOutput(output zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if l.Level != "" {
		lv, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, ConfigError("log.level", err)
		}
		level = lv
	}

	econf := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var enc zapcore.Encoder
	if l.Format == "json" {
		enc = zapcore.NewJSONEncoder(econf)
	} else {
		enc = zapcore.NewConsoleEncoder(econf)
	}
	return zap.New(zapcore.NewCore(enc, output, level)), nil
}
