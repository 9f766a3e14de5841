// Package config loads weft settings from the embedded defaults, an optional
// YAML file and WEFT_ prefixed environment variables, in that order.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/weft/pkg/pointcut"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvPrefix prefixes every environment override, e.g. WEFT_SERVER_ADDR.
const EnvPrefix = "WEFT"

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Events  EventsConfig  `mapstructure:"events" yaml:"events"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Aspects AspectsConfig `mapstructure:"aspects" yaml:"aspects"`
	Rules   []RuleSpec    `mapstructure:"rules" yaml:"rules"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Validate enables OpenAPI request validation on the demo API.
	Validate bool `mapstructure:"validate" yaml:"validate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Stream  string `mapstructure:"stream" yaml:"stream"`
	MaxLen  int64  `mapstructure:"maxlen" yaml:"maxlen"`
}

// EventsConfig sizes the asynchronous buffer in front of remote sinks.
type EventsConfig struct {
	Buffer int `mapstructure:"buffer" yaml:"buffer"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type AspectsConfig struct {
	SlowThreshold time.Duration `mapstructure:"slowthreshold" yaml:"slowthreshold"`
	Tag           string        `mapstructure:"tag" yaml:"tag"`
}

// RuleSpec binds a pointcut expression to a named aspect from the catalog.
type RuleSpec struct {
	Pointcut string `mapstructure:"pointcut" yaml:"pointcut"`
	Aspect   string `mapstructure:"aspect" yaml:"aspect"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration. An empty path means defaults plus environment.
func Load(path string) (Config, error) {
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return Config{}, fmt.Errorf("parse default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the embedded configuration, ignoring the environment.
func Default() Config {
	v := viper.New()
	v.SetConfigType("yaml")
	var cfg Config
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		panic(fmt.Sprintf("embedded config: %v", err))
	}
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("embedded config: %v", err))
	}
	return cfg
}

// Validate checks every rule's pointcut expression.
func (c Config) Validate() error {
	var errs []error
	for i, r := range c.Rules {
		if r.Aspect == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: aspect is required", i))
		}
		if _, err := pointcut.Parse(r.Pointcut); err != nil {
			errs = append(errs, fmt.Errorf("rules[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

type ruleDocument struct {
	Rules []RuleSpec `yaml:"rules"`
}

// LoadRules reads a standalone rules document (the format written by `weft rules -o yaml`).
func LoadRules(r io.Reader) ([]RuleSpec, error) {
	var doc ruleDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := (Config{Rules: doc.Rules}).Validate(); err != nil {
		return nil, err
	}
	return doc.Rules, nil
}

// WriteRules is the inverse of LoadRules.
func WriteRules(w io.Writer, rules []RuleSpec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ruleDocument{Rules: rules}); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}
