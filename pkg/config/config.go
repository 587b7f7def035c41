// Package config loads skillmig settings from viper: flags, SKILLMIG_*
// environment variables and an optional config.yaml.
package config

import (
	"runtime"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/datadrivenconstruction/skillmig/pkg/manifest"
	"github.com/datadrivenconstruction/skillmig/pkg/skills"
)

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "SKILLMIG"

// TracingConfig configures OpenTelemetry tracing
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	Sampler string  `mapstructure:"sampler" yaml:"sampler"`
	Ratio   float64 `mapstructure:"ratio" yaml:"ratio"`
}

// Config holds every setting of a migration run
type Config struct {
	Root string `mapstructure:"root" yaml:"root"`

	Homepage           string   `mapstructure:"homepage" yaml:"homepage"`
	Author             string   `mapstructure:"author" yaml:"author"`
	License            string   `mapstructure:"license" yaml:"license"`
	ManifestVersion    string   `mapstructure:"manifest_version" yaml:"manifest_version"`
	MinOpenClawVersion string   `mapstructure:"min_openclaw_version" yaml:"min_openclaw_version"`
	Models             []string `mapstructure:"models" yaml:"models"`

	// Tables is an optional YAML file replacing the embedded keyword tables.
	Tables string `mapstructure:"tables" yaml:"tables"`

	Workers     int      `mapstructure:"workers" yaml:"workers"`
	DryRun      bool     `mapstructure:"dry_run" yaml:"dry_run"`
	Include     []string `mapstructure:"include" yaml:"include"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude"`
	Only        []string `mapstructure:"only" yaml:"only"`
	FailOnError bool     `mapstructure:"fail_on_error" yaml:"fail_on_error"`

	// Quiet limits terminal output to error lines and error messages.
	Quiet bool `mapstructure:"quiet" yaml:"quiet"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// SetDefaults registers the default of every key, which also makes each key
// visible to AllSettings and to environment lookups
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("homepage", manifest.DefaultHomepage)
	v.SetDefault("author", manifest.DefaultAuthor)
	v.SetDefault("license", manifest.DefaultLicense)
	v.SetDefault("manifest_version", manifest.DefaultVersion)
	v.SetDefault("min_openclaw_version", manifest.DefaultMinOpenClawVersion)
	v.SetDefault("models", manifest.DefaultModels)
	v.SetDefault("tables", "")
	v.SetDefault("workers", 1)
	v.SetDefault("dry_run", false)
	v.SetDefault("include", skills.DefaultInclude)
	v.SetDefault("exclude", skills.DefaultExclude)
	v.SetDefault("only", []string{})
	v.SetDefault("fail_on_error", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampler", "always")
	v.SetDefault("tracing.ratio", 1.0)
}

// Load decodes the viper settings into a Config
func Load(v *viper.Viper) (Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return cfg, errors.Wrap(err, "failed to create config decoder")
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return cfg, errors.Wrap(err, "failed to decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks and normalizes the configuration
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root must not be empty")
	}
	if c.Homepage == "" {
		return errors.New("homepage must not be empty")
	}
	if c.Workers < 0 {
		return errors.Errorf("workers cannot be negative: %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	switch c.Tracing.Sampler {
	case "", "always", "never", "ratio":
	default:
		return errors.Errorf("invalid tracing sampler %q, must be one of: always, never, ratio", c.Tracing.Sampler)
	}
	if c.Tracing.Ratio < 0 || c.Tracing.Ratio > 1 {
		return errors.Errorf("tracing ratio must be between 0 and 1, got %v", c.Tracing.Ratio)
	}
	return nil
}

// ManifestSettings returns the fixed values stamped into every claw.json
func (c *Config) ManifestSettings() manifest.Settings {
	s := manifest.DefaultSettings()
	if c.Author != "" {
		s.Author = c.Author
	}
	if c.License != "" {
		s.License = c.License
	}
	if c.ManifestVersion != "" {
		s.Version = c.ManifestVersion
	}
	if c.MinOpenClawVersion != "" {
		s.MinOpenClawVersion = c.MinOpenClawVersion
	}
	if len(c.Models) > 0 {
		s.Models = append([]string(nil), c.Models...)
	}
	return s
}
