// Package config loads settings for the jobscript CLI from an optional
// config file, JOBSCRIPT_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/me/jobscript/internal/logging"
	"github.com/me/jobscript/internal/script"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "JOBSCRIPT"

// Config holds CLI configuration.
type Config struct {
	// Catalog is a template file or a directory of template files.
	Catalog string `mapstructure:"catalog"`
	// Image is the default Apptainer image path.
	Image string `mapstructure:"image"`
	// OutputPattern and ErrorPattern are the default Slurm log file patterns.
	OutputPattern string    `mapstructure:"output_pattern"`
	ErrorPattern  string    `mapstructure:"error_pattern"`
	Log           LogConfig `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the logging level: debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is the log format: json, text.
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding set.
// Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (if given) into v and returns the validated result.
// Priority: flags > environment > config file > defaults.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "templates")
	v.SetDefault("image", "")
	v.SetDefault("output_pattern", script.DefaultOutputPattern)
	v.SetDefault("error_pattern", script.DefaultErrorPattern)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of [debug, info, warn, error], got %q", c.Log.Level))
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of [json, text], got %q", c.Log.Format))
	}
	if c.OutputPattern == "" {
		errs = append(errs, errors.New("output_pattern must not be empty"))
	}
	if c.ErrorPattern == "" {
		errs = append(errs, errors.New("error_pattern must not be empty"))
	}
	return errors.Join(errs...)
}
