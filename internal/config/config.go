// Package config loads CLI settings from metra.yaml and METRA_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/joshharrison/metra/internal/claude"
	"github.com/joshharrison/metra/internal/logging"
)

const (
	EnvPrefix = "METRA"
	fileName  = "metra"

	DefaultModel     = claude.DefaultModel
	DefaultMaxTokens = 4096
)

// Config is the full CLI configuration.
type Config struct {
	Log    logging.Config `yaml:"log" mapstructure:"log"`
	Output OutputConfig   `yaml:"output" mapstructure:"output"`
	Claude ClaudeConfig   `yaml:"claude" mapstructure:"claude"`

	// File is the config file that was read, empty if none.
	File string `yaml:"-" mapstructure:"-"`
}

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format" validate:"oneof=table json"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
}

// ClaudeConfig configures predecessor inference.
type ClaudeConfig struct {
	Model     string `yaml:"model" mapstructure:"model" validate:"required"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gt=0"`
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c.Output); err != nil {
		return sectionError("output", err)
	}
	if err := validate.Struct(c.Claude); err != nil {
		return sectionError("claude", err)
	}
	return nil
}

var validate = newValidator()

// newValidator reports fields by their config key rather than the Go name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func sectionError(section string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", section, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(section, fe)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(section string, fe validator.FieldError) string {
	key := section + "." + fe.Field()
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", key, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got: %v)", key, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q (got: %v)", key, fe.Tag(), fe.Value())
	}
}

// Load reads configuration. An explicit path must exist; otherwise metra.yaml
// is looked up in the working directory and ~/.config/metra, and missing is
// fine. METRA_LOG_LEVEL style variables override file values.
func Load(path string) (*Config, error) {
	var search []string
	if path == "" {
		search = append(search, ".")
		if home, err := os.UserHomeDir(); err == nil {
			search = append(search, filepath.Join(home, ".config", "metra"))
		}
	}
	return load(path, search)
}

func load(path string, search []string) (*Config, error) {
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
	} else if len(search) > 0 {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		for _, dir := range search {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("log.no_color", false)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.no_color", false)
	v.SetDefault("claude.model", DefaultModel)
	v.SetDefault("claude.max_tokens", DefaultMaxTokens)
}
