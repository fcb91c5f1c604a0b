// Package config loads b64 settings from YAML, TOML or JSON files (local or
// remote), .env files and B64_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/presbrey/b64/base64"
	"gopkg.in/yaml.v3"
)

// Config represents the b64 configuration
type Config struct {
	// Codec settings shared by the command line and the HTTP service
	Codec struct {
		Alphabet       string `yaml:"alphabet" toml:"alphabet" json:"alphabet" env:"B64_ALPHABET" validate:"omitempty,oneof=standard std url urlsafe url-safe url_safe base64url"`
		Padding        bool   `yaml:"padding" toml:"padding" json:"padding" env:"B64_PADDING"`
		IgnoreNewlines bool   `yaml:"ignore_newlines" toml:"ignore_newlines" json:"ignore_newlines" env:"B64_IGNORE_NEWLINES"`
	} `yaml:"codec" toml:"codec" json:"codec"`

	// HTTP service settings
	Server struct {
		Host         string `yaml:"host" toml:"host" json:"host" env:"B64_HOST"`
		Port         int    `yaml:"port" toml:"port" json:"port" env:"B64_PORT" validate:"min=1,max=65535"`
		MaxBodyBytes int64  `yaml:"max_body_bytes" toml:"max_body_bytes" json:"max_body_bytes" env:"B64_MAX_BODY_BYTES" validate:"min=1"`
		MetricsPath  string `yaml:"metrics_path" toml:"metrics_path" json:"metrics_path" env:"B64_METRICS_PATH" validate:"startswith=/"`
	} `yaml:"server" toml:"server" json:"server"`

	// Logging settings
	Log struct {
		Backend string `yaml:"backend" toml:"backend" json:"backend" env:"B64_LOG_BACKEND" validate:"oneof=zap logrus"`
		Level   string `yaml:"level" toml:"level" json:"level" env:"B64_LOG_LEVEL" validate:"oneof=debug info warn error"`
	} `yaml:"log" toml:"log" json:"log"`

	// Source is the file or URL the configuration was read from
	Source string `yaml:"-" toml:"-" json:"-"`
}

// Default returns a Config populated with defaults
func Default() *Config {
	cfg := &Config{}
	cfg.Codec.Alphabet = "standard"
	cfg.Codec.Padding = true
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8064
	cfg.Server.MaxBodyBytes = 8 << 20
	cfg.Server.MetricsPath = "/metrics"
	cfg.Log.Backend = "zap"
	cfg.Log.Level = "info"
	return cfg
}

// Load loads configuration from a file or URL on top of the defaults, then
// applies environment variable overrides. An empty source skips the file.
func Load(source string) (*Config, error) {
	cfg := Default()

	if source != "" {
		if err := cfg.loadFromSource(source); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromSource loads configuration from a file or URL
func (c *Config) loadFromSource(source string) error {
	var data []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return fmt.Errorf("failed to load config from URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to load config from URL, status: %s", resp.Status)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read config from URL: %w", err)
		}
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Determine the format based on the extension, YAML by default
	path := source
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".toml"):
		err = toml.Unmarshal(data, c)
	case strings.HasSuffix(path, ".json"):
		err = json.Unmarshal(data, c)
	default:
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", source, err)
	}

	c.Source = source
	return nil
}

// Validate checks field constraints and that the alphabet name is known
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := base64.ParseAlphabet(c.Codec.Alphabet); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// BuildCodec returns the codec described by the configuration
func (c *Config) BuildCodec() (base64.Codec, error) {
	alphabet, err := base64.ParseAlphabet(c.Codec.Alphabet)
	if err != nil {
		return base64.Codec{}, err
	}
	return base64.New(alphabet).
		WithPadding(c.Codec.Padding).
		IgnoreNewlines(c.Codec.IgnoreNewlines), nil
}

// ListenAddress returns the host:port the HTTP service binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	return applyEnvOverridesRecursive(reflect.ValueOf(cfg).Elem())
}

func applyEnvOverridesRecursive(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if field.PkgPath != "" {
			continue
		}

		if envTag := field.Tag.Get("env"); envTag != "" {
			if envValue, exists := os.LookupEnv(envTag); exists {
				if err := setFieldFromEnv(fieldValue, envValue); err != nil {
					return fmt.Errorf("invalid value for %s: %w", envTag, err)
				}
			}
		} else if field.Type.Kind() == reflect.Struct {
			if err := applyEnvOverridesRecursive(fieldValue); err != nil {
				return err
			}
		}
	}
	return nil
}

// setFieldFromEnv sets a field's value from an environment variable
func setFieldFromEnv(field reflect.Value, envValue string) error {
	envValue = strings.TrimSpace(envValue)

	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(envValue, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Bool:
		v, err := parseBool(envValue)
		if err != nil {
			return err
		}
		field.SetBool(v)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
