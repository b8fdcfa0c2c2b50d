package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CLIPSENT"

type App struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Version string `mapstructure:"version" yaml:"version"`
}
type Backend struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MarshalYAML writes durations as strings such as "1m0s" so a dumped
// configuration loads back unchanged.
func (b Backend) MarshalYAML() (any, error) {
	return map[string]string{"base_url": b.BaseURL, "timeout": b.Timeout.String()}, nil
}

type Intake struct {
	AcceptedTypes []string `mapstructure:"accepted_types" yaml:"accepted_types"`
}
type Poll struct {
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	MaxDuration time.Duration `mapstructure:"max_duration" yaml:"max_duration"`
}

func (p Poll) MarshalYAML() (any, error) {
	return map[string]string{"interval": p.Interval.String(), "max_duration": p.MaxDuration.String()}, nil
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}
type Output struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}
type Metrics struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}
type Root struct {
	App     App     `mapstructure:"app" yaml:"app"`
	Backend Backend `mapstructure:"backend" yaml:"backend"`
	Intake  Intake  `mapstructure:"intake" yaml:"intake"`
	Poll    Poll    `mapstructure:"poll" yaml:"poll"`
	Log     Log     `mapstructure:"log" yaml:"log"`
	Output  Output  `mapstructure:"output" yaml:"output"`
	Metrics Metrics `mapstructure:"metrics" yaml:"metrics"`
}

// Default returns the configuration used when no file, env var or flag
// overrides a key.
func Default() Root {
	return Root{
		App:     App{Name: "clip-sentiment", Version: "0.1.0"},
		Backend: Backend{BaseURL: "http://localhost:5000", Timeout: 60 * time.Second},
		Intake:  Intake{AcceptedTypes: []string{"video/mp4"}},
		Poll:    Poll{Interval: 2 * time.Second, MaxDuration: 30 * time.Minute},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// New builds a viper instance with defaults, env binding and the config file
// search path. Callers may bind flags onto it before calling Load.
func New(explicitPath string) *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.version", d.App.Version)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("intake.accepted_types", d.Intake.AcceptedTypes)
	v.SetDefault("poll.interval", d.Poll.Interval)
	v.SetDefault("poll.max_duration", d.Poll.MaxDuration)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return v
	}
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("config", env))
	v.AddConfigPath(".")
	return v
}

// Load reads an optional .env file and config file into v and decodes the
// result. A missing config file is not an error unless it was named
// explicitly.
func Load(v *viper.Viper) (*Root, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// YAML renders r in the format Load reads.
func (r Root) YAML() ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

func (r *Root) Validate() error {
	u, err := url.Parse(r.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: backend.base_url %q is not an absolute URL", r.Backend.BaseURL)
	}
	if r.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend.timeout must be positive, got %s", r.Backend.Timeout)
	}
	if r.Poll.Interval <= 0 {
		return fmt.Errorf("config: poll.interval must be positive, got %s", r.Poll.Interval)
	}
	if r.Poll.MaxDuration < 0 {
		return fmt.Errorf("config: poll.max_duration must not be negative, got %s", r.Poll.MaxDuration)
	}
	if len(r.Intake.AcceptedTypes) == 0 {
		return errors.New("config: intake.accepted_types must list at least one media type")
	}
	return nil
}
