// Package config resolves runtime settings.
//
// Precedence, lowest first: defaults, TOML file, .env file, PATHVIZ_* environment,
// flags bound to the viper instance by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lixenwraith/pathviz/heuristic"
)

const (
	EnvPrefix  = "PATHVIZ"
	configName = "pathviz"

	DefaultRows      = 40
	DefaultCols      = 40
	DefaultHeuristic = heuristic.NameEuclidean
	DefaultDelay     = 8 * time.Millisecond
	DefaultLogDir    = "logs"

	minDimension = 2
	maxDimension = 200
)

// Keys shared by flags, env and the TOML file
const (
	KeyRows        = "rows"
	KeyCols        = "cols"
	KeyHeuristic   = "heuristic"
	KeyDelay       = "delay"
	KeySound       = "sound"
	KeyTickSound   = "tick_sound"
	KeyDebug       = "debug"
	KeyLogDir      = "log_dir"
	KeyMetricsAddr = "metrics_addr"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Rows        int           `mapstructure:"rows"`
	Cols        int           `mapstructure:"cols"`
	Heuristic   string        `mapstructure:"heuristic"`
	Delay       time.Duration `mapstructure:"delay"` // Render pause per expansion
	Sound       bool          `mapstructure:"sound"`
	TickSound   bool          `mapstructure:"tick_sound"`
	Debug       bool          `mapstructure:"debug"`
	LogDir      string        `mapstructure:"log_dir"`
	MetricsAddr string        `mapstructure:"metrics_addr"` // Empty disables the endpoint
}

// Options locates optional files; empty fields use the search paths
type Options struct {
	File    string // Explicit TOML file, must exist when set
	EnvFile string // Defaults to .env in the working directory
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Rows:      DefaultRows,
		Cols:      DefaultCols,
		Heuristic: DefaultHeuristic,
		Delay:     DefaultDelay,
		Sound:     true,
		LogDir:    DefaultLogDir,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyRows, d.Rows)
	v.SetDefault(KeyCols, d.Cols)
	v.SetDefault(KeyHeuristic, d.Heuristic)
	v.SetDefault(KeyDelay, d.Delay)
	v.SetDefault(KeySound, d.Sound)
	v.SetDefault(KeyTickSound, d.TickSound)
	v.SetDefault(KeyDebug, d.Debug)
	v.SetDefault(KeyLogDir, d.LogDir)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
}

// Load fills v from every source and decodes it into a validated Config
func Load(v *viper.Viper, opts Options) (Config, error) {
	setDefaults(v)

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Heuristic = strings.ToLower(strings.TrimSpace(cfg.Heuristic))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names
func (c Config) Validate() error {
	if c.Rows < minDimension || c.Rows > maxDimension {
		return fmt.Errorf("%w: rows %d outside [%d,%d]", ErrInvalidConfig, c.Rows, minDimension, maxDimension)
	}
	if c.Cols < minDimension || c.Cols > maxDimension {
		return fmt.Errorf("%w: cols %d outside [%d,%d]", ErrInvalidConfig, c.Cols, minDimension, maxDimension)
	}
	if _, err := heuristic.ByName(c.Heuristic); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: negative delay %v", ErrInvalidConfig, c.Delay)
	}
	return nil
}
