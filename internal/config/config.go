// Package config loads bibnumber settings from TOML, the environment and
// .env files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/ironsheep/bibnumber/internal/detection"
	"github.com/ironsheep/bibnumber/internal/imaging"
	"github.com/ironsheep/bibnumber/internal/logger"
	"github.com/ironsheep/bibnumber/internal/ocr"
)

const (
	appName = "bibnumber"

	// DefaultOutputName is the CSV written by directory runs.
	DefaultOutputName = "out.csv"

	// Environment overrides applied by ApplyEnv.
	EnvWorkers        = "BIBNUMBER_WORKERS"
	EnvTessdataPrefix = "BIBNUMBER_TESSDATA_PREFIX"
	EnvLanguage       = "BIBNUMBER_LANGUAGE"
)

// Config is the complete bibnumber configuration.
type Config struct {
	Detection detection.Params    `toml:"detection"`
	Edges     imaging.EdgeOptions `toml:"edges"`
	OCR       ocr.Options         `toml:"ocr"`
	Batch     BatchConfig         `toml:"batch"`
	Log       LogConfig           `toml:"log"`
}

type BatchConfig struct {
	// Workers bounds the images processed at once. Zero uses one worker per CPU.
	Workers int `toml:"workers"`

	// OutputName is the file written into a processed directory.
	OutputName string `toml:"output_name"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Detection: detection.DefaultParams(),
		Edges:     imaging.DefaultEdgeOptions(),
		OCR:       ocr.DefaultOptions(),
		Batch: BatchConfig{
			Workers:    0,
			OutputName: DefaultOutputName,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the config file location: an existing
// bibnumber/config.toml in the XDG config directories, or the path under
// $XDG_CONFIG_HOME where one would be created.
func DefaultPath() string {
	rel := filepath.Join(appName, "config.toml")
	if path, err := xdg.SearchConfigFile(rel); err == nil {
		return path
	}
	return filepath.Join(xdg.ConfigHome, rel)
}

// LoadConfigFromFile reads path over the defaults. A missing file is not an
// error.
func LoadConfigFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config, nil // no config file, return defaults
	}

	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	return config, nil
}

// Load reads the config at path (DefaultPath when empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	config, err := LoadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadEnv loads the given .env files (".env" when none are given) into the
// process environment without overriding variables already set. Missing
// files are skipped.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from BIBNUMBER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvWorkers, v)
		}
		c.Batch.Workers = n
	}
	if v := os.Getenv(EnvTessdataPrefix); v != "" {
		c.OCR.TessdataPrefix = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		c.OCR.Language = v
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Edges.Low < 0 || c.Edges.High < c.Edges.Low {
		errs = append(errs, fmt.Errorf("edges: need 0 <= canny_low <= canny_high, got %v and %v",
			c.Edges.Low, c.Edges.High))
	}
	if c.OCR.Language == "" {
		errs = append(errs, errors.New("ocr: language must not be empty"))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch: workers must not be negative, got %d", c.Batch.Workers))
	}
	if c.Batch.OutputName == "" || strings.ContainsAny(c.Batch.OutputName, `/\`) {
		errs = append(errs, fmt.Errorf("batch: output_name must be a plain file name, got %q", c.Batch.OutputName))
	}
	if _, ok := logger.LevelFromString(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log: unknown level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
