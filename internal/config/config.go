// Package config loads the process configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/signbridge/internal/capture"
	"github.com/ayusman/signbridge/internal/classifier"
	"github.com/ayusman/signbridge/internal/detector"
	"github.com/ayusman/signbridge/internal/logging"
)

// DirName is the per-user directory holding the config and the database.
const DirName = ".signbridge"

// Config is the process configuration. Session behaviour (mirror, auto
// input, suggestion mode, threshold) is stored in the database instead.
type Config struct {
	Camera     CameraConfig     `yaml:"camera"`
	Detector   DetectorConfig   `yaml:"detector"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Suggest    SuggestConfig    `yaml:"suggest"`
	Log        logging.Config   `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	// DataDir holds signbridge.db. A leading "~" expands to the home directory.
	DataDir string `yaml:"data_dir"`
}

type CameraConfig struct {
	Device int `yaml:"device"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type DetectorConfig struct {
	Script string `yaml:"script"`
	Python string `yaml:"python"`
}

type ClassifierConfig struct {
	Model     string `yaml:"model"`
	InputSize int    `yaml:"input_size"`
}

type SuggestConfig struct {
	// Lexicon is an optional word-per-line file replacing the built-in list.
	Lexicon string `yaml:"lexicon"`
}

type MetricsConfig struct {
	// Listen is the address serving Prometheus metrics at /metrics, for
	// example "127.0.0.1:9464". Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cls := classifier.DefaultConfig()
	return &Config{
		Camera: CameraConfig{
			Width:  capture.DefaultWidth,
			Height: capture.DefaultHeight,
		},
		Classifier: ClassifierConfig{
			Model:     cls.Model,
			InputSize: cls.InputSize,
		},
		Log:     logging.Config{Level: "info", Format: "console"},
		DataDir: "~/" + DirName,
	}
}

// DefaultPath returns ~/.signbridge/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DirName, "config.yaml")
	}
	return filepath.Join(home, DirName, "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates it.
// Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns a joined error listing every invalid field.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Camera.Device < 0 {
		errs = append(errs, fmt.Errorf("camera.device %d must not be negative", cfg.Camera.Device))
	}
	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera.width and camera.height must be positive, got %dx%d", cfg.Camera.Width, cfg.Camera.Height))
	}
	if cfg.Classifier.InputSize <= 0 {
		errs = append(errs, fmt.Errorf("classifier.input_size %d must be positive", cfg.Classifier.InputSize))
	}
	if cfg.Classifier.Model == "" {
		errs = append(errs, errors.New("classifier.model is required"))
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: json, console", cfg.Log.Format))
	}
	if cfg.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}

	return errors.Join(errs...)
}

// ResolveDataDir expands a leading "~" in DataDir.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve data_dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir, nil
}

// CaptureConfig converts to the capture package's configuration.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		Device: c.Camera.Device,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
	}
}

// DetectorConfig converts to the detector package's configuration.
func (c *Config) DetectorConfig() detector.Config {
	d := detector.DefaultConfig()
	if c.Detector.Script != "" {
		d.Script = c.Detector.Script
	}
	if c.Detector.Python != "" {
		d.Python = c.Detector.Python
	}
	return d
}

// ClassifierConfig converts to the classifier package's configuration.
func (c *Config) ClassifierConfig() classifier.Config {
	return classifier.Config{
		Model:     c.Classifier.Model,
		InputSize: c.Classifier.InputSize,
	}
}
