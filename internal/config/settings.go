package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// Settings configures the preflight tool itself, as opposed to the
// server configuration it validates.
type Settings struct {
	LogLevel    string        `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	LogFile     string        `yaml:"log_file" json:"log_file"`
	DataDir     string        `yaml:"data_dir" json:"data_dir" validate:"required"`
	MetricsFile string        `yaml:"metrics_file" json:"metrics_file"`
	Probe       ProbeSettings `yaml:"probe" json:"probe"`
}

// ProbeSettings configures the search-index version probe.
type ProbeSettings struct {
	// Retries is the number of retries after the first failed attempt.
	Retries int `yaml:"retries" json:"retries" validate:"min=0,max=100"`
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay" validate:"min=0"`
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

// DefaultDataDir holds the last-pass marker.
const DefaultDataDir = "/var/opt/opscode/preflight"

// NewSettings returns the shipped tool defaults.
func NewSettings() *Settings {
	return &Settings{
		LogLevel: "info",
		DataDir:  DefaultDataDir,
		Probe: ProbeSettings{
			Retries:    5,
			RetryDelay: 5 * time.Second,
			Timeout:    10 * time.Second,
		},
	}
}

// LoadSettings applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. Settings file (optional; missing file is fine)
//  3. Environment variables (PREFLIGHT_*)
//
// Command-line flags are applied by the caller after this returns, followed by Validate.
func LoadSettings(path string) (*Settings, error) {
	s := NewSettings()

	if path != "" {
		if err := s.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := s.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return perrors.New(perrors.ErrCodeFilePermission, fmt.Sprintf("failed to read settings file %s", path), err)
	}

	// Decode over the defaults so absent keys keep their value
	if err := yaml.Unmarshal(data, s); err != nil {
		return perrors.New(perrors.ErrCodeSettings, fmt.Sprintf("failed to parse settings file %s", path), err)
	}
	return nil
}

// applyEnvOverrides applies PREFLIGHT_* environment variable overrides.
func (s *Settings) applyEnvOverrides() error {
	if v := os.Getenv("PREFLIGHT_LOG_LEVEL"); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PREFLIGHT_LOG_FILE"); v != "" {
		s.LogFile = v
	}
	if v := os.Getenv("PREFLIGHT_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := os.Getenv("PREFLIGHT_METRICS_FILE"); v != "" {
		s.MetricsFile = v
	}
	if v := os.Getenv("PREFLIGHT_PROBE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perrors.New(perrors.ErrCodeSettings, "PREFLIGHT_PROBE_RETRIES must be an integer", err)
		}
		s.Probe.Retries = n
	}
	if v := os.Getenv("PREFLIGHT_PROBE_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return perrors.New(perrors.ErrCodeSettings, "PREFLIGHT_PROBE_RETRY_DELAY must be a duration", err)
		}
		s.Probe.RetryDelay = d
	}
	if v := os.Getenv("PREFLIGHT_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return perrors.New(perrors.ErrCodeSettings, "PREFLIGHT_PROBE_TIMEOUT must be a duration", err)
		}
		s.Probe.Timeout = d
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings after all overrides have been applied.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return perrors.New(perrors.ErrCodeSettings, fmt.Sprintf("invalid settings: %v", err), err)
	}
	return nil
}

// MarkerDir returns the absolute directory holding the last-pass marker.
func (s *Settings) MarkerDir() string {
	if abs, err := filepath.Abs(s.DataDir); err == nil {
		return abs
	}
	return s.DataDir
}
