// Package config loads furnish settings for a room project.
//
// Settings come from three layers, later layers winning: built-in
// defaults, the optional <project>/furnish.yaml file, and FURNISH_*
// variables from the process environment or <project>/.env.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Urbanninja1/2DHD-sub001/pkg/policy"
)

// File names looked up inside the project directory.
const (
	SettingsFile = "furnish.yaml"
	EnvFile      = ".env"
)

// Environment variable names. Each overrides the matching settings field.
const (
	EnvAssetDir  = "FURNISH_ASSET_DIR"
	EnvOutputDir = "FURNISH_OUTPUT_DIR"
	EnvDensity   = "FURNISH_DENSITY"
	EnvMargin    = "FURNISH_MARGIN"
	EnvSeed      = "FURNISH_SEED"
	EnvStrict    = "FURNISH_STRICT"
	EnvFormat    = "FURNISH_FORMAT"
	EnvLogLevel  = "FURNISH_LOG_LEVEL"
	EnvLogFormat = "FURNISH_LOG_FORMAT"
)

// Settings holds the pipeline configuration for one project.
type Settings struct {
	// AssetDir is where feature model paths are resolved. Relative paths
	// are relative to the project directory.
	AssetDir string `yaml:"asset_dir"`
	// OutputDir receives the generated scene modules. Relative paths are
	// relative to the project directory.
	OutputDir string `yaml:"output_dir"`
	// Density overrides the room's density tier when set.
	Density string  `yaml:"density"`
	Margin  float64 `yaml:"margin"`
	Seed    int64   `yaml:"seed"`
	// Strict promotes guardrail warnings to blocking errors.
	Strict bool        `yaml:"strict"`
	Format string      `yaml:"format"`
	Log    LogSettings `yaml:"log"`
}

// LogSettings select the slog handler.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		AssetDir:  "assets",
		OutputDir: "generated",
		Margin:    policy.DefaultMargin,
		Format:    "expanded",
		Log:       LogSettings{Level: "info", Format: "text"},
	}
}

// Load returns the settings for projectDir. A missing furnish.yaml or
// .env is not an error.
func Load(projectDir string) (*Settings, error) {
	s := Defaults()

	if err := s.readFile(filepath.Join(projectDir, SettingsFile)); err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(filepath.Join(projectDir, EnvFile))
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := s.applyEnv(lookup); err != nil {
		return nil, err
	}

	s.AssetDir = resolvePath(projectDir, s.AssetDir)
	s.OutputDir = resolvePath(projectDir, s.OutputDir)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) readFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvAssetDir, &s.AssetDir)
	str(EnvOutputDir, &s.OutputDir)
	str(EnvDensity, &s.Density)
	str(EnvFormat, &s.Format)
	str(EnvLogLevel, &s.Log.Level)
	str(EnvLogFormat, &s.Log.Format)

	if v, ok := lookup(EnvMargin); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMargin, err)
		}
		s.Margin = f
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		s.Seed = n
	}
	if v, ok := lookup(EnvStrict); ok && v != "" {
		s.Strict = envBool(v)
	}
	return nil
}

func envBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// TierNames lists the density tiers a setting may name, sparsest first.
func TierNames() []string {
	tiers := policy.Tiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.Name
	}
	return names
}

// Validate checks values that cannot be corrected later in the pipeline.
func (s *Settings) Validate() error {
	if !policy.Finite(s.Margin) || s.Margin <= 0 {
		return fmt.Errorf("margin must be a positive number of metres, got %v", s.Margin)
	}
	if s.Density != "" {
		if _, ok := policy.Tier(s.Density); !ok {
			return fmt.Errorf("unknown density tier %q (want one of %s)", s.Density, strings.Join(TierNames(), ", "))
		}
	}
	switch strings.ToLower(s.Format) {
	case "", "compact", "expanded":
	default:
		return fmt.Errorf("unknown scene format %q", s.Format)
	}
	switch strings.ToLower(s.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", s.Log.Format)
	}
	return nil
}
