// Package config loads the downhill configuration from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/system"
	"github.com/zeusync/downhill/internal/core/systems/physics"
	"github.com/zeusync/downhill/internal/core/terrain"
	"github.com/zeusync/downhill/internal/server"
)

var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Level selects a hand-made level instead of generated starting terrain.
type Level struct {
	// Path is the YAML level file. Empty means generated terrain.
	Path   string `json:"path" yaml:"path" toml:"path"`
	Number int    `json:"number" yaml:"number" toml:"number"`
}

type Config struct {
	Log        log.Config              `json:"log" yaml:"log" toml:"log"`
	Physics    physics.Config          `json:"physics" yaml:"physics" toml:"physics"`
	Terrain    terrain.Config          `json:"terrain" yaml:"terrain" toml:"terrain"`
	Generator  terrain.GeneratorConfig `json:"generator" yaml:"generator" toml:"generator"`
	Simulation system.Config           `json:"simulation" yaml:"simulation" toml:"simulation"`
	Server     server.Config           `json:"server" yaml:"server" toml:"server"`
	Level      Level                   `json:"level" yaml:"level" toml:"level"`
}

func Default() Config {
	return Config{
		Log:        log.DefaultConfig(),
		Physics:    physics.DefaultConfig(),
		Terrain:    terrain.DefaultConfig(),
		Generator:  terrain.DefaultGeneratorConfig(),
		Simulation: system.DefaultConfig(),
		Server:     server.DefaultServerConfig(),
	}
}

// Load reads path over Default. The format follows the file extension:
// .yaml/.yml or .toml. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("%w: %s: unknown key %s", ErrInvalidConfig, path, undecoded[0])
		}
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if cfg.Level.Path != "" && !filepath.IsAbs(cfg.Level.Path) {
		cfg.Level.Path = filepath.Join(filepath.Dir(path), cfg.Level.Path)
	}
	return cfg, cfg.Validate()
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		errs = append(errs, fmt.Errorf("log encoding %q", c.Log.Encoding))
	}
	for _, v := range []interface{ Validate() error }{c.Physics, c.Terrain, c.Generator, c.Simulation, c.Server} {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Level.Path != "" && c.Level.Number < 0 {
		errs = append(errs, fmt.Errorf("level number %d", c.Level.Number))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
