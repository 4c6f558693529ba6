// Package config loads the tuning configuration of the kolam MCP server.
//
// Config file locations (priority order):
//  1. $KOLAM_MCP_CONFIG
//  2. ./kolam-mcp.yaml
//
// With no file present the built-in defaults are used. Fields missing from
// a file keep their default values. KOLAM_MCP_LOG_LEVEL overrides log_level.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/kolam-tools-mcp/internal/builder"
	"github.com/ironsheep/kolam-tools-mcp/internal/detection"
)

const (
	// EnvConfig names the config file to load.
	EnvConfig = "KOLAM_MCP_CONFIG"

	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "KOLAM_MCP_LOG_LEVEL"

	// DefaultPath is tried when EnvConfig is unset.
	DefaultPath = "kolam-mcp.yaml"

	LogLevelInfo  = "info"
	LogLevelDebug = "debug"

	defaultBatchConcurrency = 4
)

// Config holds every tunable of the analysis pipeline and server.
type Config struct {
	LogLevel         string           `yaml:"log_level"`
	Detection        detection.Params `yaml:"detection"`
	Graph            builder.Params   `yaml:"graph"`
	BatchConcurrency int              `yaml:"batch_concurrency"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:         LogLevelInfo,
		Detection:        detection.DefaultParams(),
		Graph:            builder.DefaultParams(),
		BatchConcurrency: defaultBatchConcurrency,
	}
}

// Load finds and loads the config file, or returns defaults if none is
// found. The returned path is empty when defaults were used.
func Load() (*Config, string, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		if _, err := os.Stat(DefaultPath); errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			cfg.applyEnv()
			return cfg, "", nil
		}
		path = DefaultPath
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	cfg.applyEnv()
	return cfg, path, nil
}

// LoadFromPath loads the config file at path over the defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == LogLevelDebug
}

// applyDefaults replaces values that would disable or break a stage.
func (c *Config) applyDefaults() {
	def := Default()

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = def.BatchConcurrency
	}

	d := &c.Detection
	if d.MinRadius <= 0 || d.MaxRadius < d.MinRadius {
		d.MinRadius, d.MaxRadius = def.Detection.MinRadius, def.Detection.MaxRadius
	}
	if len(d.BlobScales) == 0 {
		d.BlobScales = def.Detection.BlobScales
	}
	if len(d.TemplateRadii) == 0 {
		d.TemplateRadii = def.Detection.TemplateRadii
	}
	if d.MaxDots <= 0 {
		d.MaxDots = def.Detection.MaxDots
	}
	if d.ClusterEps <= 0 {
		d.ClusterEps = def.Detection.ClusterEps
	}
	if d.TemplateThreshold <= 0 || d.TemplateThreshold > 1 {
		d.TemplateThreshold = def.Detection.TemplateThreshold
	}
	if d.OverlapTolerance <= 0 {
		d.OverlapTolerance = def.Detection.OverlapTolerance
	}

	g := &c.Graph
	if g.SampleLimit <= 0 {
		g.SampleLimit = def.Graph.SampleLimit
	}
	if g.MinVotes <= 0 {
		g.MinVotes = def.Graph.MinVotes
	}
	if g.MaxDistance < g.MinDistance {
		g.MinDistance, g.MaxDistance = def.Graph.MinDistance, def.Graph.MaxDistance
	}
	if g.CorridorWidth <= 0 {
		g.CorridorWidth = def.Graph.CorridorWidth
	}
	if g.HubFactor <= 0 {
		g.HubFactor = def.Graph.HubFactor
	}
	if g.HubKeep <= 0 || g.HubKeep > 1 {
		g.HubKeep = def.Graph.HubKeep
	}
	if g.HubMinKeep <= 0 {
		g.HubMinKeep = def.Graph.HubMinKeep
	}
}

func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}
