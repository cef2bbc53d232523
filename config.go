package main

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// BuildConfig is a tree build recipe. It can be read from a YAML file and
// overridden by command line flags.
type BuildConfig struct {
	Name         string   `yaml:"name"`
	Dictionaries []string `yaml:"dictionaries"`
	Openings     []string `yaml:"openings"`
	DualDepth    int      `yaml:"dual_depth"`
	Output       string   `yaml:"output"`
	Workers      int      `yaml:"workers"`
}

// loadBuildConfig reads a recipe file. An empty path yields the defaults.
func loadBuildConfig(path string) (BuildConfig, error) {
	var cfg BuildConfig
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read recipe: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse recipe %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *BuildConfig) applyDefaults() {
	if c.Output == "" {
		c.Output = getEnv("TREE_FILE", "tree.bin.gz")
	}
	if c.Workers <= 0 {
		c.Workers = getEnvInt("SEARCH_WORKERS", runtime.GOMAXPROCS(0))
	}
	if c.Name == "" {
		c.Name = "default"
	}
}

func (c BuildConfig) validate() error {
	if c.DualDepth < 0 {
		return fmt.Errorf("dual_depth must not be negative, got %d", c.DualDepth)
	}
	return nil
}
