package config

import (
	"fmt"
	"os"
)

// Load reads, parses, normalizes, applies environment overrides to, and
// validates a config file. Relative paths resolve against the directory that
// holds .essaylens.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	ApplyEnv(&cfg, os.LookupEnv)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	ResolvePaths(&cfg, RepoRootFromConfigPath(path))
	return cfg, nil
}

// LoadOrDefault loads the config at path, or the nearest one above the
// working directory when path is empty. A missing file yields Default with
// environment overrides applied and paths resolved against baseDir.
func LoadOrDefault(path, baseDir string) (Config, string, error) {
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	found, err := FindConfigPath(baseDir)
	if err == nil {
		cfg, err := Load(found)
		return cfg, found, err
	}
	cfg := Default()
	ApplyEnv(&cfg, os.LookupEnv)
	if err := Validate(&cfg); err != nil {
		return Config{}, "", err
	}
	if baseDir == "" {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			baseDir = wd
		}
	}
	ResolvePaths(&cfg, baseDir)
	return cfg, "", nil
}
