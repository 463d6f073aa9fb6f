package main

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration for the caching proxy. Values come
// from the YAML config file, overridden by environment variables, then by
// command line flags.
type Config struct {
	Port        int    `yaml:"port" env:"MIDAS_PORT"`
	Origin      string `yaml:"origin" env:"MIDAS_ORIGIN"`
	StoragePath string `yaml:"storagePath" env:"MIDAS_STORAGE_PATH"`
	// MaxAge is the default freshness lifetime in seconds.
	MaxAge *int `yaml:"maxAge" env:"MIDAS_MAX_AGE"`
	// StaleWhileRevalidate is the stale grace window in seconds.
	// Zero disables background refreshes entirely.
	StaleWhileRevalidate *int  `yaml:"staleWhileRevalidate" env:"MIDAS_STALE_WHILE_REVALIDATE"`
	CacheableStatusCodes []int `yaml:"cacheableStatusCodes" env:"MIDAS_CACHEABLE_STATUS_CODES"`
}

func loadConfig(filename string) (Config, error) {
	var config Config
	if filename != "" {
		configBytes, err := os.ReadFile(filename)
		if err != nil {
			return config, err
		}
		if err := yaml.Unmarshal(configBytes, &config); err != nil {
			return config, err
		}
	}
	err := env.Parse(&config)
	return config, err
}
