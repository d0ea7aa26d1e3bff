package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type StringDBConfig struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	CallerIdentity    string  `toml:"caller_identity"`
}

type CacheConfig struct {
	// Backend selects the network store: memory, redis or memgraph.
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type DefaultsConfig struct {
	ConfidenceThreshold int `toml:"confidence_threshold"`
	SpeciesTaxonomyID   int `toml:"species_taxonomy_id"`
}

type Config struct {
	StringDB StringDBConfig `toml:"stringdb"`
	Cache    CacheConfig    `toml:"cache"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Defaults DefaultsConfig `toml:"defaults"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.StringDB.BaseURL == "" {
		c.StringDB.BaseURL = "https://string-db.org"
	}
	if c.StringDB.TimeoutSeconds == 0 {
		c.StringDB.TimeoutSeconds = 30
	}
	if c.StringDB.RequestsPerSecond == 0 {
		c.StringDB.RequestsPerSecond = 1
	}
	if c.StringDB.Burst == 0 {
		c.StringDB.Burst = 5
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Memgraph.URI == "" {
		c.Memgraph.URI = "bolt://localhost:7687"
	}
	if c.Defaults.ConfidenceThreshold == 0 {
		c.Defaults.ConfidenceThreshold = 400
	}
	if c.Defaults.SpeciesTaxonomyID == 0 {
		c.Defaults.SpeciesTaxonomyID = 10090
	}
}
