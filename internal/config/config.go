package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the name Resolve looks for.
const DefaultFile = "bibalign.toml"

type OpenReviewConfig struct {
	API         string  `toml:"api"`
	User        string  `toml:"user"`
	Password    string  `toml:"password"`
	PageSize    int     `toml:"page_size"`
	RatePerSec  float64 `toml:"rate_per_sec"`
	Burst       int     `toml:"burst"`
	TimeoutSecs int     `toml:"timeout_secs"`
}

type SparqlConfig struct {
	Endpoint    string `toml:"endpoint"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type StashConfig struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
	TTLHours int    `toml:"ttl_hours"`
}

type ConcurrencyConfig struct {
	ReduceWorkers int `toml:"reduce_workers"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	OpenReview  OpenReviewConfig  `toml:"openreview"`
	Sparql      SparqlConfig      `toml:"sparql"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Stash       StashConfig       `toml:"stash"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Log         LogConfig         `toml:"log"`
	Server      ServerConfig      `toml:"server"`
}

func Default() *Config {
	return &Config{
		OpenReview: OpenReviewConfig{
			API:         "https://api.openreview.net",
			PageSize:    1000,
			RatePerSec:  5,
			Burst:       5,
			TimeoutSecs: 30,
		},
		Sparql: SparqlConfig{
			Endpoint:    "http://localhost:3030/dblp/query",
			TimeoutSecs: 60,
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Stash: StashConfig{
			Path:     "stash",
			TTLHours: 24,
		},
		Concurrency: ConcurrencyConfig{
			ReduceWorkers: 8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// Resolve finds name in dir or the nearest parent directory.
func Resolve(dir, name string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%s not found above %s: %w", name, dir, os.ErrNotExist)
		}
		abs = parent
	}
}

// LoadOrDefault loads path, or when path is empty the nearest DefaultFile
// above the working directory. A missing file falls back to Default. The
// environment is applied last.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		found, err := Resolve(".", DefaultFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		path = found
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.OpenReview.API, "OPENREVIEW_API")
	setString(&c.OpenReview.User, "OPENREVIEW_USER")
	setString(&c.OpenReview.Password, "OPENREVIEW_PASSWORD")
	setString(&c.Sparql.Endpoint, "SPARQL_ENDPOINT")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Stash.Path, "STASH_PATH")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Server.Port, "PORT")

	if v := os.Getenv("REDUCE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Concurrency.ReduceWorkers = n
		}
	}
}
