package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultNormalizerURL = "https://nodenormalization-sri.renci.org"
	DefaultNameResURL    = "https://name-resolution-sri-dev.apps.renci.org"

	MatchModeSubstring = "substring"
	MatchModeWord      = "word"
)

type ResolutionConfig struct {
	NormalizerURL      string  `toml:"normalizer_url"`
	NameResolverURL    string  `toml:"name_resolver_url"`
	NormalizeBatchSize int     `toml:"normalize_batch_size"`
	SynonymsBatchSize  int     `toml:"synonyms_batch_size"`
	LookupBatchSize    int     `toml:"lookup_batch_size"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	MaxRetries         int     `toml:"max_retries"`
	Concurrency        int     `toml:"concurrency"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
}

type ClassifierConfig struct {
	Delimiter       string `toml:"delimiter"`
	Placeholder     string `toml:"placeholder"`
	MaxEdges        int    `toml:"max_edges"`
	EdgeBatchSize   int    `toml:"edge_batch_size"`
	Workers         int    `toml:"workers"`
	TypeFilter      bool   `toml:"type_filter"`
	MatchMode       string `toml:"match_mode"`
	LookupLimit     int    `toml:"lookup_limit"`
	LookupCacheSize int    `toml:"lookup_cache_size"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type MemgraphConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	OutputDir string `toml:"output_dir"`
}

type LoggingConfig struct {
	Mode  string `toml:"mode"`
	Level string `toml:"level"`
}

type Config struct {
	Resolution ResolutionConfig `toml:"resolution"`
	Classifier ClassifierConfig `toml:"classifier"`
	Output     OutputConfig     `toml:"output"`
	Memgraph   MemgraphConfig   `toml:"memgraph"`
	Server     ServerConfig     `toml:"server"`
	Logging    LoggingConfig    `toml:"logging"`
}

// Default returns the configuration used when no file is given.
// Batch sizes follow the public SRI services' practical limits.
func Default() *Config {
	return &Config{
		Resolution: ResolutionConfig{
			NormalizerURL:      DefaultNormalizerURL,
			NameResolverURL:    DefaultNameResURL,
			NormalizeBatchSize: 10000,
			SynonymsBatchSize:  500,
			LookupBatchSize:    200,
			TimeoutSeconds:     30,
			MaxRetries:         3,
			Concurrency:        4,
			RequestsPerSecond:  10,
		},
		Classifier: ClassifierConfig{
			Delimiter:       "|",
			Placeholder:     "NA",
			EdgeBatchSize:   1000,
			Workers:         8,
			TypeFilter:      true,
			MatchMode:       MatchModeSubstring,
			LookupLimit:     10,
			LookupCacheSize: 50000,
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Server: ServerConfig{
			Port:      "8080",
			OutputDir: "output",
		},
		Logging: LoggingConfig{
			Mode:  "dev",
			Level: "info",
		},
	}
}

// Load reads a TOML file on top of Default. Keys absent from the file keep
// their default values.
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

// ApplyEnv overrides config values with environment variables when present.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("EDGEQC_NORMALIZER_URL"); v != "" {
		c.Resolution.NormalizerURL = v
	}
	if v := os.Getenv("EDGEQC_NAME_RESOLVER_URL"); v != "" {
		c.Resolution.NameResolverURL = v
	}
	if v := envInt("EDGEQC_NORMALIZE_BATCH_SIZE"); v > 0 {
		c.Resolution.NormalizeBatchSize = v
	}
	if v := envInt("EDGEQC_SYNONYMS_BATCH_SIZE"); v > 0 {
		c.Resolution.SynonymsBatchSize = v
	}
	if v := envInt("EDGEQC_CONCURRENCY"); v > 0 {
		c.Resolution.Concurrency = v
	}
	if v := envInt("EDGEQC_MAX_EDGES"); v > 0 {
		c.Classifier.MaxEdges = v
	}
	if v := os.Getenv("EDGEQC_TYPE_FILTER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Classifier.TypeFilter = b
		}
	}
	if v := os.Getenv("EDGEQC_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
		c.Server.OutputDir = v
	}
	if v := os.Getenv("EDGEQC_LOG_MODE"); v != "" {
		c.Logging.Mode = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

// Timeout is the per-request timeout for the resolution services.
func (r ResolutionConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

func (c *Config) Validate() error {
	r := c.Resolution
	if r.NormalizeBatchSize <= 0 || r.SynonymsBatchSize <= 0 || r.LookupBatchSize <= 0 {
		return fmt.Errorf("resolution batch sizes must be positive")
	}
	if r.Concurrency <= 0 {
		return fmt.Errorf("resolution.concurrency must be positive, got %d", r.Concurrency)
	}
	if strings.TrimSpace(r.NormalizerURL) == "" || strings.TrimSpace(r.NameResolverURL) == "" {
		return fmt.Errorf("resolution service URLs must be set")
	}

	cl := c.Classifier
	if cl.Delimiter == "" {
		return fmt.Errorf("classifier.delimiter must not be empty")
	}
	if cl.EdgeBatchSize <= 0 {
		return fmt.Errorf("classifier.edge_batch_size must be positive, got %d", cl.EdgeBatchSize)
	}
	if cl.MaxEdges < 0 {
		return fmt.Errorf("classifier.max_edges must not be negative")
	}
	if cl.Workers <= 0 {
		return fmt.Errorf("classifier.workers must be positive, got %d", cl.Workers)
	}
	switch cl.MatchMode {
	case MatchModeSubstring, MatchModeWord:
	default:
		return fmt.Errorf("unknown classifier.match_mode %q", cl.MatchMode)
	}
	return nil
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
