package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the quire API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Engine    EngineConfig    `yaml:"engine"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds the RediSearch connection settings.
type EngineConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SearchConfig holds query composition and scoring settings.
type SearchConfig struct {
	FieldWeights    map[string]float64 `yaml:"field_weights"`
	VectorField     string             `yaml:"vector_field"`
	Blend           BlendConfig        `yaml:"blend"`
	CandidatePool   int                `yaml:"candidate_pool"`
	DefaultPageSize int                `yaml:"default_page_size"`
	MaxPageSize     int                `yaml:"max_page_size"`
	Analyzer        string             `yaml:"analyzer"`
	SnippetLength   int                `yaml:"snippet_length"`
}

// BlendConfig holds score blending settings.
type BlendConfig struct {
	Mode           string  `yaml:"mode"` // keyword_only, semantic_only, weighted_hybrid, rank_fusion
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
	Normalization  string  `yaml:"normalization"` // min_max (default), max
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 10
	}
	if c.Engine.Index == "" {
		c.Engine.Index = "collected-works"
	}
	if c.Engine.KeyPrefix == "" {
		c.Engine.KeyPrefix = "quire:"
	}
	if c.Search.VectorField == "" {
		c.Search.VectorField = "body"
	}
	if c.Search.Blend.Mode == "" {
		c.Search.Blend.Mode = "weighted_hybrid"
	}
	if c.Search.Blend.Normalization == "" {
		c.Search.Blend.Normalization = "min_max"
	}
	if c.Search.Blend.Mode == "weighted_hybrid" &&
		c.Search.Blend.KeywordWeight == 0 && c.Search.Blend.SemanticWeight == 0 {
		c.Search.Blend.KeywordWeight = 0.5
		c.Search.Blend.SemanticWeight = 0.5
	}
	if c.Search.CandidatePool <= 0 {
		c.Search.CandidatePool = 100
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.Analyzer == "" {
		c.Search.Analyzer = "en"
	}
	if c.Search.SnippetLength <= 0 {
		c.Search.SnippetLength = 300
	}
	if len(c.Search.FieldWeights) == 0 {
		c.Search.FieldWeights = map[string]float64{
			"title":   3,
			"headers": 2,
			"body":    1,
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Engine.Addrs) == 0 {
		return fmt.Errorf("engine.addrs is required")
	}
	switch c.Search.Blend.Mode {
	case "keyword_only", "semantic_only", "weighted_hybrid", "rank_fusion":
		// ok
	default:
		return fmt.Errorf("search.blend.mode must be one of keyword_only, semantic_only, weighted_hybrid, rank_fusion, got %q", c.Search.Blend.Mode)
	}
	switch c.Search.Blend.Normalization {
	case "min_max", "max":
		// ok
	default:
		return fmt.Errorf("search.blend.normalization must be \"min_max\" or \"max\", got %q", c.Search.Blend.Normalization)
	}
	if c.Search.Blend.KeywordWeight < 0 || c.Search.Blend.SemanticWeight < 0 {
		return fmt.Errorf("search.blend weights must be non-negative")
	}
	if c.Search.Blend.Mode != "keyword_only" && c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required when search.blend.mode is %q", c.Search.Blend.Mode)
	}
	if c.Search.CandidatePool < c.Search.MaxPageSize {
		return fmt.Errorf("search.candidate_pool (%d) must be at least search.max_page_size (%d)",
			c.Search.CandidatePool, c.Search.MaxPageSize)
	}
	for field, w := range c.Search.FieldWeights {
		if w < 0 {
			return fmt.Errorf("search.field_weights.%s must be non-negative, got %v", field, w)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
