package quire

import (
	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	index     string
	keyPrefix string

	fieldWeights map[string]float64
	vectorField  string

	mode           Mode
	keywordWeight  float64
	semanticWeight float64
	normalization  Normalization

	candidatePool   int
	snippetLength   int
	analyzer        string
	defaultPageSize int
	maxPageSize     int

	embedder Embedder

	apiKey     string
	baseURL    string
	model      string
	dimensions int

	logger *zap.Logger
}

// WithRedis configures the client to connect to a RediSearch-capable node.
func WithRedis(addr string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
	}
}

// WithAuth sets connection credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithIndex sets the search index name. Default: "collected-works".
func WithIndex(name string) Option {
	return func(c *clientConfig) {
		c.index = name
	}
}

// WithKeyPrefix sets the document key prefix stripped from returned IDs.
// Default: "quire:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithFieldWeights sets the per-field lexical boosts.
// Default: title=3, headers=2, body=1.
func WithFieldWeights(weights map[string]float64) Option {
	return func(c *clientConfig) {
		c.fieldWeights = weights
	}
}

// WithVectorField sets the content field whose stored vectors the semantic
// clause targets. Default: "body".
func WithVectorField(field string) Option {
	return func(c *clientConfig) {
		c.vectorField = field
	}
}

// WithBlend sets the default blend mode and the hybrid weights.
// Default: weighted_hybrid with 0.5/0.5.
func WithBlend(mode Mode, keywordWeight, semanticWeight float64) Option {
	return func(c *clientConfig) {
		c.mode = mode
		c.keywordWeight = keywordWeight
		c.semanticWeight = semanticWeight
	}
}

// WithNormalization sets the per-batch score normalization policy applied
// before hybrid weighting. Default: min_max.
func WithNormalization(n Normalization) Option {
	return func(c *clientConfig) {
		c.normalization = n
	}
}

// WithCandidatePool bounds per-signal recall. Default: 100.
func WithCandidatePool(k int) Option {
	return func(c *clientConfig) {
		c.candidatePool = k
	}
}

// WithPageLimits sets the default and maximum page sizes applied to queries.
// Default: 10 and 100.
func WithPageLimits(defaultSize, maxSize int) Option {
	return func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	}
}

// WithSnippetLength caps the body display field per result. Default: 300.
func WithSnippetLength(n int) Option {
	return func(c *clientConfig) {
		c.snippetLength = n
	}
}

// WithAnalyzer sets the query text analyzer. Default: "en".
func WithAnalyzer(name string) Option {
	return func(c *clientConfig) {
		c.analyzer = name
	}
}

// WithEmbedder sets a custom query embedding provider. Takes precedence over
// WithEmbeddingAPI.
func WithEmbedder(e Embedder, modelID string) Option {
	return func(c *clientConfig) {
		c.embedder = e
		c.model = modelID
	}
}

// WithEmbeddingAPI configures an OpenAI-compatible embedding endpoint.
// Required for semantic and hybrid modes unless WithEmbedder is used.
func WithEmbeddingAPI(apiKey, baseURL, model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
		c.model = model
		c.dimensions = dimensions
	}
}

// WithLogger enables structured logging for client operations.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
