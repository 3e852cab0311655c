package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/kamusis/orient-cli/internal/config"
)

// Provider embeds text into a fixed-length float vector.
//
// Implementations must be deterministic for the same input text and model.
type Provider interface {
	ModelID() string
	Dim() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config contains the resolved embeddings configuration.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Timeout bounds a single HTTP call. Zero means 30s.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit breaker. Zero disables the breaker.
	FailureThreshold uint32
}

// LoadConfig resolves embeddings config from environment variables first, then ~/.orient/.env.
func LoadConfig() (*Config, error) {
	get := func(key string) (string, error) { return config.GetConfigValue(key) }

	provider, err := get("ORIENT_EMBEDDINGS_PROVIDER")
	if err != nil {
		return nil, err
	}
	model, err := get("ORIENT_EMBEDDINGS_MODEL")
	if err != nil {
		return nil, err
	}
	apiKey, err := get("ORIENT_EMBEDDINGS_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL, err := get("ORIENT_EMBEDDINGS_BASE_URL")
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	rawTimeout, err := get("ORIENT_EMBEDDINGS_TIMEOUT")
	if err != nil {
		return nil, err
	}
	timeout := 30 * time.Second
	if rawTimeout != "" {
		d, err := time.ParseDuration(rawTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid ORIENT_EMBEDDINGS_TIMEOUT %q: %w", rawTimeout, err)
		}
		timeout = d
	}

	return &Config{
		Provider:         provider,
		Model:            model,
		APIKey:           apiKey,
		BaseURL:          baseURL,
		Timeout:          timeout,
		FailureThreshold: 3,
	}, nil
}

// NewFromConfig returns an embeddings provider, wrapped in a circuit breaker
// when cfg.FailureThreshold is set.
func NewFromConfig(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embeddings config is nil")
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("embeddings provider is not configured (set ORIENT_EMBEDDINGS_PROVIDER)")
	}
	var p Provider
	switch cfg.Provider {
	case "openai":
		p = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
	if cfg.FailureThreshold > 0 {
		p = WithBreaker(p, BreakerSettings{FailureThreshold: cfg.FailureThreshold})
	}
	return p, nil
}
