// Package config loads process configuration from the environment, with
// optional fallbacks from SSM Parameter Store.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"

	defaultBedrockModelID    = "anthropic.claude-3-sonnet-20240229-v1:0"
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultGenerationTimeout = 25 * time.Second
	defaultMaxTokens         = 1000
)

// Config aggregates everything main needs to wire the service.
type Config struct {
	TableName          string
	DocumentsTableName string
	BucketName         string
	Search             SearchConfig
	Generation         GenerationConfig
	PDFExtraction      bool
	ParamPrefix        string
	Port               string
}

// SearchConfig describes the document index. An empty Endpoint means search
// is not configured.
type SearchConfig struct {
	Endpoint string
	Index    string
	Service  string
}

// Enabled reports whether a search endpoint is configured.
func (c SearchConfig) Enabled() bool {
	return c.Endpoint != ""
}

// GenerationConfig selects and configures the inference backend.
type GenerationConfig struct {
	Provider       string
	BedrockModelID string
	OpenAIBaseURL  string
	OpenAIModel    string
	OpenAIAPIKey   string
	Timeout        time.Duration
	MaxTokens      int
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	tableName := strings.TrimSpace(os.Getenv("DYNAMODB_TABLE_NAME"))
	if tableName == "" {
		return nil, errors.New("config: DYNAMODB_TABLE_NAME is required")
	}
	bucket := strings.TrimSpace(os.Getenv("S3_BUCKET_NAME"))
	if bucket == "" {
		return nil, errors.New("config: S3_BUCKET_NAME is required")
	}

	provider := strings.ToLower(getEnvOrDefault("GENERATION_PROVIDER", ProviderBedrock))
	if provider != ProviderBedrock && provider != ProviderOpenAI {
		return nil, fmt.Errorf("config: invalid GENERATION_PROVIDER %q", provider)
	}

	timeoutSecs, err := parseIntEnv("GENERATION_TIMEOUT_SECONDS", int(defaultGenerationTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("config: GENERATION_TIMEOUT_SECONDS must be positive, got %d", timeoutSecs)
	}

	pdf, err := parseBoolEnv("PDF_EXTRACTION_ENABLED", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		TableName:          tableName,
		DocumentsTableName: strings.TrimSpace(os.Getenv("DOCUMENTS_TABLE_NAME")),
		BucketName:         bucket,
		Search: SearchConfig{
			Endpoint: strings.TrimSpace(os.Getenv("OPENSEARCH_ENDPOINT")),
			Index:    getEnvOrDefault("OPENSEARCH_INDEX", "documents"),
			Service:  getEnvOrDefault("OPENSEARCH_SERVICE", "aoss"),
		},
		Generation: GenerationConfig{
			Provider:       provider,
			BedrockModelID: strings.TrimSpace(os.Getenv("BEDROCK_MODEL_ID")),
			OpenAIBaseURL:  getEnvOrDefault("OPENAI_BASE_URL", defaultOpenAIBaseURL),
			OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", defaultOpenAIModel),
			OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Timeout:        time.Duration(timeoutSecs) * time.Second,
			MaxTokens:      defaultMaxTokens,
		},
		PDFExtraction: pdf,
		ParamPrefix:   strings.TrimRight(strings.TrimSpace(os.Getenv("PARAM_PREFIX")), "/"),
		Port:          getEnvOrDefault("PORT", "8080"),
	}, nil
}

// ParameterLookup is satisfied by paramstore.Client.
type ParameterLookup interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

// ApplyParameters fills settings left empty by the environment from
// {ParamPrefix}/opensearch_endpoint, {ParamPrefix}/bedrock_model_id and
// {ParamPrefix}/openai_api_key. It is a no-op without a prefix. Environment
// values always win.
func (c *Config) ApplyParameters(ctx context.Context, p ParameterLookup) error {
	if c.ParamPrefix == "" || p == nil {
		c.applyDefaults()
		return nil
	}
	fill := []struct {
		name string
		dst  *string
	}{
		{"opensearch_endpoint", &c.Search.Endpoint},
		{"bedrock_model_id", &c.Generation.BedrockModelID},
		{"openai_api_key", &c.Generation.OpenAIAPIKey},
	}
	for _, f := range fill {
		if *f.dst != "" {
			continue
		}
		v, ok, err := p.Lookup(ctx, c.ParamPrefix+"/"+f.name)
		if err != nil {
			return fmt.Errorf("config: load %s: %w", f.name, err)
		}
		if ok {
			*f.dst = strings.TrimSpace(v)
		}
	}
	c.applyDefaults()
	return nil
}

// Validate checks cross-field requirements once all sources are applied.
func (c *Config) Validate() error {
	if c.Generation.Provider == ProviderOpenAI && c.Generation.OpenAIAPIKey == "" {
		return errors.New("config: OPENAI_API_KEY (or {PARAM_PREFIX}/openai_api_key) is required for the openai provider")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Generation.BedrockModelID == "" {
		c.Generation.BedrockModelID = defaultBedrockModelID
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
