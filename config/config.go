// Package config loads engine configuration from a YAML file or from the
// process environment. Configuration is construction-time only; there is no
// runtime reconfiguration and no file watching.
package config

import (
	"fmt"
	"os"

	"github.com/hupe1980/recallmesh/collection"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/logging"
	"gopkg.in/yaml.v3"
)

// StoreConfig names the vector store cluster.
type StoreConfig struct {
	ClusterURL string `yaml:"cluster_url" json:"cluster_url"`
	AdminKey   string `yaml:"admin_key" json:"admin_key"`
}

// ProviderConfig binds the engine to one model provider.
type ProviderConfig struct {
	Name   string `yaml:"name" json:"name"`
	APIKey string `yaml:"api_key" json:"api_key"`
}

// CollectionConfig names the collection the engine remembers into.
type CollectionConfig struct {
	Kind        string `yaml:"kind" json:"kind"`
	LogicalName string `yaml:"logical_name" json:"logical_name"`
}

// TransportConfig enables the chat transport for channel exchanges.
type TransportConfig struct {
	BotToken      string `yaml:"bot_token" json:"bot_token"`
	ChannelPrompt string `yaml:"channel_prompt" json:"channel_prompt"`
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	Format    string `yaml:"format" json:"format"`
	AddSource bool   `yaml:"add_source" json:"add_source"`
}

// Config is the file representation of all engine inputs.
type Config struct {
	Store      StoreConfig      `yaml:"store" json:"store"`
	Provider   ProviderConfig   `yaml:"provider" json:"provider"`
	Collection CollectionConfig `yaml:"collection" json:"collection"`
	Transport  TransportConfig  `yaml:"transport" json:"transport"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Load reads, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnv builds a configuration from the process environment:
//
//	RECALLMESH_CLUSTER_URL      store cluster endpoint
//	RECALLMESH_ADMIN_KEY        cluster admin key (optional)
//	RECALLMESH_PROVIDER         "mistral" (default) or "openai"
//	MISTRAL_API_KEY             provider key when provider is mistral
//	OPENAI_API_KEY              provider key when provider is openai
//	RECALLMESH_COLLECTION_KIND  "history" (default) or "channel"
//	RECALLMESH_COLLECTION_NAME  logical collection name
//	DISCORD_BOT_TOKEN           transport token (optional)
//	RECALLMESH_LOG_LEVEL        debug|info|warn|error (default info)
func FromEnv() (*Config, error) {
	cfg := Config{
		Store: StoreConfig{
			ClusterURL: os.Getenv("RECALLMESH_CLUSTER_URL"),
			AdminKey:   os.Getenv("RECALLMESH_ADMIN_KEY"),
		},
		Provider: ProviderConfig{
			Name: os.Getenv("RECALLMESH_PROVIDER"),
		},
		Collection: CollectionConfig{
			Kind:        os.Getenv("RECALLMESH_COLLECTION_KIND"),
			LogicalName: os.Getenv("RECALLMESH_COLLECTION_NAME"),
		},
		Transport: TransportConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},
		Logging: LoggingConfig{
			Level: os.Getenv("RECALLMESH_LOG_LEVEL"),
		},
	}

	cfg.applyDefaults()

	switch core.Provider(cfg.Provider.Name) {
	case core.ProviderOpenAI:
		cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		cfg.Provider.APIKey = os.Getenv("MISTRAL_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider.Name == "" {
		c.Provider.Name = string(core.ProviderMistral)
	}
	if c.Collection.Kind == "" {
		c.Collection.Kind = string(collection.SourceHistory)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks every field that the engine cannot proceed without.
func (c *Config) Validate() error {
	if c.Store.ClusterURL == "" {
		return &ValidationError{Field: "store.cluster_url", Message: "cluster URL is required"}
	}

	switch core.Provider(c.Provider.Name) {
	case core.ProviderMistral, core.ProviderOpenAI:
	default:
		return &ValidationError{Field: "provider.name", Message: fmt.Sprintf("unknown provider %q", c.Provider.Name)}
	}

	if c.Provider.APIKey == "" {
		return &ValidationError{Field: "provider.api_key", Message: "provider API key is required"}
	}

	switch collection.SourceKind(c.Collection.Kind) {
	case collection.SourceHistory, collection.SourceChannel:
	default:
		return &ValidationError{Field: "collection.kind", Message: fmt.Sprintf("unknown source kind %q", c.Collection.Kind)}
	}

	if c.Collection.LogicalName == "" {
		return &ValidationError{Field: "collection.logical_name", Message: "logical collection name is required"}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown log level %q", c.Logging.Level)}
	}

	return nil
}

// Credentials returns the provider credentials of the configuration.
func (c *Config) Credentials() core.ProviderCredentials {
	return core.ProviderCredentials{
		Provider: core.Provider(c.Provider.Name),
		APIKey:   c.Provider.APIKey,
	}
}

// Kind returns the configured source kind.
func (c *Config) Kind() collection.SourceKind {
	return collection.SourceKind(c.Collection.Kind)
}

// Logger builds the configured structured logger.
func (c *Config) Logger() logging.Logger {
	return logging.NewHandlerLogger(logging.ParseLevel(c.Logging.Level), c.Logging.Format, c.Logging.AddSource)
}
