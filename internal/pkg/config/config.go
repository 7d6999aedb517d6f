// Package config provides configuration management for commitsmith.
package config

import (
	"fmt"
	"strings"

	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// Provider identifies an LLM backend.
type Provider string

// Supported providers.
const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
	ProviderLMStudio   Provider = "lmstudio"
	ProviderCustom     Provider = "custom"
)

// DefaultProvider is used when nothing has been saved yet.
const DefaultProvider = ProviderOpenRouter

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderOpenRouter, ProviderOllama, ProviderLMStudio, ProviderCustom}

// providerDefaults holds the per-provider default base URL and model.
var providerDefaults = map[Provider]struct {
	baseURL string
	model   string
}{
	ProviderOpenRouter: {baseURL: "https://openrouter.ai/api/v1", model: "google/gemini-2.0-flash-001"},
	ProviderOllama:     {baseURL: "http://localhost:11434", model: "codellama"},
	ProviderLMStudio:   {baseURL: "http://localhost:1234/v1", model: "default"},
	ProviderCustom:     {baseURL: "", model: "gpt-4o-mini"},
}

// ParseProvider converts a raw token into a Provider.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := providerDefaults[p]; !ok {
		return "", apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider: %q", raw))
	}
	return p, nil
}

// DefaultBaseURL returns the base URL a provider uses when none is configured.
// The custom provider has no default.
func DefaultBaseURL(p Provider) string {
	return providerDefaults[p].baseURL
}

// DefaultModel returns the model a provider uses when none is configured.
func DefaultModel(p Provider) string {
	return providerDefaults[p].model
}

// RequiresAPIKey reports whether requests to the provider cannot be made without a key.
func (p Provider) RequiresAPIKey() bool {
	return p == ProviderOpenRouter
}

// Config represents the resolved configuration for one invocation.
// It is built once by Store.Load and passed by value afterwards.
type Config struct {
	APIKey   string   `mapstructure:"api_key"`
	Model    string   `mapstructure:"model"`
	BaseURL  string   `mapstructure:"base_url"`
	Provider Provider `mapstructure:"provider"`
}

// HasAPIKey reports whether an API key is configured.
func (c Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// Validate checks that the configuration is usable for generation.
func (c Config) Validate() error {
	if c.Provider.RequiresAPIKey() && !c.HasAPIKey() {
		return apperrors.NewMissingAPIKeyError(string(c.Provider))
	}
	if c.BaseURL == "" {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("no base URL configured for %s", c.Provider)).
			WithSuggestion("Set one with --base-url <url> or --use-custom <url>")
	}
	if c.Model == "" {
		return apperrors.NewInvalidConfigError("no model configured").
			WithSuggestion("Set one with --model <name>")
	}
	return nil
}

// Store defines the interface for configuration persistence.
type Store interface {
	Load() (Config, error)
	SaveAPIKey(raw string) error
	SaveModel(name string) error
	SaveBaseURL(url string) error
	SaveProvider(p Provider) error
	UseProvider(p Provider, baseURL string) error
	Dir() string
}
