package cmd

import (
	"fmt"
	"io"

	"github.com/commitsmith/commitsmith/internal/pkg/config"
	"github.com/commitsmith/commitsmith/internal/pkg/security"
)

// applyConfigFlags saves the provider, base URL, model and API key flags.
// A provider switch resets the base URL and model, so explicit values are saved after it.
func applyConfigFlags(store config.Store, flags *rootFlags) error {
	var err error
	switch {
	case flags.useOllama:
		err = store.UseProvider(config.ProviderOllama, "")
	case flags.useOpenRouter:
		err = store.UseProvider(config.ProviderOpenRouter, "")
	case flags.useLMStudio:
		err = store.UseProvider(config.ProviderLMStudio, "")
	case flags.useCustom != "":
		err = store.UseProvider(config.ProviderCustom, flags.useCustom)
	}
	if err != nil {
		return err
	}

	if flags.baseURL != "" {
		if err := store.SaveBaseURL(flags.baseURL); err != nil {
			return err
		}
	}
	if flags.model != "" {
		if err := store.SaveModel(flags.model); err != nil {
			return err
		}
	}
	if flags.apiKey != "" {
		if err := store.SaveAPIKey(flags.apiKey); err != nil {
			return err
		}
	}
	return nil
}

// printConfig writes the resolved configuration. The API key is never shown.
func printConfig(w io.Writer, store config.Store, cfg config.Config) error {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "(not set)"
	}

	_, err := fmt.Fprintf(w, "Provider:   %s\nBase URL:   %s\nModel:      %s\nAPI key:    %s\nConfig dir: %s\n",
		cfg.Provider, baseURL, cfg.Model, security.DescribeAPIKey(cfg.APIKey), store.Dir())
	return err
}
