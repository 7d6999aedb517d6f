package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// ollamaTags is the body of GET /api/tags.
type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// startServerHint tells the user how to bring a local provider up.
func startServerHint(provider string) string {
	switch config.Provider(provider) {
	case config.ProviderOllama:
		return "Start the Ollama server with 'ollama serve'"
	case config.ProviderLMStudio:
		return "Start the local server in LM Studio (Developer tab) and load a model"
	default:
		return "Check that the server is running and the base URL is correct"
	}
}

// probeOllama checks that Ollama answers and that model has been pulled.
func probeOllama(ctx context.Context, client *http.Client, baseURL, model string) error {
	name := string(config.ProviderOllama)

	raw, status, err := get(ctx, client, baseURL+"/api/tags")
	if err != nil {
		return apperrors.NewProviderUnavailableError(name, err, startServerHint(name))
	}
	if status != http.StatusOK {
		return apperrors.NewProviderUnavailableError(name, fmt.Errorf("GET /api/tags returned status %d", status), startServerHint(name))
	}

	var tags ollamaTags
	if err := json.Unmarshal(raw, &tags); err != nil {
		// An unexpected listing is not proof the model is missing; generation will tell.
		apperrors.Warn("Could not read the Ollama model list: %v", err)
		return nil
	}

	for _, m := range tags.Models {
		if m.Name == model || m.Name == model+":latest" {
			return nil
		}
	}

	appErr := apperrors.NewProviderUnavailableError(name, nil, fmt.Sprintf("Download it with 'ollama pull %s'", model))
	appErr.Message = fmt.Sprintf("ollama model %q is not installed", model)
	return appErr
}

// probeLMStudio checks that the LM Studio server answers.
func probeLMStudio(ctx context.Context, client *http.Client, baseURL string) error {
	name := string(config.ProviderLMStudio)

	if _, _, err := get(ctx, client, baseURL+"/models"); err != nil {
		return apperrors.NewProviderUnavailableError(name, err, startServerHint(name))
	}
	return nil
}
