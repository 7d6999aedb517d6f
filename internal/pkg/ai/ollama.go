package ai

import (
	"context"
	"net/http"

	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// OllamaGenerateRequest represents a request to the Ollama generate API.
type OllamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// OllamaProvider implements Provider for Ollama's completion endpoint.
// Every call is an independent prompt; no history is kept.
type OllamaProvider struct {
	httpClient *http.Client
	profile    Profile
	cfg        config.Config
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg config.Config, profile Profile, httpClient *http.Client) *OllamaProvider {
	return &OllamaProvider{
		httpClient: httpClient,
		profile:    profile,
		cfg:        cfg,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return string(config.ProviderOllama)
}

// Shape returns ShapeCompletion.
func (p *OllamaProvider) Shape() Shape {
	return ShapeCompletion
}

// CheckAvailable verifies the server answers and the model has been pulled.
func (p *OllamaProvider) CheckAvailable(ctx context.Context) error {
	return probeOllama(ctx, p.httpClient, p.cfg.BaseURL, p.cfg.Model)
}

// Generate sends one standalone prompt. The returned history is always empty.
func (p *OllamaProvider) Generate(ctx context.Context, _ Conversation, req GenerateRequest) (GenerateResult, error) {
	prompt := BuildPrompt(req.Changes, req.PreviousMessage, req.Feedback)
	url := p.profile.Endpoint(p.cfg.BaseURL)

	apperrors.LogAPIRequest(p.Name(), url, p.cfg.Model, len(prompt))

	raw, status, err := postJSON(ctx, p.httpClient, p.Name(), url, nil, OllamaGenerateRequest{
		Model:  p.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return GenerateResult{}, apperrors.NewEmptyResponseError(p.Name(), "", err)
	}

	out, err := parseCompletionResponse(p.Name(), url, status, raw)
	if err != nil {
		return GenerateResult{}, err
	}

	return GenerateResult{Text: out.Text, Source: out.Source}, nil
}
