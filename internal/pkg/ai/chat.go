package ai

import (
	"context"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// chatRequest is the body of a chat completion call.
// It is declared here rather than using openai.ChatCompletionRequest so that
// stream:false is always sent.
type chatRequest struct {
	Model    string                         `json:"model"`
	Stream   bool                           `json:"stream"`
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// ChatProvider implements Provider for the OpenAI-compatible chat endpoints.
// OpenRouter, LM Studio and custom servers differ only in their profile.
type ChatProvider struct {
	httpClient *http.Client
	profile    Profile
	cfg        config.Config
}

// NewChatProvider creates a new ChatProvider.
func NewChatProvider(cfg config.Config, profile Profile, httpClient *http.Client) *ChatProvider {
	return &ChatProvider{
		httpClient: httpClient,
		profile:    profile,
		cfg:        cfg,
	}
}

// Name returns the provider name.
func (p *ChatProvider) Name() string {
	return string(p.profile.Provider)
}

// Shape returns ShapeChat.
func (p *ChatProvider) Shape() Shape {
	return ShapeChat
}

// CheckAvailable probes LM Studio's model list; remote providers are not probed.
func (p *ChatProvider) CheckAvailable(ctx context.Context) error {
	if p.profile.Provider == config.ProviderLMStudio {
		return probeLMStudio(ctx, p.httpClient, p.cfg.BaseURL)
	}
	return nil
}

// Generate sends the conversation and returns the reply.
// The first call starts the history as [system, user]. A revision appends the
// revision prompt as a user message and, on success, the reply as an assistant message.
func (p *ChatProvider) Generate(ctx context.Context, history Conversation, req GenerateRequest) (GenerateResult, error) {
	prompt := BuildPrompt(req.Changes, req.PreviousMessage, req.Feedback)

	revising := !history.IsEmpty()
	next := history.WithUser(prompt)
	if !revising {
		next = NewConversation(SystemPrompt, prompt)
	}

	url := p.profile.Endpoint(p.cfg.BaseURL)
	apperrors.LogAPIRequest(p.Name(), url, p.cfg.Model, len(prompt))

	raw, _, err := postJSON(ctx, p.httpClient, p.Name(), url, p.headers(), chatRequest{
		Model:    p.cfg.Model,
		Stream:   false,
		Messages: next.Messages(),
	})
	if err != nil {
		return GenerateResult{}, apperrors.NewEmptyResponseError(p.Name(), "", err)
	}

	out, err := parseChatResponse(p.Name(), p.cfg.BaseURL, raw)
	if err != nil {
		return GenerateResult{}, err
	}

	// The first reply is not kept, so N calls leave 2+2(N-1) messages:
	// [system, user] then one user/assistant pair per revision.
	if revising {
		next = next.WithAssistant(out.Text)
	}
	apperrors.Debug("Parsed %s response (%s), conversation length %d", p.Name(), out.Source, next.Len())

	return GenerateResult{Text: out.Text, Source: out.Source, History: next}, nil
}

// headers returns the auth and identifying headers for one request.
func (p *ChatProvider) headers() map[string]string {
	h := make(map[string]string, len(p.profile.ExtraHeaders)+1)
	for k, v := range p.profile.ExtraHeaders {
		h[k] = v
	}
	if p.profile.sendsAuth(p.cfg.APIKey) {
		h["Authorization"] = "Bearer " + p.cfg.APIKey
	}
	return h
}
