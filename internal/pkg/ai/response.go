package ai

import (
	"bytes"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// ParseSource records which parse path produced a message.
type ParseSource int

const (
	// SourceStrict means the response matched the documented schema.
	SourceStrict ParseSource = iota
	// SourceFallback means the text was recovered by pattern matching.
	SourceFallback
)

// String returns the string representation of ParseSource.
func (s ParseSource) String() string {
	switch s {
	case SourceStrict:
		return "strict"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// parsed is the text extracted from a response body.
type parsed struct {
	Text   string
	Source ParseSource
}

// errorEnvelope captures the error field some servers send instead of choices.
// The field is either an object with a message or a bare string.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

var (
	htmlMarkers    = []string{"<!DOCTYPE html", "<!doctype html", "<html"}
	contentPattern = regexp.MustCompile(`"content"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// parseChatResponse extracts choices[0].message.content.
// When that is missing it checks, in order: an HTML page, a provider error field,
// and a permissive "content" pattern. Anything else fails with the raw body attached.
func parseChatResponse(provider, baseURL string, raw []byte) (parsed, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err == nil {
		if len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Message.Content) != "" {
			return parsed{Text: resp.Choices[0].Message.Content, Source: SourceStrict}, nil
		}
	}

	if isHTML(raw) {
		return parsed{}, apperrors.NewHTMLResponseError(provider, baseURL)
	}

	if msg := providerError(raw); msg != "" {
		return parsed{}, apperrors.NewUpstreamError(provider, msg)
	}

	if text, ok := fallbackContent(raw); ok {
		apperrors.Debug("Recovered %s response with the fallback content pattern", provider)
		return parsed{Text: text, Source: SourceFallback}, nil
	}

	return parsed{}, apperrors.NewEmptyResponseError(provider, string(raw), nil)
}

// completionResponse is the body of a non-streaming /api/generate call.
type completionResponse struct {
	Response *string `json:"response"`
}

// notFoundSignature is the body Go's default mux writes for unknown routes.
const notFoundSignature = "404 page not found"

// parseCompletionResponse extracts the response field of a completion-style body.
func parseCompletionResponse(provider, url string, status int, raw []byte) (parsed, error) {
	if bytes.Contains(raw, []byte(notFoundSignature)) || (status == http.StatusNotFound && !json.Valid(raw)) {
		return parsed{}, apperrors.NewEndpointNotFoundError(provider, url, startServerHint(provider))
	}

	if msg := providerError(raw); msg != "" {
		return parsed{}, apperrors.NewUpstreamError(provider, msg)
	}

	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return parsed{}, apperrors.NewEmptyResponseError(provider, string(raw), err)
	}
	if resp.Response == nil || strings.TrimSpace(*resp.Response) == "" {
		return parsed{}, apperrors.NewEmptyResponseError(provider, string(raw), nil)
	}
	return parsed{Text: *resp.Response, Source: SourceStrict}, nil
}

func isHTML(raw []byte) bool {
	for _, marker := range htmlMarkers {
		if bytes.Contains(raw, []byte(marker)) {
			return true
		}
	}
	return false
}

// providerError returns error.message, or error when it is a string.
func providerError(raw []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(env.Error, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &obj); err == nil && strings.TrimSpace(obj.Message) != "" {
		return strings.TrimSpace(obj.Message)
	}

	// Neither shape: echo the raw field unless it is null or empty.
	trimmed := strings.TrimSpace(string(env.Error))
	switch trimmed {
	case "null", "{}", `""`:
		return ""
	}
	return trimmed
}

// fallbackContent finds the first non-empty "content":"..." string anywhere in raw.
func fallbackContent(raw []byte) (string, bool) {
	for _, match := range contentPattern.FindAllSubmatch(raw, -1) {
		var text string
		if err := json.Unmarshal(append(append([]byte{'"'}, match[1]...), '"'), &text); err != nil {
			// Invalid escapes: keep the literal text and let the post-processor clean it.
			text = string(match[1])
		}
		if strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}
