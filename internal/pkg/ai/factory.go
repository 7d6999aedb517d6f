package ai

import (
	"fmt"
	"net/http"

	"github.com/commitsmith/commitsmith/internal/pkg/config"
	apperrors "github.com/commitsmith/commitsmith/internal/pkg/errors"
)

// Option customises provider construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// NewProvider creates the provider selected by the configuration.
func NewProvider(cfg config.Config, opts ...Option) (Provider, error) {
	o := options{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(&o)
	}

	profile, ok := ProfileFor(cfg.Provider)
	if !ok {
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("unknown provider: %s", cfg.Provider))
	}

	switch profile.Shape {
	case ShapeCompletion:
		return NewOllamaProvider(cfg, profile, o.httpClient), nil
	default:
		return NewChatProvider(cfg, profile, o.httpClient), nil
	}
}
