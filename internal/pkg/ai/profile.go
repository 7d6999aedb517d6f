package ai

import (
	"github.com/commitsmith/commitsmith/internal/pkg/config"
)

// Shape is the request/response layout a provider speaks.
type Shape int

const (
	// ShapeChat sends the conversation as role-tagged messages.
	ShapeChat Shape = iota
	// ShapeCompletion sends one standalone prompt and keeps no history.
	ShapeCompletion
)

// String returns the string representation of Shape.
func (s Shape) String() string {
	switch s {
	case ShapeChat:
		return "chat"
	case ShapeCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// AuthPolicy decides when the Authorization header is sent.
type AuthPolicy int

const (
	AuthNone AuthPolicy = iota
	AuthBearerAlways
	AuthBearerIfKey
)

// Identifying headers OpenRouter uses for app attribution.
const (
	AppReferer = "https://github.com/commitsmith/commitsmith"
	AppTitle   = "commitsmith"
)

// Profile describes how to talk to one provider.
type Profile struct {
	Provider     config.Provider
	EndpointPath string
	Auth         AuthPolicy
	Shape        Shape
	// ExtraHeaders are sent with every generation request.
	ExtraHeaders map[string]string
}

var profiles = map[config.Provider]Profile{
	config.ProviderOpenRouter: {
		Provider:     config.ProviderOpenRouter,
		EndpointPath: "/chat/completions",
		Auth:         AuthBearerAlways,
		Shape:        ShapeChat,
		ExtraHeaders: map[string]string{
			"HTTP-Referer": AppReferer,
			"X-Title":      AppTitle,
		},
	},
	config.ProviderOllama: {
		Provider:     config.ProviderOllama,
		EndpointPath: "/api/generate",
		Auth:         AuthNone,
		Shape:        ShapeCompletion,
	},
	config.ProviderLMStudio: {
		Provider:     config.ProviderLMStudio,
		EndpointPath: "/chat/completions",
		Auth:         AuthNone,
		Shape:        ShapeChat,
	},
	config.ProviderCustom: {
		Provider:     config.ProviderCustom,
		EndpointPath: "/chat/completions",
		Auth:         AuthBearerIfKey,
		Shape:        ShapeChat,
	},
}

// ProfileFor returns the profile of a provider.
func ProfileFor(p config.Provider) (Profile, bool) {
	profile, ok := profiles[p]
	return profile, ok
}

// Endpoint joins the base URL and the profile's path.
func (p Profile) Endpoint(baseURL string) string {
	return baseURL + p.EndpointPath
}

// sendsAuth reports whether a request with the given key carries a bearer token.
func (p Profile) sendsAuth(apiKey string) bool {
	switch p.Auth {
	case AuthBearerAlways:
		return true
	case AuthBearerIfKey:
		return apiKey != ""
	default:
		return false
	}
}
