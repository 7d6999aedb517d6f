// Package security masks credentials before they reach logs or the terminal.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// keyPrefixes lists the prefix each provider's keys are issued with.
// Providers without an entry accept any token.
var keyPrefixes = map[string]string{
	"openrouter": "sk-or-",
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// DescribeAPIKey renders key presence for display without revealing the key.
func DescribeAPIKey(key string) string {
	if key == "" {
		return "not set"
	}
	return "set (" + MaskAPIKey(key) + ")"
}

// CheckAPIKeyFormat reports whether apiKey looks like a key the provider issues.
// A mismatch is only worth a warning: proxies and gateways may use other formats.
func CheckAPIKeyFormat(provider, apiKey string) error {
	prefix, ok := keyPrefixes[provider]
	if !ok || apiKey == "" {
		return nil
	}
	if !strings.HasPrefix(apiKey, prefix) {
		return fmt.Errorf("API key does not look like a %s key (expected it to start with %q)", provider, prefix)
	}
	return nil
}

var (
	// skKeyPattern matches OpenAI-style keys, including OpenRouter's sk-or-v1- keys.
	skKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9-]{20,}`)
	// bearerPattern matches the token of an Authorization header.
	bearerPattern = regexp.MustCompile(`(Bearer\s+)([a-zA-Z0-9._-]{5,})`)
	// assignmentPattern matches key=value or key: value secrets.
	assignmentPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key|password|passwd)(\s*[:=]\s*["']?)([^\s"',]+)`)
)

// SanitizeForLogging masks API keys, bearer tokens and secret assignments in s.
// Masked values keep their last four characters so users can tell keys apart.
func SanitizeForLogging(s string) string {
	s = bearerPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := bearerPattern.FindStringSubmatch(match)
		return parts[1] + MaskAPIKey(parts[2])
	})
	s = skKeyPattern.ReplaceAllStringFunc(s, MaskAPIKey)
	s = assignmentPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := assignmentPattern.FindStringSubmatch(match)
		return parts[1] + parts[2] + MaskAPIKey(parts[3])
	})
	return s
}
