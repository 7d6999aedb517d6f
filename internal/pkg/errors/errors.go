// Package errors provides error types, formatting, and logging for commitsmith.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/commitsmith/commitsmith/internal/pkg/security"
)

// ErrorCode represents the category of an error.
type ErrorCode int

const (
	// Configuration errors
	ErrConfiguration ErrorCode = iota + 100
	ErrInvalidArguments

	// Collection errors
	ErrNoStagedChanges ErrorCode = iota + 200

	// Provider errors
	ErrProviderUnavailable ErrorCode = iota + 300
	ErrProtocol
	ErrUpstream

	// Version control errors
	ErrVersionControl ErrorCode = iota + 400
)

// ExitCode returns the process exit status for an error code.
// Every documented failure terminates with status 1.
func (c ErrorCode) ExitCode() int {
	return 1
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrConfiguration:
		return "ConfigurationError"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrNoStagedChanges:
		return "NoStagedChanges"
	case ErrProviderUnavailable:
		return "ProviderUnavailable"
	case ErrProtocol:
		return "ProtocolError"
	case ErrUpstream:
		return "UpstreamError"
	case ErrVersionControl:
		return "VersionControlError"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1
}

// Common error constructors with suggestions

// NewNoStagedChangesError creates an error for an empty change set.
func NewNoStagedChangesError() *AppError {
	return &AppError{
		Code:       ErrNoStagedChanges,
		Message:    "no staged changes found",
		Suggestion: "Stage your changes with 'git add <files>' or run with -a to stage all changes",
	}
}

// NewMissingAPIKeyError creates an error for a provider that needs a key but has none.
func NewMissingAPIKeyError(provider string) *AppError {
	return &AppError{
		Code:       ErrConfiguration,
		Message:    fmt.Sprintf("no API key configured for %s", provider),
		Suggestion: "Supply one with --api-key <key>; it is saved for future runs",
	}
}

// NewMissingArgumentError creates an error for a flag given without its value.
func NewMissingArgumentError(flag, what string) *AppError {
	return &AppError{
		Code:       ErrInvalidArguments,
		Message:    fmt.Sprintf("%s requires a valid %s", flag, what),
		Suggestion: fmt.Sprintf("Usage: %s <%s>", flag, strings.ReplaceAll(what, " ", "-")),
	}
}

// NewUnknownFlagError creates an error for an unrecognised command-line token.
func NewUnknownFlagError(token string) *AppError {
	return &AppError{
		Code:       ErrInvalidArguments,
		Message:    fmt.Sprintf("unknown option: %s", token),
		Suggestion: "Run with --help to see the available options",
	}
}

// NewInvalidConfigError creates an error for an invalid configuration value.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:    ErrConfiguration,
		Message: message,
	}
}

// NewProviderUnavailableError creates an error for a local provider that cannot serve requests.
func NewProviderUnavailableError(provider string, err error, suggestion string) *AppError {
	return &AppError{
		Code:       ErrProviderUnavailable,
		Message:    fmt.Sprintf("%s is not available", provider),
		Cause:      err,
		Suggestion: suggestion,
	}
}

// NewEndpointNotFoundError creates an error for a provider endpoint that answered "not found".
func NewEndpointNotFoundError(provider, url, suggestion string) *AppError {
	return &AppError{
		Code:       ErrProtocol,
		Message:    fmt.Sprintf("%s endpoint not found at %s", provider, url),
		Suggestion: suggestion,
	}
}

// NewHTMLResponseError creates an error for a server that answered with an HTML page.
func NewHTMLResponseError(provider, baseURL string) *AppError {
	return &AppError{
		Code:       ErrProtocol,
		Message:    fmt.Sprintf("%s returned an HTML page instead of JSON", provider),
		Suggestion: fmt.Sprintf("Check that the server at %s is running and the base URL is correct", baseURL),
	}
}

// NewUpstreamError creates an error echoing a provider-reported error message.
func NewUpstreamError(provider, message string) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Message: fmt.Sprintf("%s reported an error: %s", provider, message),
	}
}

// NewEmptyResponseError creates an error for a response with no usable message text.
// The raw response is kept in the error context so it can be shown to the user.
func NewEmptyResponseError(provider string, raw string, cause error) *AppError {
	appErr := &AppError{
		Code:       ErrProtocol,
		Message:    fmt.Sprintf("failed to generate commit message with %s", provider),
		Cause:      cause,
		Suggestion: "Check the provider, model and base URL with --print-config",
	}
	return appErr.WithContext("response", raw)
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrVersionControl,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": strings.TrimSpace(output),
		}
	}
	return appErr
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr == nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
		return sb.String()
	}

	sb.WriteString("Error: ")
	sb.WriteString(SanitizeErrorMessage(appErr.Message))

	if appErr.Cause != nil {
		sb.WriteString("\n  Cause: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
	}

	if output, ok := appErr.Context["output"]; ok {
		sb.WriteString("\n  Output: ")
		sb.WriteString(SanitizeErrorMessage(fmt.Sprintf("%v", output)))
	}

	if raw, ok := appErr.Context["response"]; ok {
		sb.WriteString("\n  Response: ")
		sb.WriteString(SanitizeErrorMessage(fmt.Sprintf("%v", raw)))
	}

	if appErr.Suggestion != "" {
		sb.WriteString("\n  Suggestion: ")
		sb.WriteString(appErr.Suggestion)
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for debug mode.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr == nil {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

	if appErr.Cause != nil {
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, appErr.Cause, 2)
	}

	if len(appErr.Context) > 0 {
		sb.WriteString("  Context:\n")
		for k, v := range appErr.Context {
			sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
		}
	}

	if appErr.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, SanitizeErrorMessage(err.Error())))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeForLogging(msg)
}
