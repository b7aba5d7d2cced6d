package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ClientErrorNetwork          = "CLIENT_NETWORK_ERROR"
	ClientErrorAPI              = "CLIENT_API_ERROR"
	ClientErrorCredentials      = "CLIENT_CREDENTIALS_ERROR"
	ClientErrorBadInput         = "CLIENT_BAD_INPUT"
	ClientErrorStructureInvalid = "CLIENT_STRUCTURE_INVALID"
)

// RequestContext is the ephemeral diagnostic record attached to every error.
// Payload must already be redacted before it is placed here.
type RequestContext struct {
	RequestID string
	Method    string
	URL       string
	Payload   map[string]any
}

func (c RequestContext) metadata() map[string]any {
	meta := map[string]any{
		"request_id": c.RequestID,
		"method":     c.Method,
		"url":        c.URL,
	}
	if c.Payload != nil {
		meta["payload"] = c.Payload
	}
	return meta
}

// NewNetworkError reports a transport-level failure with no server response.
func NewNetworkError(source error, reqCtx RequestContext) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "cattr: no response received from backend").
		WithCode(http.StatusBadGateway).
		WithTextCode(ClientErrorNetwork).
		WithMetadata(reqCtx.metadata())
}

// NewAPIError reports a non-2xx server response outside the recoverable-auth
// case.
func NewAPIError(status int, code string, message string, traceID string, reqCtx RequestContext) error {
	if strings.TrimSpace(message) == "" {
		message = "cattr: backend reported an error"
	}
	meta := reqCtx.metadata()
	if strings.TrimSpace(code) != "" {
		meta["error_code"] = code
	}
	if strings.TrimSpace(traceID) != "" {
		meta["trace_id"] = traceID
	}
	return goerrors.New(message, goerrors.CategoryOperation).
		WithCode(status).
		WithTextCode(ClientErrorAPI).
		WithMetadata(meta)
}

// NewCredentialsError reports that no usable token exists and automatic
// re-authentication was unavailable, disabled, or failed. No request was sent.
func NewCredentialsError(message string, reqCtx RequestContext) error {
	if strings.TrimSpace(message) == "" {
		message = "cattr: no usable credentials"
	}
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ClientErrorCredentials).
		WithMetadata(reqCtx.metadata())
}

// NewValidationError reports malformed caller input before any network
// activity.
func NewValidationError(field string, message string) error {
	return goerrors.NewValidation("cattr: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ClientErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

// NewStructureError reports a backend payload that does not match the shape
// the client requires.
func NewStructureError(message string, reqCtx RequestContext) error {
	return goerrors.New(message, goerrors.CategoryOperation).
		WithCode(http.StatusBadGateway).
		WithTextCode(ClientErrorStructureInvalid).
		WithMetadata(reqCtx.metadata())
}

func IsNetworkError(err error) bool {
	return hasTextCode(err, ClientErrorNetwork)
}

func IsAPIError(err error) bool {
	return hasTextCode(err, ClientErrorAPI) || hasTextCode(err, ClientErrorStructureInvalid)
}

func IsCredentialsError(err error) bool {
	return hasTextCode(err, ClientErrorCredentials)
}

func IsValidationError(err error) bool {
	return hasTextCode(err, ClientErrorBadInput)
}

// ErrorStatus returns the HTTP status carried by a taxonomy error, or zero.
func ErrorStatus(err error) int {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Code
	}
	return 0
}

// ErrorCode returns the backend's machine-readable error code, or empty.
func ErrorCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if code, ok := richErr.Metadata["error_code"].(string); ok {
			return code
		}
	}
	return ""
}

func hasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(richErr.TextCode), textCode)
}
