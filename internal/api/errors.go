package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// ErrNoToken is returned when a bearer-only endpoint is called without a
// token source.
var ErrNoToken = errors.New("api: no bearer token available")

// ErrTokenExpired is returned when a bearer-only endpoint is called with a
// token whose exp claim has passed. The caller should reauthenticate instead
// of burning a request on a guaranteed 401.
var ErrTokenExpired = errors.New("api: bearer token expired")

// codeCartValidationFailed marks the structured per-item issue payload the
// cart validation and order creation endpoints return.
const codeCartValidationFailed = "cart_validation_failed"

// Error is the server's error envelope: {"error": ..., "code": ..., "details": ...}.
type Error struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
	Details    string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// CartValidationError carries the per-item issues the server found when
// re-verifying the cart against current stock and prices. Issues preserve
// server order.
type CartValidationError struct {
	StatusCode int
	Issues     []domain.CartIssue
}

func (e *CartValidationError) Error() string {
	return fmt.Sprintf("api: cart validation failed with %d issue(s)", len(e.Issues))
}

type errorEnvelope struct {
	Message string             `json:"error"`
	Code    string             `json:"code,omitempty"`
	Details string             `json:"details,omitempty"`
	Issues  []domain.CartIssue `json:"issues,omitempty"`
}

func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == "" {
		return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if env.Code == codeCartValidationFailed {
		return &CartValidationError{StatusCode: resp.StatusCode, Issues: env.Issues}
	}
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    env.Message,
		Code:       env.Code,
		Details:    env.Details,
	}
}

// UserMessage extracts the human-readable message to surface for a failed
// call: the server's message when present, else a generic fallback.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
