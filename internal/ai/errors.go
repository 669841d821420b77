package ai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrNoCredentials means the user has not added any API key at all.
	// The fix is user-actionable: add a credential.
	ErrNoCredentials = errors.New("no AI provider credentials configured")

	// ErrProvidersExhausted means credentials exist but every one of them
	// is disabled, cooling down after a failure, or failed just now.
	ErrProvidersExhausted = errors.New("all AI providers are currently unavailable")
)

// failureKind classifies a provider error for logging. All kinds receive
// identical handling: mark the credential failed and move on.
type failureKind string

const (
	failureRateLimited failureKind = "rate_limited"
	failureAuth        failureKind = "auth"
	failureBadResponse failureKind = "bad_response"
	failureGeneric     failureKind = "error"
)

// statusError is a non-2xx response from a provider HTTP endpoint.
type statusError struct {
	provider string
	code     int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.provider, e.code, e.body)
}

// classifyFailure maps a provider error to a failure kind.
func classifyFailure(err error) failureKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var stErr *statusError
	if errors.As(err, &stErr) {
		return classifyStatus(stErr.code)
	}
	var badErr *malformedResponseError
	if errors.As(err, &badErr) {
		return failureBadResponse
	}
	return failureGeneric
}

func classifyStatus(code int) failureKind {
	switch code {
	case http.StatusTooManyRequests:
		return failureRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return failureAuth
	default:
		return failureGeneric
	}
}

// malformedResponseError is a 2xx response whose body did not contain the
// expected generated text. Treated like any other provider failure.
type malformedResponseError struct {
	provider string
	reason   string
}

func (e *malformedResponseError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %s", e.provider, e.reason)
}
