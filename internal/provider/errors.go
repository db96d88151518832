// Package provider defines the failure taxonomy shared by all external API
// clients. Every provider call returns either a result or an *Error carrying
// an explicit kind, so callers branch on kind instead of inspecting messages.
package provider

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a provider failure.
type Kind string

const (
	// KindAuth indicates a missing or rejected credential.
	KindAuth Kind = "auth"
	// KindNetwork indicates a transport-level failure (DNS, TLS, timeout,
	// connection reset) or a non-2xx status that is not a rate limit.
	KindNetwork Kind = "network"
	// KindMalformed indicates the provider responded but the payload could
	// not be decoded into an expected shape.
	KindMalformed Kind = "malformed_response"
	// KindRateLimited indicates the provider rejected the call with a rate
	// limit signal; RetryAfter carries the provider's hint when present.
	KindRateLimited Kind = "rate_limited"
)

// Error is the failure value returned by provider clients.
type Error struct {
	Provider   string
	Kind       Kind
	Message    string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewAuth builds an auth-kind failure.
func NewAuth(providerName, message string) *Error {
	return &Error{Provider: providerName, Kind: KindAuth, Message: message}
}

// NewNetwork builds a network-kind failure wrapping the transport error.
func NewNetwork(providerName, message string, err error) *Error {
	return &Error{Provider: providerName, Kind: KindNetwork, Message: message, Err: err}
}

// NewMalformed builds a malformed-response failure.
func NewMalformed(providerName, message string, err error) *Error {
	return &Error{Provider: providerName, Kind: KindMalformed, Message: message, Err: err}
}

// NewRateLimited builds a rate-limit failure with the provider's retry hint.
func NewRateLimited(providerName string, retryAfter time.Duration) *Error {
	return &Error{
		Provider:   providerName,
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("rate limit exceeded, retry after %s", retryAfter),
		StatusCode: 429,
		RetryAfter: retryAfter,
	}
}

// KindOf returns the failure kind of err, or "" when err is not a provider
// failure.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// RetryAfter extracts the retry hint from a rate-limit failure. The second
// return is false when err is not a rate-limit failure.
func RetryAfter(err error) (time.Duration, bool) {
	var pe *Error
	if errors.As(err, &pe) && pe.Kind == KindRateLimited {
		return pe.RetryAfter, true
	}
	return 0, false
}
