// ABOUTME: Tagged failure type for backend call outcomes
// ABOUTME: Classifies errors once at the gateway boundary for UI consumption

package client

import (
	"errors"
	"fmt"
)

// FailureKind tags how a backend call went wrong.
type FailureKind int

const (
	// KindNetwork means no usable response was received. Safe to retry.
	KindNetwork FailureKind = iota
	// KindMessage means the backend rejected the call with a single message.
	KindMessage
	// KindFieldErrors means the backend returned per-field validation errors.
	KindFieldErrors
	// KindUnauthorized means the backend returned 401 for presented credentials.
	KindUnauthorized
)

// FieldError is a validation message attached to a named input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Failure is the structured result of a failed backend call.
// Call sites branch on Kind instead of re-inferring the error shape.
type Failure struct {
	Kind    FailureKind
	Message string
	Fields  []FieldError
	Status  int // HTTP status, 0 for transport failures
}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindFieldErrors:
		if len(f.Fields) > 0 {
			return f.Fields[0].Message
		}
		return "validation failed"
	case KindUnauthorized:
		if f.Message != "" {
			return f.Message
		}
		return "unauthorized"
	default:
		return f.Message
	}
}

// AsFailure extracts a Failure from an error chain.
// Errors that did not originate at the gateway come back as a network failure
// so the UI always has a kind to branch on.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindNetwork, Message: err.Error()}
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindUnauthorized
}

// networkFailure builds a transport-level failure with a retry-suggesting message.
func networkFailure(baseURL string, err error) *Failure {
	return &Failure{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("cannot reach backend at %s: %v", baseURL, err),
	}
}
