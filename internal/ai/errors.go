package ai

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindNetwork       Kind = "network"
	KindInvalidAPIKey Kind = "invalid_api_key"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindUnknown       Kind = "unknown"
)

// User-facing messages.
const (
	msgNotConfigured = "Google AI API key is not configured. Please set your API key in the config file."
	msgNetwork       = "Network connection failed. Please check your internet connection and try again."
	msgOffline       = "No internet connection. Please check your network and try again."
	msgInvalidKey    = "Invalid API key. Please check your Google AI API key configuration."
	msgQuota         = "API quota exceeded. Please try again later."
	msgUnknown       = "Failed to generate text. Please check your API key and try again."
)

// Error is a classified gateway failure. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNetwork) works
// regardless of message or cause.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrConfiguration = &Error{Kind: KindConfiguration, Message: msgNotConfigured}
	ErrNetwork       = &Error{Kind: KindNetwork, Message: msgNetwork}
	ErrInvalidAPIKey = &Error{Kind: KindInvalidAPIKey, Message: msgInvalidKey}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded, Message: msgQuota}
	ErrUnknown       = &Error{Kind: KindUnknown, Message: msgUnknown}
)

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// classify maps a backend failure onto the error taxonomy. Context
// cancellation is returned unchanged so callers can tell it apart.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded:
			return newError(KindNetwork, msgNetwork, err)
		case codes.Unauthenticated, codes.PermissionDenied:
			return newError(KindInvalidAPIKey, msgInvalidKey, err)
		case codes.ResourceExhausted:
			return newError(KindQuotaExceeded, msgQuota, err)
		case codes.InvalidArgument:
			if strings.Contains(st.Message(), "API key") {
				return newError(KindInvalidAPIKey, msgInvalidKey, err)
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindNetwork, msgNetwork, err)
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return newError(KindNetwork, msgNetwork, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Network request failed"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"):
		return newError(KindNetwork, msgNetwork, err)
	case strings.Contains(msg, "API key"):
		return newError(KindInvalidAPIKey, msgInvalidKey, err)
	case strings.Contains(strings.ToLower(msg), "quota"):
		return newError(KindQuotaExceeded, msgQuota, err)
	}
	return newError(KindUnknown, msgUnknown, err)
}
