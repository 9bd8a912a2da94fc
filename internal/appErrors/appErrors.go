package appErrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindUpstream   Kind = "UPSTREAM"
	KindTimeout    Kind = "TIMEOUT"
	KindInternal   Kind = "INTERNAL"
)

// Error is the result type returned across package boundaries.
// Message is safe to show to clients; Err keeps the cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op string, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func Validation(op string, message string) *Error {
	return New(KindValidation, op, message, nil)
}

func NotFound(op string, message string) *Error {
	return New(KindNotFound, op, message, nil)
}

func Internal(op string, err error) *Error {
	return New(KindInternal, op, "internal error", err)
}

// Upstream wraps a failure from an external dependency. A deadline on ctx
// is reported as a timeout instead.
func Upstream(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindTimeout, op, "upstream call timed out", err)
	}
	return New(KindUpstream, op, "upstream service failed", err)
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// HTTPStatus is the single mapping from error kinds to status codes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text written to clients.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindValidation || e.Kind == KindNotFound {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
