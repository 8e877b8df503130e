package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNetwork
	KindUnauthorized
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	}
	return "unknown"
}

const (
	MessageNetwork      = "Network Error: Please check your connection and try again"
	MessageServer       = "server error"
	MessageUnauthorized = "Session expired. Please login again."
)

var ErrUnauthorized = errors.New("unauthorized")

// Error is returned by every backend call. Message is safe to show to the
// user, for server errors it is the backend's own message when it sent one.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == KindUnauthorized
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// UserMessage converts any error into the text shown in a banner or toast.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return MessageServer
	}
	switch apiErr.Kind {
	case KindNetwork:
		return MessageNetwork
	case KindUnauthorized:
		return MessageUnauthorized
	}
	if apiErr.Message == "" {
		return MessageServer
	}
	return apiErr.Message
}
