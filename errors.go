package simg

import (
	"errors"
	"fmt"
	"net/http"
)

// Error classes. Every domain error matches exactly one class with errors.Is.
var (
	// ErrConfiguration covers invalid inputs detected at construction time.
	ErrConfiguration = errors.New("simg: configuration error")
	// ErrUnsupportedCommand is matched by *UnsupportedCommandError.
	ErrUnsupportedCommand = errors.New("simg: unsupported command")
	// ErrRemote covers failures reported by the service.
	ErrRemote = errors.New("simg: remote error")
)

var (
	ErrConnectionConfiguration = &domainError{msg: "baseURL and apiKey are required", class: ErrConfiguration}
	ErrCommandValidation       = &domainError{msg: "invalid command parameters", class: ErrConfiguration}

	ErrInvalidCredential = &domainError{msg: "invalid api key", class: ErrRemote}
	ErrObjectNotFound    = &domainError{msg: "object not found", class: ErrRemote}
	ErrInvalidFolder     = &domainError{msg: "invalid folder", class: ErrRemote}
	ErrInvalidFilename   = &domainError{msg: "invalid filename", class: ErrRemote}
)

// Body codes sent by the service with a 400 response.
const (
	CodeInvalidFolder   = "INVFLDR"
	CodeInvalidFilename = "INVNAME"
)

type domainError struct {
	msg   string
	class error
}

func (e *domainError) Error() string { return "simg: " + e.msg }

func (e *domainError) Is(target error) bool { return target == e.class }

// UnsupportedCommandError is returned when an operation receives a command of
// the wrong variant. No request is sent in that case.
type UnsupportedCommandError struct {
	Operation string
	Kind      CommandKind
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("simg: unsupported command for %s: %s", e.Operation, e.Kind)
}

func (e *UnsupportedCommandError) Is(target error) bool { return target == ErrUnsupportedCommand }

// StatusError describes a non-2xx response. It is returned as is when the
// status has no domain meaning, and wrapped by the domain error otherwise.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Code       string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Method == "" && e.URL == "" {
		return fmt.Sprintf("simg: unexpected status %d", e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("simg: %s %s: unexpected status %d (code %s)", e.Method, e.URL, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("simg: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// MapError translates the outcome of one exchange into a domain error.
// status is 0 when no response was received. Outcomes without a domain
// meaning yield cause unchanged, or a bare *StatusError when cause is nil.
func MapError(status int, bodyCode string, cause error) error {
	var domain error
	switch status {
	case http.StatusForbidden:
		domain = ErrInvalidCredential
	case http.StatusNotFound:
		domain = ErrObjectNotFound
	case http.StatusBadRequest:
		switch bodyCode {
		case CodeInvalidFolder:
			domain = ErrInvalidFolder
		case CodeInvalidFilename:
			domain = ErrInvalidFilename
		}
	}

	if domain == nil {
		if cause == nil {
			return &StatusError{StatusCode: status}
		}
		return cause
	}
	if cause == nil {
		return domain
	}
	return fmt.Errorf("%w: %w", domain, cause)
}

// StatusCode returns the HTTP status carried by err, or 0 if the failure
// happened before a response was received.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
