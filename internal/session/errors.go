package session

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a machine-readable protocol error code surfaced to clients.
type ErrorCode string

const (
	CodeSessionNotFound          ErrorCode = "session_not_found"
	CodeSessionClosed            ErrorCode = "session_closed"
	CodeSessionAlreadyEnded      ErrorCode = "session_already_ended"
	CodeSessionExpired           ErrorCode = "session_expired"
	CodeInvalidTemplateSelection ErrorCode = "invalid_template_selection"
	CodeUnsupportedAudioFormat   ErrorCode = "unsupported_audio_format"
	CodePayloadTooLarge          ErrorCode = "payload_too_large"
	CodeInvalidOutcomeReport     ErrorCode = "invalid_outcome_report"
)

// ProtocolError is a structured, terminal-to-the-request error. A rejected
// operation never mutates the registry, so callers may retry safely where
// the code allows it.
type ProtocolError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches two protocol errors by code so errors.Is works against the
// exported sentinel values below.
func (e *ProtocolError) Is(target error) bool {
	var pe *ProtocolError
	if !errors.As(target, &pe) {
		return false
	}
	return e.Code == pe.Code
}

// HTTPStatus maps the error code to the transport status used by the HTTP
// surface.
func (e *ProtocolError) HTTPStatus() int {
	switch e.Code {
	case CodeSessionNotFound:
		return http.StatusNotFound
	case CodeSessionClosed, CodeSessionAlreadyEnded:
		return http.StatusConflict
	case CodeSessionExpired:
		return http.StatusGone
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeInvalidTemplateSelection, CodeUnsupportedAudioFormat, CodeInvalidOutcomeReport:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinel values for errors.Is checks.
var (
	ErrSessionNotFound          = &ProtocolError{Code: CodeSessionNotFound, Message: "session does not exist"}
	ErrSessionClosed            = &ProtocolError{Code: CodeSessionClosed, Message: "session has ended, cannot upload audio"}
	ErrSessionAlreadyEnded      = &ProtocolError{Code: CodeSessionAlreadyEnded, Message: "session has already been ended"}
	ErrSessionExpired           = &ProtocolError{Code: CodeSessionExpired, Message: "session has expired"}
	ErrInvalidTemplateSelection = &ProtocolError{Code: CodeInvalidTemplateSelection, Message: "invalid template selection"}
	ErrUnsupportedAudioFormat   = &ProtocolError{Code: CodeUnsupportedAudioFormat, Message: "audio format is not supported"}
	ErrPayloadTooLarge          = &ProtocolError{Code: CodePayloadTooLarge, Message: "payload exceeds the maximum chunk size"}
	ErrInvalidOutcomeReport     = &ProtocolError{Code: CodeInvalidOutcomeReport, Message: "invalid processing outcome report"}
)

func notFoundError(id string) *ProtocolError {
	return &ProtocolError{
		Code:    CodeSessionNotFound,
		Message: fmt.Sprintf("Session '%s' does not exist", id),
	}
}

func templateSelectionError(msg string, details map[string]interface{}) *ProtocolError {
	return &ProtocolError{Code: CodeInvalidTemplateSelection, Message: msg, Details: details}
}

func unsupportedFormatError(contentType string, supported []string) *ProtocolError {
	return &ProtocolError{
		Code:    CodeUnsupportedAudioFormat,
		Message: fmt.Sprintf("Audio format '%s' is not supported", contentType),
		Details: map[string]interface{}{
			"provided_format":   contentType,
			"supported_formats": supported,
		},
	}
}

func payloadTooLargeError(size, limit int64) *ProtocolError {
	return &ProtocolError{
		Code:    CodePayloadTooLarge,
		Message: fmt.Sprintf("File size %d bytes exceeds maximum %d bytes", size, limit),
	}
}

func invalidOutcomeError(msg string) *ProtocolError {
	return &ProtocolError{Code: CodeInvalidOutcomeReport, Message: msg}
}
