package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// Error codes used across the application
const (
	CodeCameraDenied      = "CAMERA_DENIED"
	CodeAnalysisFailed    = "ANALYSIS_FAILED"
	CodeAnalysisTimeout   = "ANALYSIS_TIMEOUT"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeCaptureFailed     = "CAPTURE_FAILED"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  source,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   source,
		Context:  make(map[string]interface{}),
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		h.logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypePermission:
		h.logger.WarnContext(ctx, "Permission error", err.LogFields()...)
	case ErrorTypeStorage, ErrorTypeExternal, ErrorTypeInternal, ErrorTypeTimeout:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Predefined errors, usable as errors.Is targets
var (
	ErrCameraDenied      = New(ErrorTypePermission, CodeCameraDenied, "Camera access denied")
	ErrAnalysisFailed    = New(ErrorTypeExternal, CodeAnalysisFailed, "Analysis failed")
	ErrAnalysisTimeout   = New(ErrorTypeTimeout, CodeAnalysisTimeout, "Analysis timed out")
	ErrMalformedResponse = New(ErrorTypeExternal, CodeMalformedResponse, "Malformed analysis response")
	ErrEmptyInput        = New(ErrorTypeValidation, CodeEmptyInput, "Nothing to analyze")
)

// NewPermissionError reports that the camera could not be acquired.
func NewPermissionError(err error) *AppError {
	return Wrap(err, ErrorTypePermission, CodeCameraDenied, "Camera access denied.")
}

// NewCaptureError reports a camera that was acquired but yielded no frame.
func NewCaptureError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, CodeCaptureFailed, "Failed to capture image.")
}

// NewAnalysisError wraps a failed exchange with the AI service. message is
// what the user sees.
func NewAnalysisError(err error, operation, message string) *AppError {
	return Wrap(err, ErrorTypeExternal, CodeAnalysisFailed, message).
		WithContext("operation", operation)
}

// NewMalformedResponseError reports a reply that does not fit the expected shape.
func NewMalformedResponseError(err error, operation, message string) *AppError {
	return Wrap(err, ErrorTypeExternal, CodeMalformedResponse, message).
		WithContext("operation", operation)
}

// NewTimeoutError reports an analysis request that ran out of time.
func NewTimeoutError(err error, operation, message string) *AppError {
	return Wrap(err, ErrorTypeTimeout, CodeAnalysisTimeout, message).
		WithContext("operation", operation)
}

// NewEmptyInputError reports a request that has nothing to work on.
func NewEmptyInputError(message string) *AppError {
	return New(ErrorTypeValidation, CodeEmptyInput, message)
}

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

func NewStorageError(err error) *AppError {
	return Wrap(err, ErrorTypeStorage, "STORAGE_ERROR", "Storage operation failed")
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal error")
}

// IsPermission reports whether err is a camera permission failure.
func IsPermission(err error) bool {
	return hasType(err, ErrorTypePermission)
}

// IsAnalysis reports whether err came from the AI service exchange,
// including timeouts and malformed replies.
func IsAnalysis(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case CodeAnalysisFailed, CodeAnalysisTimeout, CodeMalformedResponse:
		return true
	}
	return false
}

// IsEmptyInput reports whether err is an EMPTY_INPUT validation error.
func IsEmptyInput(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeEmptyInput
}

// UserMessage returns the message meant for the user.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func hasType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}
