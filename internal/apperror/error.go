// Package apperror defines the coded errors shared by every module and the
// classification the detector uses to tell outages from bad data.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

const stackDepth = 16

// AppError is an error with a stable code.
type AppError struct {
	Code    Code
	Message string
	Context string
	cause   error
	pcs     []uintptr
}

func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString(" [")
		sb.WriteString(e.Context)
		sb.WriteString("]")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// LogValue renders the error as a group when it is passed to slog.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", string(e.Code)),
		slog.String("message", e.Message),
	}
	if e.Context != "" {
		attrs = append(attrs, slog.String("context", e.Context))
	}
	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}
	if origin := e.Origin(); origin != "" {
		attrs = append(attrs, slog.String("origin", origin))
	}
	return slog.GroupValue(attrs...)
}

// Origin returns file:line of the call that created the error.
func (e *AppError) Origin() string {
	if len(e.pcs) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(e.pcs[:1]).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// Option configures New.
type Option func(*AppError)

// WithMessage overrides the default message for the code.
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext names what failed, e.g. a source or symbol.
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// New creates an AppError. The message defaults to the code's registered text.
func New(code Code, opts ...Option) *AppError {
	var pcs [stackDepth]uintptr
	n := runtime.Callers(2, pcs[:])

	err := &AppError{
		Code:    code,
		Message: messages[code],
		pcs:     pcs[:n],
	}
	for _, opt := range opts {
		opt(err)
	}
	if err.Message == "" {
		err.Message = string(code)
	}
	return err
}

// IsAppError reports whether err wraps an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the code of the first *AppError in err's chain, or CodeUnknownError.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// transportCodes are failures of an external collaborator; callers retry next cycle.
var transportCodes = map[Code]struct{}{
	CodeExternalServiceError:     {},
	CodeServiceTimeout:           {},
	CodeServiceUnavailable:       {},
	CodeRateLimitExceeded:        {},
	CodeSourceUnavailable:        {},
	CodeSourceAPIError:           {},
	CodeSourceNotConnected:       {},
	CodeSourceStale:              {},
	CodeWebSocketConnectionError: {},
	CodeWebSocketClosed:          {},
	CodeLookupFailed:             {},
	CodeNetworkInfoFailed:        {},
	CodeEVMRPCError:              {},
	CodeCircuitOpen:              {},
	CodeCircuitHalfOpen:          {},
}

// IsTransport reports whether err is a recoverable transport failure.
// Context deadline and cancellation count as transport failures.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	_, ok := transportCodes[GetCode(err)]
	return ok
}

// IsDataAnomaly reports whether err describes impossible or synthetic market data.
func IsDataAnomaly(err error) bool {
	switch GetCode(err) {
	case CodeInvalidQuote, CodeSyntheticBatch:
		return true
	}
	return false
}
