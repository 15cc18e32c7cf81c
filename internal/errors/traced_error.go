package errors

import (
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// TracedError is an AppError captured together with its request context and stack,
// used when a handler panics.
type TracedError struct {
	*AppError
	Stack     string
	Labels    map[string]string
	Timestamp time.Time
	Context   ErrorContext
}

// ErrorContext describes the request that failed.
type ErrorContext struct {
	TraceID string
	UserID  string
	Path    string
	Method  string
}

// NewTracedError captures the current stack. A value recovered from a panic may be passed
// directly; anything that is not an error is formatted into the message.
func NewTracedError(recovered interface{}, ctx ErrorContext) *TracedError {
	var appErr *AppError
	switch v := recovered.(type) {
	case *AppError:
		appErr = v
	case error:
		if !As(v, &appErr) {
			appErr = Wrap(ErrInternal, "internal server error", v)
		}
	default:
		appErr = Wrap(ErrInternal, "internal server error", fmt.Errorf("%v", v))
	}

	return &TracedError{
		AppError:  appErr,
		Stack:     string(debug.Stack()),
		Labels:    make(map[string]string),
		Timestamp: time.Now(),
		Context:   ctx,
	}
}

func (e *TracedError) AddLabel(key, value string) *TracedError {
	e.Labels[key] = value
	return e
}

// Fields renders the error as zap fields.
func (e *TracedError) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Int("error_code", int(e.Code)),
		zap.String("error_message", e.Message),
		zap.NamedError("error", e.Err),
		zap.String("path", e.Context.Path),
		zap.String("method", e.Context.Method),
		zap.String("stack", e.Stack),
		zap.Time("timestamp", e.Timestamp),
	}
	if e.Context.UserID != "" {
		fields = append(fields, zap.String("user_id", e.Context.UserID))
	}
	if e.Context.TraceID != "" {
		fields = append(fields, zap.String("trace_id", e.Context.TraceID))
	}
	for k, v := range e.Labels {
		fields = append(fields, zap.String("label_"+k, v))
	}
	return fields
}
