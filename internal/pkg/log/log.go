package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

const contextKeyRequestID = "request_id"

var (
	mu    sync.Mutex
	out   io.Writer = color.Output
	debug bool
)

// SetOutput redirects all log lines. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = enabled
}

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestID retrieves request ID from context. Fiber request contexts resolve
// string keys against Locals, so the value set by the requestid middleware is found too.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func formatLog(requestID string, format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	if requestID != "" {
		return fmt.Sprintf("[req_id=%s] %s", requestID, msg)
	}
	return msg
}

func write(label string, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s\n", label, msg)
}

var (
	infoLabel  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnLabel  = color.New(color.FgBlack, color.BgYellow).SprintFunc()
	errorLabel = color.New(color.FgRed).SprintFunc()
	debugLabel = color.New(color.FgCyan).SprintFunc()
)

// Info log information
func Info(format string, a ...interface{}) {
	write(infoLabel("[INFO] "), fmt.Sprintf(format, a...))
}

// InfoWithContext logs information with the request ID when available
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	write(infoLabel("[INFO] "), formatLog(RequestID(ctx), format, a...))
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	write(warnLabel("[WARN] "), fmt.Sprintf(format, a...))
}

// WarnWithContext logs warning with the request ID when available
func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	write(warnLabel("[WARN] "), formatLog(RequestID(ctx), format, a...))
}

// Error log error
func Error(format string, a ...interface{}) {
	write(errorLabel("[Error]"), fmt.Sprintf(format, a...))
}

// ErrorWithContext logs error with the request ID when available
func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	write(errorLabel("[Error]"), formatLog(RequestID(ctx), format, a...))
}

// Debug logs only when debug output is enabled.
func Debug(format string, a ...interface{}) {
	mu.Lock()
	enabled := debug
	mu.Unlock()
	if !enabled {
		return
	}
	write(debugLabel("[DEBUG]"), fmt.Sprintf(format, a...))
}

// InfoStruct dumps values with their types, handy for request payloads while debugging.
func InfoStruct(a ...interface{}) {
	write(infoLabel("[INFO] "), spew.Sdump(a...))
}
