package utils

import (
	"context"
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging credentials or full payloads; message should be summarized.
// Websocket code passes the session id in the request_id slot.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}

type requestIDKey struct{}

// WithRequestID stores the request id so services can log it without a gin context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}
