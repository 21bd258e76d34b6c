package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "client_ip"
	ctxKeyUserAgent contextKey = "client_ua"
)

// ContextWithIPAddress adds the client IP address to context for upload logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the client User-Agent to context for upload logging.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// clientAttrs returns the client metadata in ctx as slog key/value pairs.
func clientAttrs(ctx context.Context) []any {
	var attrs []any
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok && v != "" {
		attrs = append(attrs, "ip", v)
	}
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok && v != "" {
		attrs = append(attrs, "user_agent", v)
	}
	return attrs
}
