package auth

import "context"

type contextKey uint8

const (
	ctxKeyClientIP contextKey = iota
	ctxKeyUserAgent
	ctxKeyIdentity
)

// WithClientIP records the caller's IP for audit events, rate limiting, and
// session metadata.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext returns the IP set by [WithClientIP], or "".
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKeyClientIP).(string)
	return ip
}

// WithUserAgent records the caller's user agent for session metadata.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// UserAgentFromContext returns the user agent set by [WithUserAgent], or "".
func UserAgentFromContext(ctx context.Context) string {
	ua, _ := ctx.Value(ctxKeyUserAgent).(string)
	return ua
}

// ContextWithIdentity attaches the admitted principal to a request context.
// The gate middleware calls this; handlers read it back with
// [IdentityFromContext].
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the principal attached by the gate, or nil for
// an unauthenticated context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return id
}
