package backend

import "context"

type principalKey struct{}

// WithPrincipal stores the principal id in the context.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// ContextSession resolves the principal from the request context. The HTTP
// layer's auth middleware populates it; an empty context means
// unauthenticated.
type ContextSession struct{}

func (ContextSession) CurrentPrincipal(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalKey{}).(string)
	if !ok || principal == "" {
		return "", false
	}
	return principal, true
}

// StaticSession always resolves to a fixed principal. Workers and
// single-user deployments use it; the zero value is unauthenticated.
type StaticSession struct {
	Principal string
}

func (s StaticSession) CurrentPrincipal(context.Context) (string, bool) {
	if s.Principal == "" {
		return "", false
	}
	return s.Principal, true
}
