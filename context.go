package sessionauth

import "context"

type authResultContextKey struct{}

// WithAuthResult attaches a verified identity and its token to ctx. The
// verification middleware calls this after VerifyToken accepts a request.
func WithAuthResult(ctx context.Context, res *AuthResult) context.Context {
	return context.WithValue(ctx, authResultContextKey{}, res)
}

// AuthResultFromContext returns the identity/token pair attached by the
// verification step, if any.
func AuthResultFromContext(ctx context.Context) (*AuthResult, bool) {
	if ctx == nil {
		return nil, false
	}
	res, ok := ctx.Value(authResultContextKey{}).(*AuthResult)
	return res, ok
}
