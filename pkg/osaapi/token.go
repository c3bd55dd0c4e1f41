package osaapi

import "context"

type tokenKey struct{}

// WithToken attaches the upstream bearer token to ctx. Every request made
// with that context carries an Authorization header.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
