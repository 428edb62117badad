package auth

import (
	"context"
	"log/slog"
)

// ContextAuthenticator forwards the caller's bearer token to the booking API.
type ContextAuthenticator struct{}

func (ContextAuthenticator) Token(ctx context.Context) (string, bool) {
	return TokenFromContext(ctx)
}

// OnUnauthorized only logs. The client learns about the expired session from the 401
// response and handles the redirect to the login page.
func (ContextAuthenticator) OnUnauthorized(ctx context.Context) {
	subject := ""
	if claims, ok := ClaimsFromContext(ctx); ok {
		subject = claims.Subject
	}

	slog.WarnContext(ctx, "booking api rejected credentials", slog.String("subject", subject))
}
