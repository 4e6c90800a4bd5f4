package resolver

import (
	"context"
	"encoding/base64"
	"net/mail"

	"trip-booking/internal/models"
)

type contextKey int

const userContextKey contextKey = iota

// WithUser attaches the resolved caller identity to the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the caller identity attached by the transport.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

// EncodeToken derives the identity token for an email. The token is a
// reversible encoding that marks who the caller claims to be; it is NOT a
// credential and provides no authentication security.
func EncodeToken(email string) string {
	return base64.StdEncoding.EncodeToString([]byte(email))
}

// DecodeToken recovers the email from an identity token. It returns ""
// when the token is not valid base64 or does not decode to an email
// address; callers treat that as an anonymous request.
func DecodeToken(token string) string {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return ""
	}
	if _, err := mail.ParseAddress(string(decoded)); err != nil {
		return ""
	}
	return string(decoded)
}
