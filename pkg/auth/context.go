package auth

import (
	"context"

	apperrors "fishdex/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// UserContext carries the resolved request identity
type UserContext struct {
	UserID        string
	Phone         string
	Authenticated bool
}

// SetUserInContext attaches the user context to a request context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the user context set by the auth middleware
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil || user.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("no identity in request context")
	}
	return user, nil
}
