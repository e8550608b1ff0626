package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fishdex/pkg/auth"
	"fishdex/pkg/common"
	apperrors "fishdex/pkg/errors"
)

// Identify resolves the caller's identity and installs it in the
// request context. Authenticated callers present a Bearer token;
// anonymous callers present their device-scoped id in X-User-ID.
// Every identified request counts against a per-identity rate limit.
func Identify(tokens *auth.JWTManager, logger *zap.Logger) func(next http.Handler) http.Handler {
	limiter := auth.NewRateLimiter(200, time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens)
			if err != nil {
				logger.Warn("identity resolution failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				common.RespondAppError(w, err)
				return
			}

			if !limiter.Allow(user.UserID) {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(r *http.Request, tokens *auth.JWTManager) (*auth.UserContext, error) {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, apperrors.NewUnauthorizedError("invalid authorization header format")
		}
		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return nil, apperrors.NewUnauthorizedError("invalid token").WithCause(err)
		}
		return &auth.UserContext{
			UserID:        claims.UserID,
			Phone:         claims.Phone,
			Authenticated: true,
		}, nil
	}

	anonymousID := r.Header.Get("X-User-ID")
	if anonymousID == "" {
		return nil, apperrors.NewUnauthorizedError("missing credentials")
	}
	return &auth.UserContext{UserID: anonymousID, Authenticated: false}, nil
}
